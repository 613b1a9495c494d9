package repositories

import "context"

// Repository aggregates every store the admin service reads or writes
type Repository interface {
	// Access domain
	Permission() PermissionRepository

	// Financial domain
	Agent() AgentRepository
	Fee() FeeRepository

	// Hostel & mess domain
	Hostel() HostelRepository

	// Identity (external, read-only)
	Identity() IdentityProvider

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
