package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/edubridge/consultancy-admin/internal/cache"
	"github.com/edubridge/consultancy-admin/internal/events"
	"github.com/edubridge/consultancy-admin/internal/metrics"
	"github.com/edubridge/consultancy-admin/internal/repositories"
	"github.com/edubridge/consultancy-admin/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	PermissionCacheTTL  time.Duration
	CommissionBatchCron string

	// EnableScheduler starts the commission batch on Initialize
	EnableScheduler bool
}

// ServiceDependencies groups the collaborators shared by every service
type ServiceDependencies struct {
	Repo         repositories.Repository
	RepoManager  repositories.RepositoryManager
	CacheManager *cache.CacheManager
	Publisher    events.EventPublisher
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	Validator    *validator.Validator
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceDependencies
	config ServiceManagerConfig

	// Service instances
	authorizationService AuthorizationService
	commissionService    CommissionService
	budgetService        BudgetService
	scheduler            *Scheduler

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceDependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Publisher == nil {
		deps.Publisher = events.NewMockEventPublisher(deps.Logger)
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps ServiceDependencies) ServiceManager {
	return NewServiceManager(deps, ServiceManagerConfig{
		PermissionCacheTTL:  cache.PermissionCacheConfig.TTL,
		CommissionBatchCron: DefaultCommissionBatchCron,
		EnableScheduler:     true,
	})
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	if err := sm.initializeServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Cached lists may have been merged by an older build
	if sm.deps.CacheManager != nil {
		cache.InvalidateAllPermissions(ctx, sm.deps.CacheManager)
	}

	if sm.config.EnableScheduler {
		sm.scheduler.Start()
	}

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() error {
	d := sm.deps

	sm.authorizationService = NewAuthorizationService(d.Repo, d.CacheManager, sm.config.PermissionCacheTTL, d.Publisher, d.Metrics, d.Logger, d.Validator)
	sm.deps.Logger.Info("Authorization service initialized")

	sm.commissionService = NewCommissionService(d.Repo, d.Publisher, d.Metrics, d.Logger)
	sm.deps.Logger.Info("Commission service initialized")

	sm.budgetService = NewBudgetService(d.Repo, d.Publisher, d.Metrics, d.Logger, d.Validator)
	sm.deps.Logger.Info("Budget service initialized")

	scheduler, err := NewScheduler(sm.config.CommissionBatchCron, sm.commissionService, d.Logger)
	if err != nil {
		return err
	}
	sm.scheduler = scheduler

	return nil
}

// Service getters
func (sm *serviceManager) Authorization() AuthorizationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authorizationService
}

func (sm *serviceManager) Commission() CommissionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.commissionService
}

func (sm *serviceManager) Budget() BudgetService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.budgetService
}

func (sm *serviceManager) Scheduler() *Scheduler {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.scheduler
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if sm.deps.RepoManager != nil {
		if err := sm.deps.RepoManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("repository health check failed: %w", err)
		}
	} else if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	if sm.deps.CacheManager != nil {
		if err := sm.deps.CacheManager.HealthCheck(ctx); err != nil {
			// Cache is optional; permissions fall back to the store
			sm.deps.Logger.Warn("Cache health check failed", "error", err)
		}
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.scheduler != nil {
		if err := sm.scheduler.Stop(ctx); err != nil {
			sm.deps.Logger.Error("Failed to stop commission scheduler", "error", err)
		}
	}

	if err := sm.deps.Publisher.Close(); err != nil {
		sm.deps.Logger.Error("Failed to close event publisher", "error", err)
	}

	if sm.deps.RepoManager != nil {
		if err := sm.deps.RepoManager.Shutdown(ctx); err != nil {
			sm.deps.Logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}

// IsInitialized returns whether the service manager has been initialized
func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.initialized
}
