package repositories

import (
	"context"

	"github.com/edubridge/consultancy-admin/internal/models"
)

// IdentityProvider validates sessions issued by the external identity service.
// ValidateSession returns (nil, nil) when the token does not identify a session.
type IdentityProvider interface {
	ValidateSession(ctx context.Context, token string) (*models.Principal, error)
	GetByID(ctx context.Context, id string) (*models.Principal, error)
}
