package casdoor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/edubridge/consultancy-admin/internal/cache"
	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// Property names read from the Casdoor user record
const (
	propertyRole           = "role"
	propertyOfficeLocation = "office_location"
)

// errNoRole marks a Casdoor user that maps to no application role
var errNoRole = errors.New("no recognised role")

// casdoorClient is the subset of the SDK client used here
type casdoorClient interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
	GetUserByUserId(userId string) (*casdoorsdk.User, error)
}

type IdentityCasdoor struct {
	client casdoorClient
	cache  *cache.CacheHelper
	logger *slog.Logger
}

func NewIdentityCasdoor(config CasdoorConfig, redisClient *redis.Client, logger *slog.Logger) repositories.IdentityProvider {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return newIdentityCasdoor(client, cache.NewCacheManager(redisClient).Identity, logger)
}

func newIdentityCasdoor(client casdoorClient, helper *cache.CacheHelper, logger *slog.Logger) *IdentityCasdoor {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityCasdoor{
		client: client,
		cache:  helper,
		logger: logger,
	}
}

// ValidateSession parses the bearer token and resolves the caller.
// An invalid token, a user Casdoor no longer knows or an unmappable role yields (nil, nil).
// The token claims stand in for the user record only while Casdoor is unreachable.
func (i *IdentityCasdoor) ValidateSession(ctx context.Context, token string) (*models.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	claims, err := i.client.ParseJwtToken(token)
	if err != nil {
		i.logger.DebugContext(ctx, "Rejected session token", "error", err)
		return nil, nil
	}
	if claims.Id == "" {
		return nil, nil
	}

	principal, err := i.GetByID(ctx, claims.Id)
	switch {
	case err == nil:
		return principal, nil
	case repositories.IsNotFoundError(err), errors.Is(err, errNoRole):
		i.logger.WarnContext(ctx, "Session user rejected", "user_id", claims.Id, "error", err)
		return nil, nil
	}

	i.logger.WarnContext(ctx, "Identity lookup failed, using token claims",
		"user_id", claims.Id,
		"error", err)
	principal, convErr := convertCasdoorUser(&claims.User)
	if convErr != nil {
		i.logger.WarnContext(ctx, "Session has no usable role", "user_id", claims.Id, "error", convErr)
		return nil, nil
	}
	return principal, nil
}

// GetByID retrieves a principal by Casdoor user id
func (i *IdentityCasdoor) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	cacheKey := fmt.Sprintf("id:%s", id)

	var cached models.Principal
	if err := i.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	casdoorUser, err := i.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}

	principal, err := convertCasdoorUser(casdoorUser)
	if err != nil {
		return nil, err
	}

	if err := i.cache.Set(ctx, cacheKey, principal, cache.IdentityCacheConfig.TTL); err != nil {
		i.logger.WarnContext(ctx, "Failed to cache principal", "user_id", id, "error", err)
	}

	return principal, nil
}

// ===== CONVERSION METHODS =====

func convertCasdoorUser(u *casdoorsdk.User) (*models.Principal, error) {
	if u == nil {
		return nil, errors.New("nil casdoor user")
	}

	role, err := mapCasdoorRole(u)
	if err != nil {
		return nil, err
	}

	name := u.DisplayName
	if name == "" {
		name = u.Name
	}

	var officeLocation *string
	if loc := strings.TrimSpace(u.Properties[propertyOfficeLocation]); loc != "" {
		officeLocation = &loc
	}

	return &models.Principal{
		ID:             u.Id,
		Name:           name,
		Email:          u.Email,
		Role:           role,
		OfficeLocation: officeLocation,
		IsActive:       !u.IsForbidden && !u.IsDeleted,
	}, nil
}

// mapCasdoorRole picks the application role: Casdoor admins map to admin, then the
// role property, then the user type, then the first recognised Casdoor role.
func mapCasdoorRole(u *casdoorsdk.User) (models.UserRole, error) {
	if u.IsAdmin {
		return models.RoleAdmin, nil
	}

	candidates := []string{u.Properties[propertyRole], u.Type}
	for _, r := range u.Roles {
		if r != nil {
			candidates = append(candidates, r.Name)
		}
	}

	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if role, err := models.ParseRole(raw); err == nil {
			return role, nil
		}
	}

	return "", fmt.Errorf("user %s: %w", u.Id, errNoRole)
}
