package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edubridge/consultancy-admin/internal/access"
	"github.com/edubridge/consultancy-admin/internal/cache"
	"github.com/edubridge/consultancy-admin/internal/events"
	"github.com/edubridge/consultancy-admin/internal/metrics"
	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
	"github.com/edubridge/consultancy-admin/internal/validator"
)

type authorizationService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	cacheTTL  time.Duration
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthorizationService(repo repositories.Repository, cm *cache.CacheManager, cacheTTL time.Duration, publisher events.EventPublisher, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator) AuthorizationService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	if cacheTTL <= 0 {
		cacheTTL = cache.PermissionCacheConfig.TTL
	}
	return &authorizationService{
		repo:      repo,
		cache:     cm,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		validator: validator,
	}
}

func (s *authorizationService) Check(ctx context.Context, principal *models.Principal, path string, req access.Requirement) (access.Decision, error) {
	var permissions []models.PermissionEntry

	// Admin never consults the store; inactive or missing principals are denied before loading
	if principal != nil && principal.IsActive && !principal.Role.IsAdmin() {
		loaded, err := s.Permissions(ctx, principal.Role)
		if err != nil {
			return access.Decision{}, err
		}
		permissions = loaded
	}

	decision := access.Resolve(principal, path, req, permissions)
	s.metrics.ObserveAccessDecision(decision.Allowed, string(decision.Reason))

	if !decision.Allowed {
		s.logger.InfoContext(ctx, "Access denied",
			"path", path,
			"reason", decision.Reason,
			"role", roleOf(principal))
	}

	return decision, nil
}

// Permissions merges the role's menu toggles with its JSON rule list. A JSON rule
// replaces a toggle on the same (menu, feature) tuple.
func (s *authorizationService) Permissions(ctx context.Context, role models.UserRole) ([]models.PermissionEntry, error) {
	var entries []models.PermissionEntry
	err := s.cache.Permission.CacheOrExecute(ctx, cache.PermissionKey(role.String()), &entries, s.cacheTTL, func() (interface{}, error) {
		return s.loadPermissions(ctx, role)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *authorizationService) loadPermissions(ctx context.Context, role models.UserRole) ([]models.PermissionEntry, error) {
	rows, err := s.repo.Permission().ListRolePermissions(ctx, nil, role)
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}

	var rules []models.FeatureRule
	def, err := s.repo.Permission().GetRoleDefinition(ctx, nil, role)
	switch {
	case err == nil:
		rules = def.Permissions
	case repositories.IsNotFoundError(err):
		// Role has no JSON rule list
	default:
		return nil, fmt.Errorf("failed to load role definition: %w", err)
	}

	return mergePermissions(role, rows, rules), nil
}

func mergePermissions(role models.UserRole, rows []*models.RolePermission, rules []models.FeatureRule) []models.PermissionEntry {
	type tuple struct {
		menu    models.Menu
		feature models.Feature
		set     bool
	}

	index := make(map[tuple]int)
	entries := make([]models.PermissionEntry, 0, len(rows)+len(rules))

	put := func(e models.PermissionEntry) {
		key := tuple{menu: e.Menu}
		if e.Feature != nil {
			key.feature, key.set = *e.Feature, true
		}
		if i, ok := index[key]; ok {
			entries[i] = e
			return
		}
		index[key] = len(entries)
		entries = append(entries, e)
	}

	for _, row := range rows {
		put(models.PermissionEntry{Role: role, Menu: row.MenuItem, Allowed: row.IsEnabled})
	}
	for _, rule := range rules {
		put(models.PermissionEntry{Role: role, Menu: rule.Menu, Feature: rule.Feature, Allowed: rule.Allowed})
	}

	return entries
}

func (s *authorizationService) UpdateRolePermission(ctx context.Context, actor *models.Principal, rawRole string, req *UpdateRolePermissionRequest) error {
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return fmt.Errorf("%s: %w", err.Error(), ErrInvalidRole)
	}
	if err := s.validator.Validate(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return NewValidationError(verrs)
		}
		return err
	}

	s.logger.InfoContext(ctx, "Updating role permission",
		"role", role,
		"menu", req.Menu,
		"enabled", *req.IsEnabled,
		"actor_id", actorID(actor))

	if err := s.repo.Permission().UpdateRolePermission(ctx, nil, role, req.Menu, *req.IsEnabled); err != nil {
		return fmt.Errorf("failed to update role permission: %w", err)
	}

	cache.InvalidateRolePermissions(ctx, s.cache, role.String())

	menu := string(req.Menu)
	events.PublishSafe(ctx, s.publisher, s.logger, events.PermissionsUpdated, events.PermissionsUpdatedData{
		Role:    role.String(),
		Menu:    &menu,
		Enabled: req.IsEnabled,
		ActorID: actorID(actor),
	})

	return nil
}

func (s *authorizationService) SetFeaturePermissions(ctx context.Context, actor *models.Principal, rawRole string, req *SetFeatureRulesRequest) error {
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return fmt.Errorf("%s: %w", err.Error(), ErrInvalidRole)
	}
	if verrs := s.validator.GetBusinessValidator().ValidateFeatureRules(req); len(verrs) > 0 {
		return NewValidationError(verrs)
	}

	rules := make([]models.FeatureRule, 0, len(req.Rules))
	for _, r := range req.Rules {
		rules = append(rules, models.FeatureRule{Menu: r.Menu, Feature: r.Feature, Allowed: r.Allowed})
	}

	s.logger.InfoContext(ctx, "Replacing feature permissions",
		"role", role,
		"rules", len(rules),
		"actor_id", actorID(actor))

	if err := s.repo.Permission().SaveFeatureRules(ctx, nil, role, rules); err != nil {
		return fmt.Errorf("failed to save feature rules: %w", err)
	}

	cache.InvalidateRolePermissions(ctx, s.cache, role.String())

	events.PublishSafe(ctx, s.publisher, s.logger, events.PermissionsUpdated, events.PermissionsUpdatedData{
		Role:     role.String(),
		Rules:    len(rules),
		ActorID:  actorID(actor),
		Replaced: true,
	})

	return nil
}

func actorID(p *models.Principal) string {
	if p == nil {
		return ""
	}
	return p.ID
}

func roleOf(p *models.Principal) string {
	if p == nil {
		return ""
	}
	return p.Role.String()
}
