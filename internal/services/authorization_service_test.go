package services

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/edubridge/consultancy-admin/internal/access"
	"github.com/edubridge/consultancy-admin/internal/cache"
	"github.com/edubridge/consultancy-admin/internal/events"
	"github.com/edubridge/consultancy-admin/internal/metrics"
	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/validator"
)

type authFixture struct {
	repo      *fakeRepository
	svc       AuthorizationService
	publisher *events.MockEventPublisher
	metrics   *metrics.Metrics
}

func newAuthFixture(t *testing.T, withRedis bool) authFixture {
	t.Helper()

	var client *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
	}

	repo := newFakeRepository()
	logger := newTestLogger()
	publisher := events.NewMockEventPublisher(logger)
	m := metrics.New(prometheus.NewRegistry())

	return authFixture{
		repo:      repo,
		svc:       NewAuthorizationService(repo, cache.NewCacheManager(client), 0, publisher, m, logger, validator.New()),
		publisher: publisher,
		metrics:   m,
	}
}

func featurePtr(f models.Feature) *models.Feature {
	return &f
}

func boolPtr(b bool) *bool {
	return &b
}

func TestMergePermissions(t *testing.T) {
	rows := []*models.RolePermission{
		{Role: models.RoleAgent, MenuItem: models.MenuStudents, IsEnabled: true},
		{Role: models.RoleAgent, MenuItem: models.MenuAgents, IsEnabled: true},
	}
	rules := []models.FeatureRule{
		{Menu: models.MenuAgents, Allowed: false},
		{Menu: models.MenuAgents, Feature: featurePtr(models.FeatureView), Allowed: true},
	}

	got := mergePermissions(models.RoleAgent, rows, rules)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(got), got)
	}

	for _, e := range got {
		switch {
		case e.Menu == models.MenuStudents:
			if !e.Allowed {
				t.Error("students toggle should survive the merge")
			}
		case e.Menu == models.MenuAgents && e.Feature == nil:
			if e.Allowed {
				t.Error("JSON rule should override the agents toggle")
			}
		case e.Menu == models.MenuAgents:
			if !e.Allowed || *e.Feature != models.FeatureView {
				t.Errorf("unexpected feature entry %+v", e)
			}
		}
		if e.Role != models.RoleAgent {
			t.Errorf("entry role = %q", e.Role)
		}
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		principal   *models.Principal
		path        string
		req         access.Requirement
		wantAllowed bool
		wantReason  access.DenyReason
		wantLoads   int
	}{
		{
			name:        "admin never loads permissions",
			principal:   &models.Principal{ID: "a", Role: models.RoleAdmin, IsActive: true},
			path:        "/agents",
			req:         access.RequireRole(models.RoleFinance),
			wantAllowed: true,
			wantLoads:   0,
		},
		{
			name:       "missing principal",
			path:       "/agents",
			wantReason: access.ReasonUnauthenticated,
		},
		{
			name:       "inactive principal",
			principal:  &models.Principal{ID: "x", Role: models.RoleAgent},
			path:       "/students",
			wantReason: access.ReasonUnauthenticated,
		},
		{
			name:        "configured menu allowed",
			principal:   &models.Principal{ID: "x", Role: models.RoleAgent, IsActive: true},
			path:        "/students",
			wantAllowed: true,
			wantLoads:   1,
		},
		{
			name:       "unlisted menu fails closed",
			principal:  &models.Principal{ID: "x", Role: models.RoleAgent, IsActive: true},
			path:       "/agents",
			wantReason: access.ReasonPermissionDenied,
			wantLoads:  1,
		},
		{
			name:        "office variant inherits office_user",
			principal:   &models.Principal{ID: "x", Role: "office_bangalore", IsActive: true},
			path:        "/unknown-xyz",
			req:         access.AllowRoles(models.RoleOfficeUser),
			wantAllowed: true,
			wantLoads:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newAuthFixture(t, false)
			fx.repo.permission.rows = []*models.RolePermission{
				{Role: models.RoleAgent, MenuItem: models.MenuStudents, IsEnabled: true},
			}

			decision, err := fx.svc.Check(context.Background(), tt.principal, tt.path, tt.req)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if decision.Allowed != tt.wantAllowed || decision.Reason != tt.wantReason {
				t.Errorf("decision = %+v, want allowed=%v reason=%q", decision, tt.wantAllowed, tt.wantReason)
			}
			if fx.repo.permission.listCalls != tt.wantLoads {
				t.Errorf("permission loads = %d, want %d", fx.repo.permission.listCalls, tt.wantLoads)
			}

			outcome := metrics.DecisionDenied
			reason := string(tt.wantReason)
			if tt.wantAllowed {
				outcome, reason = metrics.DecisionAllowed, "none"
			}
			if got := testutil.ToFloat64(fx.metrics.AccessDecisions.WithLabelValues(outcome, reason)); got != 1 {
				t.Errorf("decision counter %s/%s = %v, want 1", outcome, reason, got)
			}
		})
	}
}

func TestCheck_StoreErrorPropagates(t *testing.T) {
	fx := newAuthFixture(t, false)
	ioErr := errors.New("connection refused")
	fx.repo.permission.listErr = ioErr

	_, err := fx.svc.Check(context.Background(), &models.Principal{ID: "x", Role: models.RoleAgent, IsActive: true}, "/students", access.Requirement{})
	if !errors.Is(err, ioErr) {
		t.Fatalf("error = %v, want wrapped %v", err, ioErr)
	}
}

func TestPermissions_CachedAndInvalidated(t *testing.T) {
	fx := newAuthFixture(t, true)
	ctx := context.Background()
	admin := &models.Principal{ID: "admin-1", Role: models.RoleAdmin, IsActive: true}
	fx.repo.permission.rows = []*models.RolePermission{
		{Role: models.RoleFinance, MenuItem: models.MenuInvoice, IsEnabled: true},
	}

	for i := 0; i < 3; i++ {
		if _, err := fx.svc.Permissions(ctx, models.RoleFinance); err != nil {
			t.Fatal(err)
		}
	}
	if fx.repo.permission.listCalls != 1 {
		t.Fatalf("store loads = %d, want 1 with a warm cache", fx.repo.permission.listCalls)
	}

	req := &UpdateRolePermissionRequest{Menu: models.MenuInvoice, IsEnabled: boolPtr(false)}
	if err := fx.svc.UpdateRolePermission(ctx, admin, "finance", req); err != nil {
		t.Fatalf("UpdateRolePermission() error = %v", err)
	}

	entries, err := fx.svc.Permissions(ctx, models.RoleFinance)
	if err != nil {
		t.Fatal(err)
	}
	if fx.repo.permission.listCalls != 2 {
		t.Errorf("store loads = %d, want 2 after invalidation", fx.repo.permission.listCalls)
	}
	if len(entries) != 1 || entries[0].Allowed {
		t.Errorf("entries after update = %+v", entries)
	}
}

func TestUpdateRolePermission(t *testing.T) {
	admin := &models.Principal{ID: "admin-1", Role: models.RoleAdmin, IsActive: true}

	tests := []struct {
		name    string
		role    string
		req     *UpdateRolePermissionRequest
		wantErr error
	}{
		{name: "valid", role: "agent", req: &UpdateRolePermissionRequest{Menu: models.MenuLeads, IsEnabled: boolPtr(true)}},
		{name: "office variant", role: "office_delhi", req: &UpdateRolePermissionRequest{Menu: models.MenuLeads, IsEnabled: boolPtr(true)}},
		{name: "unknown role", role: "wizard", req: &UpdateRolePermissionRequest{Menu: models.MenuLeads, IsEnabled: boolPtr(true)}, wantErr: ErrInvalidRole},
		{name: "unknown menu", role: "agent", req: &UpdateRolePermissionRequest{Menu: "Casino", IsEnabled: boolPtr(true)}, wantErr: ErrValidationFailed},
		{name: "missing flag", role: "agent", req: &UpdateRolePermissionRequest{Menu: models.MenuLeads}, wantErr: ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newAuthFixture(t, false)

			err := fx.svc.UpdateRolePermission(context.Background(), admin, tt.role, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if len(fx.repo.permission.updates) != 0 {
					t.Error("rejected update reached the store")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(fx.repo.permission.updates) != 1 {
				t.Fatalf("store updates = %d, want 1", len(fx.repo.permission.updates))
			}

			published := fx.publisher.EventsOfType(events.PermissionsUpdated)
			if len(published) != 1 {
				t.Fatalf("published %d events, want 1", len(published))
			}
			data := published[0].Data.(events.PermissionsUpdatedData)
			if data.Role != tt.role || data.ActorID != admin.ID || data.Replaced {
				t.Errorf("event data = %+v", data)
			}
		})
	}
}

func TestSetFeaturePermissions(t *testing.T) {
	fx := newAuthFixture(t, false)
	ctx := context.Background()
	admin := &models.Principal{ID: "admin-1", Role: models.RoleAdmin, IsActive: true}

	dup := &SetFeatureRulesRequest{Rules: []FeatureRuleRequest{
		{Menu: models.MenuAgents, Feature: featurePtr(models.FeatureView), Allowed: true},
		{Menu: models.MenuAgents, Feature: featurePtr(models.FeatureView), Allowed: false},
	}}
	if err := fx.svc.SetFeaturePermissions(ctx, admin, "agent", dup); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("duplicate rules error = %v", err)
	}

	req := &SetFeatureRulesRequest{Rules: []FeatureRuleRequest{
		{Menu: models.MenuAgents, Allowed: true},
		{Menu: models.MenuAgents, Feature: featurePtr(models.FeatureCreate), Allowed: false},
	}}
	if err := fx.svc.SetFeaturePermissions(ctx, admin, "agent", req); err != nil {
		t.Fatalf("SetFeaturePermissions() error = %v", err)
	}
	if got := fx.repo.permission.saved[models.RoleAgent]; len(got) != 2 {
		t.Fatalf("saved rules = %+v", got)
	}

	principal := &models.Principal{ID: "x", Role: models.RoleAgent, IsActive: true}
	view, err := fx.svc.Check(ctx, principal, "/agents", access.Requirement{})
	if err != nil || !view.Allowed {
		t.Errorf("view decision = %+v, err %v", view, err)
	}
	create, err := fx.svc.Check(ctx, principal, "/agents/add", access.Requirement{})
	if err != nil || create.Allowed {
		t.Errorf("create decision = %+v, err %v", create, err)
	}

	published := fx.publisher.EventsOfType(events.PermissionsUpdated)
	if len(published) != 1 || !published[0].Data.(events.PermissionsUpdatedData).Replaced {
		t.Errorf("published = %+v", published)
	}
}
