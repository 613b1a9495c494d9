package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepository is an in-memory Repository; WithTransaction runs fn against itself
type fakeRepository struct {
	permission *fakePermissionRepo
	agent      *fakeAgentRepo
	fee        *fakeFeeRepo
	hostel     *fakeHostelRepo
	txErr      error
	txCalls    int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		permission: &fakePermissionRepo{},
		agent:      &fakeAgentRepo{agents: map[string]*models.Agent{}, students: map[string][]string{}},
		fee:        &fakeFeeRepo{},
		hostel:     &fakeHostelRepo{hostels: map[string]*models.Hostel{}},
	}
}

func (r *fakeRepository) Permission() repositories.PermissionRepository { return r.permission }
func (r *fakeRepository) Agent() repositories.AgentRepository           { return r.agent }
func (r *fakeRepository) Fee() repositories.FeeRepository               { return r.fee }
func (r *fakeRepository) Hostel() repositories.HostelRepository         { return r.hostel }
func (r *fakeRepository) Identity() repositories.IdentityProvider       { return nil }
func (r *fakeRepository) Ping(ctx context.Context) error                { return nil }
func (r *fakeRepository) Close() error                                  { return nil }

func (r *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	r.txCalls++
	if r.txErr != nil {
		return r.txErr
	}
	return fn(r)
}

type fakePermissionRepo struct {
	rows       []*models.RolePermission
	definition *models.RoleDefinition
	listErr    error
	listCalls  int
	updates    []models.RolePermission
	saved      map[models.UserRole][]models.FeatureRule
}

func (p *fakePermissionRepo) ListRolePermissions(ctx context.Context, tx *gorm.DB, role models.UserRole) ([]*models.RolePermission, error) {
	p.listCalls++
	if p.listErr != nil {
		return nil, p.listErr
	}
	var out []*models.RolePermission
	for _, row := range p.rows {
		if row.Role == role {
			out = append(out, row)
		}
	}
	return out, nil
}

func (p *fakePermissionRepo) GetRoleDefinition(ctx context.Context, tx *gorm.DB, role models.UserRole) (*models.RoleDefinition, error) {
	if p.definition == nil || p.definition.Name != role {
		return nil, repositories.ErrNotFound
	}
	return p.definition, nil
}

func (p *fakePermissionRepo) UpdateRolePermission(ctx context.Context, tx *gorm.DB, role models.UserRole, menu models.Menu, enabled bool) error {
	p.updates = append(p.updates, models.RolePermission{Role: role, MenuItem: menu, IsEnabled: enabled})
	for _, row := range p.rows {
		if row.Role == role && row.MenuItem == menu {
			row.IsEnabled = enabled
			return nil
		}
	}
	p.rows = append(p.rows, &models.RolePermission{Role: role, MenuItem: menu, IsEnabled: enabled})
	return nil
}

func (p *fakePermissionRepo) SaveFeatureRules(ctx context.Context, tx *gorm.DB, role models.UserRole, rules []models.FeatureRule) error {
	if p.saved == nil {
		p.saved = map[models.UserRole][]models.FeatureRule{}
	}
	p.saved[role] = rules
	p.definition = &models.RoleDefinition{Name: role, Permissions: rules}
	return nil
}

type fakeAgentRepo struct {
	agents      map[string]*models.Agent
	order       []string
	students    map[string][]string
	studentErrs map[string]error
	listErr     error
}

func (a *fakeAgentRepo) add(agent *models.Agent, studentIDs ...string) {
	a.agents[agent.ID] = agent
	a.order = append(a.order, agent.ID)
	a.students[agent.ID] = studentIDs
}

func (a *fakeAgentRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Agent, error) {
	agent, ok := a.agents[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return agent, nil
}

func (a *fakeAgentRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AgentFilters) ([]*models.Agent, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	out := make([]*models.Agent, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.agents[id])
	}
	return out, nil
}

func (a *fakeAgentRepo) GetStudentIDs(ctx context.Context, tx *gorm.DB, agentID string) ([]string, error) {
	if err := a.studentErrs[agentID]; err != nil {
		return nil, err
	}
	return a.students[agentID], nil
}

// fakeFeeRepo is read concurrently by the rollup, so it guards its counters
type fakeFeeRepo struct {
	mu             sync.Mutex
	collections    []*models.FeeCollection
	payments       []*models.FeePayment
	paymentErrs    map[string]error
	collectionHits int
	paymentHits    int
}

func (f *fakeFeeRepo) ListCollectionsByStudents(ctx context.Context, tx *gorm.DB, studentIDs []string) ([]*models.FeeCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collectionHits++

	set := toSet(studentIDs)
	var out []*models.FeeCollection
	for _, c := range f.collections {
		if set[c.StudentID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeFeeRepo) ListPaymentsByStudents(ctx context.Context, tx *gorm.DB, studentIDs []string) ([]*models.FeePayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paymentHits++

	set := toSet(studentIDs)
	for id := range set {
		if err := f.paymentErrs[id]; err != nil {
			return nil, err
		}
	}
	var out []*models.FeePayment
	for _, p := range f.payments {
		if set[p.StudentID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeFeeRepo) hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collectionHits + f.paymentHits
}

type fakeHostelRepo struct {
	hostels  map[string]*models.Hostel
	expenses []*models.MessExpense
}

func (h *fakeHostelRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Hostel, error) {
	hostel, ok := h.hostels[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *hostel
	return &cp, nil
}

func (h *fakeHostelRepo) AllocateMessBudget(ctx context.Context, tx *gorm.DB, id string, amount float64, year int) error {
	hostel, ok := h.hostels[id]
	if !ok {
		return repositories.ErrNotFound
	}
	hostel.MessBudget = amount
	hostel.MessBudgetRemaining = amount
	hostel.MessBudgetYear = year
	return nil
}

func (h *fakeHostelRepo) CreateMessExpense(ctx context.Context, tx *gorm.DB, expense *models.MessExpense) error {
	expense.ID = uint(len(h.expenses) + 1)
	h.expenses = append(h.expenses, expense)
	return nil
}

func (h *fakeHostelRepo) DecrementMessBudget(ctx context.Context, tx *gorm.DB, id string, year int, amount float64) (bool, error) {
	hostel, ok := h.hostels[id]
	if !ok || hostel.MessBudgetYear != year {
		return false, nil
	}
	hostel.MessBudgetRemaining -= amount
	return true, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
