package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/consultancy-admin/internal/access"
	"github.com/edubridge/consultancy-admin/internal/metrics"
	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
	"github.com/edubridge/consultancy-admin/internal/services"
	"github.com/edubridge/consultancy-admin/internal/utils"
)

type HandlerManager struct {
	accessHandler     *AccessHandler
	roleHandler       *RoleHandler
	commissionHandler *CommissionHandler
	budgetHandler     *BudgetHandler
	functionHandler   *FunctionHandler
	authMiddleware    *AuthMiddleware

	health         func(ctx context.Context) error
	metrics        *metrics.Metrics
	functionAPIKey string
}

// HandlerOptions carries settings for the handler layer
type HandlerOptions struct {
	// FunctionAPIKey guards /functions/*; empty leaves them open
	FunctionAPIKey string
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	identity repositories.IdentityProvider,
	m *metrics.Metrics,
	logger utils.Logger,
	opts HandlerOptions,
) *HandlerManager {
	return &HandlerManager{
		accessHandler:     NewAccessHandler(serviceManager.Authorization(), logger),
		roleHandler:       NewRoleHandler(serviceManager.Authorization(), logger),
		commissionHandler: NewCommissionHandler(serviceManager.Commission(), serviceManager.Scheduler(), logger),
		budgetHandler:     NewBudgetHandler(serviceManager.Budget(), logger),
		functionHandler:   NewFunctionHandler(serviceManager.Commission(), logger),
		authMiddleware:    NewAuthMiddleware(identity, serviceManager.Authorization(), logger),
		health:            serviceManager.HealthCheck,
		metrics:           m,
		functionAPIKey:    opts.FunctionAPIKey,
	}
}

// apiRoute is one admin API endpoint. UIPath names the screen whose (menu, feature) gates
// it; an empty UIPath means any authenticated caller may use it.
type apiRoute struct {
	Method      string
	Path        string
	UIPath      string
	Requirement access.Requirement
	Handler     gin.HandlerFunc
}

func (hm *HandlerManager) apiRoutes() []apiRoute {
	adminOnly := access.RequireRole(models.RoleAdmin)
	finance := access.AllowRoles(models.RoleAdmin, models.RoleFinance)

	return []apiRoute{
		// Access checks for the current caller
		{Method: http.MethodGet, Path: "/access/check", Handler: hm.accessHandler.CheckAccess},
		{Method: http.MethodGet, Path: "/access/menu", Handler: hm.accessHandler.InferMenu},
		{Method: http.MethodGet, Path: "/access/routes", Handler: hm.accessHandler.ListRoutes},

		// Role management - Admin only
		{Method: http.MethodGet, Path: "/roles/:role/permissions", UIPath: "/settings/roles/management", Requirement: adminOnly, Handler: hm.roleHandler.GetPermissions},
		{Method: http.MethodPut, Path: "/roles/:role/permissions", UIPath: "/settings/roles/management", Requirement: adminOnly, Handler: hm.roleHandler.UpdatePermission},
		{Method: http.MethodPut, Path: "/roles/:role/features", UIPath: "/settings/roles/management", Requirement: adminOnly, Handler: hm.roleHandler.SetFeatures},

		// Commissions - Finance and Admins
		{Method: http.MethodGet, Path: "/agents/commissions", UIPath: "/agents/commissions", Requirement: finance, Handler: hm.commissionHandler.ListAgentCommissions},
		{Method: http.MethodGet, Path: "/agents/commissions/export", UIPath: "/agents/commissions", Requirement: finance, Handler: hm.commissionHandler.ExportAgentCommissions},
		{Method: http.MethodPost, Path: "/agents/commissions/batch", UIPath: "/agents/commissions", Requirement: adminOnly, Handler: hm.commissionHandler.RunBatch},
		{Method: http.MethodGet, Path: "/agents/:id/commission", UIPath: "/agents/:id", Requirement: finance, Handler: hm.commissionHandler.GetAgentCommission},

		// Hostel & mess budget
		{Method: http.MethodGet, Path: "/hostels/:id/mess-budget", UIPath: "/hostels/:id", Requirement: access.AllowRoles(models.RoleAdmin, models.RoleHostelTeam, models.RoleFinance), Handler: hm.budgetHandler.GetMessBudget},
		{Method: http.MethodPut, Path: "/hostels/:id/mess-budget", UIPath: "/hostels/:id/edit", Requirement: access.AllowRoles(models.RoleAdmin, models.RoleHostelTeam), Handler: hm.budgetHandler.AllocateMessBudget},
		{Method: http.MethodPost, Path: "/mess/expenses", UIPath: "/mess/expenses/add", Requirement: access.AllowRoles(models.RoleAdmin, models.RoleHostelTeam, models.RoleOfficeUser), Handler: hm.budgetHandler.RecordMessExpense},
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.Authenticate())

	for _, r := range hm.apiRoutes() {
		chain := []gin.HandlerFunc{}
		if r.UIPath != "" {
			chain = append(chain, hm.authMiddleware.RequireAccess(r.UIPath, r.Requirement))
		}
		chain = append(chain, r.Handler)
		v1.Handle(r.Method, r.Path, chain...)
	}

	// Commission function - no session, fixed CORS; preflight never needs the key
	functions := router.Group("/functions")
	functions.Use(FunctionCORS(), FunctionAuth(hm.functionAPIKey))
	{
		functions.GET("/agent-commissions", hm.functionHandler.AgentCommissions)
		functions.POST("/agent-commissions", hm.functionHandler.AgentCommissions)
		functions.OPTIONS("/agent-commissions", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	}

	router.GET("/health", hm.healthCheck)

	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if hm.health != nil {
		if err := hm.health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "consultancy-admin",
				"error":   err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "consultancy-admin",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
