package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/consultancy-admin/internal/access"
	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/services"
	"github.com/edubridge/consultancy-admin/internal/utils"
)

type AccessHandler struct {
	BaseHandler
	service services.AuthorizationService
}

func NewAccessHandler(service services.AuthorizationService, logger utils.Logger) *AccessHandler {
	return &AccessHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RouteAccess is one UI route with the caller's decision for it
type RouteAccess struct {
	Path    string         `json:"path"`
	Menu    *models.Menu   `json:"menu"`
	Feature models.Feature `json:"feature"`
	Allowed bool           `json:"allowed"`
}

// CheckAccess resolves the caller against a UI path
// @Summary Check access to a UI path
// @Tags access
// @Produce json
// @Param path query string true "UI path, e.g. /agents/add"
// @Param required_role query string false "Role the route requires"
// @Param allowed_roles query string false "Comma separated roles the route allows"
// @Success 200 {object} models.AccessDecisionResponse
// @Router /access/check [get]
func (h *AccessHandler) CheckAccess(c *gin.Context) {
	path := c.Query("path")
	h.LogRequest(c, "Checking access", "ui_path", path)

	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "path query parameter is required"})
		return
	}

	req, err := parseRequirement(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid role", Details: err.Error()})
		return
	}

	principal, _ := GetUserFromContext(c)
	decision, err := h.service.Check(c.Request.Context(), principal, path, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	var role models.UserRole
	if principal != nil {
		role = principal.Role
	}

	menu, feature := access.InferMenuFeature(path)
	c.JSON(http.StatusOK, models.AccessDecisionResponse{
		Path:    path,
		Role:    role,
		Allowed: decision.Allowed,
		Reason:  string(decision.Reason),
		Menu:    menu,
		Feature: feature,
	})
}

// InferMenu returns the (menu, feature) a UI path is gated under
func (h *AccessHandler) InferMenu(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "path query parameter is required"})
		return
	}

	menu, feature := access.InferMenuFeature(path)
	c.JSON(http.StatusOK, models.MenuInferenceResponse{Path: path, Menu: menu, Feature: feature})
}

// ListRoutes returns every declared UI route with the caller's decision, for navigation
func (h *AccessHandler) ListRoutes(c *gin.Context) {
	h.LogRequest(c, "Listing accessible routes")

	principal, _ := GetUserFromContext(c)
	ctx := c.Request.Context()

	out := make([]RouteAccess, 0, len(access.Routes))
	for _, r := range access.Routes {
		decision, err := h.service.Check(ctx, principal, r.Path, access.Requirement{})
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		out = append(out, RouteAccess{Path: r.Path, Menu: r.Menu, Feature: r.Feature, Allowed: decision.Allowed})
	}

	c.JSON(http.StatusOK, gin.H{"routes": out})
}

func parseRequirement(c *gin.Context) (access.Requirement, error) {
	var req access.Requirement

	if raw := c.Query("required_role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			return req, err
		}
		req.RequiredRole = &role
	}

	if raw := c.Query("allowed_roles"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			role, err := models.ParseRole(part)
			if err != nil {
				return req, err
			}
			req.AllowedRoles = append(req.AllowedRoles, role)
		}
	}

	return req, nil
}
