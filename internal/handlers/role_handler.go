package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/services"
	"github.com/edubridge/consultancy-admin/internal/utils"
)

type RoleHandler struct {
	BaseHandler
	service services.AuthorizationService
}

func NewRoleHandler(service services.AuthorizationService, logger utils.Logger) *RoleHandler {
	return &RoleHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetPermissions returns the merged permission list of a role
// @Summary Get role permissions
// @Tags roles
// @Produce json
// @Param role path string true "Role name"
// @Success 200 {object} models.RolePermissionsResponse
// @Router /roles/{role}/permissions [get]
func (h *RoleHandler) GetPermissions(c *gin.Context) {
	raw := c.Param("role")
	h.LogRequest(c, "Getting role permissions", "role", raw)

	role, err := models.ParseRole(raw)
	if err != nil {
		h.handleServiceError(c, fmt.Errorf("%s: %w", err.Error(), services.ErrInvalidRole))
		return
	}

	entries, err := h.service.Permissions(c.Request.Context(), role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RolePermissionsResponse{Role: role, Permissions: entries})
}

// UpdatePermission toggles one menu for a role
// @Summary Toggle a menu for a role
// @Tags roles
// @Accept json
// @Produce json
// @Param role path string true "Role name"
// @Param request body services.UpdateRolePermissionRequest true "Menu toggle"
// @Success 200 {object} models.SuccessResponse
// @Router /roles/{role}/permissions [put]
func (h *RoleHandler) UpdatePermission(c *gin.Context) {
	role := c.Param("role")
	h.LogRequest(c, "Updating role permission", "role", role)

	var req services.UpdateRolePermissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor, _ := GetUserFromContext(c)
	if err := h.service.UpdateRolePermission(c.Request.Context(), actor, role, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message:   "Role permission updated",
		Data:      req,
		Timestamp: time.Now().UTC(),
	})
}

// SetFeatures replaces the fine-grained rule list of a role
// @Summary Replace feature rules for a role
// @Tags roles
// @Accept json
// @Produce json
// @Param role path string true "Role name"
// @Param request body services.SetFeatureRulesRequest true "Rule list"
// @Success 200 {object} models.SuccessResponse
// @Router /roles/{role}/features [put]
func (h *RoleHandler) SetFeatures(c *gin.Context) {
	role := c.Param("role")
	h.LogRequest(c, "Replacing role feature rules", "role", role)

	var req services.SetFeatureRulesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor, _ := GetUserFromContext(c)
	if err := h.service.SetFeaturePermissions(c.Request.Context(), actor, role, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message:   "Feature rules replaced",
		Data:      gin.H{"rules": len(req.Rules)},
		Timestamp: time.Now().UTC(),
	})
}
