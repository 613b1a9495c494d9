package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/consultancy-admin/internal/services"
	"github.com/edubridge/consultancy-admin/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CommissionHandler struct {
	BaseHandler
	service   services.CommissionService
	scheduler *services.Scheduler
}

func NewCommissionHandler(service services.CommissionService, scheduler *services.Scheduler, logger utils.Logger) *CommissionHandler {
	return &CommissionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		scheduler:   scheduler,
	}
}

// ===== COMMISSION ENDPOINTS =====

// GetAgentCommission returns the live commission snapshot of one agent
// @Summary Get agent commission
// @Tags commissions
// @Produce json
// @Param id path string true "Agent ID"
// @Success 200 {object} models.AgentCommissionSnapshot
// @Failure 404 {object} ErrorResponse "Agent not found"
// @Router /agents/{id}/commission [get]
func (h *CommissionHandler) GetAgentCommission(c *gin.Context) {
	agentID := c.Param("id")
	h.LogRequest(c, "Getting agent commission", "agent_id", agentID)

	snapshot, err := h.service.ComputeAgentCommission(c.Request.Context(), agentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ListAgentCommissions computes every agent; agents that fail report zeros
// @Summary List agent commissions
// @Tags commissions
// @Produce json
// @Success 200 {array} models.AgentCommissionReport
// @Router /agents/commissions [get]
func (h *CommissionHandler) ListAgentCommissions(c *gin.Context) {
	h.LogRequest(c, "Listing agent commissions")

	reports, err := h.service.ComputeAllAgentCommissions(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// ExportAgentCommissions streams the commission report as a spreadsheet
// @Summary Export agent commissions
// @Tags commissions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /agents/commissions/export [get]
func (h *CommissionHandler) ExportAgentCommissions(c *gin.Context) {
	h.LogRequest(c, "Exporting agent commissions")

	f, err := h.service.ExportAgentCommissions(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("agent-commissions-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		h.LogError(c, err, "Failed to write commission export")
	}
}

// RunBatch triggers the commission batch immediately
// @Summary Run the commission batch now
// @Tags commissions
// @Produce json
// @Success 200 {object} services.BatchSummary
// @Router /agents/commissions/batch [post]
func (h *CommissionHandler) RunBatch(c *gin.Context) {
	h.LogRequest(c, "Running commission batch on demand")

	var (
		summary *services.BatchSummary
		err     error
	)
	if h.scheduler != nil {
		summary, err = h.scheduler.RunNow(c.Request.Context())
	} else {
		summary, err = h.service.RunBatch(c.Request.Context())
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	resp := gin.H{"summary": summary}
	if h.scheduler != nil {
		resp["next_run"] = h.scheduler.Next(time.Now())
	}
	c.JSON(http.StatusOK, resp)
}
