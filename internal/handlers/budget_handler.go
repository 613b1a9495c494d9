package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/services"
	"github.com/edubridge/consultancy-admin/internal/utils"
)

type BudgetHandler struct {
	BaseHandler
	service services.BudgetService
}

func NewBudgetHandler(service services.BudgetService, logger utils.Logger) *BudgetHandler {
	return &BudgetHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetMessBudget returns the budget figures of a hostel
// @Summary Get mess budget summary
// @Tags hostels
// @Produce json
// @Param id path string true "Hostel ID"
// @Success 200 {object} models.MessBudgetSummary
// @Router /hostels/{id}/mess-budget [get]
func (h *BudgetHandler) GetMessBudget(c *gin.Context) {
	hostelID := c.Param("id")
	h.LogRequest(c, "Getting mess budget", "hostel_id", hostelID)

	summary, err := h.service.Summary(c.Request.Context(), hostelID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AllocateMessBudget overwrites the hostel's budget and resets the remaining balance
// @Summary Allocate mess budget
// @Tags hostels
// @Accept json
// @Produce json
// @Param id path string true "Hostel ID"
// @Param request body services.AllocateBudgetRequest true "Allocation"
// @Success 200 {object} models.MessBudgetSummary
// @Router /hostels/{id}/mess-budget [put]
func (h *BudgetHandler) AllocateMessBudget(c *gin.Context) {
	hostelID := c.Param("id")
	h.LogRequest(c, "Allocating mess budget", "hostel_id", hostelID)

	var req services.AllocateBudgetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor, _ := GetUserFromContext(c)
	ctx := c.Request.Context()
	if err := h.service.Allocate(ctx, actor, hostelID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	summary, err := h.service.Summary(ctx, hostelID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RecordMessExpense stores an expense and lowers the remaining balance
// @Summary Record mess expense
// @Tags mess
// @Accept json
// @Produce json
// @Param request body services.RecordMessExpenseRequest true "Expense"
// @Success 201 {object} models.SuccessResponse
// @Router /mess/expenses [post]
func (h *BudgetHandler) RecordMessExpense(c *gin.Context) {
	h.LogRequest(c, "Recording mess expense")

	var req services.RecordMessExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor, _ := GetUserFromContext(c)
	ctx := c.Request.Context()
	expense, err := h.service.RecordExpense(ctx, actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	summary, err := h.service.Summary(ctx, req.HostelID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SuccessResponse{
		Message:   "Mess expense recorded",
		Data:      gin.H{"expense": expense, "budget": summary},
		Timestamp: time.Now().UTC(),
	})
}
