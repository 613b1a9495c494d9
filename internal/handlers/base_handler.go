package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/services"
	"github.com/edubridge/consultancy-admin/internal/utils"
	"github.com/edubridge/consultancy-admin/internal/validator"
)

type ErrorResponse = models.ErrorResponse

// BaseHandler carries the logger every handler shares
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.FromContext(c.Request.Context(), h.logger)
}

// LogRequest logs an incoming handler call with the caller id
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.FullPath(), "user_id", c.GetString("user_id"))
	h.requestLogger(c).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "path", c.FullPath(), "user_id", c.GetString("user_id"))
	h.requestLogger(c).Error(msg, args...)
}

func (h *BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message:   "Invalid request body",
			Details:   err.Error(),
			Timestamp: time.Now().UTC(),
			Path:      c.Request.URL.Path,
		})
		return false
	}
	return true
}

// ===== ERROR HANDLING =====

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	now := time.Now().UTC()
	path := c.Request.URL.Path

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message:          "Validation failed",
			Timestamp:        now,
			Path:             path,
			ValidationErrors: toValidationResponses(validationErr.Errors),
		})
		return
	}

	var deniedErr *services.AccessDeniedError
	if errors.As(err, &deniedErr) {
		if errors.Is(err, services.ErrUnauthorized) {
			respondLoginRequired(c, "authentication required")
			return
		}
		respondAccessDenied(c, string(deniedErr.Reason))
		return
	}

	switch {
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message:   "Validation failed",
			Details:   err.Error(),
			Timestamp: now,
			Path:      path,
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message:   err.Error(),
			Timestamp: now,
			Path:      path,
		})
	case errors.Is(err, services.ErrUnauthorized):
		respondLoginRequired(c, "authentication required")
	case errors.Is(err, services.ErrForbidden):
		respondAccessDenied(c, "")
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message:   "Internal server error",
			Code:      c.GetString("request_id"),
			Timestamp: now,
			Path:      path,
		})
	}
}

func toValidationResponses(errs validator.ValidationErrors) []models.ValidationErrorResponse {
	out := make([]models.ValidationErrorResponse, 0, len(errs))
	for _, e := range errs {
		out = append(out, models.ValidationErrorResponse{
			Field:   e.Field,
			Message: e.Message,
			Value:   e.Value,
			Rule:    e.Rule,
		})
	}
	return out
}

func respondLoginRequired(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.LoginRequiredResponse{
		Error:   "unauthorized",
		Message: message,
		Login:   true,
	})
}

// respondAccessDenied always offers the way home; the client renders a blocking modal
func respondAccessDenied(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusForbidden, models.AccessDeniedResponse{
		Error:    "forbidden",
		Message:  "Access Denied",
		Reason:   reason,
		Redirect: "/",
	})
}
