package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/services"
	"github.com/edubridge/consultancy-admin/internal/utils"
)

// FunctionHandler serves the agent commission function called by the web client
// outside the admin API. It takes no input and is not behind the session check.
type FunctionHandler struct {
	BaseHandler
	commission services.CommissionService
}

func NewFunctionHandler(commission services.CommissionService, logger utils.Logger) *FunctionHandler {
	return &FunctionHandler{
		BaseHandler: NewBaseHandler(logger),
		commission:  commission,
	}
}

// FunctionCORS sets the function's fixed CORS headers and answers preflight with 204
func FunctionCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// FunctionAuth requires the shared key in the apikey header or as a bearer token.
// An empty key leaves the function open.
func FunctionAuth(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}

		presented := c.GetHeader("apikey")
		if presented == "" {
			presented, _ = bearerToken(c.GetHeader("Authorization"))
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.FunctionErrorResponse{
				Error:   "Unauthorized",
				Details: "missing or invalid api key",
			})
			return
		}
		c.Next()
	}
}

func (h *FunctionHandler) AgentCommissions(c *gin.Context) {
	h.LogRequest(c, "Agent commissions function invoked")

	reports, err := h.commission.ComputeAllAgentCommissions(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Agent commissions function failed")
		c.JSON(http.StatusInternalServerError, models.FunctionErrorResponse{
			Error:   "Failed to compute agent commissions",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, reports)
}
