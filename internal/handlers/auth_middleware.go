package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/consultancy-admin/internal/access"
	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
	"github.com/edubridge/consultancy-admin/internal/services"
	"github.com/edubridge/consultancy-admin/internal/utils"
)

// AuthMiddleware authenticates Bearer tokens against the identity provider and gates
// routes through the authorization service
type AuthMiddleware struct {
	BaseHandler
	identity      repositories.IdentityProvider
	authorization services.AuthorizationService
}

func NewAuthMiddleware(identity repositories.IdentityProvider, authorization services.AuthorizationService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		BaseHandler:   NewBaseHandler(logger),
		identity:      identity,
		authorization: authorization,
	}
}

// Authenticate requires a valid session and stores the principal on the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondLoginRequired(c, "authorization header missing or malformed")
			return
		}

		principal, err := m.identity.ValidateSession(c.Request.Context(), token)
		if err != nil {
			m.LogError(c, err, "Session validation failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Identity provider unavailable",
				Code:    c.GetString("request_id"),
			})
			return
		}
		if principal == nil {
			respondLoginRequired(c, "invalid or expired session")
			return
		}

		setPrincipal(c, principal)
		c.Next()
	}
}

// RequireAccess runs the resolver for uiPath with the route's role requirement
func (m *AuthMiddleware) RequireAccess(uiPath string, req access.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := GetUserFromContext(c)

		decision, err := m.authorization.Check(c.Request.Context(), principal, uiPath, req)
		if err != nil {
			m.handleServiceError(c, err)
			c.Abort()
			return
		}

		if !decision.Allowed {
			denied := services.NewAccessDeniedError(uiPath, decision)
			if errors.Is(denied, services.ErrUnauthorized) {
				respondLoginRequired(c, "authentication required")
				return
			}
			respondAccessDenied(c, string(decision.Reason))
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func setPrincipal(c *gin.Context, principal *models.Principal) {
	c.Set("user", principal)
	c.Set("user_id", principal.ID)
}

// GetUserFromContext extracts the principal from the gin context
func GetUserFromContext(c *gin.Context) (*models.Principal, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, errors.New("user not found in context")
	}

	principal, ok := user.(*models.Principal)
	if !ok {
		return nil, errors.New("invalid user type in context")
	}

	return principal, nil
}
