package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/internal/service"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/logger"
	"github.com/noah-isme/findnest-api/pkg/middleware/requestid"
	"github.com/noah-isme/findnest-api/pkg/response"
	"github.com/noah-isme/findnest-api/pkg/upstream"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextPrincipalKey is the gin context key storing the caller identity.
	ContextPrincipalKey = "principal"
)

type tokenValidator interface {
	ValidateToken(tokenString string) (*models.JWTClaims, error)
}

var _ tokenValidator = (*service.AuthService)(nil)

// JWT protects routes by requiring a valid access token. The bearer header and request ID
// are carried on the request context so backend calls are made on behalf of the caller.
func JWT(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		attach(c, claims, header)
		c.Next()
	}
}

// OptionalJWT attaches claims when present but does not block.
func OptionalJWT(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.Next()
			return
		}

		attach(c, claims, header)
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(ContextPrincipalKey)
	if !exists {
		return models.Principal{}, false
	}
	p, ok := value.(models.Principal)
	return p, ok
}

func attach(c *gin.Context, claims *models.JWTClaims, header string) {
	principal := claims.Principal()
	c.Set(ContextUserKey, claims)
	c.Set(ContextPrincipalKey, principal)
	c.Set(logger.PrincipalKey, principal.ID)

	ctx := upstream.WithAuthorization(c.Request.Context(), header)
	if reqID := requestid.Value(c); reqID != "" {
		ctx = upstream.WithRequestID(ctx, reqID)
	}
	c.Request = c.Request.WithContext(ctx)
}
