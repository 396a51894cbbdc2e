// Package middleware authenticates requests with TaskHive access tokens.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/net/cookie"
	"github.com/taskhive/taskhive/net/resp"
	"github.com/taskhive/taskhive/security/jwt"
)

type Middleware struct {
	tokenManager *jwt.TokenManager
	logger       *logger.Logger
}

func NewMiddleware(tokenManager *jwt.TokenManager, log *logger.Logger) *Middleware {
	return &Middleware{
		tokenManager: tokenManager,
		logger:       log,
	}
}

// bearer returns the token of an "Authorization: Bearer" header, falling
// back to the access token cookie.
func bearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		t := cookie.AccessToken(c.Request)
		return t, t != ""
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// AuthMiddleware validates the access token and binds the user id and email
// to the gin and request contexts.
func (m *Middleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c)
		if !ok {
			resp.Fail(c.Writer, resp.UnAuthorized("missing or malformed authorization header"))
			c.Abort()
			return
		}

		claims, err := m.tokenManager.ParseAccessToken(token)
		if err != nil {
			m.logger.Debug(c.Request.Context(), "Token validation failed", "error", err)
			resp.Fail(c.Writer, resp.UnAuthorized("invalid or expired token"))
			c.Abort()
			return
		}

		ctx := ctxutil.SetUserID(c.Request.Context(), claims.Subject)
		ctx = ctxutil.SetEmail(ctx, claims.Email)
		ctxutil.BindGin(c, ctx)

		m.logger.Debug(ctx, "User authenticated", "user_id", claims.Subject)
		c.Next()
	}
}
