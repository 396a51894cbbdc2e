// Package auth provides registration, login, OTP verification, OAuth2
// sign-in and the JWT middleware guarding the API.
package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/core/auth/middleware"
	"github.com/taskhive/taskhive/core/auth/service"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/security/jwt"
	"github.com/taskhive/taskhive/security/oauth"
)

// OAuthClient exchanges authorization codes for provider profiles.
type OAuthClient = service.OAuthClient

type Module struct {
	service    *service.Service
	middleware *middleware.Middleware
	logger     *logger.Logger
}

// New creates the auth module. OAuth routes answer 404 until SetOAuth is
// given a client.
func New(cfg *config.Auth, users service.UserStore, workspaces service.Workspaces, tx service.Transactor, l *logger.Logger) *Module {
	if cfg == nil {
		cfg = config.Default().Auth
	}
	tokens := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	svc := service.NewService(users, workspaces, tx, tokens, l)
	return &Module{
		service:    svc,
		middleware: middleware.NewMiddleware(tokens, l),
		logger:     l,
	}
}

func (m *Module) SetOTP(mailer service.OTPMailer, cfg *config.Auth) {
	expiry := service.DefaultOTPExpiry
	if cfg != nil && cfg.OTPExpiry > 0 {
		expiry = cfg.OTPExpiry
	}
	m.service.SetOTP(mailer, expiry)
}

func (m *Module) SetOAuth(client service.OAuthClient, cfg *config.OAuth) {
	m.service.SetOAuth(client, oauth.NewStateManager(cfg.StateSecret, cfg.StateExpiry), cfg)
}

func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes registers the public authentication routes.
func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", m.service.HandleRegister)
		auth.POST("/login", m.service.HandleLogin)
		auth.POST("/refresh", m.service.HandleRefresh)
		auth.POST("/logout", m.service.HandleLogout)
		auth.POST("/send-otp", m.service.HandleSendOTP)
		auth.POST("/verify-otp", m.service.HandleVerifyOTP)
		auth.GET("/oauth2/:provider", m.service.HandleOAuthRedirect)
		auth.GET("/oauth2/:provider/callback", m.service.HandleOAuthCallback)
	}
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) Middleware() *middleware.Middleware {
	return m.middleware
}
