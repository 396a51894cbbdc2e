// Package service implements registration, password and OTP login, token
// refresh and the OAuth2 sign-in flow.
package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/core/auth/structs"
	userrepo "github.com/taskhive/taskhive/core/user/data/repository"
	userstructs "github.com/taskhive/taskhive/core/user/structs"
	wsstructs "github.com/taskhive/taskhive/core/workspace/structs"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/ecode"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/security/jwt"
	"github.com/taskhive/taskhive/security/oauth"
	"github.com/taskhive/taskhive/utils"
)

var (
	ErrInvalidCredentials = ecode.New(ecode.ErrUnauthorized, "invalid email or password")
	ErrInvalidToken       = ecode.New(ecode.ErrUnauthorized, "invalid or expired token")
	ErrInvalidOTP         = ecode.New(ecode.ErrValidation, "invalid or expired OTP")
)

const DefaultOTPExpiry = 5 * time.Minute

type UserStore interface {
	Create(ctx context.Context, user *userstructs.User) error
	FindByID(ctx context.Context, id string) (*userstructs.User, error)
	FindByEmail(ctx context.Context, email string) (*userstructs.User, error)
	Update(ctx context.Context, user *userstructs.User) error
}

// Workspaces sets up the memberships of a new account.
type Workspaces interface {
	CreateDefault(ctx context.Context, ownerID string) (*wsstructs.Workspace, error)
	AcceptPendingInvitations(ctx context.Context, userID, email string) (int, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type OTPMailer interface {
	SendOTP(ctx context.Context, to, otp string, ttl time.Duration) error
}

// OAuthClient runs the authorization code exchange.
type OAuthClient interface {
	AuthURL(provider oauth.Provider, state string) (string, error)
	Authenticate(ctx context.Context, provider oauth.Provider, code string) (*oauth.Profile, error)
}

type Service struct {
	users      UserStore
	workspaces Workspaces
	tx         Transactor
	mailer     OTPMailer
	tokens     *jwt.TokenManager
	oauth      OAuthClient
	states     *oauth.StateManager
	oauthCfg   *config.OAuth
	otpExpiry  time.Duration
	now        func() time.Time
	logger     *logger.Logger
}

func NewService(users UserStore, workspaces Workspaces, tx Transactor, tokens *jwt.TokenManager, l *logger.Logger) *Service {
	return &Service{
		users:      users,
		workspaces: workspaces,
		tx:         tx,
		tokens:     tokens,
		otpExpiry:  DefaultOTPExpiry,
		now:        time.Now,
		logger:     l,
	}
}

// SetOTP configures OTP delivery.
func (s *Service) SetOTP(mailer OTPMailer, expiry time.Duration) {
	s.mailer = mailer
	if expiry > 0 {
		s.otpExpiry = expiry
	}
}

// SetOAuth enables the OAuth2 sign-in flow.
func (s *Service) SetOAuth(client OAuthClient, states *oauth.StateManager, cfg *config.OAuth) {
	s.oauth = client
	s.states = states
	s.oauthCfg = cfg
}

func (s *Service) Tokens() *jwt.TokenManager {
	return s.tokens
}

// createAccount stores the user together with their default workspace and
// completes pending invitations, all in one transaction.
func (s *Service) createAccount(ctx context.Context, u *userstructs.User) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		if _, err := s.workspaces.CreateDefault(ctx, u.ID); err != nil {
			return err
		}
		n, err := s.workspaces.AcceptPendingInvitations(ctx, u.ID, u.Email)
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Info(ctx, "Pending invitations accepted", "user_id", u.ID, "count", n)
		}
		return nil
	})
}

// Register creates a local account.
func (s *Service) Register(ctx context.Context, req *structs.RegisterRequest) (*userstructs.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.logger.Error(ctx, "Failed to hash password", "error", err)
		return nil, err
	}
	now := data.Now()
	u := &userstructs.User{
		ID:           uuid.NewString(),
		Email:        userrepo.NormalizeEmail(req.Email),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		Provider:     userstructs.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.createAccount(ctx, u); err != nil {
		if !errors.Is(err, ecode.ErrConflict) {
			s.logger.Error(ctx, "Failed to register user", "error", err, "email", u.Email)
		}
		return nil, err
	}
	s.logger.Info(ctx, "User registered", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// Login checks the password and issues a token pair.
func (s *Service) Login(ctx context.Context, req *structs.LoginRequest) (*jwt.TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ecode.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.ComparePassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	pair, err := s.tokens.GeneratePair(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "User logged in", "user_id", u.ID)
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debug(ctx, "Refresh token rejected", "error", err)
		return nil, ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ecode.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.tokens.GeneratePair(u.ID, u.Email)
}

// SendOTP stores a fresh code on the user and mails it. A mail failure
// surfaces as ErrUnavailable.
func (s *Service) SendOTP(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	otp, err := utils.GenerateOTP(6)
	if err != nil {
		return err
	}
	expiry := data.Timestamp(s.now().Add(s.otpExpiry))
	u.OTP = otp
	u.OTPExpiry = &expiry
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	if s.mailer == nil {
		return ecode.New(ecode.ErrUnavailable, "email delivery is not configured")
	}
	return s.mailer.SendOTP(ctx, u.Email, otp, s.otpExpiry)
}

// VerifyOTP marks the user verified when otp matches and has not expired.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (*userstructs.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.OTP == "" || u.OTPExpiry == nil || u.OTP != otp || !s.now().Before(*u.OTPExpiry) {
		return nil, ErrInvalidOTP
	}
	u.IsVerified = true
	u.OTP = ""
	u.OTPExpiry = nil
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "User verified", "user_id", u.ID)
	return u, nil
}

func (s *Service) provider(name string) (oauth.Provider, error) {
	if s.oauth == nil || s.states == nil {
		return "", ecode.New(ecode.ErrNotFound, "OAuth sign-in is not enabled")
	}
	p, err := oauth.ParseProvider(name)
	if err != nil {
		return "", ecode.New(ecode.ErrNotFound, err.Error())
	}
	return p, nil
}

// OAuthURL returns the consent URL of the provider with a signed state.
func (s *Service) OAuthURL(name string) (string, error) {
	p, err := s.provider(name)
	if err != nil {
		return "", err
	}
	state, err := s.states.GenerateState(p)
	if err != nil {
		return "", err
	}
	u, err := s.oauth.AuthURL(p, state)
	if errors.Is(err, oauth.ErrProviderNotEnabled) {
		return "", ecode.New(ecode.ErrNotFound, err.Error())
	}
	return u, err
}

// OAuthLogin verifies the state, exchanges the code and returns an access
// token, creating the account on first sign-in.
func (s *Service) OAuthLogin(ctx context.Context, name, state, code string) (string, error) {
	p, err := s.provider(name)
	if err != nil {
		return "", err
	}
	if _, err := s.states.ParseState(state, p); err != nil {
		return "", ecode.New(ecode.ErrValidation, err.Error())
	}
	if code == "" {
		return "", ecode.New(ecode.ErrValidation, ecode.FieldIsRequired("code"))
	}
	profile, err := s.oauth.Authenticate(ctx, p, code)
	if err != nil {
		return "", ecode.New(ecode.ErrUnauthorized, err.Error())
	}
	if profile.Email == "" {
		return "", ecode.New(ecode.ErrUnauthorized, oauth.ErrMissingEmail.Error())
	}

	u, err := s.users.FindByEmail(ctx, profile.Email)
	switch {
	case errors.Is(err, ecode.ErrNotFound):
		now := data.Now()
		u = &userstructs.User{
			ID:         uuid.NewString(),
			Email:      userrepo.NormalizeEmail(profile.Email),
			Username:   oauthUsername(profile),
			Provider:   string(p),
			IsVerified: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.createAccount(ctx, u); err != nil {
			return "", err
		}
		s.logger.Info(ctx, "User registered through OAuth", "user_id", u.ID, "provider", p)
	case err != nil:
		return "", err
	}
	return s.tokens.GenerateAccessToken(u.ID, u.Email)
}

func oauthUsername(p *oauth.Profile) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}

// SuccessRedirect is the success URL with the token appended.
func (s *Service) SuccessRedirect(token string) string {
	return withQuery(s.oauthCfg.SuccessURL, "token", token)
}

func (s *Service) FailureRedirect(reason string) string {
	return withQuery(s.oauthCfg.FailureURL, "reason", reason)
}

func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
