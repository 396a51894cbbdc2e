package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenError represents JWT token related errors
type TokenError string

func (e TokenError) Error() string {
	return string(e)
}

const (
	DefaultAccessTokenExpire  = time.Hour
	DefaultRefreshTokenExpire = time.Hour * 24 * 7

	ErrNeedTokenSecret = TokenError("cannot sign token without secret")
	ErrInvalidToken    = TokenError("invalid token")
	ErrWrongTokenType  = TokenError("wrong token type")
)

// Token types carried in the "typ" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims are the claims of TaskHive tokens. Subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"typ"`
	jwtstd.RegisteredClaims
}

// TokenPair is the token set issued on login and refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// TokenManager handles JWT token operations
type TokenManager struct {
	key           []byte
	issuer        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

// NewTokenManager creates a new TokenManager instance. Zero expiries fall
// back to the defaults.
func NewTokenManager(secret, issuer string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	if accessExpiry <= 0 {
		accessExpiry = DefaultAccessTokenExpire
	}
	if refreshExpiry <= 0 {
		refreshExpiry = DefaultRefreshTokenExpire
	}
	return &TokenManager{
		key:           []byte(secret),
		issuer:        issuer,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}
}

// AccessExpiry returns the lifetime of access tokens.
func (jtm *TokenManager) AccessExpiry() time.Duration {
	return jtm.accessExpiry
}

// RefreshExpiry returns the lifetime of refresh tokens.
func (jtm *TokenManager) RefreshExpiry() time.Duration {
	return jtm.refreshExpiry
}

// generateToken signs a token of the given type with HS256
func (jtm *TokenManager) generateToken(userID, email, typ string, expiry time.Duration) (string, error) {
	if len(jtm.key) == 0 {
		return "", ErrNeedTokenSecret
	}
	now := jtm.now()
	claims := Claims{
		Email: email,
		Type:  typ,
		RegisteredClaims: jwtstd.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    jtm.issuer,
			IssuedAt:  jwtstd.NewNumericDate(now),
			ExpiresAt: jwtstd.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, claims).SignedString(jtm.key)
}

// GenerateAccessToken generates an access token for the user
func (jtm *TokenManager) GenerateAccessToken(userID, email string) (string, error) {
	return jtm.generateToken(userID, email, TypeAccess, jtm.accessExpiry)
}

// GenerateRefreshToken generates a refresh token for the user
func (jtm *TokenManager) GenerateRefreshToken(userID, email string) (string, error) {
	return jtm.generateToken(userID, email, TypeRefresh, jtm.refreshExpiry)
}

// GeneratePair generates an access and refresh token pair
func (jtm *TokenManager) GeneratePair(userID, email string) (*TokenPair, error) {
	access, err := jtm.GenerateAccessToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := jtm.GenerateRefreshToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(jtm.accessExpiry.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// ValidateToken parses and verifies a token and checks its type
func (jtm *TokenManager) ValidateToken(tokenString, typ string) (*Claims, error) {
	if len(jtm.key) == 0 {
		return nil, ErrNeedTokenSecret
	}

	claims := &Claims{}
	token, err := jwtstd.ParseWithClaims(tokenString, claims, func(token *jwtstd.Token) (any, error) {
		return jtm.key, nil
	},
		jwtstd.WithValidMethods([]string{jwtstd.SigningMethodHS256.Alg()}),
		jwtstd.WithTimeFunc(jtm.now),
		jwtstd.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwtstd.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.Type != typ {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ParseAccessToken validates an access token
func (jtm *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	return jtm.ValidateToken(tokenString, TypeAccess)
}

// ParseRefreshToken validates a refresh token
func (jtm *TokenManager) ParseRefreshToken(tokenString string) (*Claims, error) {
	return jtm.ValidateToken(tokenString, TypeRefresh)
}
