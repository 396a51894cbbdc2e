package oauth

import "errors"

// OAuth specific errors
var (
	ErrProviderNotSupported = errors.New("OAuth provider not supported")
	ErrProviderNotEnabled   = errors.New("OAuth provider not enabled")
	ErrInvalidState         = errors.New("invalid OAuth state parameter")
	ErrStateExpired         = errors.New("OAuth state parameter expired")
	ErrCodeExchangeFailed   = errors.New("OAuth code exchange failed")
	ErrProfileFetchFailed   = errors.New("failed to fetch user profile")
	ErrMissingEmail         = errors.New("OAuth profile has no verified email")
)
