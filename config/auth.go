package config

import (
	"time"

	"github.com/spf13/viper"
)

// Auth auth config struct
type Auth struct {
	JWT       *JWT
	OTPExpiry time.Duration
}

// JWT jwt config struct
type JWT struct {
	Secret        string
	Issuer        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// getAuthConfig returns the auth config.
func getAuthConfig(v *viper.Viper) *Auth {
	return &Auth{
		JWT: &JWT{
			Secret:        getStringOrDefault(v, "auth.jwt.secret", "taskhive-dev-secret"),
			Issuer:        getStringOrDefault(v, "auth.jwt.issuer", "taskhive"),
			AccessExpiry:  getDurationOrDefault(v, "auth.jwt.access_expiry", time.Hour),
			RefreshExpiry: getDurationOrDefault(v, "auth.jwt.refresh_expiry", 7*24*time.Hour),
		},
		OTPExpiry: getDurationOrDefault(v, "auth.otp_expiry", 5*time.Minute),
	}
}
