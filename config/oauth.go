package config

import (
	"time"

	"github.com/spf13/viper"
)

// OAuth represents the OAuth configuration
type OAuth struct {
	Google      *OAuthProvider
	Github      *OAuthProvider
	StateSecret string
	StateExpiry time.Duration
	// SuccessURL receives ?token=<jwt> after a successful login.
	SuccessURL string
	FailureURL string
}

// OAuthProvider represents one OAuth2 client registration
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether the provider has client credentials.
func (p *OAuthProvider) Enabled() bool {
	return p != nil && p.ClientID != "" && p.ClientSecret != ""
}

func getOAuthProvider(v *viper.Viper, name string, scopes []string) *OAuthProvider {
	prefix := "oauth." + name + "."
	return &OAuthProvider{
		ClientID:     v.GetString(prefix + "client_id"),
		ClientSecret: v.GetString(prefix + "client_secret"),
		RedirectURL:  v.GetString(prefix + "redirect_url"),
		Scopes:       getStringSliceOrDefault(v, prefix+"scopes", scopes),
	}
}

// getOAuthConfig returns the OAuth configuration
func getOAuthConfig(v *viper.Viper) *OAuth {
	return &OAuth{
		Google:      getOAuthProvider(v, "google", []string{"openid", "email", "profile"}),
		Github:      getOAuthProvider(v, "github", []string{"read:user", "user:email"}),
		StateSecret: getStringOrDefault(v, "oauth.state_secret", "taskhive-oauth-state"),
		StateExpiry: getDurationOrDefault(v, "oauth.state_expiry", 10*time.Minute),
		SuccessURL:  getStringOrDefault(v, "oauth.success_url", "http://localhost:3000/oauth-success"),
		FailureURL:  getStringOrDefault(v, "oauth.failure_url", "http://localhost:3000/login?error=oauth"),
	}
}
