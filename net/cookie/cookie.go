package cookie

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names
const (
	AccessTokenName  = "access_token"
	RefreshTokenName = "refresh_token"
)

// formatDomain formats the domain
func formatDomain(domain string) string {
	if domain != "localhost" && !strings.HasPrefix(domain, ".") {
		return "." + domain
	}
	return domain
}

func tokenCookie(name, value string, maxAge time.Duration, domain string, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   int(maxAge / time.Second),
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if domain != "" {
		c.Domain = formatDomain(domain)
	}
	return c
}

// Options controls the attributes of token cookies.
type Options struct {
	Domain        string
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// SetTokens sets the access and refresh token cookies. Empty tokens are
// skipped.
func SetTokens(w http.ResponseWriter, accessToken, refreshToken string, o Options) {
	if accessToken != "" {
		http.SetCookie(w, tokenCookie(AccessTokenName, accessToken, o.AccessMaxAge, o.Domain, o.Secure))
	}
	if refreshToken != "" {
		http.SetCookie(w, tokenCookie(RefreshTokenName, refreshToken, o.RefreshMaxAge, o.Domain, o.Secure))
	}
}

// AccessToken returns the access token cookie value, or "".
func AccessToken(r *http.Request) string {
	c, err := r.Cookie(AccessTokenName)
	if err != nil {
		return ""
	}
	return c.Value
}

// Clear clears token cookies
func Clear(w http.ResponseWriter, domain string) {
	for _, name := range []string{AccessTokenName, RefreshTokenName} {
		c := &http.Cookie{Name: name, MaxAge: -1, Path: "/", HttpOnly: true}
		if domain != "" {
			c.Domain = formatDomain(domain)
		}
		http.SetCookie(w, c)
	}
}
