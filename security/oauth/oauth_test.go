package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/taskhive/taskhive/config"
)

func TestStateRoundTrip(t *testing.T) {
	sm := NewStateManager("secret", time.Minute)
	state, err := sm.GenerateState(ProviderGitHub)
	if err != nil {
		t.Fatalf("GenerateState: %v", err)
	}

	data, err := sm.ParseState(state, ProviderGitHub)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	if data.Provider != "github" || data.Nonce == "" {
		t.Errorf("state data = %+v", data)
	}
}

func TestStateRejectsTamperingAndExpiry(t *testing.T) {
	sm := NewStateManager("secret", time.Minute)
	state, _ := sm.GenerateState(ProviderGoogle)

	if _, err := sm.ParseState(state, ProviderGitHub); !errors.Is(err, ErrInvalidState) {
		t.Errorf("provider mismatch: %v", err)
	}
	if _, err := NewStateManager("other", time.Minute).ParseState(state, ProviderGoogle); !errors.Is(err, ErrInvalidState) {
		t.Errorf("foreign secret: %v", err)
	}
	if _, err := sm.ParseState("nodot", ProviderGoogle); !errors.Is(err, ErrInvalidState) {
		t.Errorf("malformed: %v", err)
	}

	sm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := sm.ParseState(state, ProviderGoogle); !errors.Is(err, ErrStateExpired) {
		t.Errorf("expired: %v", err)
	}
}

func TestAuthURL(t *testing.T) {
	cfg := config.Default().OAuth
	cfg.Github.ClientID = "cid"
	cfg.Github.ClientSecret = "cs"
	cfg.Github.RedirectURL = "http://localhost/cb"
	c := NewClient(cfg)

	u, err := c.AuthURL(ProviderGitHub, "st")
	if err != nil {
		t.Fatalf("AuthURL: %v", err)
	}
	parsed, _ := url.Parse(u)
	if !strings.HasPrefix(u, "https://github.com/login/oauth/authorize") {
		t.Errorf("url = %s", u)
	}
	if parsed.Query().Get("state") != "st" || parsed.Query().Get("client_id") != "cid" {
		t.Errorf("query = %v", parsed.Query())
	}

	if _, err := c.AuthURL(ProviderGoogle, "st"); !errors.Is(err, ErrProviderNotEnabled) {
		t.Errorf("google without credentials: %v", err)
	}
}

func TestParseProvider(t *testing.T) {
	if p, err := ParseProvider("GitHub"); err != nil || p != ProviderGitHub {
		t.Errorf("github: %v %v", p, err)
	}
	if _, err := ParseProvider("myspace"); !errors.Is(err, ErrProviderNotSupported) {
		t.Errorf("unknown: %v", err)
	}
}

func TestAuthenticateGitHubFallsBackToPrimaryEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "login": "octo"})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"email": "old@example.com", "primary": false, "verified": true},
			{"email": "octo@example.com", "primary": true, "verified": true},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.Default().OAuth
	cfg.Github.ClientID = "cid"
	cfg.Github.ClientSecret = "cs"
	c := NewClient(cfg)
	c.providers[ProviderGitHub].Endpoint.TokenURL = srv.URL + "/token"
	c.githubAPIURL = srv.URL

	p, err := c.Authenticate(context.Background(), ProviderGitHub, "code")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.Email != "octo@example.com" || p.Name != "octo" || p.ID != "42" {
		t.Errorf("profile = %+v", p)
	}
}

func TestAuthenticateGitHubWithoutVerifiedEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "login": "ghost", "name": "Ghost"})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"email": "ghost@example.com", "primary": true, "verified": false},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.Default().OAuth
	cfg.Github.ClientID = "cid"
	cfg.Github.ClientSecret = "cs"
	c := NewClient(cfg)
	c.providers[ProviderGitHub].Endpoint.TokenURL = srv.URL + "/token"
	c.githubAPIURL = srv.URL

	if _, err := c.Authenticate(context.Background(), ProviderGitHub, "code"); !errors.Is(err, ErrMissingEmail) {
		t.Errorf("unverified primary email: %v", err)
	}
}
