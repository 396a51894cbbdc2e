package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gh "github.com/google/go-github/github"
	"github.com/taskhive/taskhive/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Client performs the authorization code flow against the configured providers
type Client struct {
	providers map[Provider]*oauth2.Config
	// profile endpoints, replaceable in tests; an empty githubAPIURL
	// keeps the go-github default
	googleUserInfoURL string
	githubAPIURL      string
}

// NewClient creates a client for every provider with credentials
func NewClient(cfg *config.OAuth) *Client {
	c := &Client{
		providers:         make(map[Provider]*oauth2.Config),
		googleUserInfoURL: googleUserInfoURL,
	}
	if cfg == nil {
		return c
	}
	if cfg.Google.Enabled() {
		c.providers[ProviderGoogle] = oauthConfig(cfg.Google, google.Endpoint)
	}
	if cfg.Github.Enabled() {
		c.providers[ProviderGitHub] = oauthConfig(cfg.Github, github.Endpoint)
	}
	return c
}

func oauthConfig(p *config.OAuthProvider, endpoint oauth2.Endpoint) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURL,
		Scopes:       p.Scopes,
		Endpoint:     endpoint,
	}
}

// ParseProvider validates a provider name from the request path
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(name)); p {
	case ProviderGoogle, ProviderGitHub:
		return p, nil
	default:
		return "", ErrProviderNotSupported
	}
}

func (c *Client) config(provider Provider) (*oauth2.Config, error) {
	oc, ok := c.providers[provider]
	if !ok {
		return nil, ErrProviderNotEnabled
	}
	return oc, nil
}

// AuthURL returns the consent page URL of the provider
func (c *Client) AuthURL(provider Provider, state string) (string, error) {
	oc, err := c.config(provider)
	if err != nil {
		return "", err
	}
	return oc.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Authenticate exchanges the code and fetches the user profile
func (c *Client) Authenticate(ctx context.Context, provider Provider, code string) (*Profile, error) {
	oc, err := c.config(provider)
	if err != nil {
		return nil, err
	}
	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodeExchangeFailed, err)
	}

	httpClient := oc.Client(ctx, token)
	switch provider {
	case ProviderGoogle:
		return c.googleProfile(ctx, httpClient)
	case ProviderGitHub:
		return c.githubProfile(ctx, httpClient)
	default:
		return nil, ErrProviderNotSupported
	}
}

func (c *Client) googleProfile(ctx context.Context, hc *http.Client) (*Profile, error) {
	var info struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := getJSON(ctx, hc, c.googleUserInfoURL, &info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, ErrMissingEmail
	}
	return &Profile{ID: info.ID, Email: info.Email, Name: info.Name, Provider: string(ProviderGoogle)}, nil
}

func (c *Client) githubClient(hc *http.Client) (*gh.Client, error) {
	client := gh.NewClient(hc)
	if c.githubAPIURL != "" {
		base, err := url.Parse(strings.TrimSuffix(c.githubAPIURL, "/") + "/")
		if err != nil {
			return nil, err
		}
		client.BaseURL = base
	}
	return client, nil
}

func (c *Client) githubProfile(ctx context.Context, hc *http.Client) (*Profile, error) {
	client, err := c.githubClient(hc)
	if err != nil {
		return nil, err
	}
	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}

	email := user.GetEmail()
	if email == "" {
		emails, _, err := client.Users.ListEmails(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
		}
		for _, e := range emails {
			if e.GetPrimary() && e.GetVerified() {
				email = e.GetEmail()
				break
			}
		}
	}
	if email == "" {
		return nil, ErrMissingEmail
	}

	name := user.GetName()
	if name == "" {
		name = user.GetLogin()
	}
	return &Profile{
		ID:       strconv.FormatInt(user.GetID(), 10),
		Email:    email,
		Name:     name,
		Provider: string(ProviderGitHub),
	}, nil
}

func getJSON(ctx context.Context, hc *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	res, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProfileFetchFailed, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	return nil
}
