package oauth

// Provider represents OAuth provider type
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// Profile represents user profile from OAuth provider
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// StateData represents OAuth state information
type StateData struct {
	Provider  string `json:"provider"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
}
