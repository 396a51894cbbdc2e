package oauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/taskhive/taskhive/utils"
)

// StateManager issues and verifies HMAC-signed, expiring OAuth state values
type StateManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewStateManager creates a new state manager
func NewStateManager(secret string, expiry time.Duration) *StateManager {
	if expiry <= 0 {
		expiry = 10 * time.Minute
	}
	return &StateManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// GenerateState generates a signed state parameter for the provider
func (sm *StateManager) GenerateState(provider Provider) (string, error) {
	data := StateData{
		Provider:  string(provider),
		Timestamp: sm.now().Unix(),
		Nonce:     utils.NanoString(21),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(jsonData)
	return payload + "." + sm.sign(payload), nil
}

// ParseState verifies the signature, expiry and provider of a state parameter
func (sm *StateManager) ParseState(state string, provider Provider) (*StateData, error) {
	payload, sig, ok := strings.Cut(state, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(sm.sign(payload))) {
		return nil, ErrInvalidState
	}

	jsonData, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidState
	}
	var data StateData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, ErrInvalidState
	}
	if data.Provider != string(provider) {
		return nil, ErrInvalidState
	}
	if sm.now().Sub(time.Unix(data.Timestamp, 0)) > sm.expiry {
		return nil, ErrStateExpired
	}
	return &data, nil
}

func (sm *StateManager) sign(payload string) string {
	mac := hmac.New(sha256.New, sm.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
