// Package auth authenticates facilitator API requests with a static key.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/vaultpay/x402-go/utils"
)

// HeaderAPIKey is the request header carrying the API key.
const HeaderAPIKey = "X-API-Key"

// Authenticator checks requests against a configured API key. An empty key
// disables authentication.
type Authenticator struct {
	apiKey string
}

// New creates an Authenticator for the configured key.
func New(apiKey string) *Authenticator {
	return &Authenticator{apiKey: apiKey}
}

// Authenticate authenticates the request.
func (a *Authenticator) Authenticate(r *http.Request) error {
	if a.apiKey == "" {
		return nil
	}

	providedKey := r.Header.Get(HeaderAPIKey)
	if subtle.ConstantTimeCompare([]byte(providedKey), []byte(a.apiKey)) != 1 {
		return utils.NewStatusError(
			errors.New("unauthorized"),
			http.StatusUnauthorized,
		)
	}
	return nil
}
