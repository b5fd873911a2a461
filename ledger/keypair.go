package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const keyPrefix = "ed25519:"

// Keypair is an ed25519 signing identity on the ledger.
type Keypair struct {
	AccountID  string
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// NewKeypair generates a fresh keypair for the given account.
func NewKeypair(accountID string) (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return &Keypair{AccountID: accountID, PublicKey: pub, PrivateKey: priv}, nil
}

// ParseKeypair parses an "ed25519:<base64 seed>" secret key string.
func ParseKeypair(accountID, secret string) (*Keypair, error) {
	if !strings.HasPrefix(secret, keyPrefix) {
		return nil, fmt.Errorf("secret key must have %q prefix", keyPrefix)
	}
	seed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, keyPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode secret key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("secret key seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Keypair{
		AccountID:  accountID,
		PublicKey:  priv.Public().(ed25519.PublicKey),
		PrivateKey: priv,
	}, nil
}

// PublicKeyString returns the printable public key form embedded in
// delegate actions.
func (k *Keypair) PublicKeyString() string {
	return keyPrefix + base64.StdEncoding.EncodeToString(k.PublicKey)
}

// SecretKeyString returns the printable secret key form accepted by
// ParseKeypair.
func (k *Keypair) SecretKeyString() string {
	return keyPrefix + base64.StdEncoding.EncodeToString(k.PrivateKey.Seed())
}

// ParsePublicKey parses an "ed25519:<base64>" public key string.
func ParsePublicKey(s string) (ed25519.PublicKey, error) {
	if !strings.HasPrefix(s, keyPrefix) {
		return nil, fmt.Errorf("public key must have %q prefix", keyPrefix)
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, keyPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(b))
	}
	return ed25519.PublicKey(b), nil
}
