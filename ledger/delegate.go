package ledger

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// DelegateAction is an instruction set pre-authorized by its sender: one
// sender identity, one target contract, a sequence of sub-actions, and a
// validity bound expressed as a ledger block height.
type DelegateAction struct {
	SenderID       string   `json:"senderId"`
	ReceiverID     string   `json:"receiverId"`
	Actions        []Action `json:"actions"`
	Nonce          uint64   `json:"nonce"`
	MaxBlockHeight uint64   `json:"maxBlockHeight"`
	PublicKey      string   `json:"publicKey"`
}

// SignedDelegate is a delegate action together with the sender's signature
// over its canonical serialization. It must never be mutated after signing;
// any validation failure rejects it rather than repairing it.
type SignedDelegate struct {
	DelegateAction DelegateAction `json:"delegateAction"`
	Signature      string         `json:"signature"`
}

// SigningBytes returns the canonical byte serialization covered by the
// signature.
func (d DelegateAction) SigningBytes() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize delegate action: %w", err)
	}
	return b, nil
}

// SignDelegate signs a delegate action with the keypair. The action's
// sender and public key must belong to the keypair.
func SignDelegate(d DelegateAction, kp *Keypair) (*SignedDelegate, error) {
	if d.SenderID != kp.AccountID {
		return nil, fmt.Errorf("delegate sender %q does not match signing account %q", d.SenderID, kp.AccountID)
	}
	d.PublicKey = kp.PublicKeyString()
	msg, err := d.SigningBytes()
	if err != nil {
		return nil, err
	}
	sig := ed25519.Sign(kp.PrivateKey, msg)
	return &SignedDelegate{
		DelegateAction: d,
		Signature:      base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// VerifySignature checks the envelope signature against the embedded
// public key.
func (sd *SignedDelegate) VerifySignature() (bool, error) {
	pub, err := ParsePublicKey(sd.DelegateAction.PublicKey)
	if err != nil {
		return false, err
	}
	sig, err := base64.StdEncoding.DecodeString(sd.Signature)
	if err != nil {
		return false, fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return false, fmt.Errorf("signature must be %d bytes, got %d", ed25519.SignatureSize, len(sig))
	}
	msg, err := sd.DelegateAction.SigningBytes()
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, msg, sig), nil
}

// EncodeSignedDelegate serializes a signed delegate into its base64
// transport encoding.
func EncodeSignedDelegate(sd *SignedDelegate) (string, error) {
	b, err := json.Marshal(sd)
	if err != nil {
		return "", fmt.Errorf("failed to serialize signed delegate: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeSignedDelegate decodes the base64 transport encoding of a signed
// delegate. Unknown fields are rejected.
func DecodeSignedDelegate(blob string) (*SignedDelegate, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode authorization blob: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var sd SignedDelegate
	if err := dec.Decode(&sd); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signed delegate: %w", err)
	}
	if sd.DelegateAction.SenderID == "" || sd.DelegateAction.ReceiverID == "" {
		return nil, fmt.Errorf("signed delegate missing sender or receiver")
	}
	if sd.Signature == "" {
		return nil, fmt.Errorf("signed delegate missing signature")
	}
	return &sd, nil
}
