// Package store provides the durable idempotency store that guards against
// duplicate settlement of a previously consumed authorization.
package store

import "context"

// Idempotency records settled authorizations keyed by their signature.
type Idempotency interface {
	// Seen reports whether the key has already been settled.
	Seen(ctx context.Context, key string) (bool, error)
	// Record marks the key as settled with its resulting transaction hash.
	Record(ctx context.Context, key, txHash string) error
}

// Nop is an Idempotency store that remembers nothing. It preserves the
// stateless mode in which duplicate submissions are left to the ledger's
// own nonce handling.
type Nop struct{}

func (Nop) Seen(ctx context.Context, key string) (bool, error) { return false, nil }

func (Nop) Record(ctx context.Context, key, txHash string) error { return nil }
