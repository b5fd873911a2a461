package core

import (
	"context"
	"fmt"
	"time"

	"github.com/vaultpay/x402-go/ledger"
	"github.com/vaultpay/x402-go/store"
	"github.com/vaultpay/x402-go/types"
)

// Config is the injected facilitator configuration. The relaying identity
// is fixed here and never chosen by the client.
type Config struct {
	Network string
	RPCURL  string
	Relayer *ledger.Keypair
	Timeout time.Duration
	Store   store.Idempotency
}

// Validate checks the configuration at startup. A missing relayer identity
// or ledger endpoint refuses to start.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("configuration error: ledger RPC URL is not set")
	}
	if c.Relayer == nil {
		return fmt.Errorf("configuration error: relayer identity is not set")
	}
	if c.Network == "" {
		return fmt.Errorf("configuration error: network is not set")
	}
	return nil
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func settleError(reason types.ErrorReason, message string) types.SettleResponse {
	return types.SettleResponse{OK: false, Error: reason, Message: message}
}

// Settle submits a signed authorization to the ledger as a meta-transaction
// wrapped by the configured relayer. The blob is decoded independently of
// any prior verify call. There is no automatic retry: a rejected or stuck
// settlement is surfaced to the caller.
func Settle(ctx context.Context, c Config, authorizationBlob string) (types.SettleResponse, error) {

	// Same decode step as verify; the two operations share no state
	sd, err := ledger.DecodeSignedDelegate(authorizationBlob)
	if err != nil {
		return settleError(types.ErrorReasonMalformedAuthorization, err.Error()), nil
	}

	// Refuse to settle an authorization that was already consumed
	if c.Store != nil {
		seen, err := c.Store.Seen(ctx, sd.Signature)
		if err != nil {
			return types.SettleResponse{}, fmt.Errorf("failed to check idempotency store: %w", err)
		}
		if seen {
			return settleError(types.ErrorReasonAlreadySettled, "authorization was already settled"), nil
		}
	}

	client, err := ledger.NewClient(c.RPCURL)
	if err != nil {
		return types.SettleResponse{}, fmt.Errorf("failed to create ledger client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	sub, err := client.SubmitDelegate(ctx, c.Relayer, sd)
	if err != nil {
		// Ledger rejections (insufficient relay funds, expired validity
		// window, duplicate nonce, unprovisioned recipient) surface with
		// the underlying message and are not retried here.
		return settleError(types.ErrorReasonSettlementFailed, err.Error()), nil
	}

	response := types.SettleResponse{
		OK:        true,
		TxHash:    sub.TxHash,
		BlockHash: sub.BlockHash,
		Status:    sub.Status,
	}

	if c.Store != nil {
		// The transfer has already executed; a store failure must not turn
		// a completed settlement into an error for the caller.
		_ = c.Store.Record(ctx, sd.Signature, sub.TxHash)
	}

	return response, nil
}
