// Package core implements the protocol's verification and settlement
// algorithms. Verify is pure; only Settle touches the ledger.
package core

import (
	"math/big"

	"github.com/vaultpay/x402-go/ledger"
	"github.com/vaultpay/x402-go/types"
)

func invalid(reason types.InvalidReason) types.VerifyResponse {
	return types.VerifyResponse{Valid: false, Error: reason}
}

// Verify checks a payment payload against the resource server's stated
// requirements. Validation fails fast, returning the first violated rule.
// It never mutates ledger state.
func Verify(p types.PaymentPayload, r types.PaymentRequirements) types.VerifyResponse {

	// Echoed fields must match the requirements exactly
	if p.Asset != r.Asset {
		return invalid(types.InvalidReasonAssetMismatch)
	}
	if p.PayTo != r.PayTo {
		return invalid(types.InvalidReasonRecipientMismatch)
	}
	if p.Network != r.Network {
		return invalid(types.InvalidReasonNetworkMismatch)
	}

	// Decode the signed authorization envelope
	sd, err := ledger.DecodeSignedDelegate(p.DelegateB64)
	if err != nil {
		return invalid(types.InvalidReasonMalformedAuthorization)
	}
	delegate := sd.DelegateAction

	// The authorization must target the asset contract itself
	if delegate.ReceiverID != r.Asset {
		return invalid(types.InvalidReasonWrongTarget)
	}

	// Scan every sub-action for token transfers to the required recipient.
	// More than one matching transfer is ambiguous and rejected outright
	// rather than resolved by scan order.
	var observed string
	matches := 0
	for _, action := range delegate.Actions {
		if !action.IsTokenTransfer() {
			continue
		}
		args, err := action.TransferArgs()
		if err != nil {
			return invalid(types.InvalidReasonMalformedAuthorization)
		}
		if args.ReceiverID != r.PayTo {
			continue
		}
		matches++
		observed = args.Amount
	}
	if matches > 1 {
		return invalid(types.InvalidReasonAmbiguousTransfer)
	}
	if matches == 0 {
		return invalid(types.InvalidReasonNoMatchingTransfer)
	}

	// Amounts are arbitrary-precision integers, never floats
	observedAmount, ok := new(big.Int).SetString(observed, 10)
	if !ok || observedAmount.Sign() < 0 {
		return invalid(types.InvalidReasonInvalidAmount)
	}
	requiredAmount, ok := new(big.Int).SetString(r.AmountExactAtomic, 10)
	if !ok || requiredAmount.Sign() < 0 {
		return invalid(types.InvalidReasonInvalidRequiredAmount)
	}

	// Exact match only: no tolerance, no "at least" semantics
	if observedAmount.Cmp(requiredAmount) != 0 {
		return invalid(types.InvalidReasonAmountMismatch)
	}

	// The envelope signature must hold for the embedded public key
	ok, err = sd.VerifySignature()
	if err != nil || !ok {
		return invalid(types.InvalidReasonInvalidSignature)
	}

	return types.VerifyResponse{
		Valid:  true,
		Sender: delegate.SenderID,
	}
}
