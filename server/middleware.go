// Package server gates HTTP resources behind the payment protocol: it
// issues 402 challenges, forwards authorization evidence to the
// facilitator, and releases the resource only after settlement.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/vaultpay/x402-go/clients"
	"github.com/vaultpay/x402-go/types"
)

// Config configures the payment middleware for one priced resource.
type Config struct {
	// Facilitator verifies and settles authorizations on our behalf.
	Facilitator *clients.Facilitator

	// Requirements is the single accepted payment option. Its Resource
	// field is filled per request from the URL when left empty.
	Requirements types.PaymentRequirements

	Log *zap.Logger
}

// PaymentMiddleware wraps next so that it is only reached after a
// successful settlement. Challenges are stateless: nothing about an issued
// invoice is persisted.
func PaymentMiddleware(next http.Handler, cfg Config) http.Handler {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		requirements := cfg.requirementsFor(r)

		header := r.Header.Get(types.PaymentHeader)
		if header == "" {
			writeChallenge(w, requirements, "")
			return
		}

		payload, err := types.DecodePaymentHeader(header)
		if err != nil {
			log.Info("malformed payment header",
				zap.String("requestId", requestID),
				zap.Error(err),
			)
			writeChallenge(w, requirements, types.ChallengeErrorMalformedPayment)
			return
		}

		// Any verifier failure, transport included, maps back to a 402 so
		// an automated client can simply run the protocol again.
		verifyResp, err := cfg.Facilitator.Verify(r.Context(), payload, requirements)
		if err != nil {
			log.Warn("facilitator verify unreachable",
				zap.String("requestId", requestID),
				zap.Error(err),
			)
			writeChallenge(w, requirements, types.ChallengeErrorPaymentInvalid)
			return
		}
		if !verifyResp.Valid {
			log.Info("payment rejected",
				zap.String("requestId", requestID),
				zap.String("reason", string(verifyResp.Error)),
			)
			writeChallenge(w, requirements, types.ChallengeErrorPaymentInvalid)
			return
		}

		settleResp, err := cfg.Facilitator.Settle(r.Context(), payload.DelegateB64)
		if err != nil || !settleResp.OK {
			if err != nil {
				log.Warn("facilitator settle unreachable",
					zap.String("requestId", requestID),
					zap.Error(err),
				)
			} else {
				log.Info("settlement rejected",
					zap.String("requestId", requestID),
					zap.String("reason", string(settleResp.Error)),
				)
			}
			writeChallenge(w, requirements, types.ChallengeErrorPaymentNotSettled)
			return
		}

		receiptHeader, err := types.EncodeReceiptHeader(settleResp.Receipt())
		if err != nil {
			writeChallenge(w, requirements, types.ChallengeErrorPaymentNotSettled)
			return
		}

		log.Info("payment settled",
			zap.String("requestId", requestID),
			zap.String("sender", verifyResp.Sender),
			zap.String("txHash", settleResp.TxHash),
			zap.String("invoiceId", payload.InvoiceID),
		)

		w.Header().Set(types.PaymentResponseHeader, receiptHeader)
		next.ServeHTTP(w, r)
	})
}

// requirementsFor derives the accepts entry for this request. Two
// challenges for the same resource differ only in their invoice.
func (cfg Config) requirementsFor(r *http.Request) types.PaymentRequirements {
	requirements := cfg.Requirements
	if requirements.Resource == "" {
		requirements.Resource = r.URL.Path
	}
	return requirements
}

func writeChallenge(w http.ResponseWriter, requirements types.PaymentRequirements, reason types.ChallengeError) {
	challenge := types.PaymentRequired{
		Accepts: []types.PaymentRequirements{requirements},
		Invoice: types.Invoice{
			ID:        xid.New().String(),
			CreatedAt: time.Now().UnixMilli(),
		},
		Error: reason,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusPaymentRequired)
	_ = json.NewEncoder(w).Encode(challenge)
}
