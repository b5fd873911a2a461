package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/vaultpay/x402-go/core"
	"github.com/vaultpay/x402-go/types"
)

// decodeStrict unmarshals JSON rejecting unknown fields, so shape errors
// surface once at the protocol boundary.
func decodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Verify handles POST /verify. A violated validation rule yields 400 with
// the structured reason; only internal faults yield 5xx.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if !h.authenticate(w, r) {
		return
	}

	var requestBody types.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if requestBody.X402Version != types.X402Version1 {
		h.writeVerifyResponse(w, types.VerifyResponse{Valid: false, Error: types.InvalidReasonInvalidX402Version})
		return
	}

	var paymentPayload types.PaymentPayload
	if err := decodeStrict(requestBody.PaymentPayload, &paymentPayload); err != nil {
		http.Error(w, fmt.Sprintf("failed to unmarshal payment payload: %v", err), http.StatusBadRequest)
		return
	}

	var paymentRequirements types.PaymentRequirements
	if err := decodeStrict(requestBody.PaymentRequirements, &paymentRequirements); err != nil {
		http.Error(w, fmt.Sprintf("failed to unmarshal payment requirements: %v", err), http.StatusBadRequest)
		return
	}

	if paymentPayload.Scheme != types.SchemeExact || paymentPayload.Scheme != paymentRequirements.Scheme {
		h.writeVerifyResponse(w, types.VerifyResponse{Valid: false, Error: types.InvalidReasonInvalidScheme})
		return
	}
	if paymentRequirements.Network != h.cfg.Network {
		h.writeVerifyResponse(w, types.VerifyResponse{Valid: false, Error: types.InvalidReasonInvalidNetwork})
		return
	}

	response := core.Verify(paymentPayload, paymentRequirements)
	if response.Valid {
		h.log.Info("payment verified",
			zap.String("sender", response.Sender),
			zap.String("asset", paymentRequirements.Asset),
			zap.String("payTo", paymentRequirements.PayTo),
		)
	} else {
		h.log.Info("payment rejected", zap.String("reason", string(response.Error)))
	}
	h.writeVerifyResponse(w, response)
}

func (h *Handler) writeVerifyResponse(w http.ResponseWriter, response types.VerifyResponse) {
	h.metrics.observeVerify(response.Valid, string(response.Error))
	status := http.StatusOK
	if !response.Valid {
		status = http.StatusBadRequest
	}
	h.respond(w, status, response)
}
