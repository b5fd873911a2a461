package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vaultpay/x402-go/core"
	"github.com/vaultpay/x402-go/types"
)

// Settle handles POST /settle. Ledger rejections come back as structured
// 400 results with the underlying message; they are never retried here.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	if !h.authenticate(w, r) {
		return
	}

	var requestBody types.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if requestBody.X402Version != types.X402Version1 {
		h.writeSettleResponse(w, types.SettleResponse{OK: false, Error: types.ErrorReasonInvalidX402Version})
		return
	}
	if requestBody.AuthorizationBlob == "" {
		h.writeSettleResponse(w, types.SettleResponse{OK: false, Error: types.ErrorReasonMalformedAuthorization})
		return
	}

	response, err := core.Settle(r.Context(), h.cfg, requestBody.AuthorizationBlob)
	if err != nil {
		h.log.Error("settlement failed internally", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if response.OK {
		h.log.Info("payment settled",
			zap.String("txHash", response.TxHash),
			zap.String("status", response.Status),
		)
	} else {
		h.log.Info("settlement rejected",
			zap.String("reason", string(response.Error)),
			zap.String("message", response.Message),
		)
	}
	h.writeSettleResponse(w, response)
}

func (h *Handler) writeSettleResponse(w http.ResponseWriter, response types.SettleResponse) {
	h.metrics.observeSettle(response.OK, string(response.Error))
	status := http.StatusOK
	if !response.OK {
		status = http.StatusBadRequest
	}
	h.respond(w, status, response)
}
