package api

import (
	"net/http"

	"github.com/vaultpay/x402-go/types"
)

// Supported handles GET /supported.
func (h *Handler) Supported(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, types.SupportedResponse{
		Kinds: []types.SupportedKind{
			{
				X402Version: types.X402Version1,
				Scheme:      types.SchemeExact,
				Network:     h.cfg.Network,
			},
		},
	})
}
