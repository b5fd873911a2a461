// Package api exposes the facilitator's HTTP surface: verify, settle and
// supported.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vaultpay/x402-go/auth"
	"github.com/vaultpay/x402-go/core"
	"github.com/vaultpay/x402-go/utils"
)

// Handler serves the facilitator endpoints.
type Handler struct {
	log     *zap.Logger
	auth    *auth.Authenticator
	cfg     core.Config
	metrics *Metrics
}

// New creates a Handler with its injected collaborators.
func New(log *zap.Logger, authenticator *auth.Authenticator, cfg core.Config, metrics *Metrics) *Handler {
	return &Handler{
		log:     log,
		auth:    authenticator,
		cfg:     cfg,
		metrics: metrics,
	}
}

// Router builds the facilitator route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/verify", h.Verify).Methods(http.MethodPost)
	r.HandleFunc("/settle", h.Settle).Methods(http.MethodPost)
	r.HandleFunc("/supported", h.Supported).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

// authenticate writes the error response itself and reports whether the
// handler may proceed.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) bool {
	err := h.auth.Authenticate(r)
	if err == nil {
		return true
	}
	var se utils.StatusError
	if errors.As(err, &se) {
		http.Error(w, err.Error(), se.Status())
	} else {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
	return false
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	responseBytes, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(responseBytes); err != nil {
		// Header already written so we log the error
		h.log.Warn("failed to write response", zap.Error(err))
	}
}
