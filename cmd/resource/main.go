package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vaultpay/x402-go/app"
	"github.com/vaultpay/x402-go/clients"
	"github.com/vaultpay/x402-go/config"
	"github.com/vaultpay/x402-go/server"
	"github.com/vaultpay/x402-go/types"
)

func main() {
	cfg, err := config.LoadResource()
	if err != nil {
		panic(err)
	}
	log := app.Logger(cfg.LogLevel)
	defer log.Sync()

	facilitator := clients.NewFacilitator(
		cfg.FacilitatorURL,
		cfg.FacilitatorAPIKey,
		time.Duration(cfg.TimeoutSec)*time.Second,
	)

	report := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"report":"quarterly numbers","generatedAt":%d}`, time.Now().UnixMilli())
	})

	paid := server.PaymentMiddleware(report, server.Config{
		Facilitator: facilitator,
		Requirements: types.PaymentRequirements{
			Scheme:            types.SchemeExact,
			Network:           cfg.Network,
			Asset:             cfg.Asset,
			PayTo:             cfg.PayTo,
			AmountExactAtomic: cfg.Amount,
			MaxTimeoutSeconds: cfg.TimeoutSec,
			MimeType:          "application/json",
			Description:       cfg.Description,
		},
		Log: log,
	})

	r := mux.NewRouter()
	r.Handle("/api/report", paid).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handlers.LoggingHandler(zap.NewStdLog(log).Writer(), r),
	}

	log.Info("resource server listening",
		zap.Int("port", cfg.Port),
		zap.String("facilitator", cfg.FacilitatorURL),
		zap.String("payTo", cfg.PayTo),
		zap.String("amount", cfg.Amount),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("listen and serve", zap.Error(err))
	}
}
