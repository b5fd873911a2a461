package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/vaultpay/x402-go/api"
	"github.com/vaultpay/x402-go/app"
	"github.com/vaultpay/x402-go/auth"
	"github.com/vaultpay/x402-go/config"
	"github.com/vaultpay/x402-go/core"
	"github.com/vaultpay/x402-go/ledger"
	"github.com/vaultpay/x402-go/store"
)

func main() {
	cfg, err := config.LoadFacilitator()
	if err != nil {
		panic(err)
	}
	log := app.Logger(cfg.LogLevel)
	defer log.Sync()

	relayer, err := ledger.ParseKeypair(cfg.RelayerID, cfg.RelayerKey)
	if err != nil {
		log.Fatal("relayer identity missing or invalid", zap.Error(err))
	}

	var idempotency store.Idempotency = store.Nop{}
	if cfg.StorePath != "" {
		db, err := sql.Open("sqlite3", cfg.StorePath)
		if err != nil {
			log.Fatal("failed to open idempotency database", zap.Error(err))
		}
		defer db.Close()
		idempotency, err = store.NewSQL(db)
		if err != nil {
			log.Fatal("failed to init idempotency store", zap.Error(err))
		}
	} else {
		log.Warn("no idempotency store configured, duplicate settlement is left to the ledger")
	}

	coreCfg := core.Config{
		Network: cfg.Network,
		RPCURL:  cfg.RPCURL,
		Relayer: relayer,
		Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		Store:   idempotency,
	}
	if err := coreCfg.Validate(); err != nil {
		log.Fatal("refusing to start", zap.Error(err))
	}

	handler := api.New(log, auth.New(cfg.APIKey), coreCfg, api.NewMetrics())

	server := http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handlers.LoggingHandler(zap.NewStdLog(log).Writer(), handler.Router()),
	}

	log.Info("facilitator listening",
		zap.Int("port", cfg.Port),
		zap.String("network", cfg.Network),
		zap.String("relayer", relayer.AccountID),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("listen and serve", zap.Error(err))
	}
}
