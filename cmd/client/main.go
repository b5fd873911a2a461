package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vaultpay/x402-go/app"
	"github.com/vaultpay/x402-go/client"
	"github.com/vaultpay/x402-go/config"
	"github.com/vaultpay/x402-go/ledger"
)

func main() {
	url := flag.String("url", "http://localhost:4021/api/report", "resource URL to fetch")
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		panic(err)
	}
	log := app.Logger(cfg.LogLevel)
	defer log.Sync()

	keypair, err := ledger.ParseKeypair(cfg.AccountID, cfg.SecretKey)
	if err != nil {
		log.Fatal("payment identity missing or invalid", zap.Error(err))
	}

	c, err := client.New(client.Config{
		Keypair:     keypair,
		RPCURL:      cfg.RPCURL,
		BlockOffset: cfg.BlockOffset,
		Log:         log,
	})
	if err != nil {
		log.Fatal("client config invalid", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	paid, err := c.RequestWithPayment(ctx, *url)
	if err != nil {
		var statusErr *client.UnexpectedStatusError
		if errors.As(err, &statusErr) {
			log.Error("server did not follow the payment protocol",
				zap.Int("status", statusErr.StatusCode),
				zap.String("body", statusErr.Body),
			)
		} else {
			log.Error("paid request failed", zap.Error(err))
		}
		os.Exit(1)
	}

	fmt.Println(string(paid.Body))
	if paid.Receipt != nil {
		log.Info("settlement receipt",
			zap.Bool("ok", paid.Receipt.OK),
			zap.String("txHash", paid.Receipt.TxHash),
			zap.String("blockHash", paid.Receipt.BlockHash),
			zap.String("status", paid.Receipt.Status),
		)
	}
}
