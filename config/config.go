// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Facilitator is the verifier/settler service configuration. The relayer
// identity is required: without it the service refuses to start.
type Facilitator struct {
	Port       int    `env:"PORT" envDefault:"4020"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"INFO"`
	Network    string `env:"NETWORK" envDefault:"testnet"`
	RPCURL     string `env:"LEDGER_RPC_URL"`
	RelayerID  string `env:"RELAYER_ID"`
	RelayerKey string `env:"RELAYER_KEY"`
	APIKey     string `env:"API_KEY"`
	StorePath  string `env:"STORE_PATH"`
	TimeoutSec int64  `env:"SETTLE_TIMEOUT_SEC" envDefault:"30"`
}

// Resource is the resource server configuration.
type Resource struct {
	Port              int    `env:"PORT" envDefault:"4021"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"INFO"`
	FacilitatorURL    string `env:"FACILITATOR_URL" envDefault:"http://localhost:4020"`
	FacilitatorAPIKey string `env:"FACILITATOR_API_KEY"`
	Network           string `env:"NETWORK" envDefault:"testnet"`
	Asset             string `env:"ASSET"`
	PayTo             string `env:"PAY_TO"`
	Amount            string `env:"AMOUNT_EXACT_ATOMIC"`
	Description       string `env:"RESOURCE_DESCRIPTION" envDefault:"premium report"`
	TimeoutSec        int64  `env:"MAX_TIMEOUT_SEC" envDefault:"60"`
}

// Client is the payment client configuration.
type Client struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
	RPCURL      string `env:"LEDGER_RPC_URL"`
	AccountID   string `env:"ACCOUNT_ID"`
	SecretKey   string `env:"SECRET_KEY"`
	BlockOffset uint64 `env:"BLOCK_OFFSET" envDefault:"120"`
}

// LoadFacilitator parses the facilitator configuration.
func LoadFacilitator() (Facilitator, error) {
	var c Facilitator
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("config parsing failed: %w", err)
	}
	return c, nil
}

// LoadResource parses the resource server configuration.
func LoadResource() (Resource, error) {
	var c Resource
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("config parsing failed: %w", err)
	}
	if c.Asset == "" || c.PayTo == "" || c.Amount == "" {
		return c, fmt.Errorf("config parsing failed: ASSET, PAY_TO and AMOUNT_EXACT_ATOMIC are required")
	}
	return c, nil
}

// LoadClient parses the payment client configuration.
func LoadClient() (Client, error) {
	var c Client
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("config parsing failed: %w", err)
	}
	return c, nil
}
