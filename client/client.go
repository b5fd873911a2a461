// Package client constructs signed payment authorizations and performs the
// 402 challenge/response exchange against a resource server.
package client

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vaultpay/x402-go/ledger"
	"github.com/vaultpay/x402-go/types"
)

// DefaultBlockOffset is the validity window of an authorization in ledger
// blocks past the current height.
const DefaultBlockOffset = 120

// Config configures a payment client.
type Config struct {
	// Keypair is the paying identity; it signs every authorization.
	Keypair *ledger.Keypair

	// RPCURL is the ledger endpoint used to read the current block height.
	RPCURL string

	// BlockOffset bounds authorization validity in blocks; zero means
	// DefaultBlockOffset.
	BlockOffset uint64

	Timeout time.Duration
	Log     *zap.Logger
}

// Client performs paid HTTP requests.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// PaidResponse is the outcome of a successfully paid request.
type PaidResponse struct {
	StatusCode int
	Body       []byte
	Receipt    *types.SettlementReceipt
}

// UnexpectedStatusError reports a response that did not follow the
// protocol.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// New creates a payment client.
func New(cfg Config) (*Client, error) {
	if cfg.Keypair == nil {
		return nil, fmt.Errorf("configuration error: payment keypair is not set")
	}
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("configuration error: ledger RPC URL is not set")
	}
	if cfg.BlockOffset == 0 {
		cfg.BlockOffset = DefaultBlockOffset
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}, nil
}

// RequestWithPayment fetches url, paying the first accepted requirement of
// the 402 challenge. Non-protocol responses surface as
// UnexpectedStatusError with the body verbatim.
func (c *Client) RequestWithPayment(ctx context.Context, url string) (*PaidResponse, error) {
	status, body, _, err := c.get(ctx, url, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusPaymentRequired {
		return nil, &UnexpectedStatusError{StatusCode: status, Body: string(body)}
	}

	var challenge types.PaymentRequired
	if err := json.Unmarshal(body, &challenge); err != nil {
		return nil, fmt.Errorf("failed to decode payment challenge: %w", err)
	}
	if len(challenge.Accepts) == 0 {
		return nil, fmt.Errorf("payment challenge offers no accepted requirements")
	}

	// No multi-option negotiation: take the first entry
	requirements := challenge.Accepts[0]

	payload, err := c.BuildPayload(ctx, requirements, challenge.Invoice)
	if err != nil {
		return nil, err
	}
	header, err := types.EncodePaymentHeader(*payload)
	if err != nil {
		return nil, err
	}

	c.log.Info("retrying with payment",
		zap.String("asset", requirements.Asset),
		zap.String("payTo", requirements.PayTo),
		zap.String("amount", requirements.AmountExactAtomic),
		zap.String("invoiceId", challenge.Invoice.ID),
	)

	status, body, receiptHeader, err := c.get(ctx, url, header)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &UnexpectedStatusError{StatusCode: status, Body: string(body)}
	}

	paid := &PaidResponse{StatusCode: status, Body: body}
	if receiptHeader != "" {
		receipt, err := types.DecodeReceiptHeader(receiptHeader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode settlement receipt: %w", err)
		}
		paid.Receipt = &receipt
	}
	return paid, nil
}

// BuildPayload constructs and signs an authorization for exactly the
// required amount, valid until the current block height plus the
// configured offset.
func (c *Client) BuildPayload(ctx context.Context, requirements types.PaymentRequirements, invoice types.Invoice) (*types.PaymentPayload, error) {
	if requirements.Scheme != types.SchemeExact {
		return nil, fmt.Errorf("unsupported payment scheme %q", requirements.Scheme)
	}

	lc, err := ledger.NewClient(c.cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger client: %w", err)
	}
	height, err := lc.BlockHeight(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read block height: %w", err)
	}

	action, err := ledger.TransferAction(ledger.MethodTransfer, ledger.TransferArgs{
		ReceiverID: requirements.PayTo,
		Amount:     requirements.AmountExactAtomic,
		Memo:       invoice.ID,
	}, 30_000_000_000_000)
	if err != nil {
		return nil, err
	}

	sd, err := ledger.SignDelegate(ledger.DelegateAction{
		SenderID:       c.cfg.Keypair.AccountID,
		ReceiverID:     requirements.Asset,
		Actions:        []ledger.Action{action},
		Nonce:          randomNonce(),
		MaxBlockHeight: height + c.cfg.BlockOffset,
	}, c.cfg.Keypair)
	if err != nil {
		return nil, err
	}

	blob, err := ledger.EncodeSignedDelegate(sd)
	if err != nil {
		return nil, err
	}

	return &types.PaymentPayload{
		Scheme:            requirements.Scheme,
		Network:           requirements.Network,
		Asset:             requirements.Asset,
		PayTo:             requirements.PayTo,
		DelegateB64:       blob,
		InvoiceID:         invoice.ID,
		MaxAmountRequired: requirements.AmountExactAtomic,
	}, nil
}

func (c *Client) get(ctx context.Context, url, paymentHeader string) (int, []byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to build request: %w", err)
	}
	if paymentHeader != "" {
		req.Header.Set(types.PaymentHeader, paymentHeader)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, resp.Header.Get(types.PaymentResponseHeader), nil
}

func randomNonce() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint64(b[:])
}
