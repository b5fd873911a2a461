package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Submission is the outcome of a submitted delegate action.
type Submission struct {
	TxHash    string `json:"txHash"`
	BlockHash string `json:"blockHash"`
	Status    string `json:"status"`
}

// Client is the ledger collaborator interface: submission of a pre-signed
// delegate action wrapped by a relaying identity, and the current block
// height for validity bounds.
type Client interface {
	SubmitDelegate(ctx context.Context, relayer *Keypair, sd *SignedDelegate) (*Submission, error)
	BlockHeight(ctx context.Context) (uint64, error)
}

// NewClient creates a new ledger RPC client. This function can be
// overridden in tests.
var NewClient = func(rpcURL string) (Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("ledger RPC URL is not set")
	}
	return &rpcClient{
		url:  rpcURL,
		http: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type rpcClient struct {
	url  string
	http *http.Client
	id   atomic.Int64
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("ledger rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type submitDelegateParams struct {
	RelayerID        string `json:"relayerId"`
	RelayerSignature string `json:"relayerSignature"`
	SignedDelegate   string `json:"signedDelegate"`
}

// SubmitDelegate submits the signed delegate as a meta-transaction: the
// relayer signs over the encoded envelope and bears all execution cost,
// while the inner signature alone authorizes the transfer.
func (c *rpcClient) SubmitDelegate(ctx context.Context, relayer *Keypair, sd *SignedDelegate) (*Submission, error) {
	blob, err := EncodeSignedDelegate(sd)
	if err != nil {
		return nil, err
	}
	wrapSig := ed25519.Sign(relayer.PrivateKey, []byte(blob))
	params := submitDelegateParams{
		RelayerID:        relayer.AccountID,
		RelayerSignature: base64.StdEncoding.EncodeToString(wrapSig),
		SignedDelegate:   blob,
	}

	var sub Submission
	if err := c.call(ctx, "broadcast_delegate", params, &sub); err != nil {
		return nil, err
	}
	if sub.TxHash == "" {
		return nil, fmt.Errorf("ledger returned submission without transaction hash")
	}
	return &sub, nil
}

// BlockHeight returns the current ledger block height.
func (c *rpcClient) BlockHeight(ctx context.Context) (uint64, error) {
	var result struct {
		Height uint64 `json:"height"`
	}
	if err := c.call(ctx, "block_height", nil, &result); err != nil {
		return 0, err
	}
	return result.Height, nil
}

func (c *rpcClient) call(ctx context.Context, method string, params, result any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.id.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach ledger rpc: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read rpc response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger rpc returned status %d: %s", resp.StatusCode, raw)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("failed to unmarshal rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal rpc result: %w", err)
		}
	}
	return nil
}
