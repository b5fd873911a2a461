// Package clients holds HTTP clients for the protocol's collaborator
// services.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vaultpay/x402-go/auth"
	"github.com/vaultpay/x402-go/types"
)

// Facilitator calls a verifier/settler service over HTTP.
type Facilitator struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewFacilitator creates a facilitator client. A zero timeout defaults to
// 30 seconds, the ceiling for a blocking settle call.
func NewFacilitator(baseURL, apiKey string, timeout time.Duration) *Facilitator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Facilitator{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Verify submits the payload and requirements for validation. Structured
// rejections are returned in the response, not as an error; an error means
// the facilitator was unreachable or answered garbage.
func (f *Facilitator) Verify(ctx context.Context, payload types.PaymentPayload, requirements types.PaymentRequirements) (*types.VerifyResponse, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment payload: %w", err)
	}
	requirementsJSON, err := json.Marshal(requirements)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment requirements: %w", err)
	}

	var response types.VerifyResponse
	err = f.post(ctx, "/verify", types.VerifyRequest{
		X402Version:         types.X402Version1,
		PaymentPayload:      payloadJSON,
		PaymentRequirements: requirementsJSON,
	}, &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Settle asks the facilitator to execute the signed authorization.
func (f *Facilitator) Settle(ctx context.Context, authorizationBlob string) (*types.SettleResponse, error) {
	var response types.SettleResponse
	err := f.post(ctx, "/settle", types.SettleRequest{
		X402Version:       types.X402Version1,
		AuthorizationBlob: authorizationBlob,
	}, &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// Supported queries the facilitator's supported scheme/network pairs.
func (f *Facilitator) Supported(ctx context.Context) (*types.SupportedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/supported", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build supported request: %w", err)
	}
	f.setHeaders(req)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach facilitator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facilitator supported returned status %d", resp.StatusCode)
	}
	var response types.SupportedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode supported response: %w", err)
	}
	return &response, nil
}

func (f *Facilitator) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if f.apiKey != "" {
		req.Header.Set(auth.HeaderAPIKey, f.apiKey)
	}
}

// post sends the body and decodes the JSON response for both 200 and 400
// answers, since a rule violation is a structured result rather than a
// transport failure.
func (f *Facilitator) post(ctx context.Context, path string, body, result any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	f.setHeaders(req)

	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach facilitator: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read facilitator response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("facilitator returned status %d: %s", resp.StatusCode, responseBody)
	}
	if err := json.Unmarshal(responseBody, result); err != nil {
		return fmt.Errorf("failed to decode facilitator response: %w", err)
	}
	return nil
}
