package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vaultpay/x402-go/types"
)

// Transport is an http.RoundTripper that performs the 402 exchange
// transparently: a Payment Required response is answered with a freshly
// signed authorization and the request is replayed once.
type Transport struct {
	// Base performs the actual requests; nil means
	// http.DefaultTransport.
	Base http.RoundTripper

	// Client signs the payment authorizations.
	Client *Client
}

// RoundTrip implements http.RoundTripper. Requests with a body are passed
// through untouched, since replaying them is not generally safe.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusPaymentRequired || req.Body != nil {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read payment challenge: %w", err)
	}

	var challenge types.PaymentRequired
	if err := json.Unmarshal(body, &challenge); err != nil {
		return nil, fmt.Errorf("failed to decode payment challenge: %w", err)
	}
	if len(challenge.Accepts) == 0 {
		return nil, fmt.Errorf("payment challenge offers no accepted requirements")
	}

	payload, err := t.Client.BuildPayload(req.Context(), challenge.Accepts[0], challenge.Invoice)
	if err != nil {
		return nil, err
	}
	header, err := types.EncodePaymentHeader(*payload)
	if err != nil {
		return nil, err
	}

	retry := req.Clone(req.Context())
	retry.Header.Set(types.PaymentHeader, header)
	return base.RoundTrip(retry)
}
