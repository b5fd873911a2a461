package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vaultpay/x402-go/auth"
	"github.com/vaultpay/x402-go/types"
)

func TestFacilitatorVerifyDecodesRejections(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(auth.HeaderAPIKey)

		var body types.VerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, types.X402Version1, body.X402Version)

		// Violations come back as 400 with a structured reason
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(types.VerifyResponse{
			Valid: false,
			Error: types.InvalidReasonAmountMismatch,
		})
	}))
	t.Cleanup(srv.Close)

	f := NewFacilitator(srv.URL, "secret-key", 5*time.Second)
	resp, err := f.Verify(context.Background(), types.PaymentPayload{}, types.PaymentRequirements{})
	require.NoError(t, err)
	require.False(t, resp.Valid)
	require.Equal(t, types.InvalidReasonAmountMismatch, resp.Error)
	require.Equal(t, "secret-key", gotKey)
}

func TestFacilitatorSettle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body types.SettleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "blob", body.AuthorizationBlob)

		json.NewEncoder(w).Encode(types.SettleResponse{OK: true, TxHash: "tx-1"})
	}))
	t.Cleanup(srv.Close)

	f := NewFacilitator(srv.URL, "", 5*time.Second)
	resp, err := f.Settle(context.Background(), "blob")
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Equal(t, "tx-1", resp.TxHash)
}

func TestFacilitatorSurfacesTransportErrors(t *testing.T) {
	f := NewFacilitator("http://127.0.0.1:1", "", time.Second)

	_, err := f.Verify(context.Background(), types.PaymentPayload{}, types.PaymentRequirements{})
	require.Error(t, err)

	_, err = f.Settle(context.Background(), "blob")
	require.Error(t, err)
}

func TestFacilitatorUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	f := NewFacilitator(srv.URL, "", time.Second)
	_, err := f.Settle(context.Background(), "blob")
	require.ErrorContains(t, err, "500")
}

func TestFacilitatorSupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.SupportedResponse{
			Kinds: []types.SupportedKind{{X402Version: 1, Scheme: types.SchemeExact, Network: "testnet"}},
		})
	}))
	t.Cleanup(srv.Close)

	f := NewFacilitator(srv.URL, "", time.Second)
	resp, err := f.Supported(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Kinds, 1)
}
