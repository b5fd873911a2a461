package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vaultpay/x402-go/auth"
	"github.com/vaultpay/x402-go/core"
	"github.com/vaultpay/x402-go/ledger"
	"github.com/vaultpay/x402-go/store"
	"github.com/vaultpay/x402-go/types"
)

func testHandler(t *testing.T, apiKey string) *Handler {
	t.Helper()
	relayer, err := ledger.NewKeypair("relayer")
	require.NoError(t, err)
	return New(zap.NewNop(), auth.New(apiKey), core.Config{
		Network: "testnet",
		RPCURL:  "http://ledger.invalid",
		Relayer: relayer,
		Store:   store.Nop{},
	}, NewMetrics())
}

type stubLedger struct {
	submission *ledger.Submission
	err        error
}

func (s *stubLedger) SubmitDelegate(ctx context.Context, relayer *ledger.Keypair, sd *ledger.SignedDelegate) (*ledger.Submission, error) {
	return s.submission, s.err
}

func (s *stubLedger) BlockHeight(ctx context.Context) (uint64, error) { return 100, nil }

func useStubLedger(t *testing.T, s *stubLedger) {
	t.Helper()
	original := ledger.NewClient
	t.Cleanup(func() { ledger.NewClient = original })
	ledger.NewClient = func(rpcURL string) (ledger.Client, error) { return s, nil }
}

func signedPayload(t *testing.T, amount string) types.PaymentPayload {
	t.Helper()
	kp, err := ledger.NewKeypair("buyer")
	require.NoError(t, err)

	action, err := ledger.TransferAction(ledger.MethodTransfer, ledger.TransferArgs{
		ReceiverID: "seller",
		Amount:     amount,
	}, 0)
	require.NoError(t, err)

	sd, err := ledger.SignDelegate(ledger.DelegateAction{
		SenderID:       "buyer",
		ReceiverID:     "tok",
		Actions:        []ledger.Action{action},
		Nonce:          1,
		MaxBlockHeight: 500,
	}, kp)
	require.NoError(t, err)

	blob, err := ledger.EncodeSignedDelegate(sd)
	require.NoError(t, err)

	return types.PaymentPayload{
		Scheme:      types.SchemeExact,
		Network:     "testnet",
		Asset:       "tok",
		PayTo:       "seller",
		DelegateB64: blob,
	}
}

func verifyBody(t *testing.T, payload types.PaymentPayload) string {
	t.Helper()
	payloadJSON, err := json.Marshal(payload)
	require.NoError(t, err)
	reqsJSON, err := json.Marshal(types.PaymentRequirements{
		Scheme:            types.SchemeExact,
		Network:           "testnet",
		Asset:             "tok",
		PayTo:             "seller",
		AmountExactAtomic: "1000",
	})
	require.NoError(t, err)

	body, err := json.Marshal(types.VerifyRequest{
		X402Version:         types.X402Version1,
		PaymentPayload:      payloadJSON,
		PaymentRequirements: reqsJSON,
	})
	require.NoError(t, err)
	return string(body)
}

func doRequest(t *testing.T, h *Handler, method, path, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if apiKey != "" {
		req.Header.Set(auth.HeaderAPIKey, apiKey)
	}
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestVerifyEndpoint(t *testing.T) {
	h := testHandler(t, "")

	t.Run("valid payment", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/verify", "", verifyBody(t, signedPayload(t, "1000")))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp types.VerifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Valid)
		require.Equal(t, "buyer", resp.Sender)
	})

	t.Run("amount mismatch is a 400 with reason", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/verify", "", verifyBody(t, signedPayload(t, "999")))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp types.VerifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.False(t, resp.Valid)
		require.Equal(t, types.InvalidReasonAmountMismatch, resp.Error)
	})

	t.Run("invalid body JSON", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/verify", "", "{invalid json}")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown payload field rejected", func(t *testing.T) {
		body := `{
			"x402Version": 1,
			"paymentPayload": {"scheme": "exact", "network": "testnet", "surprise": true},
			"paymentRequirements": {"scheme": "exact", "network": "testnet"}
		}`
		rec := doRequest(t, h, http.MethodPost, "/verify", "", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported version", func(t *testing.T) {
		body := `{"x402Version": 2, "paymentPayload": {}, "paymentRequirements": {}}`
		rec := doRequest(t, h, http.MethodPost, "/verify", "", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp types.VerifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, types.InvalidReasonInvalidX402Version, resp.Error)
	})
}

func TestVerifyEndpointAuthentication(t *testing.T) {
	h := testHandler(t, "valid-api-key")
	body := verifyBody(t, signedPayload(t, "1000"))

	t.Run("valid api key", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/verify", "valid-api-key", body)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid api key", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/verify", "invalid-api-key", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing api key", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/verify", "", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSettleEndpoint(t *testing.T) {
	h := testHandler(t, "")
	blob := signedPayload(t, "1000").DelegateB64

	settleBody := func(blob string) string {
		b, err := json.Marshal(types.SettleRequest{
			X402Version:       types.X402Version1,
			AuthorizationBlob: blob,
		})
		require.NoError(t, err)
		return string(b)
	}

	t.Run("successful settlement", func(t *testing.T) {
		useStubLedger(t, &stubLedger{
			submission: &ledger.Submission{TxHash: "tx-1", BlockHash: "block-1", Status: "SuccessValue"},
		})

		rec := doRequest(t, h, http.MethodPost, "/settle", "", settleBody(blob))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp types.SettleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.OK)
		require.Equal(t, "tx-1", resp.TxHash)
	})

	t.Run("ledger rejection", func(t *testing.T) {
		useStubLedger(t, &stubLedger{err: errors.New("duplicate nonce")})

		rec := doRequest(t, h, http.MethodPost, "/settle", "", settleBody(blob))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp types.SettleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.False(t, resp.OK)
		require.Equal(t, types.ErrorReasonSettlementFailed, resp.Error)
		require.Contains(t, resp.Message, "duplicate nonce")
	})

	t.Run("corrupted blob", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/settle", "", settleBody("%%%"))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp types.SettleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, types.ErrorReasonMalformedAuthorization, resp.Error)
	})

	t.Run("missing blob", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/settle", "", `{"x402Version": 1}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSupportedEndpoint(t *testing.T) {
	h := testHandler(t, "")

	rec := doRequest(t, h, http.MethodGet, "/supported", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.SupportedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Kinds, 1)
	require.Equal(t, types.SchemeExact, resp.Kinds[0].Scheme)
	require.Equal(t, "testnet", resp.Kinds[0].Network)
}
