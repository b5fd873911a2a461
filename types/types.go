package types

import "encoding/json"

// X402Version1 is the only protocol version this implementation speaks.
const X402Version1 = 1

// PaymentRequirements describes a single way a resource server accepts
// payment for a resource. AmountExactAtomic is a decimal string in the
// asset's smallest unit; an exact match is required, not a minimum.
type PaymentRequirements struct {
	Scheme            Scheme `json:"scheme"`
	Network           string `json:"network"`
	Asset             string `json:"asset"`
	PayTo             string `json:"payTo"`
	AmountExactAtomic string `json:"amountExactAtomic"`
	MaxTimeoutSeconds int64  `json:"maxTimeoutSeconds,omitempty"`
	MimeType          string `json:"mimeType,omitempty"`
	Resource          string `json:"resource,omitempty"`
	Description       string `json:"description,omitempty"`
}

// Invoice is an opaque correlation token issued with every challenge.
// CreatedAt is a millisecond epoch timestamp.
type Invoice struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
}

// PaymentRequired is the body of a 402 challenge response.
type PaymentRequired struct {
	Accepts []PaymentRequirements `json:"accepts"`
	Invoice Invoice               `json:"invoice"`
	Error   ChallengeError        `json:"error,omitempty"`
}

// PaymentPayload is the client-constructed authorization evidence carried
// in the X-PAYMENT header. DelegateB64 is the base64 encoding of a signed
// delegate action targeting the asset contract.
type PaymentPayload struct {
	Scheme            Scheme `json:"scheme"`
	Network           string `json:"network"`
	Asset             string `json:"asset"`
	PayTo             string `json:"payTo"`
	DelegateB64       string `json:"delegateB64"`
	InvoiceID         string `json:"invoiceId,omitempty"`
	MaxAmountRequired string `json:"maxAmountRequired,omitempty"`
}

// VerifyRequest is the request body of the facilitator verify operation.
type VerifyRequest struct {
	X402Version         int             `json:"x402Version"`
	PaymentPayload      json.RawMessage `json:"paymentPayload"`
	PaymentRequirements json.RawMessage `json:"paymentRequirements"`
}

// SettleRequest is the request body of the facilitator settle operation.
// Settlement only needs the signed authorization itself; verify and settle
// are independent calls with no shared state between them.
type SettleRequest struct {
	X402Version       int    `json:"x402Version"`
	AuthorizationBlob string `json:"authorizationBlob"`
}

// VerifyResponse is the result of the verify operation.
type VerifyResponse struct {
	Valid  bool          `json:"valid"`
	Sender string        `json:"sender,omitempty"`
	Error  InvalidReason `json:"error,omitempty"`
}

// SettleResponse is the result of the settle operation.
type SettleResponse struct {
	OK        bool        `json:"ok"`
	TxHash    string      `json:"txHash,omitempty"`
	BlockHash string      `json:"blockHash,omitempty"`
	Status    string      `json:"status,omitempty"`
	Error     ErrorReason `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// SettlementReceipt is the proof of completion attached to a paid response
// in the X-PAYMENT-RESPONSE header. It is produced once by the facilitator
// and never modified afterwards.
type SettlementReceipt struct {
	OK        bool   `json:"ok"`
	TxHash    string `json:"txHash,omitempty"`
	BlockHash string `json:"blockHash,omitempty"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Receipt converts a settle response into the receipt form carried back to
// the client.
func (s SettleResponse) Receipt() SettlementReceipt {
	r := SettlementReceipt{
		OK:        s.OK,
		TxHash:    s.TxHash,
		BlockHash: s.BlockHash,
		Status:    s.Status,
	}
	if !s.OK {
		r.Error = string(s.Error)
		if s.Message != "" {
			r.Error = s.Message
		}
	}
	return r
}

// SupportedKind describes one scheme/network pair a facilitator serves.
type SupportedKind struct {
	X402Version int    `json:"x402Version"`
	Scheme      Scheme `json:"scheme"`
	Network     string `json:"network"`
}

// SupportedResponse is the response of the supported operation.
type SupportedResponse struct {
	Kinds []SupportedKind `json:"kinds"`
}
