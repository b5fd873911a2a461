package types

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Protocol header names.
const (
	PaymentHeader         = "X-PAYMENT"
	PaymentResponseHeader = "X-PAYMENT-RESPONSE"
)

// EncodePaymentHeader serializes a payment payload into the base64 JSON
// form carried in the X-PAYMENT header.
func EncodePaymentHeader(p PaymentPayload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodePaymentHeader decodes the X-PAYMENT header value. Unknown fields
// are rejected so that shape errors surface at the protocol boundary.
func DecodePaymentHeader(value string) (PaymentPayload, error) {
	var p PaymentPayload
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return p, fmt.Errorf("failed to decode payment header: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("failed to unmarshal payment payload: %w", err)
	}
	if p.DelegateB64 == "" {
		return p, fmt.Errorf("payment payload missing delegateB64")
	}
	return p, nil
}

// EncodeReceiptHeader serializes a settlement receipt into the base64 JSON
// form carried in the X-PAYMENT-RESPONSE header.
func EncodeReceiptHeader(r SettlementReceipt) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settlement receipt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeReceiptHeader decodes the X-PAYMENT-RESPONSE header value.
func DecodeReceiptHeader(value string) (SettlementReceipt, error) {
	var r SettlementReceipt
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return r, fmt.Errorf("failed to decode receipt header: %w", err)
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("failed to unmarshal settlement receipt: %w", err)
	}
	return r, nil
}
