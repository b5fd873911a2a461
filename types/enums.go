package types

// Scheme is the payment scheme enum.
type Scheme string

const (
	SchemeExact Scheme = "exact"
)

// InvalidReason is the verify rejection reason enum.
type InvalidReason string

const (
	InvalidReasonInvalidX402Version     InvalidReason = "invalid_x402_version"
	InvalidReasonInvalidScheme          InvalidReason = "invalid_scheme"
	InvalidReasonInvalidNetwork         InvalidReason = "invalid_network"
	InvalidReasonInvalidPaymentPayload  InvalidReason = "invalid_payment_payload"
	InvalidReasonInvalidRequirements    InvalidReason = "invalid_payment_requirements"
	InvalidReasonAssetMismatch          InvalidReason = "asset_mismatch"
	InvalidReasonRecipientMismatch      InvalidReason = "recipient_mismatch"
	InvalidReasonNetworkMismatch        InvalidReason = "network_mismatch"
	InvalidReasonMalformedAuthorization InvalidReason = "malformed_authorization"
	InvalidReasonWrongTarget            InvalidReason = "wrong_target"
	InvalidReasonNoMatchingTransfer     InvalidReason = "no_matching_transfer"
	InvalidReasonAmbiguousTransfer      InvalidReason = "ambiguous_transfer"
	InvalidReasonInvalidAmount          InvalidReason = "invalid_amount"
	InvalidReasonInvalidRequiredAmount  InvalidReason = "invalid_required_amount"
	InvalidReasonAmountMismatch         InvalidReason = "amount_mismatch"
	InvalidReasonInvalidSignature       InvalidReason = "invalid_signature"
)

// ErrorReason is the settle rejection reason enum.
type ErrorReason string

const (
	ErrorReasonInvalidX402Version     ErrorReason = "invalid_x402_version"
	ErrorReasonMalformedAuthorization ErrorReason = "malformed_authorization"
	ErrorReasonAlreadySettled         ErrorReason = "already_settled"
	ErrorReasonSettlementFailed       ErrorReason = "settlement_failed"
)

// ChallengeError is the machine-readable error carried in a repeated 402
// challenge from the resource server.
type ChallengeError string

const (
	ChallengeErrorMalformedPayment  ChallengeError = "MALFORMED_PAYMENT"
	ChallengeErrorPaymentInvalid    ChallengeError = "PAYMENT_INVALID"
	ChallengeErrorPaymentNotSettled ChallengeError = "PAYMENT_NOT_SETTLED"
)
