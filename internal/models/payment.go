package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/akylbek/payment-system/payment-core/internal/money"
)

// PaymentIntent is the merchant-level payment object. Currency and ids never
// change after creation.
type PaymentIntent struct {
	PaymentID                       string                           `json:"payment_id"`
	MerchantID                      string                           `json:"merchant_id"`
	ProfileID                       *string                          `json:"profile_id,omitempty"`
	Status                          IntentStatus                     `json:"status"`
	Amount                          money.MinorUnit                  `json:"amount"`
	AmountCaptured                  *money.MinorUnit                 `json:"amount_captured,omitempty"`
	Currency                        *money.Currency                  `json:"currency,omitempty"`
	CustomerID                      *string                          `json:"customer_id,omitempty"`
	Description                     *string                          `json:"description,omitempty"`
	ReturnURL                       *string                          `json:"return_url,omitempty"`
	Metadata                        json.RawMessage                  `json:"metadata,omitempty"`
	ConnectorMetadata               json.RawMessage                  `json:"connector_metadata,omitempty"`
	FeatureMetadata                 json.RawMessage                  `json:"feature_metadata,omitempty"`
	FrmMetadata                     json.RawMessage                  `json:"frm_metadata,omitempty"`
	OrderDetails                    []json.RawMessage                `json:"order_details,omitempty"`
	AllowedPaymentMethodTypes       json.RawMessage                  `json:"allowed_payment_method_types,omitempty"`
	Charges                         json.RawMessage                  `json:"charges,omitempty"`
	CustomerDetails                 json.RawMessage                  `json:"customer_details,omitempty"`
	BillingDetails                  json.RawMessage                  `json:"billing_details,omitempty"`
	ShippingDetails                 json.RawMessage                  `json:"shipping_details,omitempty"`
	StatementDescriptorName         *string                          `json:"statement_descriptor_name,omitempty"`
	StatementDescriptorSuffix       *string                          `json:"statement_descriptor_suffix,omitempty"`
	SetupFutureUsage                *FutureUsage                     `json:"setup_future_usage,omitempty"`
	RequestIncrementalAuthorization *RequestIncrementalAuthorization `json:"request_incremental_authorization,omitempty"`
	IncrementalAuthorizationAllowed *bool                            `json:"incremental_authorization_allowed,omitempty"`
	AuthorizationCount              *int32                           `json:"authorization_count,omitempty"`
	BusinessCountry                 *string                          `json:"business_country,omitempty"`
	BusinessLabel                   *string                          `json:"business_label,omitempty"`
	ClientSecret                    *string                          `json:"client_secret,omitempty"`
	MerchantDecision                *string                          `json:"merchant_decision,omitempty"`
	PaymentConfirmSource            *string                          `json:"payment_confirm_source,omitempty"`
	AttemptCount                    int16                            `json:"attempt_count"`
	FingerprintID                   *string                          `json:"fingerprint_id,omitempty"`
	SessionExpiry                   *time.Time                       `json:"session_expiry,omitempty"`
	MerchantOrderReferenceID        *string                          `json:"merchant_order_reference_id,omitempty"`
	CreatedAt                       time.Time                        `json:"created_at"`
	ModifiedAt                      time.Time                        `json:"modified_at"`
}

// PaymentAttempt is one connector-facing try at completing an intent.
type PaymentAttempt struct {
	PaymentID                              string              `json:"payment_id"`
	MerchantID                             string              `json:"merchant_id"`
	AttemptID                              string              `json:"attempt_id"`
	Status                                 AttemptStatus       `json:"status"`
	Amount                                 money.MinorUnit     `json:"amount"`
	NetAmount                              money.MinorUnit     `json:"net_amount"`
	AmountCapturable                       money.MinorUnit     `json:"amount_capturable"`
	AmountToCapture                        *money.MinorUnit    `json:"amount_to_capture,omitempty"`
	SurchargeAmount                        *money.MinorUnit    `json:"surcharge_amount,omitempty"`
	TaxAmount                              *money.MinorUnit    `json:"tax_amount,omitempty"`
	Currency                               *money.Currency     `json:"currency,omitempty"`
	Connector                              *string             `json:"connector,omitempty"`
	MerchantConnectorID                    *string             `json:"merchant_connector_id,omitempty"`
	ConnectorTransactionID                 *string             `json:"connector_transaction_id,omitempty"`
	ConnectorResponseReferenceID           *string             `json:"connector_response_reference_id,omitempty"`
	AuthenticationType                     *AuthenticationType `json:"authentication_type,omitempty"`
	PaymentMethod                          *PaymentMethod      `json:"payment_method,omitempty"`
	PaymentMethodType                      *PaymentMethodType  `json:"payment_method_type,omitempty"`
	PaymentMethodID                        *string             `json:"payment_method_id,omitempty"`
	PaymentMethodData                      json.RawMessage     `json:"payment_method_data,omitempty"`
	PaymentExperience                      *string             `json:"payment_experience,omitempty"`
	PaymentToken                           *string             `json:"payment_token,omitempty"`
	CaptureMethod                          *CaptureMethod      `json:"capture_method,omitempty"`
	Confirm                                bool                `json:"confirm"`
	ErrorCode                              *string             `json:"error_code,omitempty"`
	ErrorMessage                           *string             `json:"error_message,omitempty"`
	ErrorReason                            *string             `json:"error_reason,omitempty"`
	UnifiedCode                            *string             `json:"unified_code,omitempty"`
	UnifiedMessage                         *string             `json:"unified_message,omitempty"`
	BrowserInfo                            json.RawMessage     `json:"browser_info,omitempty"`
	ConnectorMetadata                      json.RawMessage     `json:"connector_metadata,omitempty"`
	AuthenticationData                     json.RawMessage     `json:"authentication_data,omitempty"`
	EncodedData                            *string             `json:"encoded_data,omitempty"`
	CancellationReason                     *string             `json:"cancellation_reason,omitempty"`
	MandateID                              *string             `json:"mandate_id,omitempty"`
	BusinessSubLabel                       *string             `json:"business_sub_label,omitempty"`
	PreprocessingStepID                    *string             `json:"preprocessing_step_id,omitempty"`
	ChargeID                               *string             `json:"charge_id,omitempty"`
	ExternalThreeDSAuthenticationAttempted *bool               `json:"external_three_ds_authentication_attempted,omitempty"`
	CreatedAt                              time.Time           `json:"created_at"`
	ModifiedAt                             time.Time           `json:"modified_at"`
}

// Present reports whether an opaque JSON blob carries a value. An empty blob
// and a literal null are both absent.
func Present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
