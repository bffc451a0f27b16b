package models

import (
	"encoding/json"
	"time"

	"github.com/akylbek/payment-system/payment-core/internal/money"
)

// Customer is the customer table record, already decrypted.
type Customer struct {
	CustomerID       string  `json:"customer_id"`
	MerchantID       string  `json:"merchant_id"`
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	PhoneCountryCode *string `json:"phone_country_code,omitempty"`
}

// CustomerData is the customer blob stored on the intent.
type CustomerData struct {
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	PhoneCountryCode *string `json:"phone_country_code,omitempty"`
}

type OnlineMandate struct {
	IPAddress *string `json:"ip_address,omitempty"`
	UserAgent string  `json:"user_agent"`
}

type CustomerAcceptance struct {
	AcceptanceType AcceptanceType `json:"acceptance_type"`
	AcceptedAt     *time.Time     `json:"accepted_at,omitempty"`
	Online         *OnlineMandate `json:"online,omitempty"`
}

type MandateAmountData struct {
	Amount    money.MinorUnit `json:"amount"`
	Currency  money.Currency  `json:"currency"`
	StartDate *time.Time      `json:"start_date,omitempty"`
	EndDate   *time.Time      `json:"end_date,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

type MandateKind string

const (
	MandateSingleUse MandateKind = "single_use"
	MandateMultiUse  MandateKind = "multi_use"
)

// MandateType is single use (Amount required) or multi use (Amount optional).
type MandateType struct {
	Kind   MandateKind        `json:"kind"`
	Amount *MandateAmountData `json:"amount,omitempty"`
}

type MandateData struct {
	UpdateMandateID    *string             `json:"update_mandate_id,omitempty"`
	CustomerAcceptance *CustomerAcceptance `json:"customer_acceptance,omitempty"`
	MandateType        *MandateType        `json:"mandate_type,omitempty"`
}

type MandateIDs struct {
	MandateID          *string `json:"mandate_id,omitempty"`
	MandateReferenceID *string `json:"mandate_reference_id,omitempty"`
}

type EphemeralKey struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
	CustomerID string `json:"customer_id"`
	CreatedAt  int64  `json:"created_at"`
	Expires    int64  `json:"expires"`
	Secret     string `json:"secret"`
}

type PaymentMethodInfo struct {
	PaymentMethodID string `json:"payment_method_id"`
	Status          string `json:"status"`
	// PaymentMethodBillingAddress is encrypted at rest.
	PaymentMethodBillingAddress []byte `json:"payment_method_billing_address,omitempty"`
}

// FraudCheck is the outcome of a fraud (frm) check on the payment.
type FraudCheck struct {
	FrmName            string          `json:"frm_name"`
	FrmTransactionID   *string         `json:"frm_transaction_id,omitempty"`
	FrmTransactionType string          `json:"frm_transaction_type"`
	FrmStatus          string          `json:"frm_status"`
	FrmScore           *int32          `json:"frm_score,omitempty"`
	FrmReason          json.RawMessage `json:"frm_reason,omitempty"`
	FrmError           *string         `json:"frm_error,omitempty"`
}

// MerchantRecipientData routes funds to a merchant-side recipient. When present
// it replaces the connector account metadata on the router record.
type MerchantRecipientData struct {
	ConnectorRecipientID *string         `json:"connector_recipient_id,omitempty"`
	WalletID             *string         `json:"wallet_id,omitempty"`
	AccountData          json.RawMessage `json:"account_data,omitempty"`
}
