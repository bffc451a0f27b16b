package models

import (
	"encoding/json"

	"github.com/akylbek/payment-system/payment-core/internal/money"
)

// PaymentData is the in-memory snapshot of one payment attempt in flight: the
// intent, its active attempt, and the side collections fetched alongside them.
// It is owned by the caller and copied into every builder invocation.
type PaymentData struct {
	Intent  PaymentIntent  `json:"payment_intent"`
	Attempt PaymentAttempt `json:"payment_attempt"`

	Amount   money.MinorUnit `json:"amount"`
	Currency money.Currency  `json:"currency"`
	Email    *string         `json:"email,omitempty"`

	// PaymentMethodData is the raw payment method data sent with the request.
	// It is handed to connectors untouched.
	PaymentMethodData json.RawMessage `json:"payment_method_data,omitempty"`
	Token             *string         `json:"token,omitempty"`
	PMToken           *string         `json:"pm_token,omitempty"`
	Address           PaymentAddress  `json:"address"`

	MandateID                   *MandateIDs         `json:"mandate_id,omitempty"`
	SetupMandate                *MandateData        `json:"setup_mandate,omitempty"`
	CustomerAcceptance          *CustomerAcceptance `json:"customer_acceptance,omitempty"`
	RecurringMandatePaymentData json.RawMessage     `json:"recurring_mandate_payment_data,omitempty"`

	Refunds             []Refund             `json:"refunds,omitempty"`
	Disputes            []Dispute            `json:"disputes,omitempty"`
	Authorizations      []Authorization      `json:"authorizations,omitempty"`
	Attempts            []PaymentAttempt     `json:"attempts,omitempty"`
	MultipleCaptureData *MultipleCaptureData `json:"multiple_capture_data,omitempty"`

	SurchargeDetails                *SurchargeDetails                `json:"surcharge_details,omitempty"`
	IncrementalAuthorizationDetails *IncrementalAuthorizationDetails `json:"incremental_authorization_details,omitempty"`
	Authentication                  *Authentication                  `json:"authentication,omitempty"`
	PollConfig                      *PollConfig                      `json:"poll_config,omitempty"`
	RedirectResponse                *RedirectResponse                `json:"redirect_response,omitempty"`

	SessionsToken       []json.RawMessage  `json:"sessions_token,omitempty"`
	EphemeralKey        *EphemeralKey      `json:"ephemeral_key,omitempty"`
	PaymentMethodInfo   *PaymentMethodInfo `json:"payment_method_info,omitempty"`
	FrmMessage          *FraudCheck        `json:"frm_message,omitempty"`
	CredsIdentifier     *string            `json:"creds_identifier,omitempty"`
	ConnectorCustomerID *string            `json:"connector_customer_id,omitempty"`
	PaymentLinkData     json.RawMessage    `json:"payment_link_data,omitempty"`
}

// EffectiveAmount is the amount every downstream computation uses: the
// surcharge's final amount when surcharge details exist, else the base amount.
func (p *PaymentData) EffectiveAmount() money.MinorUnit {
	if p.SurchargeDetails != nil {
		return p.SurchargeDetails.FinalAmount
	}
	return p.Amount
}

// MandateIDValue returns the mandate id when one is attached.
func (p *PaymentData) MandateIDValue() *string {
	if p.MandateID == nil {
		return nil
	}
	return p.MandateID.MandateID
}

// OffSession is true iff a mandate id is present.
func (p *PaymentData) OffSession() *bool {
	if p.MandateID == nil {
		return nil
	}
	return Ptr(true)
}

// Clone returns a copy whose slices and maps do not alias p's.
func (p *PaymentData) Clone() PaymentData {
	out := *p
	out.Refunds = append([]Refund(nil), p.Refunds...)
	out.Disputes = append([]Dispute(nil), p.Disputes...)
	out.Authorizations = append([]Authorization(nil), p.Authorizations...)
	if p.Attempts != nil {
		out.Attempts = append([]PaymentAttempt(nil), p.Attempts...)
	}
	out.SessionsToken = append([]json.RawMessage(nil), p.SessionsToken...)
	out.Intent.OrderDetails = append([]json.RawMessage(nil), p.Intent.OrderDetails...)
	if p.MultipleCaptureData != nil {
		mcd := *p.MultipleCaptureData
		mcd.Captures = append([]Capture(nil), p.MultipleCaptureData.Captures...)
		out.MultipleCaptureData = &mcd
	}
	return out
}
