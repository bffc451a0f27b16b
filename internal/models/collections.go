package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/akylbek/payment-system/payment-core/internal/money"
)

type Refund struct {
	RefundID            string          `json:"refund_id"`
	PaymentID           string          `json:"payment_id"`
	Amount              money.MinorUnit `json:"amount"`
	Currency            money.Currency  `json:"currency"`
	Status              string          `json:"status"`
	Reason              *string         `json:"reason,omitempty"`
	Metadata            json.RawMessage `json:"metadata,omitempty"`
	ErrorCode           *string         `json:"error_code,omitempty"`
	ErrorMessage        *string         `json:"error_message,omitempty"`
	Connector           string          `json:"connector"`
	ProfileID           *string         `json:"profile_id,omitempty"`
	MerchantConnectorID *string         `json:"merchant_connector_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	ModifiedAt          time.Time       `json:"modified_at"`
}

type Dispute struct {
	DisputeID           string     `json:"dispute_id"`
	PaymentID           string     `json:"payment_id"`
	AttemptID           string     `json:"attempt_id"`
	Amount              string     `json:"amount"`
	Currency            string     `json:"currency"`
	DisputeStage        string     `json:"dispute_stage"`
	DisputeStatus       string     `json:"dispute_status"`
	Connector           string     `json:"connector"`
	ConnectorStatus     string     `json:"connector_status"`
	ConnectorDisputeID  string     `json:"connector_dispute_id"`
	ConnectorReason     *string    `json:"connector_reason,omitempty"`
	ConnectorReasonCode *string    `json:"connector_reason_code,omitempty"`
	ChallengeRequiredBy *time.Time `json:"challenge_required_by,omitempty"`
	ConnectorCreatedAt  *time.Time `json:"connector_created_at,omitempty"`
	ConnectorUpdatedAt  *time.Time `json:"connector_updated_at,omitempty"`
	ProfileID           *string    `json:"profile_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Authorization is one incremental authorization on the payment.
type Authorization struct {
	AuthorizationID            string          `json:"authorization_id"`
	MerchantID                 string          `json:"merchant_id"`
	PaymentID                  string          `json:"payment_id"`
	Amount                     money.MinorUnit `json:"amount"`
	Status                     string          `json:"status"`
	ErrorCode                  *string         `json:"error_code,omitempty"`
	ErrorMessage               *string         `json:"error_message,omitempty"`
	PreviouslyAuthorizedAmount money.MinorUnit `json:"previously_authorized_amount"`
	CreatedAt                  time.Time       `json:"created_at"`
}

type Capture struct {
	CaptureID                    string          `json:"capture_id"`
	PaymentID                    string          `json:"payment_id"`
	MerchantID                   string          `json:"merchant_id"`
	Status                       CaptureStatus   `json:"status"`
	Amount                       money.MinorUnit `json:"amount"`
	Currency                     *money.Currency `json:"currency,omitempty"`
	Connector                    string          `json:"connector"`
	ErrorCode                    *string         `json:"error_code,omitempty"`
	ErrorMessage                 *string         `json:"error_message,omitempty"`
	ErrorReason                  *string         `json:"error_reason,omitempty"`
	AuthorizedAttemptID          string          `json:"authorized_attempt_id"`
	CaptureSequence              int16           `json:"capture_sequence"`
	ConnectorCaptureID           *string         `json:"connector_capture_id,omitempty"`
	ConnectorResponseReferenceID *string         `json:"connector_response_reference_id,omitempty"`
	CreatedAt                    time.Time       `json:"created_at"`
	ModifiedAt                   time.Time       `json:"modified_at"`
}

// MultipleCaptureData is the capture set of a manual-multiple capture payment.
type MultipleCaptureData struct {
	Captures       []Capture `json:"captures"`
	ExpandCaptures *bool     `json:"expand_captures,omitempty"`
}

// AllCaptures returns the captures ordered by capture sequence.
func (m *MultipleCaptureData) AllCaptures() []Capture {
	out := append([]Capture(nil), m.Captures...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CaptureSequence < out[j].CaptureSequence
	})
	return out
}

func (m *MultipleCaptureData) CapturesCount() (int16, error) {
	if len(m.Captures) > math.MaxInt16 {
		return 0, fmt.Errorf("capture count %d overflows capture sequence", len(m.Captures))
	}
	return int16(len(m.Captures)), nil
}

// LatestCapture returns the capture with the highest sequence.
func (m *MultipleCaptureData) LatestCapture() (Capture, bool) {
	all := m.AllCaptures()
	if len(all) == 0 {
		return Capture{}, false
	}
	return all[len(all)-1], true
}

// PendingConnectorCaptureIDs lists connector capture ids still awaiting a final status.
func (m *MultipleCaptureData) PendingConnectorCaptureIDs() []string {
	var ids []string
	for _, c := range m.AllCaptures() {
		if c.Status == CapturePending && c.ConnectorCaptureID != nil {
			ids = append(ids, *c.ConnectorCaptureID)
		}
	}
	return ids
}

// ShouldExpand reports whether captures are included in the payments response.
func (m *MultipleCaptureData) ShouldExpand() bool {
	return m != nil && m.ExpandCaptures != nil && *m.ExpandCaptures
}

type SurchargeDetails struct {
	OriginalAmount       money.MinorUnit `json:"original_amount"`
	SurchargeAmount      money.MinorUnit `json:"surcharge_amount"`
	TaxOnSurchargeAmount money.MinorUnit `json:"tax_on_surcharge_amount"`
	FinalAmount          money.MinorUnit `json:"final_amount"`
}

type IncrementalAuthorizationDetails struct {
	AdditionalAmount money.MinorUnit `json:"additional_amount"`
	TotalAmount      money.MinorUnit `json:"total_amount"`
	Reason           *string         `json:"reason,omitempty"`
	AuthorizationID  *string         `json:"authorization_id,omitempty"`
}

type RedirectResponse struct {
	Param       *string         `json:"param,omitempty"`
	JSONPayload json.RawMessage `json:"json_payload,omitempty"`
}
