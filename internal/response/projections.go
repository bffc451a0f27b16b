package response

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/metadata"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/money"
	"github.com/akylbek/payment-system/payment-core/internal/routerdata"
)

type RefundResponse struct {
	RefundID            string          `json:"refund_id"`
	PaymentID           string          `json:"payment_id"`
	Amount              money.MinorUnit `json:"amount"`
	Currency            string          `json:"currency"`
	Status              string          `json:"status"`
	Reason              *string         `json:"reason,omitempty"`
	Metadata            json.RawMessage `json:"metadata,omitempty"`
	ErrorCode           *string         `json:"error_code,omitempty"`
	ErrorMessage        *string         `json:"error_message,omitempty"`
	Connector           string          `json:"connector"`
	ProfileID           *string         `json:"profile_id,omitempty"`
	MerchantConnectorID *string         `json:"merchant_connector_id,omitempty"`
	CreatedAt           *time.Time      `json:"created_at,omitempty"`
	UpdatedAt           *time.Time      `json:"updated_at,omitempty"`
}

func refundResponses(refunds []models.Refund) []RefundResponse {
	if len(refunds) == 0 {
		return nil
	}
	out := make([]RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		created, modified := r.CreatedAt, r.ModifiedAt
		out = append(out, RefundResponse{
			RefundID:            r.RefundID,
			PaymentID:           r.PaymentID,
			Amount:              r.Amount,
			Currency:            string(r.Currency),
			Status:              r.Status,
			Reason:              r.Reason,
			Metadata:            r.Metadata,
			ErrorCode:           r.ErrorCode,
			ErrorMessage:        r.ErrorMessage,
			Connector:           r.Connector,
			ProfileID:           r.ProfileID,
			MerchantConnectorID: r.MerchantConnectorID,
			CreatedAt:           &created,
			UpdatedAt:           &modified,
		})
	}
	return out
}

type DisputeResponse struct {
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

func disputeResponses(disputes []models.Dispute) []DisputeResponse {
	if len(disputes) == 0 {
		return nil
	}
	out := make([]DisputeResponse, 0, len(disputes))
	for _, d := range disputes {
		out = append(out, DisputeResponse(d))
	}
	return out
}

type AttemptResponse struct {
	AttemptID              string                     `json:"attempt_id"`
	Status                 models.AttemptStatus       `json:"status"`
	Amount                 money.MinorUnit            `json:"amount"`
	Currency               *money.Currency            `json:"currency,omitempty"`
	Connector              *string                    `json:"connector,omitempty"`
	ErrorMessage           *string                    `json:"error_message,omitempty"`
	PaymentMethod          *models.PaymentMethod      `json:"payment_method,omitempty"`
	ConnectorTransactionID *string                    `json:"connector_transaction_id,omitempty"`
	CaptureMethod          *models.CaptureMethod      `json:"capture_method,omitempty"`
	AuthenticationType     *models.AuthenticationType `json:"authentication_type,omitempty"`
	CreatedAt              time.Time                  `json:"created_at"`
	ModifiedAt             time.Time                  `json:"modified_at"`
	CancellationReason     *string                    `json:"cancellation_reason,omitempty"`
	MandateID              *string                    `json:"mandate_id,omitempty"`
	ErrorCode              *string                    `json:"error_code,omitempty"`
	PaymentToken           *string                    `json:"payment_token,omitempty"`
	ConnectorMetadata      json.RawMessage            `json:"connector_metadata,omitempty"`
	PaymentExperience      *string                    `json:"payment_experience,omitempty"`
	PaymentMethodType      *models.PaymentMethodType  `json:"payment_method_type,omitempty"`
	ReferenceID            *string                    `json:"reference_id,omitempty"`
	UnifiedCode            *string                    `json:"unified_code,omitempty"`
	UnifiedMessage         *string                    `json:"unified_message,omitempty"`
}

func attemptResponses(attempts []models.PaymentAttempt) []AttemptResponse {
	if attempts == nil {
		return nil
	}
	out := make([]AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, AttemptResponse{
			AttemptID:              a.AttemptID,
			Status:                 a.Status,
			Amount:                 a.Amount,
			Currency:               a.Currency,
			Connector:              a.Connector,
			ErrorMessage:           a.ErrorReason,
			PaymentMethod:          a.PaymentMethod,
			ConnectorTransactionID: a.ConnectorTransactionID,
			CaptureMethod:          a.CaptureMethod,
			AuthenticationType:     a.AuthenticationType,
			CreatedAt:              a.CreatedAt,
			ModifiedAt:             a.ModifiedAt,
			CancellationReason:     a.CancellationReason,
			MandateID:              a.MandateID,
			ErrorCode:              a.ErrorCode,
			PaymentToken:           a.PaymentToken,
			ConnectorMetadata:      a.ConnectorMetadata,
			PaymentExperience:      a.PaymentExperience,
			PaymentMethodType:      a.PaymentMethodType,
			ReferenceID:            a.ConnectorResponseReferenceID,
			UnifiedCode:            a.UnifiedCode,
			UnifiedMessage:         a.UnifiedMessage,
		})
	}
	return out
}

type CaptureResponse struct {
	CaptureID           string               `json:"capture_id"`
	Status              models.CaptureStatus `json:"status"`
	Amount              money.MinorUnit      `json:"amount"`
	Currency            *money.Currency      `json:"currency,omitempty"`
	Connector           string               `json:"connector"`
	AuthorizedAttemptID string               `json:"authorized_attempt_id"`
	ConnectorCaptureID  *string              `json:"connector_capture_id,omitempty"`
	CaptureSequence     int16                `json:"capture_sequence"`
	ErrorMessage        *string              `json:"error_message,omitempty"`
	ErrorCode           *string              `json:"error_code,omitempty"`
	ErrorReason         *string              `json:"error_reason,omitempty"`
	ReferenceID         *string              `json:"reference_id,omitempty"`
}

// captureResponses lists captures only when the client asked to expand them.
func captureResponses(m *models.MultipleCaptureData) []CaptureResponse {
	if !m.ShouldExpand() {
		return nil
	}
	all := m.AllCaptures()
	out := make([]CaptureResponse, 0, len(all))
	for _, c := range all {
		out = append(out, CaptureResponse{
			CaptureID:           c.CaptureID,
			Status:              c.Status,
			Amount:              c.Amount,
			Currency:            c.Currency,
			Connector:           c.Connector,
			AuthorizedAttemptID: c.AuthorizedAttemptID,
			ConnectorCaptureID:  c.ConnectorCaptureID,
			CaptureSequence:     c.CaptureSequence,
			ErrorMessage:        c.ErrorMessage,
			ErrorCode:           c.ErrorCode,
			ErrorReason:         c.ErrorReason,
			ReferenceID:         c.ConnectorResponseReferenceID,
		})
	}
	return out
}

type IncrementalAuthorizationResponse struct {
	AuthorizationID            string          `json:"authorization_id"`
	Amount                     money.MinorUnit `json:"amount"`
	Status                     string          `json:"status"`
	ErrorCode                  *string         `json:"error_code,omitempty"`
	ErrorMessage               *string         `json:"error_message,omitempty"`
	PreviouslyAuthorizedAmount money.MinorUnit `json:"previously_authorized_amount"`
}

func incrementalAuthorizationResponses(auths []models.Authorization) []IncrementalAuthorizationResponse {
	if len(auths) == 0 {
		return nil
	}
	out := make([]IncrementalAuthorizationResponse, 0, len(auths))
	for _, a := range auths {
		out = append(out, IncrementalAuthorizationResponse{
			AuthorizationID:            a.AuthorizationID,
			Amount:                     a.Amount,
			Status:                     a.Status,
			ErrorCode:                  a.ErrorCode,
			ErrorMessage:               a.ErrorMessage,
			PreviouslyAuthorizedAmount: a.PreviouslyAuthorizedAmount,
		})
	}
	return out
}

type ExternalAuthenticationDetails struct {
	AuthenticationFlow *string                     `json:"authentication_flow,omitempty"`
	ElectronicCommerce *string                     `json:"electronic_commerce_indicator,omitempty"`
	Status             models.AuthenticationStatus `json:"status"`
	DSTransactionID    *string                     `json:"ds_transaction_id,omitempty"`
	Version            *string                     `json:"version,omitempty"`
	ErrorCode          *string                     `json:"error_code,omitempty"`
	ErrorMessage       *string                     `json:"error_message,omitempty"`
}

func externalAuthenticationDetails(a *models.Authentication) *ExternalAuthenticationDetails {
	if a == nil {
		return nil
	}
	return &ExternalAuthenticationDetails{
		AuthenticationFlow: a.AuthenticationFlow,
		ElectronicCommerce: a.ECI,
		Status:             a.AuthenticationStatus,
		DSTransactionID:    a.DSTransID,
		Version:            a.MessageVersion,
		ErrorCode:          a.ErrorCode,
		ErrorMessage:       a.ErrorMessage,
	}
}

type OnlineMandateResponse struct {
	IPAddress *string `json:"ip_address,omitempty"`
	UserAgent string  `json:"user_agent"`
}

type CustomerAcceptanceResponse struct {
	AcceptanceType models.AcceptanceType  `json:"acceptance_type"`
	AcceptedAt     *time.Time             `json:"accepted_at,omitempty"`
	Online         *OnlineMandateResponse `json:"online,omitempty"`
}

// MandateTypeResponse is written as {"single_use": {...}} or {"multi_use": {...}|null}.
type MandateTypeResponse struct {
	Kind   models.MandateKind
	Amount *models.MandateAmountData
}

func (m MandateTypeResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[models.MandateKind]*models.MandateAmountData{m.Kind: m.Amount})
}

type MandateDataResponse struct {
	UpdateMandateID    *string                     `json:"update_mandate_id,omitempty"`
	CustomerAcceptance *CustomerAcceptanceResponse `json:"customer_acceptance,omitempty"`
	MandateType        *MandateTypeResponse        `json:"mandate_type,omitempty"`
}

func mandateData(d *models.MandateData) *MandateDataResponse {
	if d == nil {
		return nil
	}
	out := &MandateDataResponse{UpdateMandateID: d.UpdateMandateID}
	if ca := d.CustomerAcceptance; ca != nil {
		acceptance := &CustomerAcceptanceResponse{AcceptanceType: ca.AcceptanceType, AcceptedAt: ca.AcceptedAt}
		if ca.Online != nil {
			acceptance.Online = &OnlineMandateResponse{IPAddress: ca.Online.IPAddress, UserAgent: ca.Online.UserAgent}
		}
		out.CustomerAcceptance = acceptance
	}
	if mt := d.MandateType; mt != nil {
		out.MandateType = &MandateTypeResponse{Kind: mt.Kind, Amount: mt.Amount}
	}
	return out
}

type EphemeralKeyResponse struct {
	CustomerID string `json:"customer_id"`
	CreatedAt  int64  `json:"created_at"`
	Expires    int64  `json:"expires"`
	Secret     string `json:"secret"`
}

func ephemeralKey(k *models.EphemeralKey) *EphemeralKeyResponse {
	if k == nil {
		return nil
	}
	return &EphemeralKeyResponse{CustomerID: k.CustomerID, CreatedAt: k.CreatedAt, Expires: k.Expires, Secret: k.Secret}
}

type FrmMessage struct {
	FrmName            string          `json:"frm_name"`
	FrmTransactionID   *string         `json:"frm_transaction_id,omitempty"`
	FrmTransactionType *string         `json:"frm_transaction_type,omitempty"`
	FrmStatus          *string         `json:"frm_status,omitempty"`
	FrmScore           *int32          `json:"frm_score,omitempty"`
	FrmReason          json.RawMessage `json:"frm_reason,omitempty"`
	FrmError           *string         `json:"frm_error,omitempty"`
}

func frmMessage(f *models.FraudCheck) *FrmMessage {
	if f == nil {
		return nil
	}
	txType, status := f.FrmTransactionType, f.FrmStatus
	return &FrmMessage{
		FrmName:            f.FrmName,
		FrmTransactionID:   f.FrmTransactionID,
		FrmTransactionType: &txType,
		FrmStatus:          &status,
		FrmScore:           f.FrmScore,
		FrmReason:          f.FrmReason,
		FrmError:           f.FrmError,
	}
}

type ChargesResponse struct {
	ChargeID          *string             `json:"charge_id,omitempty"`
	ChargeType        metadata.ChargeType `json:"charge_type"`
	ApplicationFees   money.MinorUnit     `json:"application_fees"`
	TransferAccountID string              `json:"transfer_account_id"`
}

// charges is strict: stored charges that do not parse fail the response.
func charges(intent *models.PaymentIntent, attempt *models.PaymentAttempt) (*ChargesResponse, error) {
	parsed, err := metadata.ParseCharges(intent.Charges)
	if err != nil {
		return nil, apierror.Attach(apierror.Internal(err),
			"failed to parse PaymentChargeRequest for payment_intent %s", intent.PaymentID)
	}
	if parsed == nil {
		return nil, nil
	}
	return &ChargesResponse{
		ChargeID:          attempt.ChargeID,
		ChargeType:        parsed.ChargeType,
		ApplicationFees:   parsed.Fees,
		TransferAccountID: parsed.TransferAccountID,
	}, nil
}

// connectorLabel is {connector}_{country}_{label}[_{sub_label}] when the
// intent carries both a business country and label.
func connectorLabel(intent *models.PaymentIntent, attempt *models.PaymentAttempt) *string {
	if attempt.Connector == nil || intent.BusinessCountry == nil || intent.BusinessLabel == nil {
		return nil
	}
	label := fmt.Sprintf("%s_%s_%s", *attempt.Connector, *intent.BusinessCountry, *intent.BusinessLabel)
	if attempt.BusinessSubLabel != nil {
		label += "_" + *attempt.BusinessSubLabel
	}
	return &label
}

// manualRetryAllowed is set only for failed intents whose attempt ended in a
// terminal failure, and never for merchants referenced by payment id. Any
// other intent status answers false; a failed intent with a non-failure
// attempt status has no answer.
func manualRetryAllowed(intent *models.PaymentIntent, attempt *models.PaymentAttempt, refs routerdata.ReferenceIDConfig) *bool {
	eligible := false
	if intent.Status == models.IntentFailed {
		switch attempt.Status {
		case models.AttemptAuthenticationFailed, models.AttemptRouterDeclined, models.AttemptAuthorizationFailed,
			models.AttemptVoidFailed, models.AttemptCaptureFailed, models.AttemptFailure:
			eligible = true
		default:
			return nil
		}
	}
	allowed := eligible && !refs.UsesPaymentID(attempt.MerchantID)
	return &allowed
}
