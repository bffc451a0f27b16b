package flows

import (
	"encoding/json"
	"errors"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/metadata"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/money"
)

type SyncType string

const (
	SinglePaymentSync   SyncType = "single_payment_sync"
	MultipleCaptureSync SyncType = "multiple_capture_sync"
)

type SyncData struct {
	Amount                 money.MinorUnit           `json:"amount"`
	Currency               money.Currency            `json:"currency"`
	ConnectorTransactionID models.ResponseID         `json:"connector_transaction_id"`
	EncodedData            *string                   `json:"encoded_data,omitempty"`
	CaptureMethod          *models.CaptureMethod     `json:"capture_method,omitempty"`
	ConnectorMeta          json.RawMessage           `json:"connector_meta,omitempty"`
	SyncType               SyncType                  `json:"sync_type"`
	PendingCaptureIDs      []string                  `json:"pending_capture_ids,omitempty"`
	MandateID              *models.MandateIDs        `json:"mandate_id,omitempty"`
	PaymentMethodType      *models.PaymentMethodType `json:"payment_method_type,omitempty"`
	PaymentExperience      *string                   `json:"payment_experience,omitempty"`
}

func buildSync(in *Input) (Request, error) {
	d := &in.Data
	req := SyncData{
		Amount:                 d.EffectiveAmount(),
		Currency:               d.Currency,
		ConnectorTransactionID: models.ResponseIDFromTransaction(d.Attempt.ConnectorTransactionID),
		EncodedData:            d.Attempt.EncodedData,
		CaptureMethod:          d.Attempt.CaptureMethod,
		ConnectorMeta:          d.Attempt.ConnectorMetadata,
		SyncType:               SinglePaymentSync,
		MandateID:              d.MandateID,
		PaymentMethodType:      d.Attempt.PaymentMethodType,
		PaymentExperience:      d.Attempt.PaymentExperience,
	}
	if d.MultipleCaptureData != nil {
		req.SyncType = MultipleCaptureSync
		req.PendingCaptureIDs = d.MultipleCaptureData.PendingConnectorCaptureIDs()
	}
	return req, nil
}

type MultipleCaptureRequestData struct {
	CaptureSequence  int16  `json:"capture_sequence"`
	CaptureReference string `json:"capture_reference"`
}

type CaptureData struct {
	AmountToCapture        Amount                       `json:"amount_to_capture"`
	PaymentAmount          Amount                       `json:"payment_amount"`
	Currency               money.Currency               `json:"currency"`
	ConnectorTransactionID string                       `json:"connector_transaction_id"`
	ConnectorMeta          json.RawMessage              `json:"connector_meta,omitempty"`
	MultipleCaptureData    *MultipleCaptureRequestData  `json:"multiple_capture_data,omitempty"`
	BrowserInfo            *metadata.BrowserInformation `json:"browser_info,omitempty"`
	Metadata               json.RawMessage              `json:"metadata,omitempty"`
}

func buildCapture(in *Input) (Request, error) {
	d := &in.Data
	amount := d.EffectiveAmount()
	toCapture := amount
	if d.Attempt.AmountToCapture != nil {
		toCapture = *d.Attempt.AmountToCapture
	}
	txnID, err := transactionID(in)
	if err != nil {
		return nil, err
	}
	browser, err := browserInfo(&d.Attempt)
	if err != nil {
		return nil, err
	}
	var multi *MultipleCaptureRequestData
	if d.MultipleCaptureData != nil {
		seq, err := d.MultipleCaptureData.CapturesCount()
		if err != nil {
			return nil, apierror.Internal(err)
		}
		latest, ok := d.MultipleCaptureData.LatestCapture()
		if !ok {
			return nil, apierror.Attach(apierror.Internal(errors.New("empty capture set")),
				"multiple capture data has no captures")
		}
		multi = &MultipleCaptureRequestData{CaptureSequence: seq, CaptureReference: latest.CaptureID}
	}
	return CaptureData{
		AmountToCapture:        newAmount(toCapture),
		PaymentAmount:          newAmount(amount),
		Currency:               d.Currency,
		ConnectorTransactionID: txnID,
		ConnectorMeta:          d.Attempt.ConnectorMetadata,
		MultipleCaptureData:    multi,
		BrowserInfo:            browser,
		Metadata:               d.Intent.Metadata,
	}, nil
}

type CancelData struct {
	Amount                 Amount                       `json:"amount"`
	Currency               money.Currency               `json:"currency"`
	ConnectorTransactionID string                       `json:"connector_transaction_id"`
	CancellationReason     *string                      `json:"cancellation_reason,omitempty"`
	ConnectorMeta          json.RawMessage              `json:"connector_meta,omitempty"`
	BrowserInfo            *metadata.BrowserInformation `json:"browser_info,omitempty"`
	Metadata               json.RawMessage              `json:"metadata,omitempty"`
}

func buildCancel(in *Input) (Request, error) {
	d := &in.Data
	browser, err := browserInfo(&d.Attempt)
	if err != nil {
		return nil, err
	}
	txnID, err := transactionID(in)
	if err != nil {
		return nil, err
	}
	return CancelData{
		Amount:                 effectiveAmount(d),
		Currency:               d.Currency,
		ConnectorTransactionID: txnID,
		CancellationReason:     d.Attempt.CancellationReason,
		ConnectorMeta:          d.Attempt.ConnectorMetadata,
		BrowserInfo:            browser,
		Metadata:               d.Intent.Metadata,
	}, nil
}

type ApproveData struct {
	Amount   Amount         `json:"amount"`
	Currency money.Currency `json:"currency"`
}

func buildApprove(in *Input) (Request, error) {
	return ApproveData{Amount: effectiveAmount(&in.Data), Currency: in.Data.Currency}, nil
}

type RejectData struct {
	Amount   Amount         `json:"amount"`
	Currency money.Currency `json:"currency"`
}

func buildReject(in *Input) (Request, error) {
	return RejectData{Amount: effectiveAmount(&in.Data), Currency: in.Data.Currency}, nil
}

type IncrementalAuthorizationData struct {
	TotalAmount            int64          `json:"total_amount"`
	AdditionalAmount       int64          `json:"additional_amount"`
	Currency               money.Currency `json:"currency"`
	Reason                 *string        `json:"reason,omitempty"`
	ConnectorTransactionID string         `json:"connector_transaction_id"`
}

func buildIncrementalAuthorization(in *Input) (Request, error) {
	d := &in.Data
	details := d.IncrementalAuthorizationDetails
	if details == nil {
		return nil, apierror.Attach(apierror.Internal(errors.New("incremental authorization details absent")),
			"missing incremental_authorization_details in payment data")
	}
	txnID, err := transactionID(in)
	if err != nil {
		return nil, err
	}
	return IncrementalAuthorizationData{
		TotalAmount:            details.TotalAmount.Int64(),
		AdditionalAmount:       details.AdditionalAmount.Int64(),
		Currency:               d.Currency,
		Reason:                 details.Reason,
		ConnectorTransactionID: txnID,
	}, nil
}

type SessionData struct {
	Amount           Amount                            `json:"amount"`
	Currency         money.Currency                    `json:"currency"`
	Country          *string                           `json:"country,omitempty"`
	OrderDetails     []metadata.OrderDetailsWithAmount `json:"order_details,omitempty"`
	SurchargeDetails *models.SurchargeDetails          `json:"surcharge_details,omitempty"`
}

func buildSession(in *Input) (Request, error) {
	d := &in.Data
	orders, err := orderDetails(&d.Intent)
	if err != nil {
		return nil, err
	}
	var country *string
	if billing := d.Address.GetPaymentMethodBilling(); billing != nil && billing.Address != nil {
		country = billing.Address.Country
	}
	return SessionData{
		Amount:           effectiveAmount(d),
		Currency:         d.Currency,
		Country:          country,
		OrderDetails:     orders,
		SurchargeDetails: d.SurchargeDetails,
	}, nil
}
