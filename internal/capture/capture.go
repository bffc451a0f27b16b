// Package capture turns asynchronous capture-sync outcomes into local capture
// state updates.
package capture

import (
	"errors"
	"fmt"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/money"
)

// Status codes in this band leave the capture pending instead of failing it.
const (
	pendingStatusCodeMin = 500
	pendingStatusCodeMax = 511
)

// SyncResponse is the outcome of syncing one capture with the connector.
// Exactly one of Success and Error is set.
type SyncResponse struct {
	Success *SyncSuccess `json:"success,omitempty"`
	Error   *SyncError   `json:"error,omitempty"`
}

type SyncSuccess struct {
	ResourceID                   models.ResponseID    `json:"resource_id"`
	Status                       models.AttemptStatus `json:"status"`
	ConnectorResponseReferenceID *string              `json:"connector_response_reference_id,omitempty"`
	Amount                       *money.MinorUnit     `json:"amount,omitempty"`
}

type SyncError struct {
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	Reason     *string          `json:"reason,omitempty"`
	StatusCode int              `json:"status_code"`
	Amount     *money.MinorUnit `json:"amount,omitempty"`
}

type UpdateKind string

const (
	ResponseUpdate UpdateKind = "response_update"
	ErrorUpdate    UpdateKind = "error_update"
)

// Update is applied to the stored capture by the persistence layer.
type Update struct {
	Kind                         UpdateKind           `json:"kind"`
	Status                       models.CaptureStatus `json:"status"`
	ConnectorCaptureID           *string              `json:"connector_capture_id,omitempty"`
	ConnectorResponseReferenceID *string              `json:"connector_response_reference_id,omitempty"`
	ErrorCode                    *string              `json:"error_code,omitempty"`
	ErrorMessage                 *string              `json:"error_message,omitempty"`
	ErrorReason                  *string              `json:"error_reason,omitempty"`
}

// StatusFromAttempt maps a connector-reported attempt status onto a capture status.
func StatusFromAttempt(s models.AttemptStatus) (models.CaptureStatus, error) {
	switch s {
	case models.AttemptCharged, models.AttemptPartialCharged:
		return models.CaptureCharged, nil
	case models.AttemptPending, models.AttemptCaptureInitiated:
		return models.CapturePending, nil
	case models.AttemptCaptureFailed, models.AttemptFailure:
		return models.CaptureFailed, nil
	default:
		return "", apierror.PreconditionFailed(
			fmt.Sprintf("AttemptStatus %s cannot be mapped to a CaptureStatus", s))
	}
}

// ErrorStatus buckets a connector error status code.
func ErrorStatus(statusCode int) models.CaptureStatus {
	if statusCode >= pendingStatusCodeMin && statusCode <= pendingStatusCodeMax {
		return models.CapturePending
	}
	return models.CaptureFailed
}

// Reconcile converts one capture-sync outcome into a capture update.
func Reconcile(resp SyncResponse) (Update, error) {
	switch {
	case resp.Success != nil:
		s := resp.Success
		status, err := StatusFromAttempt(s.Status)
		if err != nil {
			return Update{}, err
		}
		var captureID *string
		if s.ResourceID.Kind == models.ResponseIDConnectorTransactionID {
			id := s.ResourceID.ID
			captureID = &id
		}
		return Update{
			Kind:                         ResponseUpdate,
			Status:                       status,
			ConnectorCaptureID:           captureID,
			ConnectorResponseReferenceID: s.ConnectorResponseReferenceID,
		}, nil
	case resp.Error != nil:
		e := resp.Error
		code, message := e.Code, e.Message
		return Update{
			Kind:         ErrorUpdate,
			Status:       ErrorStatus(e.StatusCode),
			ErrorCode:    &code,
			ErrorMessage: &message,
			ErrorReason:  e.Reason,
		}, nil
	default:
		return Update{}, apierror.Internal(errors.New("capture sync response carries neither success nor error"))
	}
}

// ReconcileAll reconciles responses keyed by connector capture id, preserving the key.
func ReconcileAll(responses map[string]SyncResponse) (map[string]Update, error) {
	out := make(map[string]Update, len(responses))
	for id, resp := range responses {
		u, err := Reconcile(resp)
		if err != nil {
			return nil, apierror.Attach(err, "reconcile capture %s", id)
		}
		out[id] = u
	}
	return out, nil
}
