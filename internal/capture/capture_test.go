package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/models"
)

func TestReconcileErrorBucketing(t *testing.T) {
	tests := []struct {
		statusCode int
		want       models.CaptureStatus
	}{
		{499, models.CaptureFailed},
		{500, models.CapturePending},
		{503, models.CapturePending},
		{511, models.CapturePending},
		{512, models.CaptureFailed},
		{400, models.CaptureFailed},
	}
	for _, tt := range tests {
		reason := "upstream"
		u, err := Reconcile(SyncResponse{Error: &SyncError{
			Code: "E1", Message: "boom", Reason: &reason, StatusCode: tt.statusCode,
		}})
		require.NoError(t, err)
		assert.Equal(t, ErrorUpdate, u.Kind)
		assert.Equal(t, tt.want, u.Status, "status code %d", tt.statusCode)
		assert.Equal(t, "E1", *u.ErrorCode)
		assert.Equal(t, "boom", *u.ErrorMessage)
		assert.Equal(t, "upstream", *u.ErrorReason)
	}
}

func TestReconcileSuccess(t *testing.T) {
	ref := "ref_1"
	tests := []struct {
		name       string
		resourceID models.ResponseID
		status     models.AttemptStatus
		wantStatus models.CaptureStatus
		wantID     *string
	}{
		{"charged with transaction id", models.ResponseID{Kind: models.ResponseIDConnectorTransactionID, ID: "cc_1"},
			models.AttemptCharged, models.CaptureCharged, models.Ptr("cc_1")},
		{"encoded data yields no id", models.ResponseID{Kind: models.ResponseIDEncodedData, ID: "blob"},
			models.AttemptPending, models.CapturePending, nil},
		{"no response id", models.ResponseID{Kind: models.ResponseIDNoResponseID},
			models.AttemptFailure, models.CaptureFailed, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Reconcile(SyncResponse{Success: &SyncSuccess{
				ResourceID: tt.resourceID, Status: tt.status, ConnectorResponseReferenceID: &ref,
			}})
			require.NoError(t, err)
			assert.Equal(t, ResponseUpdate, u.Kind)
			assert.Equal(t, tt.wantStatus, u.Status)
			assert.Equal(t, tt.wantID, u.ConnectorCaptureID)
			assert.Equal(t, &ref, u.ConnectorResponseReferenceID)
		})
	}
}

func TestReconcileUnmappableStatus(t *testing.T) {
	_, err := Reconcile(SyncResponse{Success: &SyncSuccess{Status: models.AttemptAuthorized}})
	require.Error(t, err)
	assert.Equal(t, apierror.KindPreconditionFailed, apierror.KindOf(err))

	_, err = Reconcile(SyncResponse{})
	assert.Equal(t, apierror.KindInternalServerError, apierror.KindOf(err))
}

func TestReconcileAll(t *testing.T) {
	updates, err := ReconcileAll(map[string]SyncResponse{
		"cc_1": {Error: &SyncError{Code: "E", Message: "m", StatusCode: 502}},
		"cc_2": {Success: &SyncSuccess{Status: models.AttemptCharged}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.CapturePending, updates["cc_1"].Status)
	assert.Equal(t, models.CaptureCharged, updates["cc_2"].Status)
}
