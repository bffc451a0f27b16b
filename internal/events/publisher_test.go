package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-core/internal/capture"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

type stubWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func fixedPublisher(w *stubWriter) *Publisher {
	p := NewPublisher(w)
	p.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return p
}

func TestPublishCaptureUpdate(t *testing.T) {
	w := &stubWriter{}
	p := fixedPublisher(w)
	id := "cap_ext_1"
	before := testutil.ToFloat64(telemetry.CaptureUpdates.WithLabelValues(string(models.CaptureCharged)))

	err := p.PublishCaptureUpdate(context.Background(), "cap_1", capture.Update{
		Kind:               capture.ResponseUpdate,
		Status:             models.CaptureCharged,
		ConnectorCaptureID: &id,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, TopicCaptureUpdated, msg.Topic)
	assert.Equal(t, "cap_1", string(msg.Key))

	var event CaptureUpdatedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "cap_1", event.CaptureID)
	assert.Equal(t, models.CaptureCharged, event.Update.Status)
	assert.Equal(t, &id, event.Update.ConnectorCaptureID)

	after := testutil.ToFloat64(telemetry.CaptureUpdates.WithLabelValues(string(models.CaptureCharged)))
	assert.Equal(t, before+1, after)
}

func TestPublishCaptureUpdateError(t *testing.T) {
	boom := errors.New("broker down")
	p := fixedPublisher(&stubWriter{err: boom})
	before := testutil.ToFloat64(telemetry.CaptureUpdates.WithLabelValues(string(models.CaptureFailed)))

	err := p.PublishCaptureUpdate(context.Background(), "cap_1", capture.Update{
		Kind:   capture.ErrorUpdate,
		Status: models.CaptureFailed,
	})
	assert.ErrorIs(t, err, boom)
	after := testutil.ToFloat64(telemetry.CaptureUpdates.WithLabelValues(string(models.CaptureFailed)))
	assert.Equal(t, before, after)
}

func TestRecordPaymentOp(t *testing.T) {
	tests := []struct {
		name     string
		pm       *models.PaymentMethod
		pmt      *models.PaymentMethodType
		merchant string
		labels   []string
	}{
		{
			name:     "with payment method",
			pm:       models.Ptr(models.PaymentMethodCard),
			pmt:      models.Ptr(models.PaymentMethodTypeCredit),
			merchant: "merchant_ops_1",
			labels:   []string{"PaymentConfirm", "merchant_ops_1", "credit", "card"},
		},
		{
			name:     "without payment method",
			merchant: "merchant_ops_2",
			labels:   []string{"PaymentConfirm", "merchant_ops_2", "", ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &stubWriter{}
			p := fixedPublisher(w)
			counter := telemetry.PaymentOpsCount.WithLabelValues(tt.labels...)
			before := testutil.ToFloat64(counter)

			p.RecordPaymentOp(context.Background(), models.OperationConfirm, tt.merchant, tt.pm, tt.pmt)

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
			require.Len(t, w.msgs, 1)
			assert.Equal(t, TopicPaymentOps, w.msgs[0].Topic)

			var event PaymentOpEvent
			require.NoError(t, json.Unmarshal(w.msgs[0].Value, &event))
			assert.Equal(t, models.OperationConfirm, event.Operation)
			assert.Equal(t, tt.merchant, event.MerchantID)
			assert.Equal(t, tt.pm, event.PaymentMethod)
		})
	}
}

func TestRecordPaymentOpSwallowsWriteError(t *testing.T) {
	p := fixedPublisher(&stubWriter{err: errors.New("broker down")})
	assert.NotPanics(t, func() {
		p.RecordPaymentOp(context.Background(), models.OperationStatus, "merchant_ops_3", nil, nil)
	})
}
