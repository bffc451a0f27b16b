package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/capture"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

const (
	TopicCaptureUpdated = "payment.capture.updated"
	TopicPaymentOps     = "payment.ops"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter returns a writer without a default topic; every message names its own.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

type CaptureUpdatedEvent struct {
	EventID   string         `json:"event_id"`
	CaptureID string         `json:"capture_id"`
	Update    capture.Update `json:"update"`
	CreatedAt time.Time      `json:"created_at"`
}

type PaymentOpEvent struct {
	EventID           string                    `json:"event_id"`
	Operation         models.Operation          `json:"operation"`
	MerchantID        string                    `json:"merchant_id"`
	PaymentMethod     *models.PaymentMethod     `json:"payment_method,omitempty"`
	PaymentMethodType *models.PaymentMethodType `json:"payment_method_type,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// Publisher emits capture updates for the persistence layer and one event
// per synthesized payment operation.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

func NewPublisher(writer messageWriter) *Publisher {
	return &Publisher{writer: writer, now: time.Now}
}

func (p *Publisher) PublishCaptureUpdate(ctx context.Context, captureID string, update capture.Update) error {
	event := CaptureUpdatedEvent{
		EventID:   uuid.New().String(),
		CaptureID: captureID,
		Update:    update,
		CreatedAt: p.now(),
	}
	if err := p.write(ctx, TopicCaptureUpdated, captureID, event); err != nil {
		telemetry.Logger.Error("Failed to publish capture update",
			zap.String("capture_id", captureID),
			zap.Error(err),
		)
		return err
	}
	telemetry.CaptureUpdates.WithLabelValues(string(update.Status)).Inc()
	return nil
}

// RecordPaymentOp counts the operation and publishes it. Publishing is best
// effort; a failure is logged and never reaches the caller.
func (p *Publisher) RecordPaymentOp(ctx context.Context, op models.Operation, merchantID string,
	pm *models.PaymentMethod, pmt *models.PaymentMethodType) {
	var pmLabel, pmtLabel string
	if pm != nil {
		pmLabel = string(*pm)
	}
	if pmt != nil {
		pmtLabel = string(*pmt)
	}
	telemetry.PaymentOpsCount.WithLabelValues(string(op), merchantID, pmtLabel, pmLabel).Inc()

	event := PaymentOpEvent{
		EventID:           uuid.New().String(),
		Operation:         op,
		MerchantID:        merchantID,
		PaymentMethod:     pm,
		PaymentMethodType: pmt,
		CreatedAt:         p.now(),
	}
	if err := p.write(ctx, TopicPaymentOps, merchantID, event); err != nil {
		telemetry.Logger.Error("Failed to publish payment op",
			zap.String("operation", string(op)),
			zap.String("merchant_id", merchantID),
			zap.Error(err),
		)
	}
}

func (p *Publisher) write(ctx context.Context, topic, key string, event interface{}) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}
