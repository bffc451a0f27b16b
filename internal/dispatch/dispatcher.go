// Package dispatch hands router records to the connector dispatch layer over
// NATS request/reply.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/capture"
	"github.com/akylbek/payment-system/payment-core/internal/connector"
	"github.com/akylbek/payment-system/payment-core/internal/routerdata"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

type requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// Request is the dispatch envelope. The credentials travel next to the
// record because the record itself never serializes them.
type Request struct {
	CorrelationID     string              `json:"correlation_id"`
	Record            *routerdata.Record  `json:"record"`
	ConnectorAuthType routerdata.AuthType `json:"connector_auth_type"`
}

type Reply struct {
	CorrelationID string                          `json:"correlation_id"`
	Result        *routerdata.DispatchResult      `json:"result,omitempty"`
	Captures      map[string]capture.SyncResponse `json:"captures,omitempty"`
	Error         string                          `json:"error,omitempty"`
}

func DispatchSubject(name connector.Name) string {
	return fmt.Sprintf("connector.dispatch.%s", name)
}

func CaptureSyncSubject(name connector.Name) string {
	return fmt.Sprintf("connector.capture_sync.%s", name)
}

type NATSDispatcher struct {
	nc      requester
	timeout time.Duration
}

func NewNATSDispatcher(nc *nats.Conn, timeout time.Duration) *NATSDispatcher {
	return &NATSDispatcher{nc: nc, timeout: timeout}
}

// Dispatch sends the record and applies the reply to it.
func (d *NATSDispatcher) Dispatch(ctx context.Context, record *routerdata.Record) (*routerdata.DispatchResult, error) {
	reply, err := d.request(ctx, DispatchSubject(record.Connector), record)
	if err != nil {
		return nil, err
	}
	if reply.Result == nil {
		return nil, apierror.Internal(errors.New("dispatch reply carries no result"))
	}
	record.Apply(reply.Result)
	return reply.Result, nil
}

// SyncCapture asks the connector for the state of every capture of a
// multi-capture payment, keyed by connector capture id.
func (d *NATSDispatcher) SyncCapture(ctx context.Context, record *routerdata.Record) (map[string]capture.SyncResponse, error) {
	reply, err := d.request(ctx, CaptureSyncSubject(record.Connector), record)
	if err != nil {
		return nil, err
	}
	return reply.Captures, nil
}

func (d *NATSDispatcher) request(ctx context.Context, subject string, record *routerdata.Record) (_ *Reply, err error) {
	ctx, span := telemetry.StartSpan(ctx, "dispatch "+subject, record.PaymentID)
	defer func() { telemetry.EndSpan(span, err) }()

	if _, ok := ctx.Deadline(); !ok && d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req := Request{
		CorrelationID:     uuid.New().String(),
		Record:            record,
		ConnectorAuthType: record.ConnectorAuthType,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apierror.Attach(apierror.Internal(err), "failed to encode router data")
	}

	msg, err := d.nc.RequestWithContext(ctx, subject, payload)
	if err != nil {
		telemetry.Logger.Warn("Connector dispatch failed",
			zap.String("payment_id", record.PaymentID),
			zap.String("subject", subject),
			zap.String("correlation_id", req.CorrelationID),
			zap.Error(err),
		)
		return nil, apierror.Attach(apierror.Internal(err), "connector dispatch %s", subject)
	}
	return decodeReply(msg.Data, req.CorrelationID)
}

func decodeReply(data []byte, correlationID string) (*Reply, error) {
	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, apierror.Attach(apierror.Internal(err), "failed to decode dispatch reply")
	}
	if reply.CorrelationID != "" && reply.CorrelationID != correlationID {
		return nil, apierror.Internal(fmt.Errorf("dispatch reply correlation id %s does not match %s",
			reply.CorrelationID, correlationID))
	}
	if reply.Error != "" {
		return nil, apierror.Internal(errors.New(reply.Error))
	}
	return &reply, nil
}
