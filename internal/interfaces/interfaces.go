package interfaces

import (
	"context"

	"github.com/akylbek/payment-system/payment-core/internal/capture"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/routerdata"
)

// ConnectorAccountRepository defines the contract for merchant connector account access
type ConnectorAccountRepository interface {
	GetByID(ctx context.Context, merchantID, merchantConnectorID string) (*routerdata.ConnectorAccount, error)
	Save(ctx context.Context, account *routerdata.ConnectorAccount) error
}

// ConfigStore defines the contract for the key/value configs table
type ConfigStore interface {
	FindConfig(ctx context.Context, key string) (string, bool, error)
	SetConfig(ctx context.Context, key, value string) error
}

// RouterDataConstructor defines the contract for router record construction
type RouterDataConstructor interface {
	Construct(ctx context.Context, p routerdata.Params) (*routerdata.Record, error)
}

// Dispatcher hands a router record to the connector dispatch layer
type Dispatcher interface {
	Dispatch(ctx context.Context, record *routerdata.Record) (*routerdata.DispatchResult, error)
	SyncCapture(ctx context.Context, record *routerdata.Record) (map[string]capture.SyncResponse, error)
}

// CaptureUpdatePublisher publishes capture state updates for persistence
type CaptureUpdatePublisher interface {
	PublishCaptureUpdate(ctx context.Context, captureID string, update capture.Update) error
}

// PaymentOpsRecorder records one synthesized payment operation
type PaymentOpsRecorder interface {
	RecordPaymentOp(ctx context.Context, op models.Operation, merchantID string, pm *models.PaymentMethod, pmt *models.PaymentMethodType)
}
