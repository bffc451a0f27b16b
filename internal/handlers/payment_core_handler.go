package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/capture"
	"github.com/akylbek/payment-system/payment-core/internal/flows"
	"github.com/akylbek/payment-system/payment-core/internal/interfaces"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/response"
	"github.com/akylbek/payment-system/payment-core/internal/routerdata"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

type Settings struct {
	BaseURL              string
	References           routerdata.ReferenceIDConfig
	LatencyHeaderEnabled bool
}

type PaymentCoreHandler struct {
	accounts    interfaces.ConnectorAccountRepository
	constructor interfaces.RouterDataConstructor
	dispatcher  interfaces.Dispatcher
	publisher   interfaces.CaptureUpdatePublisher
	ops         interfaces.PaymentOpsRecorder
	settings    Settings
}

func NewPaymentCoreHandler(accounts interfaces.ConnectorAccountRepository, constructor interfaces.RouterDataConstructor,
	dispatcher interfaces.Dispatcher, publisher interfaces.CaptureUpdatePublisher, ops interfaces.PaymentOpsRecorder,
	settings Settings) *PaymentCoreHandler {
	return &PaymentCoreHandler{
		accounts:    accounts,
		constructor: constructor,
		dispatcher:  dispatcher,
		publisher:   publisher,
		ops:         ops,
		settings:    settings,
	}
}

// PaymentsResponse synthesizes the payments response for a posted aggregate.
// A start-pay redirect is answered with the redirect form instead.
func (h *PaymentCoreHandler) PaymentsResponse(c *gin.Context) {
	ctx := c.Request.Context()

	var req PaymentsResponseRequest
	if !bind(c, &req) {
		return
	}
	if !samePayment(c, req.PaymentData.Intent.PaymentID) {
		return
	}

	authFlow := req.AuthFlow
	if authFlow == "" {
		authFlow = models.AuthFlowMerchant
	}
	latency := req.ExternalLatency
	if !h.settings.LatencyHeaderEnabled {
		latency = nil
	}

	out, err := response.Payments(ctx, response.Params{
		Data:                    &req.PaymentData,
		Customer:                req.Customer,
		AuthFlow:                authFlow,
		BaseURL:                 h.settings.BaseURL,
		Operation:               req.Operation,
		References:              h.settings.References,
		ConnectorHTTPStatusCode: req.ConnectorHTTPStatusCode,
		ExternalLatency:         latency,
	})
	if err != nil {
		respondError(c, req.PaymentData.Intent.PaymentID, err)
		return
	}

	h.ops.RecordPaymentOp(ctx, out.Op.Operation, out.Op.MerchantID, out.Op.PaymentMethod, out.Op.PaymentMethodType)

	if out.Form != nil {
		c.JSON(http.StatusOK, out.Form)
		return
	}
	for _, header := range out.Headers {
		c.Header(header.Name, header.Value)
	}

	telemetry.Logger.Info("Synthesized payments response",
		zap.String("payment_id", req.PaymentData.Intent.PaymentID),
		zap.String("operation", string(req.Operation)),
		zap.Int("headers", len(out.Headers)),
		zap.String("trace_id", trace.SpanFromContext(ctx).SpanContext().TraceID().String()),
	)
	c.JSON(http.StatusOK, out.Payments)
}

func (h *PaymentCoreHandler) SessionResponse(c *gin.Context) {
	var req SessionRequest
	if !bind(c, &req) || !samePayment(c, req.PaymentData.Intent.PaymentID) {
		return
	}
	resp, err := response.Session(&req.PaymentData)
	if err != nil {
		respondError(c, req.PaymentData.Intent.PaymentID, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentCoreHandler) VerifyResponse(c *gin.Context) {
	var req VerifyRequest
	if !bind(c, &req) || !samePayment(c, req.PaymentData.Intent.PaymentID) {
		return
	}
	resp, err := response.Verify(&req.PaymentData, req.Customer)
	if err != nil {
		respondError(c, req.PaymentData.Intent.PaymentID, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summary is the list view of one intent and its active attempt.
func (h *PaymentCoreHandler) Summary(c *gin.Context) {
	var req SummaryRequest
	if !bind(c, &req) || !samePayment(c, req.PaymentIntent.PaymentID) {
		return
	}
	c.JSON(http.StatusOK, response.FromIntentAttempt(&req.PaymentIntent, &req.PaymentAttempt))
}

// RouterData builds the router record for one flow and, when asked, hands
// it to the connector dispatch layer.
func (h *PaymentCoreHandler) RouterData(c *gin.Context) {
	ctx := c.Request.Context()

	var req RouterDataRequest
	if !bind(c, &req) || !samePayment(c, req.PaymentData.Intent.PaymentID) {
		return
	}
	paymentID := req.PaymentData.Intent.PaymentID

	kind, err := flows.ParseKind(req.Flow)
	if err != nil {
		respondError(c, paymentID, err)
		return
	}

	record, err := h.construct(c, kind, &req.PaymentData, req.MerchantID, req.MerchantConnectorID,
		req.Customer, req.RecipientData, req.ApplePayFlow)
	if err != nil {
		respondError(c, paymentID, err)
		return
	}

	if req.Dispatch {
		if _, err := h.dispatcher.Dispatch(ctx, record); err != nil {
			respondError(c, paymentID, err)
			return
		}
		telemetry.Logger.Info("Router data dispatched",
			zap.String("payment_id", paymentID),
			zap.String("flow", string(kind)),
			zap.String("connector", string(record.Connector)),
			zap.String("status", string(record.Status)),
		)
	}

	c.JSON(http.StatusOK, record)
}

// SyncCaptures syncs every capture of a multi-capture payment and publishes
// the reconciled updates keyed by connector capture id.
func (h *PaymentCoreHandler) SyncCaptures(c *gin.Context) {
	ctx := c.Request.Context()

	var req CaptureSyncRequest
	if !bind(c, &req) || !samePayment(c, req.PaymentData.Intent.PaymentID) {
		return
	}
	paymentID := req.PaymentData.Intent.PaymentID

	record, err := h.construct(c, flows.PSync, &req.PaymentData, req.MerchantID, req.MerchantConnectorID,
		req.Customer, nil, nil)
	if err != nil {
		respondError(c, paymentID, err)
		return
	}

	responses, err := h.dispatcher.SyncCapture(ctx, record)
	if err != nil {
		respondError(c, paymentID, err)
		return
	}
	updates, err := capture.ReconcileAll(responses)
	if err != nil {
		respondError(c, paymentID, err)
		return
	}
	for captureID, update := range updates {
		if err := h.publisher.PublishCaptureUpdate(ctx, captureID, update); err != nil {
			respondError(c, paymentID, apierror.Attach(apierror.Internal(err), "publish capture update %s", captureID))
			return
		}
	}

	telemetry.Logger.Info("Captures synced",
		zap.String("payment_id", paymentID),
		zap.Int("captures", len(updates)),
	)
	c.JSON(http.StatusOK, gin.H{"payment_id": paymentID, "updates": updates})
}

func (h *PaymentCoreHandler) construct(c *gin.Context, kind flows.Kind, data *models.PaymentData, merchantID,
	merchantConnectorID string, customer *models.Customer, recipient *models.MerchantRecipientData,
	applePayFlow *string) (*routerdata.Record, error) {
	ctx := c.Request.Context()
	account, err := h.accounts.GetByID(ctx, merchantID, merchantConnectorID)
	if err != nil {
		return nil, apierror.Attach(err, "merchant connector account %s", merchantConnectorID)
	}
	return h.constructor.Construct(ctx, routerdata.Params{
		Flow:          kind,
		Data:          data,
		ConnectorID:   account.ConnectorName,
		MerchantID:    merchantID,
		Customer:      customer,
		Account:       account,
		RecipientData: recipient,
		ApplePayFlow:  applePayFlow,
	})
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		telemetry.Logger.Warn("Invalid request", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func samePayment(c *gin.Context, paymentID string) bool {
	if c.Param("id") != paymentID {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "payment id in path does not match payment_data",
			"field": "payment_id",
		})
		return false
	}
	return true
}

func respondError(c *gin.Context, paymentID string, err error) {
	status := http.StatusInternalServerError
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode()
	}

	if status >= http.StatusInternalServerError {
		telemetry.Logger.Error("Request failed",
			zap.String("payment_id", paymentID),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": string(apierror.KindInternalServerError)})
		return
	}

	telemetry.Logger.Warn("Request rejected",
		zap.String("payment_id", paymentID),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	body := gin.H{"error": string(apiErr.Kind), "message": err.Error()}
	if apiErr.Field != "" {
		body["field"] = apiErr.Field
	}
	c.JSON(status, body)
}
