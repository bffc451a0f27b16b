package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/capture"
	"github.com/akylbek/payment-system/payment-core/internal/connector"
	"github.com/akylbek/payment-system/payment-core/internal/flows"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/money"
	"github.com/akylbek/payment-system/payment-core/internal/routerdata"
)

type stubAccounts struct {
	account *routerdata.ConnectorAccount
}

func (s *stubAccounts) GetByID(_ context.Context, merchantID, id string) (*routerdata.ConnectorAccount, error) {
	if s.account == nil || s.account.MerchantID != merchantID || s.account.MerchantConnectorID != id {
		return nil, apierror.ResourceIDNotFound()
	}
	return s.account, nil
}

func (s *stubAccounts) Save(context.Context, *routerdata.ConnectorAccount) error { return nil }

type stubConstructor struct {
	params routerdata.Params
	err    error
}

func (s *stubConstructor) Construct(_ context.Context, p routerdata.Params) (*routerdata.Record, error) {
	s.params = p
	if s.err != nil {
		return nil, s.err
	}
	return &routerdata.Record{
		Flow:       p.Flow,
		MerchantID: p.MerchantID,
		Connector:  connector.Name(p.ConnectorID),
		PaymentID:  p.Data.Attempt.PaymentID,
		AttemptID:  p.Data.Attempt.AttemptID,
		Status:     p.Data.Attempt.Status,
		ConnectorAuthType: routerdata.AuthType{
			Kind:      routerdata.AuthSignatureKey,
			APIKey:    "sk_test",
			Key1:      "key1_test",
			APISecret: "secret_test",
		},
	}, nil
}

type stubDispatcher struct {
	dispatched int
	captures   map[string]capture.SyncResponse
	err        error
}

func (s *stubDispatcher) Dispatch(_ context.Context, r *routerdata.Record) (*routerdata.DispatchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.dispatched++
	res := &routerdata.DispatchResult{Status: models.AttemptCharged}
	r.Apply(res)
	return res, nil
}

func (s *stubDispatcher) SyncCapture(context.Context, *routerdata.Record) (map[string]capture.SyncResponse, error) {
	return s.captures, s.err
}

type stubPublisher struct {
	updates map[string]capture.Update
}

func (s *stubPublisher) PublishCaptureUpdate(_ context.Context, id string, u capture.Update) error {
	if s.updates == nil {
		s.updates = map[string]capture.Update{}
	}
	s.updates[id] = u
	return nil
}

type recordedOp struct {
	op       models.Operation
	merchant string
}

type stubOps struct {
	ops []recordedOp
}

func (s *stubOps) RecordPaymentOp(_ context.Context, op models.Operation, merchantID string,
	_ *models.PaymentMethod, _ *models.PaymentMethodType) {
	s.ops = append(s.ops, recordedOp{op: op, merchant: merchantID})
}

type fixture struct {
	router      *gin.Engine
	accounts    *stubAccounts
	constructor *stubConstructor
	dispatcher  *stubDispatcher
	publisher   *stubPublisher
	ops         *stubOps
}

func newFixture(settings Settings) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		accounts: &stubAccounts{account: &routerdata.ConnectorAccount{
			MerchantID:          "merchant_1",
			MerchantConnectorID: "mca_1",
			ConnectorName:       "stripe",
		}},
		constructor: &stubConstructor{},
		dispatcher:  &stubDispatcher{},
		publisher:   &stubPublisher{},
		ops:         &stubOps{},
	}
	h := NewPaymentCoreHandler(f.accounts, f.constructor, f.dispatcher, f.publisher, f.ops, settings)

	r := gin.New()
	g := r.Group("/internal/payments/:id")
	g.POST("/response", h.PaymentsResponse)
	g.POST("/session", h.SessionResponse)
	g.POST("/verify", h.VerifyResponse)
	g.POST("/summary", h.Summary)
	g.POST("/router-data", h.RouterData)
	g.POST("/captures/sync", h.SyncCaptures)
	f.router = r
	return f
}

func (f *fixture) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func testData() models.PaymentData {
	usd := money.Currency("USD")
	pm := models.PaymentMethodCard
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return models.PaymentData{
		Intent: models.PaymentIntent{
			PaymentID:    "pay_1",
			MerchantID:   "merchant_1",
			Status:       models.IntentSucceeded,
			Amount:       1050,
			Currency:     &usd,
			ClientSecret: models.Ptr("pay_1_secret"),
			AttemptCount: 1,
			CreatedAt:    created,
			ModifiedAt:   created,
		},
		Attempt: models.PaymentAttempt{
			PaymentID:     "pay_1",
			MerchantID:    "merchant_1",
			AttemptID:     "pay_1_1",
			Status:        models.AttemptCharged,
			Amount:        1050,
			NetAmount:     1050,
			Currency:      &usd,
			Connector:     models.Ptr("stripe"),
			PaymentMethod: &pm,
		},
		Amount:   1050,
		Currency: usd,
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPaymentsResponse(t *testing.T) {
	status := 201
	latency := int64(120)

	tests := []struct {
		name          string
		latencyHeader bool
		wantLatency   string
	}{
		{"latency header disabled", false, ""},
		{"latency header enabled", true, "120"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Settings{BaseURL: "https://router.example.com", LatencyHeaderEnabled: tt.latencyHeader})
			w := f.post(t, "/internal/payments/pay_1/response", PaymentsResponseRequest{
				PaymentData:             testData(),
				Operation:               models.OperationStatus,
				ConnectorHTTPStatusCode: &status,
				ExternalLatency:         &latency,
			})

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "201", w.Header().Get("connector_http_status_code"))
			assert.Equal(t, tt.wantLatency, w.Header().Get("x-hs-latency"))

			body := decode(t, w)
			assert.Equal(t, "pay_1", body["payment_id"])
			assert.Equal(t, "USD", body["currency"])
			require.Len(t, f.ops.ops, 1)
			assert.Equal(t, recordedOp{op: models.OperationStatus, merchant: "merchant_1"}, f.ops.ops[0])
		})
	}
}

func TestPaymentsResponseRejects(t *testing.T) {
	noCurrency := testData()
	noCurrency.Attempt.Currency = nil

	tests := []struct {
		name      string
		path      string
		body      interface{}
		wantField string
	}{
		{
			name:      "path mismatch",
			path:      "/internal/payments/pay_other/response",
			body:      PaymentsResponseRequest{PaymentData: testData(), Operation: models.OperationStatus},
			wantField: "payment_id",
		},
		{
			name:      "missing currency",
			path:      "/internal/payments/pay_1/response",
			body:      PaymentsResponseRequest{PaymentData: noCurrency, Operation: models.OperationStatus},
			wantField: "currency",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Settings{})
			w := f.post(t, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantField, decode(t, w)["field"])
			assert.Empty(t, f.ops.ops)
		})
	}
}

func TestPaymentsResponseRequiresOperation(t *testing.T) {
	f := newFixture(Settings{})
	w := f.post(t, "/internal/payments/pay_1/response", PaymentsResponseRequest{PaymentData: testData()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionResponse(t *testing.T) {
	f := newFixture(Settings{})
	w := f.post(t, "/internal/payments/pay_1/session", SessionRequest{PaymentData: testData()})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "pay_1_secret", body["client_secret"])
	assert.Equal(t, []interface{}{}, body["session_token"])

	data := testData()
	data.Intent.ClientSecret = nil
	w = f.post(t, "/internal/payments/pay_1/session", SessionRequest{PaymentData: data})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "client_secret", decode(t, w)["field"])
}

func TestVerifyAndSummary(t *testing.T) {
	f := newFixture(Settings{})

	w := f.post(t, "/internal/payments/pay_1/verify", VerifyRequest{
		PaymentData: testData(),
		Customer:    &models.Customer{CustomerID: "cus_1", Name: models.Ptr("Ada")},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "pay_1", body["verify_id"])
	assert.Equal(t, "cus_1", body["customer_id"])

	data := testData()
	w = f.post(t, "/internal/payments/pay_1/summary", SummaryRequest{
		PaymentIntent:  data.Intent,
		PaymentAttempt: data.Attempt,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stripe", decode(t, w)["connector"])
}

func TestRouterData(t *testing.T) {
	t.Run("constructs without dispatch", func(t *testing.T) {
		f := newFixture(Settings{})
		w := f.post(t, "/internal/payments/pay_1/router-data", RouterDataRequest{
			Flow:                "authorize",
			PaymentData:         testData(),
			MerchantID:          "merchant_1",
			MerchantConnectorID: "mca_1",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, flows.Authorize, f.constructor.params.Flow)
		assert.Equal(t, "stripe", f.constructor.params.ConnectorID)
		assert.Equal(t, 0, f.dispatcher.dispatched)
	})

	t.Run("never returns connector credentials", func(t *testing.T) {
		f := newFixture(Settings{})
		w := f.post(t, "/internal/payments/pay_1/router-data", RouterDataRequest{
			Flow:                "authorize",
			PaymentData:         testData(),
			MerchantID:          "merchant_1",
			MerchantConnectorID: "mca_1",
			Dispatch:            true,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := w.Body.String()
		for _, secret := range []string{"connector_auth_type", "api_key", "sk_test", "key1_test", "secret_test"} {
			assert.NotContains(t, body, secret)
		}
	})

	t.Run("dispatches", func(t *testing.T) {
		f := newFixture(Settings{})
		w := f.post(t, "/internal/payments/pay_1/router-data", RouterDataRequest{
			Flow:                "psync",
			PaymentData:         testData(),
			MerchantID:          "merchant_1",
			MerchantConnectorID: "mca_1",
			Dispatch:            true,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 1, f.dispatcher.dispatched)
		assert.Equal(t, "charged", decode(t, w)["status"])
	})

	tests := []struct {
		name     string
		req      RouterDataRequest
		ctorErr  error
		wantCode int
	}{
		{
			name:     "unknown flow",
			req:      RouterDataRequest{Flow: "refund", MerchantID: "merchant_1", MerchantConnectorID: "mca_1"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown account",
			req:      RouterDataRequest{Flow: "authorize", MerchantID: "merchant_1", MerchantConnectorID: "mca_x"},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "disabled account",
			req:      RouterDataRequest{Flow: "authorize", MerchantID: "merchant_1", MerchantConnectorID: "mca_1"},
			ctorErr:  apierror.MerchantConnectorAccountDisabled(),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "internal failure",
			req:      RouterDataRequest{Flow: "authorize", MerchantID: "merchant_1", MerchantConnectorID: "mca_1"},
			ctorErr:  apierror.Internal(errors.New("boom")),
			wantCode: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Settings{})
			f.constructor.err = tt.ctorErr
			tt.req.PaymentData = testData()
			w := f.post(t, "/internal/payments/pay_1/router-data", tt.req)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "boom")
			}
		})
	}
}

func TestSyncCaptures(t *testing.T) {
	f := newFixture(Settings{})
	f.dispatcher.captures = map[string]capture.SyncResponse{
		"cap_1": {Success: &capture.SyncSuccess{
			ResourceID: models.ResponseIDFromTransaction(models.Ptr("ch_1")),
			Status:     models.AttemptCharged,
		}},
		"cap_2": {Error: &capture.SyncError{Code: "E", Message: "gateway", StatusCode: 502}},
	}

	w := f.post(t, "/internal/payments/pay_1/captures/sync", CaptureSyncRequest{
		PaymentData:         testData(),
		MerchantID:          "merchant_1",
		MerchantConnectorID: "mca_1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, flows.PSync, f.constructor.params.Flow)
	require.Len(t, f.publisher.updates, 2)
	assert.Equal(t, models.CaptureCharged, f.publisher.updates["cap_1"].Status)
	assert.Equal(t, models.CapturePending, f.publisher.updates["cap_2"].Status)
}

func TestSyncCapturesUnmappableStatus(t *testing.T) {
	f := newFixture(Settings{})
	f.dispatcher.captures = map[string]capture.SyncResponse{
		"cap_1": {Success: &capture.SyncSuccess{Status: models.AttemptAuthorized}},
	}
	w := f.post(t, "/internal/payments/pay_1/captures/sync", CaptureSyncRequest{
		PaymentData:         testData(),
		MerchantID:          "merchant_1",
		MerchantConnectorID: "mca_1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.publisher.updates)
}
