package routerdata

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/flows"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/money"
)

type stubConfigs struct {
	values map[string]string
	err    error
	calls  []string
}

func (s *stubConfigs) FindConfig(_ context.Context, key string) (string, bool, error) {
	s.calls = append(s.calls, key)
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

type stubDecryptor struct {
	address *models.Address
	err     error
}

func (s stubDecryptor) DecryptAddress(context.Context, []byte) (*models.Address, error) {
	return s.address, s.err
}

func testAccount() *ConnectorAccount {
	return &ConnectorAccount{
		MerchantID:              "merchant_1",
		MerchantConnectorID:     "mca_1",
		ConnectorName:           "stripe",
		ConnectorAccountDetails: json.RawMessage(`{"auth_type":"HeaderKey","api_key":"sk_test"}`),
		Metadata:                json.RawMessage(`{"account":"meta"}`),
		TestMode:                models.Ptr(true),
	}
}

func testData() *models.PaymentData {
	pm := models.PaymentMethodCard
	return &models.PaymentData{
		Intent: models.PaymentIntent{
			PaymentID:      "pay_1",
			MerchantID:     "merchant_1",
			AmountCaptured: models.Ptr(money.MinorUnit(300)),
		},
		Attempt: models.PaymentAttempt{
			PaymentID:     "pay_1",
			MerchantID:    "merchant_1",
			AttemptID:     "pay_1_1",
			Status:        models.AttemptStarted,
			PaymentMethod: &pm,
		},
		Amount:            1000,
		Currency:          money.Currency("USD"),
		PaymentMethodData: json.RawMessage(`{"card":{}}`),
	}
}

func testParams() Params {
	return Params{
		Flow:        flows.Authorize,
		Data:        testData(),
		ConnectorID: "stripe",
		MerchantID:  "merchant_1",
		Customer:    &models.Customer{CustomerID: "cus_1"},
		Account:     testAccount(),
	}
}

func TestConstructRecord(t *testing.T) {
	configs := &stubConfigs{values: map[string]string{"connector_api_version_stripe": "2023-10-16"}}
	c := NewConstructor("https://router.example.com", configs, nil, []string{"stripe"}, NewReferenceIDConfig(nil))

	rec, err := c.Construct(context.Background(), testParams())
	require.NoError(t, err)

	assert.Equal(t, flows.Authorize, rec.Flow)
	assert.Equal(t, "stripe", string(rec.Connector))
	assert.Equal(t, "pay_1_1", rec.AttemptID)
	assert.Equal(t, AuthHeaderKey, rec.ConnectorAuthType.Kind)
	assert.Equal(t, models.PaymentMethodCard, rec.PaymentMethod)
	assert.Equal(t, models.AuthenticationNoThreeDS, rec.AuthType)
	assert.Equal(t, "cus_1", *rec.CustomerID)
	assert.Equal(t, "2023-10-16", *rec.ConnectorAPIVersion)
	assert.Equal(t, "pay_1_1", rec.ConnectorRequestReferenceID)
	assert.Equal(t, int64(300), *rec.AmountCaptured)
	assert.True(t, *rec.TestMode)
	assert.JSONEq(t, `{"account":"meta"}`, string(rec.ConnectorMetaData))
	assert.Equal(t, models.ResponseIDNoResponseID, rec.Response.ResourceID.Kind)
	assert.Equal(t, flows.Authorize, rec.Request.Flow())
}

func TestRecordJSONOmitsCredentials(t *testing.T) {
	c := NewConstructor("https://router.example.com", &stubConfigs{}, nil, nil, NewReferenceIDConfig(nil))

	rec, err := c.Construct(context.Background(), testParams())
	require.NoError(t, err)
	require.Equal(t, "sk_test", rec.ConnectorAuthType.APIKey)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "connector_auth_type")
	assert.NotContains(t, string(raw), "sk_test")
}

func TestConstructFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		want   apierror.Kind
		field  string
	}{
		{"disabled account", func(p *Params) { p.Account.Disabled = true }, apierror.KindMerchantConnectorAccountDisabled, ""},
		{"bad auth details", func(p *Params) {
			p.Account.ConnectorAccountDetails = json.RawMessage(`{"auth_type":"BodyKey","api_key":"k"}`)
		}, apierror.KindInternalServerError, ""},
		{"missing payment method", func(p *Params) { p.Data.Attempt.PaymentMethod = nil }, apierror.KindMissingRequiredValue, "payment_method_type"},
		{"unknown connector", func(p *Params) { p.ConnectorID = "acme" }, apierror.KindInvalidDataValue, "connector"},
		{"builder failure propagates", func(p *Params) { p.Data.PaymentMethodData = nil }, apierror.KindMissingRequiredValue, "payment_method_data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			c := NewConstructor("https://router.example.com", nil, nil, nil, NewReferenceIDConfig(nil))

			rec, err := c.Construct(context.Background(), p)
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.Equal(t, tt.want, apierror.KindOf(err))
			if tt.field != "" {
				var apiErr *apierror.Error
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.field, apiErr.Field)
			}
		})
	}
}

func TestConstructAPIVersionTolerance(t *testing.T) {
	tests := []struct {
		name      string
		configs   *stubConfigs
		supported []string
		wantCalls int
	}{
		{"connector not in set is not looked up", &stubConfigs{}, []string{"adyen"}, 0},
		{"missing entry", &stubConfigs{values: map[string]string{}}, []string{"stripe"}, 1},
		{"store error", &stubConfigs{err: errors.New("db down")}, []string{"stripe"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConstructor("https://router.example.com", tt.configs, nil, tt.supported, NewReferenceIDConfig(nil))
			rec, err := c.Construct(context.Background(), testParams())
			require.NoError(t, err)
			assert.Nil(t, rec.ConnectorAPIVersion)
			assert.Len(t, tt.configs.calls, tt.wantCalls)
		})
	}
}

func TestConstructRecipientDataOverridesMetadata(t *testing.T) {
	p := testParams()
	p.RecipientData = &models.MerchantRecipientData{WalletID: models.Ptr("wallet_1")}
	c := NewConstructor("https://router.example.com", nil, nil, nil, NewReferenceIDConfig(nil))

	rec, err := c.Construct(context.Background(), p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"wallet_id":"wallet_1"}`, string(rec.ConnectorMetaData))
}

func TestConstructUnifiesPaymentMethodBilling(t *testing.T) {
	p := testParams()
	p.Data.Address.PaymentMethodBilling = &models.Address{
		Address: &models.AddressDetails{City: models.Ptr("Berlin"), Zip: models.Ptr("10115")},
	}
	p.Data.PaymentMethodInfo = &models.PaymentMethodInfo{
		PaymentMethodID:             "pm_1",
		Status:                      "active",
		PaymentMethodBillingAddress: []byte("ciphertext"),
	}
	stored := &models.Address{Address: &models.AddressDetails{City: models.Ptr("Paris")}}
	c := NewConstructor("https://router.example.com", nil, stubDecryptor{address: stored}, nil, NewReferenceIDConfig(nil))

	rec, err := c.Construct(context.Background(), p)
	require.NoError(t, err)
	unified := rec.Address.GetPaymentMethodBilling()
	require.NotNil(t, unified)
	assert.Equal(t, "Paris", *unified.Address.City)
	assert.Equal(t, "10115", *unified.Address.Zip)
	assert.Equal(t, "active", *rec.PaymentMethodStatus)
	assert.Nil(t, p.Data.Address.UnifiedPaymentMethodBilling)

	c = NewConstructor("https://router.example.com", nil, stubDecryptor{err: apierror.Internal(errors.New("bad key"))}, nil, NewReferenceIDConfig(nil))
	_, err = c.Construct(context.Background(), p)
	assert.Equal(t, apierror.KindInternalServerError, apierror.KindOf(err))
}

func TestConnectorRequestReferenceID(t *testing.T) {
	attempt := &models.PaymentAttempt{PaymentID: "pay_1", AttemptID: "pay_1_2"}
	cfg := NewReferenceIDConfig([]string{"merchant_ref"})

	assert.Equal(t, "pay_1", cfg.ConnectorRequestReferenceID("merchant_ref", attempt))
	assert.Equal(t, "pay_1_2", cfg.ConnectorRequestReferenceID("merchant_other", attempt))
}

func TestRecordApply(t *testing.T) {
	rec := &Record{Status: models.AttemptStarted}
	code := 201
	rec.Apply(&DispatchResult{
		Status:                  models.AttemptCharged,
		Response:                &TransactionResponse{ConnectorResponseReferenceID: models.Ptr("ref_9")},
		ConnectorHTTPStatusCode: &code,
	})
	assert.Equal(t, models.AttemptCharged, rec.Status)
	assert.Equal(t, 201, *rec.ConnectorHTTPStatusCode)
	assert.Equal(t, "ref_9", *rec.ConnectorResponseReferenceID)
}

func TestParseAuthType(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{`{"auth_type":"NoKey"}`, false},
		{`{"auth_type":"SignatureKey","api_key":"a","key1":"b","api_secret":"c"}`, false},
		{`{"auth_type":"SignatureKey","api_key":"a","key1":"b"}`, true},
		{`{"auth_type":"Magic"}`, true},
		{`null`, true},
	}
	for _, tt := range tests {
		_, err := ParseAuthType(json.RawMessage(tt.raw))
		assert.Equal(t, tt.wantErr, err != nil, tt.raw)
	}
}
