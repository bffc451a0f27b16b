package nextaction

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/metadata"
	"github.com/akylbek/payment-system/payment-core/internal/models"
)

const baseURL = "https://router.example.com"

func input(status models.IntentStatus, pm models.PaymentMethod, pmt models.PaymentMethodType, meta string) Input {
	attempt := &models.PaymentAttempt{
		PaymentID:         "pay_1",
		MerchantID:        "merchant_1",
		AttemptID:         "pay_1_1",
		PaymentMethod:     &pm,
		PaymentMethodType: &pmt,
		Connector:         models.Ptr("stripe"),
	}
	if meta != "" {
		attempt.ConnectorMetadata = json.RawMessage(meta)
	}
	return Input{
		Attempt:   attempt,
		Intent:    &models.PaymentIntent{PaymentID: "pay_1", MerchantID: "merchant_1", Status: status},
		Operation: models.OperationStatus,
		BaseURL:   baseURL,
	}
}

const bankTransferMeta = `{"ach_credit_transfer":{"account_number":"1","bank_name":"b","routing_number":"2","swift_code":"s"}}`

func TestResolveSelection(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Type
	}{
		{
			"bank transfer instructions",
			input(models.IntentRequiresCustomerAction, models.PaymentMethodBankTransfer, models.PaymentMethodTypeAch, bankTransferMeta),
			DisplayBankTransferInformation,
		},
		{
			"voucher wins over qr",
			input(models.IntentRequiresCustomerAction, models.PaymentMethodVoucher, models.PaymentMethodTypeBoleto,
				`{"reference":"ref_1","image_data_url":"https://img.example.com/a.png","qr_code_url":"https://qr.example.com/a"}`),
			DisplayVoucherInformation,
		},
		{
			"fetch qr",
			input(models.IntentProcessing, models.PaymentMethodWallet, models.PaymentMethodTypeGooglePay,
				`{"qr_code_fetch_url":"https://qr.example.com/fetch"}`),
			FetchQrCodeInformation,
		},
		{
			"sdk next action",
			input(models.IntentRequiresCustomerAction, models.PaymentMethodWallet, models.PaymentMethodTypePaypal,
				`{"next_action":"confirm"}`),
			InvokeSdkClient,
		},
		{
			"wait screen",
			input(models.IntentProcessing, models.PaymentMethodUpi, "upi_collect", `{"display_from_timestamp":1700000000000}`),
			WaitScreenInformation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := Resolve(tt.in)
			require.NoError(t, err)
			require.NotNil(t, action)
			assert.Equal(t, tt.want, action.Type)
		})
	}
}

func TestResolvePixNeverShowsBankTransferInformation(t *testing.T) {
	in := input(models.IntentRequiresCustomerAction, models.PaymentMethodBankTransfer, models.PaymentMethodTypePix,
		`{"image_data_url":"https://img.example.com/pix.png","qr_code_url":"https://qr.example.com/pix","display_to_timestamp":1700000600000}`)

	action, err := Resolve(in)
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, QrCodeInformation, action.Type)
	assert.Equal(t, "https://img.example.com/pix.png", *action.ImageDataURL)
	assert.Equal(t, "https://qr.example.com/pix", *action.QrCodeURL)
	assert.Equal(t, int64(1700000600000), *action.DisplayToTimestamp)
	assert.Nil(t, action.BankTransferStepsAndChargesDetails)
}

func TestResolveQrFlavors(t *testing.T) {
	tests := []struct {
		name      string
		meta      string
		wantImage bool
		wantCode  bool
	}{
		{"both urls", `{"image_data_url":"https://i.example.com/a","qr_code_url":"https://q.example.com/a"}`, true, true},
		{"image only", `{"image_data_url":"https://i.example.com/a"}`, true, false},
		{"code only", `{"qr_code_url":"https://q.example.com/a"}`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := Resolve(input(models.IntentRequiresCustomerAction, models.PaymentMethodBankTransfer, models.PaymentMethodTypePix, tt.meta))
			require.NoError(t, err)
			assert.Equal(t, QrCodeInformation, action.Type)
			assert.Equal(t, tt.wantImage, action.ImageDataURL != nil)
			assert.Equal(t, tt.wantCode, action.QrCodeURL != nil)
		})
	}
}

func TestResolveNoAction(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"succeeded card payment", input(models.IntentSucceeded, models.PaymentMethodCard, models.PaymentMethodTypeCredit, "")},
		{"malformed voucher metadata", input(models.IntentSucceeded, models.PaymentMethodVoucher, models.PaymentMethodTypeOxxo, `{"reference":42}`)},
		{"metadata of no known shape", input(models.IntentSucceeded, models.PaymentMethodCard, models.PaymentMethodTypeCredit, `{"foo":"bar"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := Resolve(tt.in)
			require.NoError(t, err)
			assert.Nil(t, action)
		})
	}
}

func TestResolveSucceededPaymentIgnoresAuthenticationData(t *testing.T) {
	in := input(models.IntentSucceeded, models.PaymentMethodCard, models.PaymentMethodTypeCredit, "")
	in.Attempt.AuthenticationData = json.RawMessage(`{"Form":{"endpoint":"https://acs.example.com","method":"POST","form_fields":{}}}`)

	action, err := Resolve(in)
	require.NoError(t, err)
	assert.Nil(t, action)
}

func TestResolveRedirectToStartPay(t *testing.T) {
	in := input(models.IntentRequiresCustomerAction, models.PaymentMethodCard, models.PaymentMethodTypeCredit, "")
	in.Attempt.AuthenticationData = json.RawMessage(`{"Form":{"endpoint":"https://acs.example.com","method":"POST","form_fields":{}}}`)

	action, err := Resolve(in)
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, RedirectToURL, action.Type)
	assert.Equal(t, "https://router.example.com/payments/redirect/pay_1/merchant_1/pay_1_1", *action.RedirectToURL)
}

func TestResolveThirdPartyOverride(t *testing.T) {
	in := input(models.IntentRequiresCustomerAction, models.PaymentMethodWallet, models.PaymentMethodTypeApplePay,
		`{"qr_code_fetch_url":"https://qr.example.com/fetch"}`)
	in.Attempt.Connector = models.Ptr("trustpay")
	in.Operation = models.OperationConfirm
	in.SessionsToken = []json.RawMessage{json.RawMessage(`{"wallet_name":"apple_pay"}`), json.RawMessage(`{"wallet_name":"google_pay"}`)}

	action, err := Resolve(in)
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, ThirdPartySdkSessionToken, action.Type)
	assert.JSONEq(t, `{"wallet_name":"apple_pay"}`, string(action.SessionToken))

	in.Operation = models.OperationStatus
	action, err = Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, FetchQrCodeInformation, action.Type)
}

func threeDSInput() Input {
	in := input(models.IntentRequiresCustomerAction, models.PaymentMethodCard, models.PaymentMethodTypeCredit, "")
	in.Authentication = &models.Authentication{
		AuthenticationID:        "authn_1",
		AuthenticationStatus:    models.AuthenticationStatusStarted,
		MaximumSupportedVersion: models.Ptr("2.2.0"),
		MessageVersion:          models.Ptr("2.2.0"),
		DirectoryServerID:       models.Ptr("A000000003"),
	}
	return in
}

func TestResolveThreeDSInvoke(t *testing.T) {
	t.Run("without method data", func(t *testing.T) {
		action, err := Resolve(threeDSInput())
		require.NoError(t, err)
		require.NotNil(t, action)
		require.Equal(t, ThreeDSInvoke, action.Type)

		data := action.ThreeDSData
		assert.False(t, data.ThreeDSMethodDetails.ThreeDSMethodDataSubmission)
		assert.Nil(t, data.ThreeDSMethodDetails.ThreeDSMethodURL)
		assert.Equal(t, "https://router.example.com/payments/pay_1/3ds/authentication", data.ThreeDSAuthenticationURL)
		assert.Equal(t, "https://router.example.com/payments/pay_1/merchant_1/authorize/stripe", data.ThreeDSAuthorizeURL)
		assert.Equal(t, PollConfigResponse{PollID: "external_authentication_pay_1", DelayInSecs: 2, Frequency: 5}, data.PollConfig)
		assert.Equal(t, "2.2.0", *data.MessageVersion)
	})

	t.Run("with method data and poll config", func(t *testing.T) {
		in := threeDSInput()
		in.Authentication.ThreeDSMethodURL = models.Ptr("https://acs.example.com/method")
		in.Authentication.ThreeDSMethodData = models.Ptr("eyJ0aHJlZURT")
		in.PollConfig = &models.PollConfig{DelayInSecs: 1, Frequency: 10}

		action, err := Resolve(in)
		require.NoError(t, err)
		details := action.ThreeDSData.ThreeDSMethodDetails
		assert.True(t, details.ThreeDSMethodDataSubmission)
		assert.Equal(t, "eyJ0aHJlZURT", *details.ThreeDSMethodData)
		assert.Equal(t, int8(10), action.ThreeDSData.PollConfig.Frequency)
	})

	t.Run("completed authentication", func(t *testing.T) {
		in := threeDSInput()
		in.Authentication.CAVV = models.Ptr("AAABBB")
		action, err := Resolve(in)
		require.NoError(t, err)
		assert.Nil(t, action)
	})

	t.Run("3ds 1.x", func(t *testing.T) {
		in := threeDSInput()
		in.Authentication.MaximumSupportedVersion = models.Ptr("1.0.2")
		action, err := Resolve(in)
		require.NoError(t, err)
		assert.Nil(t, action)
	})

	t.Run("missing connector", func(t *testing.T) {
		in := threeDSInput()
		in.Attempt.Connector = nil
		_, err := Resolve(in)
		assert.True(t, errors.Is(err, apierror.MissingRequiredValue("connector")))
	})
}

func TestStartPayForm(t *testing.T) {
	attempt := &models.PaymentAttempt{}
	_, err := StartPayForm(attempt)
	assert.True(t, errors.Is(err, apierror.MissingRequiredValue("redirection_data")))

	attempt.AuthenticationData = json.RawMessage(`{"Nope":{}}`)
	_, err = StartPayForm(attempt)
	assert.Equal(t, apierror.KindInternalServerError, apierror.KindOf(err))

	attempt.AuthenticationData = json.RawMessage(`{"Html":{"html_data":"<form></form>"}}`)
	form, err := StartPayForm(attempt)
	require.NoError(t, err)
	assert.Equal(t, metadata.RedirectFormHTML, form.Kind)
}
