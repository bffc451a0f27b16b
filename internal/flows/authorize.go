package flows

import (
	"encoding/json"

	"github.com/akylbek/payment-system/payment-core/internal/metadata"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/money"
)

type AuthorizeData struct {
	PaymentMethodData               json.RawMessage                   `json:"payment_method_data"`
	Amount                          Amount                            `json:"amount"`
	Currency                        money.Currency                    `json:"currency"`
	Confirm                         bool                              `json:"confirm"`
	StatementDescriptor             *string                           `json:"statement_descriptor,omitempty"`
	StatementDescriptorSuffix       *string                           `json:"statement_descriptor_suffix,omitempty"`
	CaptureMethod                   *models.CaptureMethod             `json:"capture_method,omitempty"`
	SetupFutureUsage                *models.FutureUsage               `json:"setup_future_usage,omitempty"`
	MandateID                       *models.MandateIDs                `json:"mandate_id,omitempty"`
	OffSession                      *bool                             `json:"off_session,omitempty"`
	SetupMandateDetails             *models.MandateData               `json:"setup_mandate_details,omitempty"`
	CustomerAcceptance              *models.CustomerAcceptance        `json:"customer_acceptance,omitempty"`
	BrowserInfo                     *metadata.BrowserInformation      `json:"browser_info,omitempty"`
	Email                           *string                           `json:"email,omitempty"`
	CustomerName                    *string                           `json:"customer_name,omitempty"`
	CustomerID                      *string                           `json:"customer_id,omitempty"`
	PaymentExperience               *string                           `json:"payment_experience,omitempty"`
	PaymentMethodType               *models.PaymentMethodType         `json:"payment_method_type,omitempty"`
	OrderDetails                    []metadata.OrderDetailsWithAmount `json:"order_details,omitempty"`
	OrderCategory                   *string                           `json:"order_category,omitempty"`
	EnrolledFor3DS                  bool                              `json:"enrolled_for_3ds"`
	RouterReturnURL                 string                            `json:"router_return_url"`
	WebhookURL                      string                            `json:"webhook_url"`
	CompleteAuthorizeURL            string                            `json:"complete_authorize_url"`
	SurchargeDetails                *models.SurchargeDetails          `json:"surcharge_details,omitempty"`
	RequestIncrementalAuthorization bool                              `json:"request_incremental_authorization"`
	Metadata                        json.RawMessage                   `json:"metadata,omitempty"`
	AuthenticationData              *AuthenticationData               `json:"authentication_data,omitempty"`
	Charges                         *metadata.PaymentCharges          `json:"charges,omitempty"`
	MerchantOrderReferenceID        *string                           `json:"merchant_order_reference_id,omitempty"`
}

func buildAuthorize(in *Input) (Request, error) {
	d := &in.Data
	browser, err := browserInfo(&d.Attempt)
	if err != nil {
		return nil, err
	}
	category, err := orderCategory(&d.Intent)
	if err != nil {
		return nil, err
	}
	orders, err := orderDetails(&d.Intent)
	if err != nil {
		return nil, err
	}
	pmd, err := requirePaymentMethodData(paymentMethodDataOrMandate(d))
	if err != nil {
		return nil, err
	}
	ch, err := charges(&d.Intent)
	if err != nil {
		return nil, err
	}
	authn, err := authenticationData(d.Authentication)
	if err != nil {
		return nil, err
	}
	u := urlSet(in)

	return AuthorizeData{
		PaymentMethodData:               pmd,
		Amount:                          effectiveAmount(d),
		Currency:                        d.Currency,
		Confirm:                         d.Attempt.Confirm,
		StatementDescriptor:             d.Intent.StatementDescriptorName,
		StatementDescriptorSuffix:       d.Intent.StatementDescriptorSuffix,
		CaptureMethod:                   d.Attempt.CaptureMethod,
		SetupFutureUsage:                d.Intent.SetupFutureUsage,
		MandateID:                       d.MandateID,
		OffSession:                      d.OffSession(),
		SetupMandateDetails:             d.SetupMandate,
		CustomerAcceptance:              d.CustomerAcceptance,
		BrowserInfo:                     browser,
		Email:                           d.Email,
		CustomerName:                    customerName(in.Customer),
		CustomerID:                      customerID(in.Customer),
		PaymentExperience:               d.Attempt.PaymentExperience,
		PaymentMethodType:               d.Attempt.PaymentMethodType,
		OrderDetails:                    orders,
		OrderCategory:                   category,
		EnrolledFor3DS:                  true,
		RouterReturnURL:                 u.RouterReturn,
		WebhookURL:                      u.Webhook,
		CompleteAuthorizeURL:            u.CompleteAuthorize,
		SurchargeDetails:                d.SurchargeDetails,
		RequestIncrementalAuthorization: incrementalAuthorizationRequested(&d.Intent),
		Metadata:                        d.Intent.Metadata,
		AuthenticationData:              authn,
		Charges:                         ch,
		MerchantOrderReferenceID:        d.Intent.MerchantOrderReferenceID,
	}, nil
}

type SetupMandateData struct {
	PaymentMethodData               json.RawMessage              `json:"payment_method_data"`
	Amount                          Amount                       `json:"amount"`
	Currency                        money.Currency               `json:"currency"`
	Confirm                         bool                         `json:"confirm"`
	StatementDescriptorSuffix       *string                      `json:"statement_descriptor_suffix,omitempty"`
	SetupFutureUsage                *models.FutureUsage          `json:"setup_future_usage,omitempty"`
	MandateID                       *models.MandateIDs           `json:"mandate_id,omitempty"`
	OffSession                      *bool                        `json:"off_session,omitempty"`
	SetupMandateDetails             *models.MandateData          `json:"setup_mandate_details,omitempty"`
	CustomerAcceptance              *models.CustomerAcceptance   `json:"customer_acceptance,omitempty"`
	RouterReturnURL                 string                       `json:"router_return_url"`
	ReturnURL                       *string                      `json:"return_url,omitempty"`
	BrowserInfo                     *metadata.BrowserInformation `json:"browser_info,omitempty"`
	Email                           *string                      `json:"email,omitempty"`
	CustomerName                    *string                      `json:"customer_name,omitempty"`
	PaymentMethodType               *models.PaymentMethodType    `json:"payment_method_type,omitempty"`
	RequestIncrementalAuthorization bool                         `json:"request_incremental_authorization"`
	Metadata                        json.RawMessage              `json:"metadata,omitempty"`
}

// buildSetupMandate never defaults payment method data: a mandate cannot be
// set up from another mandate.
func buildSetupMandate(in *Input) (Request, error) {
	d := &in.Data
	browser, err := browserInfo(&d.Attempt)
	if err != nil {
		return nil, err
	}
	pmd, err := requirePaymentMethodData(d.PaymentMethodData)
	if err != nil {
		return nil, err
	}
	return SetupMandateData{
		PaymentMethodData:               pmd,
		Amount:                          effectiveAmount(d),
		Currency:                        d.Currency,
		Confirm:                         true,
		StatementDescriptorSuffix:       d.Intent.StatementDescriptorSuffix,
		SetupFutureUsage:                d.Intent.SetupFutureUsage,
		MandateID:                       d.MandateID,
		OffSession:                      d.OffSession(),
		SetupMandateDetails:             d.SetupMandate,
		CustomerAcceptance:              d.CustomerAcceptance,
		RouterReturnURL:                 urlSet(in).RouterReturn,
		ReturnURL:                       d.Intent.ReturnURL,
		BrowserInfo:                     browser,
		Email:                           d.Email,
		CustomerName:                    customerName(in.Customer),
		PaymentMethodType:               d.Attempt.PaymentMethodType,
		RequestIncrementalAuthorization: incrementalAuthorizationRequested(&d.Intent),
		Metadata:                        d.Intent.Metadata,
	}, nil
}

// RedirectResponse is what the customer's browser brought back from the connector.
type RedirectResponse struct {
	Params  *string         `json:"params,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CompleteAuthorizeData struct {
	PaymentMethodData         json.RawMessage              `json:"payment_method_data,omitempty"`
	Amount                    Amount                       `json:"amount"`
	Currency                  money.Currency               `json:"currency"`
	Confirm                   bool                         `json:"confirm"`
	StatementDescriptorSuffix *string                      `json:"statement_descriptor_suffix,omitempty"`
	CaptureMethod             *models.CaptureMethod        `json:"capture_method,omitempty"`
	SetupFutureUsage          *models.FutureUsage          `json:"setup_future_usage,omitempty"`
	MandateID                 *models.MandateIDs           `json:"mandate_id,omitempty"`
	OffSession                *bool                        `json:"off_session,omitempty"`
	SetupMandateDetails       *models.MandateData          `json:"setup_mandate_details,omitempty"`
	CustomerAcceptance        *models.CustomerAcceptance   `json:"customer_acceptance,omitempty"`
	BrowserInfo               *metadata.BrowserInformation `json:"browser_info,omitempty"`
	Email                     *string                      `json:"email,omitempty"`
	ConnectorTransactionID    *string                      `json:"connector_transaction_id,omitempty"`
	RedirectResponse          *RedirectResponse            `json:"redirect_response,omitempty"`
	ConnectorMeta             json.RawMessage              `json:"connector_meta,omitempty"`
	CompleteAuthorizeURL      string                       `json:"complete_authorize_url"`
	Metadata                  json.RawMessage              `json:"metadata,omitempty"`
}

func buildCompleteAuthorize(in *Input) (Request, error) {
	d := &in.Data
	browser, err := browserInfo(&d.Attempt)
	if err != nil {
		return nil, err
	}
	var redirect *RedirectResponse
	if d.RedirectResponse != nil {
		redirect = &RedirectResponse{
			Params:  d.RedirectResponse.Param,
			Payload: d.RedirectResponse.JSONPayload,
		}
	}
	return CompleteAuthorizeData{
		PaymentMethodData:         optionalPaymentMethodData(d.PaymentMethodData),
		Amount:                    effectiveAmount(d),
		Currency:                  d.Currency,
		Confirm:                   d.Attempt.Confirm,
		StatementDescriptorSuffix: d.Intent.StatementDescriptorSuffix,
		CaptureMethod:             d.Attempt.CaptureMethod,
		SetupFutureUsage:          d.Intent.SetupFutureUsage,
		MandateID:                 d.MandateID,
		OffSession:                d.OffSession(),
		SetupMandateDetails:       d.SetupMandate,
		CustomerAcceptance:        d.CustomerAcceptance,
		BrowserInfo:               browser,
		Email:                     d.Email,
		ConnectorTransactionID:    d.Attempt.ConnectorTransactionID,
		RedirectResponse:          redirect,
		ConnectorMeta:             d.Attempt.ConnectorMetadata,
		CompleteAuthorizeURL:      urlSet(in).CompleteAuthorize,
		Metadata:                  d.Intent.Metadata,
	}, nil
}

type PreProcessingData struct {
	PaymentMethodData      json.RawMessage                   `json:"payment_method_data,omitempty"`
	Amount                 Amount                            `json:"amount"`
	Currency               money.Currency                    `json:"currency"`
	Email                  *string                           `json:"email,omitempty"`
	PaymentMethodType      *models.PaymentMethodType         `json:"payment_method_type,omitempty"`
	SetupMandateDetails    *models.MandateData               `json:"setup_mandate_details,omitempty"`
	CaptureMethod          *models.CaptureMethod             `json:"capture_method,omitempty"`
	OrderDetails           []metadata.OrderDetailsWithAmount `json:"order_details,omitempty"`
	RouterReturnURL        string                            `json:"router_return_url"`
	WebhookURL             string                            `json:"webhook_url"`
	CompleteAuthorizeURL   string                            `json:"complete_authorize_url"`
	BrowserInfo            *metadata.BrowserInformation      `json:"browser_info,omitempty"`
	SurchargeDetails       *models.SurchargeDetails          `json:"surcharge_details,omitempty"`
	ConnectorTransactionID *string                           `json:"connector_transaction_id,omitempty"`
	MandateID              *models.MandateIDs                `json:"mandate_id,omitempty"`
	EnrolledFor3DS         bool                              `json:"enrolled_for_3ds"`
}

func buildPreProcessing(in *Input) (Request, error) {
	d := &in.Data
	orders, err := orderDetails(&d.Intent)
	if err != nil {
		return nil, err
	}
	browser, err := browserInfo(&d.Attempt)
	if err != nil {
		return nil, err
	}
	u := urlSet(in)
	return PreProcessingData{
		PaymentMethodData:      optionalPaymentMethodData(d.PaymentMethodData),
		Amount:                 effectiveAmount(d),
		Currency:               d.Currency,
		Email:                  d.Email,
		PaymentMethodType:      d.Attempt.PaymentMethodType,
		SetupMandateDetails:    d.SetupMandate,
		CaptureMethod:          d.Attempt.CaptureMethod,
		OrderDetails:           orders,
		RouterReturnURL:        u.RouterReturn,
		WebhookURL:             u.Webhook,
		CompleteAuthorizeURL:   u.CompleteAuthorize,
		BrowserInfo:            browser,
		SurchargeDetails:       d.SurchargeDetails,
		ConnectorTransactionID: d.Attempt.ConnectorTransactionID,
		MandateID:              d.MandateID,
		EnrolledFor3DS:         true,
	}, nil
}
