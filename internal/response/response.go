// Package response synthesizes the public payment responses from a payment
// aggregate and its resolved next action.
package response

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/metadata"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/money"
	"github.com/akylbek/payment-system/payment-core/internal/nextaction"
	"github.com/akylbek/payment-system/payment-core/internal/routerdata"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

const (
	HeaderConnectorHTTPStatusCode = "connector_http_status_code"
	HeaderPaymentConfirmSource    = "X-Payment-Confirm-Source"
	HeaderLatency                 = "x-hs-latency"
)

// Header is one response header. Masked values are still sent as plain
// strings; Masked only keeps them out of logs.
type Header struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Masked bool   `json:"masked"`
}

func (h Header) String() string {
	if h.Masked {
		return h.Name + ": *** masked ***"
	}
	return h.Name + ": " + h.Value
}

type SurchargeDetailsResponse struct {
	SurchargeAmount money.MinorUnit  `json:"surcharge_amount"`
	TaxAmount       *money.MinorUnit `json:"tax_amount,omitempty"`
}

type PaymentMethodDataResponseWithBilling struct {
	PaymentMethodData json.RawMessage `json:"payment_method_data,omitempty"`
	Billing           *models.Address `json:"billing,omitempty"`
}

type PaymentsResponse struct {
	PaymentID                        *string                               `json:"payment_id,omitempty"`
	MerchantID                       *string                               `json:"merchant_id,omitempty"`
	Status                           models.IntentStatus                   `json:"status"`
	Amount                           money.MinorUnit                       `json:"amount"`
	NetAmount                        money.MinorUnit                       `json:"net_amount"`
	AmountCapturable                 *money.MinorUnit                      `json:"amount_capturable,omitempty"`
	AmountReceived                   *money.MinorUnit                      `json:"amount_received,omitempty"`
	Connector                        *string                               `json:"connector,omitempty"`
	ClientSecret                     *string                               `json:"client_secret,omitempty"`
	Created                          *time.Time                            `json:"created,omitempty"`
	Currency                         string                                `json:"currency"`
	CustomerID                       *string                               `json:"customer_id,omitempty"`
	Customer                         *CustomerDetailsResponse              `json:"customer,omitempty"`
	Description                      *string                               `json:"description,omitempty"`
	Refunds                          []RefundResponse                      `json:"refunds,omitempty"`
	Disputes                         []DisputeResponse                     `json:"disputes,omitempty"`
	Attempts                         []AttemptResponse                     `json:"attempts,omitempty"`
	Captures                         []CaptureResponse                     `json:"captures,omitempty"`
	MandateID                        *string                               `json:"mandate_id,omitempty"`
	MandateData                      *MandateDataResponse                  `json:"mandate_data,omitempty"`
	SetupFutureUsage                 *models.FutureUsage                   `json:"setup_future_usage,omitempty"`
	CaptureMethod                    *models.CaptureMethod                 `json:"capture_method,omitempty"`
	PaymentMethod                    *models.PaymentMethod                 `json:"payment_method,omitempty"`
	PaymentMethodData                *PaymentMethodDataResponseWithBilling `json:"payment_method_data,omitempty"`
	PaymentToken                     *string                               `json:"payment_token,omitempty"`
	Shipping                         *models.Address                       `json:"shipping,omitempty"`
	Billing                          *models.Address                       `json:"billing,omitempty"`
	OrderDetails                     []json.RawMessage                     `json:"order_details,omitempty"`
	Email                            *string                               `json:"email,omitempty"`
	Name                             *string                               `json:"name,omitempty"`
	Phone                            *string                               `json:"phone,omitempty"`
	ReturnURL                        *string                               `json:"return_url,omitempty"`
	AuthenticationType               *models.AuthenticationType            `json:"authentication_type,omitempty"`
	StatementDescriptorName          *string                               `json:"statement_descriptor_name,omitempty"`
	StatementDescriptorSuffix        *string                               `json:"statement_descriptor_suffix,omitempty"`
	NextAction                       *nextaction.Action                    `json:"next_action,omitempty"`
	CancellationReason               *string                               `json:"cancellation_reason,omitempty"`
	ErrorCode                        *string                               `json:"error_code,omitempty"`
	ErrorMessage                     *string                               `json:"error_message,omitempty"`
	UnifiedCode                      *string                               `json:"unified_code,omitempty"`
	UnifiedMessage                   *string                               `json:"unified_message,omitempty"`
	PaymentExperience                *string                               `json:"payment_experience,omitempty"`
	PaymentMethodType                *models.PaymentMethodType             `json:"payment_method_type,omitempty"`
	ConnectorLabel                   *string                               `json:"connector_label,omitempty"`
	BusinessCountry                  *string                               `json:"business_country,omitempty"`
	BusinessLabel                    *string                               `json:"business_label,omitempty"`
	BusinessSubLabel                 *string                               `json:"business_sub_label,omitempty"`
	AllowedPaymentMethodTypes        json.RawMessage                       `json:"allowed_payment_method_types,omitempty"`
	EphemeralKey                     *EphemeralKeyResponse                 `json:"ephemeral_key,omitempty"`
	ManualRetryAllowed               *bool                                 `json:"manual_retry_allowed,omitempty"`
	ConnectorTransactionID           *string                               `json:"connector_transaction_id,omitempty"`
	FrmMessage                       *FrmMessage                           `json:"frm_message,omitempty"`
	Metadata                         json.RawMessage                       `json:"metadata,omitempty"`
	ConnectorMetadata                json.RawMessage                       `json:"connector_metadata,omitempty"`
	FeatureMetadata                  json.RawMessage                       `json:"feature_metadata,omitempty"`
	ReferenceID                      *string                               `json:"reference_id,omitempty"`
	PaymentLink                      json.RawMessage                       `json:"payment_link,omitempty"`
	ProfileID                        *string                               `json:"profile_id,omitempty"`
	SurchargeDetails                 *SurchargeDetailsResponse             `json:"surcharge_details,omitempty"`
	AttemptCount                     int16                                 `json:"attempt_count"`
	MerchantDecision                 *string                               `json:"merchant_decision,omitempty"`
	MerchantConnectorID              *string                               `json:"merchant_connector_id,omitempty"`
	IncrementalAuthorizationAllowed  *bool                                 `json:"incremental_authorization_allowed,omitempty"`
	AuthorizationCount               *int32                                `json:"authorization_count,omitempty"`
	IncrementalAuthorizations        []IncrementalAuthorizationResponse    `json:"incremental_authorizations,omitempty"`
	ExternalAuthenticationDetails    *ExternalAuthenticationDetails        `json:"external_authentication_details,omitempty"`
	External3DSAuthenticationAttempt *bool                                 `json:"external_3ds_authentication_attempted,omitempty"`
	ExpiresOn                        *time.Time                            `json:"expires_on,omitempty"`
	Fingerprint                      *string                               `json:"fingerprint,omitempty"`
	BrowserInfo                      json.RawMessage                       `json:"browser_info,omitempty"`
	PaymentMethodID                  *string                               `json:"payment_method_id,omitempty"`
	PaymentMethodStatus              *string                               `json:"payment_method_status,omitempty"`
	Updated                          *time.Time                            `json:"updated,omitempty"`
	Charges                          *ChargesResponse                      `json:"charges,omitempty"`
	FrmMetadata                      json.RawMessage                       `json:"frm_metadata,omitempty"`
	MerchantOrderReferenceID         *string                               `json:"merchant_order_reference_id,omitempty"`
}

// RedirectionFormData is rendered as an auto-submitting page instead of JSON.
type RedirectionFormData struct {
	RedirectForm      metadata.RedirectForm `json:"redirect_form"`
	PaymentMethodData json.RawMessage       `json:"payment_method_data,omitempty"`
	Amount            decimal.Decimal       `json:"amount"`
	Currency          string                `json:"currency"`
}

// PaymentOp is the operation a synthesized response counts as. The caller
// records it after synthesis.
type PaymentOp struct {
	Operation         models.Operation
	MerchantID        string
	PaymentMethod     *models.PaymentMethod
	PaymentMethodType *models.PaymentMethodType
}

// Labels returns the payment_ops_count label values. Missing payment method
// fields are recorded as empty strings.
func (o PaymentOp) Labels() []string {
	var pm, pmt string
	if o.PaymentMethod != nil {
		pm = string(*o.PaymentMethod)
	}
	if o.PaymentMethodType != nil {
		pmt = string(*o.PaymentMethodType)
	}
	return []string{string(o.Operation), o.MerchantID, pmt, pm}
}

// Output is either a JSON payments response with headers, or a redirect form.
type Output struct {
	Payments *PaymentsResponse
	Headers  []Header
	Form     *RedirectionFormData
	Op       PaymentOp
}

type Params struct {
	Data                    *models.PaymentData
	Customer                *models.Customer
	AuthFlow                models.AuthFlow
	BaseURL                 string
	Operation               models.Operation
	References              routerdata.ReferenceIDConfig
	ConnectorHTTPStatusCode *int
	ExternalLatency         *int64
}

// Payments builds the full payments response. It reads the aggregate only,
// so running it twice on the same input yields the same output.
func Payments(ctx context.Context, p Params) (out *Output, err error) {
	_, span := telemetry.StartSpan(ctx, "response.Payments", p.Data.Intent.PaymentID)
	defer func() { telemetry.EndSpan(span, err) }()

	data := p.Data
	attempt := &data.Attempt
	intent := &data.Intent

	if attempt.Currency == nil {
		return nil, apierror.MissingRequiredValue("currency")
	}
	currency := *attempt.Currency
	amount, err := attempt.Amount.ToBaseUnit(currency)
	if err != nil {
		return nil, apierror.InvalidDataValue("amount", err)
	}

	pmd, err := metadata.ValidatePaymentMethodData(attempt.PaymentMethodData)
	if err != nil {
		return nil, apierror.InvalidDataValue("payment_method_data", err)
	}
	var pmdResponse *PaymentMethodDataResponseWithBilling
	if pmd != nil || data.Address.PaymentMethodBilling != nil {
		pmdResponse = &PaymentMethodDataResponseWithBilling{
			PaymentMethodData: pmd,
			Billing:           data.Address.PaymentMethodBilling,
		}
	}

	out = &Output{
		Op: PaymentOp{
			Operation:         p.Operation,
			MerchantID:        attempt.MerchantID,
			PaymentMethod:     attempt.PaymentMethod,
			PaymentMethodType: attempt.PaymentMethodType,
		},
	}

	if p.Operation.IsStartPay() && models.Present(attempt.AuthenticationData) {
		form, err := nextaction.StartPayForm(attempt)
		if err != nil {
			return nil, err
		}
		out.Form = &RedirectionFormData{
			RedirectForm:      form,
			PaymentMethodData: data.PaymentMethodData,
			Amount:            amount,
			Currency:          string(currency),
		}
		return out, nil
	}

	out.Headers = headers(intent, p.ConnectorHTTPStatusCode, p.ExternalLatency)

	action, err := nextaction.Resolve(nextaction.Input{
		Attempt:        attempt,
		Intent:         intent,
		Authentication: data.Authentication,
		PollConfig:     data.PollConfig,
		SessionsToken:  data.SessionsToken,
		Operation:      p.Operation,
		BaseURL:        p.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	chargesResponse, err := charges(intent, attempt)
	if err != nil {
		return nil, err
	}

	var surcharge *SurchargeDetailsResponse
	if attempt.SurchargeAmount != nil {
		surcharge = &SurchargeDetailsResponse{SurchargeAmount: *attempt.SurchargeAmount, TaxAmount: attempt.TaxAmount}
	}

	capturable := attempt.AmountCapturable
	created, updated := intent.CreatedAt, intent.ModifiedAt
	paymentID, merchantID := attempt.PaymentID, attempt.MerchantID

	resp := &PaymentsResponse{
		PaymentID:                        &paymentID,
		MerchantID:                       &merchantID,
		Status:                           intent.Status,
		Amount:                           attempt.Amount,
		NetAmount:                        attempt.NetAmount,
		AmountCapturable:                 &capturable,
		AmountReceived:                   intent.AmountCaptured,
		Connector:                        attempt.Connector,
		ClientSecret:                     intent.ClientSecret,
		Created:                          &created,
		Currency:                         string(currency),
		Customer:                         reconcileCustomer(intent, p.Customer),
		Description:                      intent.Description,
		Refunds:                          refundResponses(data.Refunds),
		Disputes:                         disputeResponses(data.Disputes),
		Attempts:                         attemptResponses(data.Attempts),
		Captures:                         captureResponses(data.MultipleCaptureData),
		MandateID:                        attempt.MandateID,
		SetupFutureUsage:                 intent.SetupFutureUsage,
		CaptureMethod:                    attempt.CaptureMethod,
		PaymentToken:                     attempt.PaymentToken,
		Shipping:                         data.Address.Shipping,
		Billing:                          data.Address.Billing,
		OrderDetails:                     intent.OrderDetails,
		ReturnURL:                        intent.ReturnURL,
		AuthenticationType:               attempt.AuthenticationType,
		StatementDescriptorName:          intent.StatementDescriptorName,
		StatementDescriptorSuffix:        intent.StatementDescriptorSuffix,
		NextAction:                       action,
		CancellationReason:               attempt.CancellationReason,
		ErrorCode:                        attempt.ErrorCode,
		ErrorMessage:                     orElse(attempt.ErrorReason, attempt.ErrorMessage),
		UnifiedCode:                      attempt.UnifiedCode,
		UnifiedMessage:                   attempt.UnifiedMessage,
		PaymentExperience:                attempt.PaymentExperience,
		PaymentMethodType:                attempt.PaymentMethodType,
		ConnectorLabel:                   connectorLabel(intent, attempt),
		BusinessCountry:                  intent.BusinessCountry,
		BusinessLabel:                    intent.BusinessLabel,
		BusinessSubLabel:                 attempt.BusinessSubLabel,
		AllowedPaymentMethodTypes:        intent.AllowedPaymentMethodTypes,
		EphemeralKey:                     ephemeralKey(data.EphemeralKey),
		ManualRetryAllowed:               manualRetryAllowed(intent, attempt, p.References),
		ConnectorTransactionID:           attempt.ConnectorTransactionID,
		FrmMessage:                       frmMessage(data.FrmMessage),
		Metadata:                         intent.Metadata,
		ConnectorMetadata:                intent.ConnectorMetadata,
		FeatureMetadata:                  intent.FeatureMetadata,
		ReferenceID:                      attempt.ConnectorResponseReferenceID,
		PaymentLink:                      data.PaymentLinkData,
		ProfileID:                        intent.ProfileID,
		SurchargeDetails:                 surcharge,
		AttemptCount:                     intent.AttemptCount,
		MerchantDecision:                 intent.MerchantDecision,
		MerchantConnectorID:              attempt.MerchantConnectorID,
		IncrementalAuthorizationAllowed:  intent.IncrementalAuthorizationAllowed,
		AuthorizationCount:               intent.AuthorizationCount,
		IncrementalAuthorizations:        incrementalAuthorizationResponses(data.Authorizations),
		ExternalAuthenticationDetails:    externalAuthenticationDetails(data.Authentication),
		External3DSAuthenticationAttempt: attempt.ExternalThreeDSAuthenticationAttempted,
		ExpiresOn:                        intent.SessionExpiry,
		Fingerprint:                      intent.FingerprintID,
		BrowserInfo:                      attempt.BrowserInfo,
		PaymentMethodID:                  attempt.PaymentMethodID,
		Updated:                          &updated,
		Charges:                          chargesResponse,
		FrmMetadata:                      intent.FrmMetadata,
		MerchantOrderReferenceID:         intent.MerchantOrderReferenceID,
	}
	if p.Customer != nil {
		id := p.Customer.CustomerID
		resp.CustomerID = &id
		resp.Email = p.Customer.Email
		resp.Name = p.Customer.Name
		resp.Phone = p.Customer.Phone
	}
	if data.PaymentMethodInfo != nil {
		status := data.PaymentMethodInfo.Status
		resp.PaymentMethodStatus = &status
	}
	// Mandate and payment method details are only shown to the merchant.
	if p.AuthFlow == models.AuthFlowMerchant {
		resp.MandateData = mandateData(data.SetupMandate)
		resp.PaymentMethod = attempt.PaymentMethod
		resp.PaymentMethodData = pmdResponse
	}

	out.Payments = resp
	telemetry.Logger.Debug("Synthesized payments response",
		zap.String("payment_id", paymentID),
		zap.String("operation", string(p.Operation)),
		zap.Bool("has_next_action", action != nil),
	)
	return out, nil
}

func headers(intent *models.PaymentIntent, statusCode *int, latency *int64) []Header {
	var hs []Header
	if statusCode != nil {
		hs = append(hs, Header{Name: HeaderConnectorHTTPStatusCode, Value: strconv.Itoa(*statusCode)})
	}
	if intent.PaymentConfirmSource != nil {
		hs = append(hs, Header{Name: HeaderPaymentConfirmSource, Value: *intent.PaymentConfirmSource})
	}
	if latency != nil {
		hs = append(hs, Header{Name: HeaderLatency, Value: strconv.FormatInt(*latency, 10)})
	}
	return hs
}
