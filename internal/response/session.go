package response

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/metadata"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

type SessionResponse struct {
	SessionToken []json.RawMessage `json:"session_token"`
	PaymentID    string            `json:"payment_id"`
	ClientSecret string            `json:"client_secret"`
}

// Session projects the wallet session tokens gathered for a payment.
func Session(data *models.PaymentData) (*SessionResponse, error) {
	if data.Intent.ClientSecret == nil {
		return nil, apierror.MissingRequiredValue("client_secret")
	}
	tokens := data.SessionsToken
	if tokens == nil {
		tokens = []json.RawMessage{}
	}
	return &SessionResponse{
		SessionToken: tokens,
		PaymentID:    data.Attempt.PaymentID,
		ClientSecret: *data.Intent.ClientSecret,
	}, nil
}

type VerifyResponse struct {
	VerifyID          *string               `json:"verify_id,omitempty"`
	MerchantID        *string               `json:"merchant_id,omitempty"`
	ClientSecret      *string               `json:"client_secret,omitempty"`
	CustomerID        *string               `json:"customer_id,omitempty"`
	Email             *string               `json:"email,omitempty"`
	Name              *string               `json:"name,omitempty"`
	Phone             *string               `json:"phone,omitempty"`
	MandateID         *string               `json:"mandate_id,omitempty"`
	PaymentMethod     *models.PaymentMethod `json:"payment_method,omitempty"`
	PaymentMethodData json.RawMessage       `json:"payment_method_data,omitempty"`
	PaymentToken      *string               `json:"payment_token,omitempty"`
	ErrorCode         *string               `json:"error_code,omitempty"`
	ErrorMessage      *string               `json:"error_message,omitempty"`
}

// Verify builds the legacy verify response of a zero-amount mandate setup.
func Verify(data *models.PaymentData, customer *models.Customer) (*VerifyResponse, error) {
	pmd, err := metadata.ValidatePaymentMethodData(data.Attempt.PaymentMethodData)
	if err != nil {
		return nil, apierror.InvalidDataValue("payment_method_data", err)
	}
	paymentID, merchantID := data.Intent.PaymentID, data.Intent.MerchantID
	resp := &VerifyResponse{
		VerifyID:          &paymentID,
		MerchantID:        &merchantID,
		ClientSecret:      data.Intent.ClientSecret,
		MandateID:         data.MandateIDValue(),
		PaymentMethod:     data.Attempt.PaymentMethod,
		PaymentMethodData: pmd,
		PaymentToken:      data.Token,
		ErrorCode:         data.Attempt.ErrorCode,
		ErrorMessage:      data.Attempt.ErrorMessage,
	}
	if customer != nil {
		id := customer.CustomerID
		resp.CustomerID = &id
		resp.Email = customer.Email
		resp.Name = customer.Name
		resp.Phone = customer.Phone
	}
	return resp, nil
}

// FromIntentAttempt is the list view of a payment. Stored blobs that do not
// decode are logged and left out instead of failing the listing.
func FromIntentAttempt(intent *models.PaymentIntent, attempt *models.PaymentAttempt) *PaymentsResponse {
	paymentID, merchantID := intent.PaymentID, intent.MerchantID
	created := intent.CreatedAt
	var currency string
	if intent.Currency != nil {
		currency = string(*intent.Currency)
	}
	resp := &PaymentsResponse{
		PaymentID:                &paymentID,
		MerchantID:               &merchantID,
		Status:                   intent.Status,
		Amount:                   intent.Amount,
		AmountReceived:           intent.AmountCaptured,
		ClientSecret:             intent.ClientSecret,
		Created:                  &created,
		Currency:                 currency,
		Description:              intent.Description,
		Metadata:                 intent.Metadata,
		OrderDetails:             intent.OrderDetails,
		CustomerID:               intent.CustomerID,
		Connector:                attempt.Connector,
		PaymentMethod:            attempt.PaymentMethod,
		PaymentMethodType:        attempt.PaymentMethodType,
		BusinessLabel:            intent.BusinessLabel,
		BusinessCountry:          intent.BusinessCountry,
		BusinessSubLabel:         attempt.BusinessSubLabel,
		SetupFutureUsage:         intent.SetupFutureUsage,
		CaptureMethod:            attempt.CaptureMethod,
		AuthenticationType:       attempt.AuthenticationType,
		ConnectorTransactionID:   attempt.ConnectorTransactionID,
		AttemptCount:             intent.AttemptCount,
		ProfileID:                intent.ProfileID,
		MerchantConnectorID:      attempt.MerchantConnectorID,
		MerchantOrderReferenceID: intent.MerchantOrderReferenceID,
	}

	if models.Present(attempt.PaymentMethodData) {
		var pmd PaymentMethodDataResponseWithBilling
		if err := json.Unmarshal(attempt.PaymentMethodData, &pmd); err != nil {
			logDropped(intent.PaymentID, "payment_method_data", err)
		} else {
			resp.PaymentMethodData = &pmd
		}
	}
	if models.Present(intent.CustomerDetails) {
		var c models.CustomerData
		if err := json.Unmarshal(intent.CustomerDetails, &c); err != nil {
			logDropped(intent.PaymentID, "customer_details", err)
		} else {
			resp.Customer = &CustomerDetailsResponse{
				ID:               intent.CustomerID,
				Name:             c.Name,
				Email:            c.Email,
				Phone:            c.Phone,
				PhoneCountryCode: c.PhoneCountryCode,
			}
		}
	}
	resp.Billing = decodeAddress(intent.PaymentID, "billing_details", intent.BillingDetails)
	resp.Shipping = decodeAddress(intent.PaymentID, "shipping_details", intent.ShippingDetails)
	return resp
}

func decodeAddress(paymentID, field string, raw json.RawMessage) *models.Address {
	if !models.Present(raw) {
		return nil
	}
	var a models.Address
	if err := json.Unmarshal(raw, &a); err != nil {
		logDropped(paymentID, field, err)
		return nil
	}
	return &a
}

func logDropped(paymentID, field string, err error) {
	telemetry.Logger.Error("Failed to parse stored payment field",
		zap.String("payment_id", paymentID),
		zap.String("field", field),
		zap.Error(err),
	)
}
