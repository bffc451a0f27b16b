package flows

import (
	"encoding/json"
	"errors"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/connector"
	"github.com/akylbek/payment-system/payment-core/internal/metadata"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/money"
	"github.com/akylbek/payment-system/payment-core/internal/urls"
)

// MandatePaymentMethodData stands in for payment method data on recurring
// mandate payments, where the stored mandate replaces the card.
var MandatePaymentMethodData = json.RawMessage(`"mandate_payment"`)

// Amount carries an amount both as a plain integer and as a minor-unit value.
type Amount struct {
	Value int64           `json:"amount"`
	Minor money.MinorUnit `json:"minor_amount"`
}

func newAmount(m money.MinorUnit) Amount {
	return Amount{Value: m.Int64(), Minor: m}
}

func effectiveAmount(d *models.PaymentData) Amount {
	return newAmount(d.EffectiveAmount())
}

func browserInfo(attempt *models.PaymentAttempt) (*metadata.BrowserInformation, error) {
	b, err := metadata.ParseBrowserInfo(attempt.BrowserInfo)
	if err != nil {
		return nil, apierror.InvalidDataValue("browser_info", err)
	}
	return b, nil
}

func orderDetails(intent *models.PaymentIntent) ([]metadata.OrderDetailsWithAmount, error) {
	details, err := metadata.ParseOrderDetails(intent.OrderDetails)
	if err != nil {
		return nil, apierror.Attach(
			apierror.InvalidDataValue("OrderDetailsWithAmount", err),
			"unable to parse OrderDetailsWithAmount")
	}
	return details, nil
}

// paymentMethodDataOrMandate falls back to a mandate payment when a mandate id
// is attached and no payment method data was sent.
func paymentMethodDataOrMandate(d *models.PaymentData) json.RawMessage {
	if models.Present(d.PaymentMethodData) {
		return d.PaymentMethodData
	}
	if d.MandateID != nil {
		return MandatePaymentMethodData
	}
	return nil
}

func requirePaymentMethodData(raw json.RawMessage) (json.RawMessage, error) {
	if !models.Present(raw) {
		return nil, apierror.MissingRequiredValue("payment_method_data")
	}
	return raw, nil
}

func optionalPaymentMethodData(raw json.RawMessage) json.RawMessage {
	if !models.Present(raw) {
		return nil
	}
	return raw
}

func customerName(c *models.Customer) *string {
	if c == nil {
		return nil
	}
	return c.Name
}

func customerID(c *models.Customer) *string {
	if c == nil {
		return nil
	}
	return &c.CustomerID
}

func urlSet(in *Input) urls.Set {
	return urls.NewSet(in.BaseURL, &in.Data.Attempt, string(in.Connector), in.Data.CredsIdentifier)
}

func transactionID(in *Input) (string, error) {
	return connector.ResolveTransactionID(in.Connector, &in.Data.Attempt)
}

func orderCategory(intent *models.PaymentIntent) (*string, error) {
	c, err := metadata.OrderCategory(intent.ConnectorMetadata)
	if err != nil {
		return nil, apierror.Attach(apierror.Internal(err), "failed parsing ConnectorMetadata")
	}
	return c, nil
}

func charges(intent *models.PaymentIntent) (*metadata.PaymentCharges, error) {
	c, err := metadata.ParseCharges(intent.Charges)
	if err != nil {
		return nil, apierror.Attach(apierror.Internal(err), "failed to parse charges into PaymentCharges")
	}
	return c, nil
}

func incrementalAuthorizationRequested(intent *models.PaymentIntent) bool {
	return intent.RequestIncrementalAuthorization.Requested()
}

// AuthenticationData is what a connector needs from a completed external 3DS
// authentication to authorize the payment.
type AuthenticationData struct {
	ECI                        *string `json:"eci,omitempty"`
	CAVV                       string  `json:"cavv"`
	ThreeDSServerTransactionID string  `json:"threeds_server_transaction_id"`
	MessageVersion             string  `json:"message_version"`
	DSTransID                  *string `json:"ds_trans_id,omitempty"`
}

var errAuthenticationIncomplete = errors.New("authentication is not successful or lacks cavv, server transaction id or message version")

func authenticationData(a *models.Authentication) (*AuthenticationData, error) {
	if a == nil {
		return nil, nil
	}
	if a.AuthenticationStatus != models.AuthenticationStatusSuccess ||
		a.ThreeDSServerTransactionID == nil || a.CAVV == nil || a.MessageVersion == nil {
		return nil, apierror.Attach(apierror.PaymentAuthenticationFailed(), "%v", errAuthenticationIncomplete)
	}
	return &AuthenticationData{
		ECI:                        a.ECI,
		CAVV:                       *a.CAVV,
		ThreeDSServerTransactionID: *a.ThreeDSServerTransactionID,
		MessageVersion:             *a.MessageVersion,
		DSTransID:                  a.DSTransID,
	}, nil
}
