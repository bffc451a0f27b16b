package connector

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/models"
)

type Name string

const (
	Helcim   Name = "helcim"
	Nexinets Name = "nexinets"
	Trustpay Name = "trustpay"
	Payme    Name = "payme"
	Plaid    Name = "plaid"
	Paypal   Name = "paypal"
	Stripe   Name = "stripe"
	Adyen    Name = "adyen"
)

var known = map[Name]struct{}{
	"adyen": {}, "airwallex": {}, "authorizedotnet": {}, "bambora": {}, "bankofamerica": {},
	"billwerk": {}, "bitpay": {}, "bluesnap": {}, "boku": {}, "braintree": {}, "cashtocode": {},
	"checkout": {}, "coinbase": {}, "cryptopay": {}, "cybersource": {}, "datatrans": {},
	"dlocal": {}, "ebanx": {}, "fiserv": {}, "forte": {}, "globalpay": {}, "globepay": {},
	"gocardless": {}, "helcim": {}, "iatapay": {}, "klarna": {}, "mifinity": {}, "mollie": {},
	"multisafepay": {}, "netcetera": {}, "nexinets": {}, "nmi": {}, "noon": {}, "nuvei": {},
	"opennode": {}, "payme": {}, "payone": {}, "paypal": {}, "payu": {}, "placetopay": {},
	"plaid": {}, "powertranz": {}, "prophetpay": {}, "rapyd": {}, "razorpay": {}, "shift4": {},
	"square": {}, "stax": {}, "stripe": {}, "threedsecureio": {}, "trustpay": {}, "tsys": {},
	"volt": {}, "wellsfargo": {}, "wise": {}, "worldline": {}, "worldpay": {}, "zen": {}, "zsl": {},
}

// Parse validates a connector identifier.
func Parse(id string) (Name, error) {
	n := Name(id)
	if _, ok := known[n]; !ok {
		return "", apierror.Attach(
			apierror.InvalidDataValue("connector", fmt.Errorf("unknown connector %q", id)),
			"unable to parse connector name %q", id)
	}
	return n, nil
}

// TransactionIDResolver resolves the connector transaction id a capture, cancel
// or incremental authorization must reference.
type TransactionIDResolver interface {
	ConnectorTransactionID(attempt *models.PaymentAttempt) (*string, error)
}

type defaultResolver struct{}

func (defaultResolver) ConnectorTransactionID(attempt *models.PaymentAttempt) (*string, error) {
	return attempt.ConnectorTransactionID, nil
}

// helcimResolver falls back to the preauth id kept in connector metadata when
// the attempt has no transaction id.
type helcimResolver struct{}

func (helcimResolver) ConnectorTransactionID(attempt *models.PaymentAttempt) (*string, error) {
	if attempt.ConnectorTransactionID != nil {
		return attempt.ConnectorTransactionID, nil
	}
	var meta struct {
		PreauthTransactionID *uint64 `json:"preauth_transaction_id"`
	}
	if err := decodeMeta(attempt.ConnectorMetadata, &meta); err != nil || meta.PreauthTransactionID == nil {
		return nil, apierror.ResourceIDNotFound()
	}
	id := strconv.FormatUint(*meta.PreauthTransactionID, 10)
	return &id, nil
}

// nexinetsResolver always reads the transaction id from connector metadata.
type nexinetsResolver struct{}

func (nexinetsResolver) ConnectorTransactionID(attempt *models.PaymentAttempt) (*string, error) {
	var meta struct {
		TransactionID *string `json:"transaction_id"`
		OrderID       *string `json:"order_id"`
	}
	if err := decodeMeta(attempt.ConnectorMetadata, &meta); err != nil {
		return nil, apierror.ResourceIDNotFound()
	}
	return meta.TransactionID, nil
}

func decodeMeta(raw json.RawMessage, dst any) error {
	if !models.Present(raw) {
		return errors.New("connector metadata absent")
	}
	return json.Unmarshal(raw, dst)
}

// ResolverFor returns the transaction id capability of a connector.
func ResolverFor(n Name) TransactionIDResolver {
	switch n {
	case Helcim:
		return helcimResolver{}
	case Nexinets:
		return nexinetsResolver{}
	default:
		return defaultResolver{}
	}
}

// ResolveTransactionID applies the connector's override and fails with
// ResourceIdNotFound when no id is left.
func ResolveTransactionID(n Name, attempt *models.PaymentAttempt) (string, error) {
	id, err := ResolverFor(n).ConnectorTransactionID(attempt)
	if err != nil {
		return "", err
	}
	if id == nil {
		return "", apierror.ResourceIDNotFound()
	}
	return *id, nil
}

// APIVersionConfigKey is the config key holding a connector's negotiated API version.
func APIVersionConfigKey(n Name) string {
	return "connector_api_version_" + string(n)
}

// ThirdPartySDKSession reports whether confirming with this connector and
// payment method hands the client a third-party SDK session token instead of
// any other next action.
func ThirdPartySDKSession(n Name, pm *models.PaymentMethod, pmt *models.PaymentMethodType) bool {
	switch n {
	case Trustpay, Payme:
		return pm != nil && *pm == models.PaymentMethodWallet
	case Plaid:
		return pm != nil && *pm == models.PaymentMethodOpenBanking &&
			pmt != nil && *pmt == models.PaymentMethodTypeOpenBankingPIS
	}
	return false
}
