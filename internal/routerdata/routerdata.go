// Package routerdata assembles the transport-ready record handed to the
// connector dispatch layer for one flow of one payment attempt.
package routerdata

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/connector"
	"github.com/akylbek/payment-system/payment-core/internal/flows"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/money"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

// ConfigLookup reads one entry of the configs table.
type ConfigLookup interface {
	FindConfig(ctx context.Context, key string) (string, bool, error)
}

// AddressDecryptor decrypts an address stored with a payment method.
type AddressDecryptor interface {
	DecryptAddress(ctx context.Context, ciphertext []byte) (*models.Address, error)
}

// JSONAddressDecoder reads payment method billing addresses stored as plain
// JSON. It is used when the key store hands out already decrypted payloads.
type JSONAddressDecoder struct{}

func (JSONAddressDecoder) DecryptAddress(_ context.Context, payload []byte) (*models.Address, error) {
	var a models.Address
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, apierror.Internal(err)
	}
	return &a, nil
}

// TransactionResponse is the response slot of a record. Construction fills a
// stub; dispatch overwrites it with what the connector returned.
type TransactionResponse struct {
	ResourceID                      models.ResponseID `json:"resource_id"`
	RedirectionData                 json.RawMessage   `json:"redirection_data,omitempty"`
	MandateReference                json.RawMessage   `json:"mandate_reference,omitempty"`
	ConnectorMetadata               json.RawMessage   `json:"connector_metadata,omitempty"`
	NetworkTxnID                    *string           `json:"network_txn_id,omitempty"`
	ConnectorResponseReferenceID    *string           `json:"connector_response_reference_id,omitempty"`
	IncrementalAuthorizationAllowed *bool             `json:"incremental_authorization_allowed,omitempty"`
	ChargeID                        *string           `json:"charge_id,omitempty"`
}

// ErrorResponse is what dispatch records when the connector call failed.
type ErrorResponse struct {
	Code       string  `json:"code"`
	Message    string  `json:"message"`
	Reason     *string `json:"reason,omitempty"`
	StatusCode int     `json:"status_code"`
}

// Record is the transport-ready record for one connector call. The
// connector credentials never serialize with it; dispatch ships them
// alongside in its own envelope.
type Record struct {
	Flow                         flows.Kind                `json:"flow"`
	MerchantID                   string                    `json:"merchant_id"`
	CustomerID                   *string                   `json:"customer_id,omitempty"`
	Connector                    connector.Name            `json:"connector"`
	PaymentID                    string                    `json:"payment_id"`
	AttemptID                    string                    `json:"attempt_id"`
	Status                       models.AttemptStatus      `json:"status"`
	PaymentMethod                models.PaymentMethod      `json:"payment_method"`
	ConnectorAuthType            AuthType                  `json:"-"`
	Description                  *string                   `json:"description,omitempty"`
	ReturnURL                    *string                   `json:"return_url,omitempty"`
	Address                      models.PaymentAddress     `json:"address"`
	AuthType                     models.AuthenticationType `json:"auth_type"`
	ConnectorMetaData            json.RawMessage           `json:"connector_meta_data,omitempty"`
	ConnectorWalletsDetails      json.RawMessage           `json:"connector_wallets_details,omitempty"`
	Request                      flows.Request             `json:"request"`
	Response                     *TransactionResponse      `json:"response,omitempty"`
	ErrorResponse                *ErrorResponse            `json:"error_response,omitempty"`
	AmountCaptured               *int64                    `json:"amount_captured,omitempty"`
	MinorAmountCaptured          *money.MinorUnit          `json:"minor_amount_captured,omitempty"`
	PaymentMethodStatus          *string                   `json:"payment_method_status,omitempty"`
	PaymentMethodToken           *string                   `json:"payment_method_token,omitempty"`
	ConnectorCustomer            *string                   `json:"connector_customer,omitempty"`
	RecurringMandatePaymentData  json.RawMessage           `json:"recurring_mandate_payment_data,omitempty"`
	ConnectorRequestReferenceID  string                    `json:"connector_request_reference_id"`
	PreprocessingID              *string                   `json:"preprocessing_id,omitempty"`
	TestMode                     *bool                     `json:"test_mode,omitempty"`
	ConnectorAPIVersion          *string                   `json:"connector_api_version,omitempty"`
	ApplePayFlow                 *string                   `json:"apple_pay_flow,omitempty"`
	ConnectorHTTPStatusCode      *int                      `json:"connector_http_status_code,omitempty"`
	ExternalLatency              *int64                    `json:"external_latency,omitempty"`
	ConnectorResponseReferenceID *string                   `json:"connector_response_reference_id,omitempty"`
}

// DispatchResult is what the dispatch layer reports back after a connector call.
type DispatchResult struct {
	Response                *TransactionResponse `json:"response,omitempty"`
	Error                   *ErrorResponse       `json:"error,omitempty"`
	Status                  models.AttemptStatus `json:"status"`
	ConnectorHTTPStatusCode *int                 `json:"connector_http_status_code,omitempty"`
	ExternalLatency         *int64               `json:"external_latency,omitempty"`
}

// Apply fills the record's response slots from a dispatch result.
func (r *Record) Apply(res *DispatchResult) {
	if res == nil {
		return
	}
	r.Status = res.Status
	r.Response = res.Response
	r.ErrorResponse = res.Error
	r.ConnectorHTTPStatusCode = res.ConnectorHTTPStatusCode
	r.ExternalLatency = res.ExternalLatency
	if res.Response != nil {
		r.ConnectorResponseReferenceID = res.Response.ConnectorResponseReferenceID
	}
}

// Params is one record construction request.
type Params struct {
	Flow          flows.Kind
	Data          *models.PaymentData
	ConnectorID   string
	MerchantID    string
	Customer      *models.Customer
	Account       *ConnectorAccount
	RecipientData *models.MerchantRecipientData
	ApplePayFlow  *string
}

type Constructor struct {
	baseURL           string
	configs           ConfigLookup
	decryptor         AddressDecryptor
	versionConnectors map[connector.Name]struct{}
	references        ReferenceIDConfig
}

func NewConstructor(baseURL string, configs ConfigLookup, decryptor AddressDecryptor,
	multipleAPIVersionConnectors []string, references ReferenceIDConfig) *Constructor {
	set := make(map[connector.Name]struct{}, len(multipleAPIVersionConnectors))
	for _, c := range multipleAPIVersionConnectors {
		set[connector.Name(c)] = struct{}{}
	}
	return &Constructor{
		baseURL:           baseURL,
		configs:           configs,
		decryptor:         decryptor,
		versionConnectors: set,
		references:        references,
	}
}

// Construct builds the record for p.Flow. Any failure aborts construction;
// there is no partial record.
func (c *Constructor) Construct(ctx context.Context, p Params) (rec *Record, err error) {
	ctx, span := telemetry.StartSpan(ctx, "routerdata.Construct", p.Data.Attempt.PaymentID)
	defer func() {
		if err != nil {
			telemetry.RequestBuildErrors.WithLabelValues(string(p.Flow), string(apierror.KindOf(err))).Inc()
		}
		telemetry.EndSpan(span, err)
	}()

	if p.Account == nil {
		return nil, apierror.Internal(errors.New("merchant connector account is required"))
	}
	if p.Account.Disabled {
		return nil, apierror.MerchantConnectorAccountDisabled()
	}

	auth, err := ParseAuthType(p.Account.ConnectorAccountDetails)
	if err != nil {
		return nil, apierror.Attach(apierror.Internal(err), "failed while parsing value for ConnectorAuthType")
	}

	attempt := &p.Data.Attempt
	if attempt.PaymentMethod == nil {
		return nil, apierror.MissingRequiredValue("payment_method_type")
	}

	name, err := connector.Parse(p.ConnectorID)
	if err != nil {
		return nil, err
	}

	apiVersion := c.apiVersion(ctx, name)

	address := p.Data.Address
	if info := p.Data.PaymentMethodInfo; info != nil {
		var stored *models.Address
		if len(info.PaymentMethodBillingAddress) > 0 {
			if c.decryptor == nil {
				return nil, apierror.Internal(errors.New("no address decryptor configured"))
			}
			stored, err = c.decryptor.DecryptAddress(ctx, info.PaymentMethodBillingAddress)
			if err != nil {
				return nil, apierror.Attach(err, "unable to decrypt payment method billing address details")
			}
		}
		address = address.UnifyWithPaymentMethodBilling(stored)
	}

	meta := p.Account.Metadata
	if p.RecipientData != nil {
		meta, err = json.Marshal(p.RecipientData)
		if err != nil {
			return nil, apierror.Attach(apierror.Internal(err), "failed while encoding MerchantRecipientData")
		}
	}

	data := *p.Data
	data.Address = address
	req, err := flows.Build(p.Flow, &data, c.baseURL, name, p.Customer)
	if err != nil {
		return nil, err
	}

	authType := models.AuthenticationNoThreeDS
	if attempt.AuthenticationType != nil {
		authType = *attempt.AuthenticationType
	}

	rec = &Record{
		Flow:                        p.Flow,
		MerchantID:                  p.MerchantID,
		Connector:                   name,
		PaymentID:                   attempt.PaymentID,
		AttemptID:                   attempt.AttemptID,
		Status:                      attempt.Status,
		PaymentMethod:               *attempt.PaymentMethod,
		ConnectorAuthType:           auth,
		Description:                 p.Data.Intent.Description,
		ReturnURL:                   p.Data.Intent.ReturnURL,
		Address:                     address,
		AuthType:                    authType,
		ConnectorMetaData:           meta,
		ConnectorWalletsDetails:     p.Account.ConnectorWalletsDetails,
		Request:                     req,
		Response:                    &TransactionResponse{ResourceID: models.ResponseIDFromTransaction(attempt.ConnectorTransactionID)},
		MinorAmountCaptured:         p.Data.Intent.AmountCaptured,
		PaymentMethodToken:          p.Data.PMToken,
		ConnectorCustomer:           p.Data.ConnectorCustomerID,
		RecurringMandatePaymentData: p.Data.RecurringMandatePaymentData,
		ConnectorRequestReferenceID: c.references.ConnectorRequestReferenceID(p.MerchantID, attempt),
		PreprocessingID:             attempt.PreprocessingStepID,
		TestMode:                    p.Account.TestMode,
		ConnectorAPIVersion:         apiVersion,
		ApplePayFlow:                p.ApplePayFlow,
	}
	if p.Customer != nil {
		id := p.Customer.CustomerID
		rec.CustomerID = &id
	}
	if captured := p.Data.Intent.AmountCaptured; captured != nil {
		v := captured.Int64()
		rec.AmountCaptured = &v
	}
	if p.Data.PaymentMethodInfo != nil {
		status := p.Data.PaymentMethodInfo.Status
		rec.PaymentMethodStatus = &status
	}

	telemetry.Logger.Debug("Constructed router data",
		zap.String("payment_id", rec.PaymentID),
		zap.String("attempt_id", rec.AttemptID),
		zap.String("flow", string(rec.Flow)),
		zap.String("connector", string(rec.Connector)),
	)
	return rec, nil
}

// apiVersion looks the connector's API version up when it negotiates one.
// A missing or unreadable entry leaves the version empty.
func (c *Constructor) apiVersion(ctx context.Context, name connector.Name) *string {
	if _, ok := c.versionConnectors[name]; !ok || c.configs == nil {
		return nil
	}
	key := connector.APIVersionConfigKey(name)
	value, found, err := c.configs.FindConfig(ctx, key)
	if err != nil {
		telemetry.Logger.Warn("Failed to read connector api version",
			zap.String("config_key", key),
			zap.Error(err),
		)
		return nil
	}
	if !found {
		return nil
	}
	return &value
}
