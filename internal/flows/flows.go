// Package flows projects a payment aggregate into the connector-agnostic
// request record of one payment flow. There is one builder per flow kind and
// builders never mutate the aggregate they are given.
package flows

import (
	"fmt"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/connector"
	"github.com/akylbek/payment-system/payment-core/internal/models"
)

type Kind string

const (
	Authorize                Kind = "authorize"
	PSync                    Kind = "psync"
	Capture                  Kind = "capture"
	Void                     Kind = "void"
	Approve                  Kind = "approve"
	Reject                   Kind = "reject"
	Session                  Kind = "session"
	SetupMandate             Kind = "setup_mandate"
	CompleteAuthorize        Kind = "complete_authorize"
	PreProcessing            Kind = "pre_processing"
	IncrementalAuthorization Kind = "incremental_authorization"
)

// Kinds lists every flow in a stable order.
var Kinds = []Kind{
	Authorize, PSync, Capture, Void, Approve, Reject, Session,
	SetupMandate, CompleteAuthorize, PreProcessing, IncrementalAuthorization,
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", apierror.InvalidDataValue("flow", fmt.Errorf("unknown flow %q", s))
}

// Request is a flow-specific request record. The set of implementations is
// closed: only this package can add one.
type Request interface {
	Flow() Kind
	sealed()
}

// Input is everything a builder may read.
type Input struct {
	Data      models.PaymentData
	BaseURL   string
	Connector connector.Name
	Customer  *models.Customer
}

type builder func(in *Input) (Request, error)

var builders = map[Kind]builder{
	Authorize:                buildAuthorize,
	PSync:                    buildSync,
	Capture:                  buildCapture,
	Void:                     buildCancel,
	Approve:                  buildApprove,
	Reject:                   buildReject,
	Session:                  buildSession,
	SetupMandate:             buildSetupMandate,
	CompleteAuthorize:        buildCompleteAuthorize,
	PreProcessing:            buildPreProcessing,
	IncrementalAuthorization: buildIncrementalAuthorization,
}

// Build runs the builder registered for kind over a private copy of the aggregate.
func Build(kind Kind, data *models.PaymentData, baseURL string, conn connector.Name, customer *models.Customer) (Request, error) {
	b, ok := builders[kind]
	if !ok {
		return nil, apierror.Internal(fmt.Errorf("no request builder for flow %q", kind))
	}
	// Every flow request carries an amount and its currency.
	if data.Currency == "" {
		return nil, apierror.MissingRequiredValue("currency")
	}
	in := &Input{
		Data:      data.Clone(),
		BaseURL:   baseURL,
		Connector: conn,
		Customer:  customer,
	}
	return b(in)
}

func (AuthorizeData) Flow() Kind                { return Authorize }
func (SyncData) Flow() Kind                     { return PSync }
func (CaptureData) Flow() Kind                  { return Capture }
func (CancelData) Flow() Kind                   { return Void }
func (ApproveData) Flow() Kind                  { return Approve }
func (RejectData) Flow() Kind                   { return Reject }
func (SessionData) Flow() Kind                  { return Session }
func (SetupMandateData) Flow() Kind             { return SetupMandate }
func (CompleteAuthorizeData) Flow() Kind        { return CompleteAuthorize }
func (PreProcessingData) Flow() Kind            { return PreProcessing }
func (IncrementalAuthorizationData) Flow() Kind { return IncrementalAuthorization }

func (AuthorizeData) sealed()                {}
func (SyncData) sealed()                     {}
func (CaptureData) sealed()                  {}
func (CancelData) sealed()                   {}
func (ApproveData) sealed()                  {}
func (RejectData) sealed()                   {}
func (SessionData) sealed()                  {}
func (SetupMandateData) sealed()             {}
func (CompleteAuthorizeData) sealed()        {}
func (PreProcessingData) sealed()            {}
func (IncrementalAuthorizationData) sealed() {}
