// Package nextaction decides the single instruction a client must follow to
// move a payment forward.
package nextaction

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/apierror"
	"github.com/akylbek/payment-system/payment-core/internal/connector"
	"github.com/akylbek/payment-system/payment-core/internal/metadata"
	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
	"github.com/akylbek/payment-system/payment-core/internal/urls"
)

type Type string

const (
	RedirectToURL                  Type = "redirect_to_url"
	DisplayBankTransferInformation Type = "display_bank_transfer_information"
	DisplayVoucherInformation      Type = "display_voucher_information"
	QrCodeInformation              Type = "qr_code_information"
	FetchQrCodeInformation         Type = "fetch_qr_code_information"
	InvokeSdkClient                Type = "invoke_sdk_client"
	WaitScreenInformation          Type = "wait_screen_information"
	ThirdPartySdkSessionToken      Type = "third_party_sdk_session_token"
	ThreeDSInvoke                  Type = "three_ds_invoke"
)

// Action is a tagged next action. Only the fields of its Type are set.
type Action struct {
	Type Type `json:"type"`

	RedirectToURL *string `json:"redirect_to_url,omitempty"`

	BankTransferStepsAndChargesDetails *metadata.BankTransferNextStepsData `json:"bank_transfer_steps_and_charges_details,omitempty"`
	VoucherDetails                     *metadata.VoucherNextStepData       `json:"voucher_details,omitempty"`

	ImageDataURL   *string `json:"image_data_url,omitempty"`
	QrCodeURL      *string `json:"qr_code_url,omitempty"`
	QrCodeFetchURL *string `json:"qr_code_fetch_url,omitempty"`

	DisplayFromTimestamp *int64 `json:"display_from_timestamp,omitempty"`
	DisplayToTimestamp   *int64 `json:"display_to_timestamp,omitempty"`

	NextActionData *metadata.SdkNextActionData `json:"next_action_data,omitempty"`
	SessionToken   json.RawMessage             `json:"session_token,omitempty"`
	ThreeDSData    *ThreeDSData                `json:"three_ds_data,omitempty"`
}

type ThreeDSMethodData struct {
	ThreeDSMethodDataSubmission bool    `json:"three_ds_method_data_submission"`
	ThreeDSMethodData           *string `json:"three_ds_method_data"`
	ThreeDSMethodURL            *string `json:"three_ds_method_url"`
}

type PollConfigResponse struct {
	PollID      string `json:"poll_id"`
	DelayInSecs int8   `json:"delay_in_secs"`
	Frequency   int8   `json:"frequency"`
}

type ThreeDSData struct {
	ThreeDSAuthenticationURL string             `json:"three_ds_authentication_url"`
	ThreeDSAuthorizeURL      string             `json:"three_ds_authorize_url"`
	ThreeDSMethodDetails     ThreeDSMethodData  `json:"three_ds_method_details"`
	PollConfig               PollConfigResponse `json:"poll_config"`
	MessageVersion           *string            `json:"message_version,omitempty"`
	DirectoryServerID        *string            `json:"directory_server_id,omitempty"`
}

// Input is everything the resolver looks at.
type Input struct {
	Attempt        *models.PaymentAttempt
	Intent         *models.PaymentIntent
	Authentication *models.Authentication
	PollConfig     *models.PollConfig
	SessionsToken  []json.RawMessage
	Operation      models.Operation
	BaseURL        string
}

// Resolve returns the next action, or nil when the client has nothing to do.
// Candidates are tried in a fixed order and the first one present wins.
// Metadata that does not fit a candidate's shape counts as absent.
func Resolve(in Input) (*Action, error) {
	var action *Action

	meta := in.Attempt.ConnectorMetadata
	bankTransfer := bankTransferSteps(in.Attempt)
	voucher := voucherSteps(in.Attempt)
	qr, qrOK := metadata.QrCode(meta)
	sdk, sdkOK := metadata.SdkNextAction(meta)
	fetchQr, fetchQrOK := metadata.FetchQrCode(meta)
	wait, waitOK := metadata.WaitScreen(meta)

	if in.Intent.Status == models.IntentRequiresCustomerAction ||
		bankTransfer != nil || voucher != nil || qrOK || sdkOK || fetchQrOK || waitOK ||
		in.Authentication != nil {
		switch {
		case bankTransfer != nil:
			action = &Action{Type: DisplayBankTransferInformation, BankTransferStepsAndChargesDetails: bankTransfer}
		case voucher != nil:
			action = &Action{Type: DisplayVoucherInformation, VoucherDetails: voucher}
		case qrOK:
			action = qrAction(qr)
		case fetchQrOK:
			action = &Action{Type: FetchQrCodeInformation, QrCodeFetchURL: &fetchQr.QrCodeFetchURL}
		case sdkOK:
			action = &Action{Type: InvokeSdkClient, NextActionData: &sdk}
		case waitOK:
			from := wait.DisplayFromTimestamp
			action = &Action{Type: WaitScreenInformation, DisplayFromTimestamp: &from, DisplayToTimestamp: wait.DisplayToTimestamp}
		case models.Present(in.Attempt.AuthenticationData):
			u := urls.StartPay(in.BaseURL, in.Attempt, in.Intent)
			action = &Action{Type: RedirectToURL, RedirectToURL: &u}
		default:
			var err error
			action, err = threeDSInvoke(in)
			if err != nil {
				return nil, err
			}
		}
	}

	if in.Operation == models.OperationConfirm && thirdPartySDKSession(in.Attempt) {
		action = &Action{Type: ThirdPartySdkSessionToken, SessionToken: firstSessionToken(in.SessionsToken)}
	}
	return action, nil
}

// Bank transfer instructions never apply to Pix, which always renders a QR code.
func bankTransferSteps(attempt *models.PaymentAttempt) *metadata.BankTransferNextStepsData {
	if attempt.PaymentMethod == nil || *attempt.PaymentMethod != models.PaymentMethodBankTransfer {
		return nil
	}
	if attempt.PaymentMethodType != nil && *attempt.PaymentMethodType == models.PaymentMethodTypePix {
		return nil
	}
	switch v := metadata.ParseAs(attempt.ConnectorMetadata, metadata.KindBankTransfer).(type) {
	case metadata.BankTransferNextStepsData:
		return &v
	case metadata.Unknown:
		logDropped(attempt, metadata.KindBankTransfer, v)
	}
	return nil
}

func voucherSteps(attempt *models.PaymentAttempt) *metadata.VoucherNextStepData {
	if attempt.PaymentMethod == nil || *attempt.PaymentMethod != models.PaymentMethodVoucher {
		return nil
	}
	switch v := metadata.ParseAs(attempt.ConnectorMetadata, metadata.KindVoucher).(type) {
	case metadata.VoucherNextStepData:
		return &v
	case metadata.Unknown:
		logDropped(attempt, metadata.KindVoucher, v)
	}
	return nil
}

func logDropped(attempt *models.PaymentAttempt, kind metadata.Kind, u metadata.Unknown) {
	if u.IsAbsent() {
		return
	}
	telemetry.Logger.Warn("Connector metadata does not match next step shape",
		zap.String("payment_id", attempt.PaymentID),
		zap.String("attempt_id", attempt.AttemptID),
		zap.String("shape", string(kind)),
		zap.Error(u.Err),
	)
}

func qrAction(q metadata.QrCodeInformation) *Action {
	a := &Action{Type: QrCodeInformation, DisplayToTimestamp: q.DisplayToTimestamp}
	switch q.Flavor {
	case metadata.QrCodeURL:
		image, code := q.ImageDataURL, q.QrCodeURL
		a.ImageDataURL, a.QrCodeURL = &image, &code
	case metadata.QrDataURL:
		image := q.ImageDataURL
		a.ImageDataURL = &image
	case metadata.QrCodeImageURL:
		code := q.QrCodeURL
		a.QrCodeURL = &code
	}
	return a
}

// threeDSInvoke asks the client to run 3DS 2.x authentication before authorization.
func threeDSInvoke(in Input) (*Action, error) {
	authn := in.Authentication
	if authn == nil || in.Intent.Status != models.IntentRequiresCustomerAction ||
		authn.CAVV != nil || !authn.IsSeparateAuthnRequired() {
		return nil, nil
	}
	if in.Attempt.Connector == nil {
		return nil, apierror.MissingRequiredValue("connector")
	}
	poll := models.DefaultPollConfig()
	if in.PollConfig != nil {
		poll = *in.PollConfig
	}
	method := ThreeDSMethodData{}
	if authn.ThreeDSMethodURL != nil && authn.ThreeDSMethodData != nil {
		method = ThreeDSMethodData{
			ThreeDSMethodDataSubmission: true,
			ThreeDSMethodData:           authn.ThreeDSMethodData,
			ThreeDSMethodURL:            authn.ThreeDSMethodURL,
		}
	}
	return &Action{
		Type: ThreeDSInvoke,
		ThreeDSData: &ThreeDSData{
			ThreeDSAuthenticationURL: urls.ThreeDSAuthentication(in.BaseURL, in.Attempt),
			ThreeDSAuthorizeURL:      urls.ThreeDSAuthorize(in.BaseURL, in.Attempt, *in.Attempt.Connector),
			ThreeDSMethodDetails:     method,
			PollConfig: PollConfigResponse{
				PollID:      urls.ExternalAuthenticationPollID(in.Intent.PaymentID),
				DelayInSecs: poll.DelayInSecs,
				Frequency:   poll.Frequency,
			},
			MessageVersion:    authn.MessageVersion,
			DirectoryServerID: authn.DirectoryServerID,
		},
	}, nil
}

func thirdPartySDKSession(attempt *models.PaymentAttempt) bool {
	if attempt.Connector == nil {
		return false
	}
	return connector.ThirdPartySDKSession(connector.Name(*attempt.Connector), attempt.PaymentMethod, attempt.PaymentMethodType)
}

func firstSessionToken(tokens []json.RawMessage) json.RawMessage {
	if len(tokens) == 0 {
		return nil
	}
	return tokens[0]
}

// StartPayForm decodes the redirect form a start-pay page renders. Unlike the
// next-action candidates, the form is mandatory on this path.
func StartPayForm(attempt *models.PaymentAttempt) (metadata.RedirectForm, error) {
	if !models.Present(attempt.AuthenticationData) {
		return metadata.RedirectForm{}, apierror.MissingRequiredValue("redirection_data")
	}
	form, err := metadata.ParseRedirectForm(attempt.AuthenticationData)
	if err != nil {
		return metadata.RedirectForm{}, apierror.Attach(apierror.Internal(err), "failed to decode redirection form")
	}
	return form, nil
}
