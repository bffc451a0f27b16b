package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
)

type QrCodeFlavor string

const (
	// QrCodeURL carries both the rendered image and the QR payload URL.
	QrCodeURL      QrCodeFlavor = "qr_code_url"
	QrDataURL      QrCodeFlavor = "qr_data_url"
	QrCodeImageURL QrCodeFlavor = "qr_code_image_url"
)

// QrCodeInformation is untagged on the wire; the flavor is recovered from
// which URLs are present, trying the richest flavor first.
type QrCodeInformation struct {
	Flavor             QrCodeFlavor
	ImageDataURL       string
	QrCodeURL          string
	DisplayToTimestamp *int64
}

func (QrCodeInformation) shapeKind() Kind { return KindQrCode }

type qrCodeWire struct {
	ImageDataURL       *string `json:"image_data_url,omitempty"`
	QrCodeURL          *string `json:"qr_code_url,omitempty"`
	DisplayToTimestamp *int64  `json:"display_to_timestamp"`
}

func (q QrCodeInformation) MarshalJSON() ([]byte, error) {
	w := qrCodeWire{DisplayToTimestamp: q.DisplayToTimestamp}
	switch q.Flavor {
	case QrCodeURL:
		w.ImageDataURL, w.QrCodeURL = &q.ImageDataURL, &q.QrCodeURL
	case QrDataURL:
		w.ImageDataURL = &q.ImageDataURL
	case QrCodeImageURL:
		w.QrCodeURL = &q.QrCodeURL
	default:
		return nil, fmt.Errorf("unknown qr code flavor %q", q.Flavor)
	}
	return json.Marshal(w)
}

func (q *QrCodeInformation) UnmarshalJSON(data []byte) error {
	parsed, err := parseQrCode(data)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func parseQrCode(raw json.RawMessage) (QrCodeInformation, error) {
	var w qrCodeWire
	if err := decodeObject(raw, &w); err != nil {
		return QrCodeInformation{}, err
	}
	imageOK := w.ImageDataURL != nil && requireURL("image_data_url", w.ImageDataURL) == nil
	qrOK := w.QrCodeURL != nil && requireURL("qr_code_url", w.QrCodeURL) == nil
	switch {
	case imageOK && qrOK:
		return QrCodeInformation{Flavor: QrCodeURL, ImageDataURL: *w.ImageDataURL, QrCodeURL: *w.QrCodeURL, DisplayToTimestamp: w.DisplayToTimestamp}, nil
	case imageOK:
		return QrCodeInformation{Flavor: QrDataURL, ImageDataURL: *w.ImageDataURL, DisplayToTimestamp: w.DisplayToTimestamp}, nil
	case qrOK:
		return QrCodeInformation{Flavor: QrCodeImageURL, QrCodeURL: *w.QrCodeURL, DisplayToTimestamp: w.DisplayToTimestamp}, nil
	default:
		return QrCodeInformation{}, errors.New("no usable qr code url")
	}
}

type NextActionCall string

const (
	NextActionCallConfirm           NextActionCall = "confirm"
	NextActionCallSync              NextActionCall = "sync"
	NextActionCallCompleteAuthorize NextActionCall = "complete_authorize"
)

// SdkNextActionData tells an SDK client (PayPal) which call to make next.
type SdkNextActionData struct {
	NextAction NextActionCall `json:"next_action"`
}

func (SdkNextActionData) shapeKind() Kind { return KindSdkNextAction }

func parseSdkNextAction(raw json.RawMessage) (SdkNextActionData, error) {
	var w struct {
		NextAction *NextActionCall `json:"next_action"`
	}
	if err := decodeObject(raw, &w); err != nil {
		return SdkNextActionData{}, err
	}
	if w.NextAction == nil {
		return SdkNextActionData{}, errors.New("missing field next_action")
	}
	switch *w.NextAction {
	case NextActionCallConfirm, NextActionCallSync, NextActionCallCompleteAuthorize:
		return SdkNextActionData{NextAction: *w.NextAction}, nil
	}
	return SdkNextActionData{}, fmt.Errorf("unknown next_action %q", *w.NextAction)
}

type FetchQrCodeInformation struct {
	QrCodeFetchURL string `json:"qr_code_fetch_url"`
}

func (FetchQrCodeInformation) shapeKind() Kind { return KindFetchQrCode }

func parseFetchQrCode(raw json.RawMessage) (FetchQrCodeInformation, error) {
	var w struct {
		QrCodeFetchURL *string `json:"qr_code_fetch_url"`
	}
	if err := decodeObject(raw, &w); err != nil {
		return FetchQrCodeInformation{}, err
	}
	if err := requireURL("qr_code_fetch_url", w.QrCodeFetchURL); err != nil {
		return FetchQrCodeInformation{}, err
	}
	return FetchQrCodeInformation{QrCodeFetchURL: *w.QrCodeFetchURL}, nil
}

// WaitScreenInstructions asks the client to show a waiting screen between two
// unix timestamps (milliseconds).
type WaitScreenInstructions struct {
	DisplayFromTimestamp int64  `json:"display_from_timestamp"`
	DisplayToTimestamp   *int64 `json:"display_to_timestamp,omitempty"`
}

func (WaitScreenInstructions) shapeKind() Kind { return KindWaitScreen }

func parseWaitScreen(raw json.RawMessage) (WaitScreenInstructions, error) {
	var w struct {
		DisplayFromTimestamp *int64 `json:"display_from_timestamp"`
		DisplayToTimestamp   *int64 `json:"display_to_timestamp"`
	}
	if err := decodeObject(raw, &w); err != nil {
		return WaitScreenInstructions{}, err
	}
	if w.DisplayFromTimestamp == nil {
		return WaitScreenInstructions{}, errors.New("missing field display_from_timestamp")
	}
	return WaitScreenInstructions{DisplayFromTimestamp: *w.DisplayFromTimestamp, DisplayToTimestamp: w.DisplayToTimestamp}, nil
}

type ReceiverDetails struct {
	AmountReceived  int64  `json:"amount_received"`
	AmountCharged   *int64 `json:"amount_charged,omitempty"`
	AmountRemaining *int64 `json:"amount_remaining,omitempty"`
}

type DokuBankTransferInstructions struct {
	ExpiresAt       string `json:"expires_at"`
	Reference       string `json:"reference"`
	InstructionsURL string `json:"instructions_url"`
}

type AchTransfer struct {
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	RoutingNumber string `json:"routing_number"`
	Swift         string `json:"swift_code"`
}

type SepaBankTransferInstructions struct {
	AccountHolderName string `json:"account_holder_name"`
	Bic               string `json:"bic"`
	Country           string `json:"country"`
	Iban              string `json:"iban"`
}

type BacsBankTransferInstructions struct {
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	SortCode          string `json:"sort_code"`
}

type MultibancoTransferInstructions struct {
	Reference string `json:"reference"`
	Entity    string `json:"entity"`
}

// BankTransferNextStepsData is the bank-transfer flavor of NextStepsRequirements.
// At least one instruction group must be present.
type BankTransferNextStepsData struct {
	DokuBankTransferInstructions *DokuBankTransferInstructions   `json:"doku_bank_transfer_instructions,omitempty"`
	AchCreditTransfer            *AchTransfer                    `json:"ach_credit_transfer,omitempty"`
	SepaBankInstructions         *SepaBankTransferInstructions   `json:"sepa_bank_instructions,omitempty"`
	BacsBankInstructions         *BacsBankTransferInstructions   `json:"bacs_bank_instructions,omitempty"`
	Multibanco                   *MultibancoTransferInstructions `json:"multibanco,omitempty"`
	Receiver                     *ReceiverDetails                `json:"receiver,omitempty"`
}

func (BankTransferNextStepsData) shapeKind() Kind { return KindBankTransfer }

func parseBankTransfer(raw json.RawMessage) (BankTransferNextStepsData, error) {
	var d BankTransferNextStepsData
	if err := decodeObject(raw, &d); err != nil {
		return d, err
	}
	if d.DokuBankTransferInstructions == nil && d.AchCreditTransfer == nil && d.SepaBankInstructions == nil &&
		d.BacsBankInstructions == nil && d.Multibanco == nil {
		return BankTransferNextStepsData{}, errors.New("no bank transfer instructions")
	}
	return d, nil
}

// VoucherNextStepData is the voucher flavor of NextStepsRequirements.
type VoucherNextStepData struct {
	ExpiresAt       *int64  `json:"expires_at,omitempty"`
	Reference       string  `json:"reference"`
	DownloadURL     *string `json:"download_url,omitempty"`
	InstructionsURL *string `json:"instructions_url,omitempty"`
}

func (VoucherNextStepData) shapeKind() Kind { return KindVoucher }

func parseVoucher(raw json.RawMessage) (VoucherNextStepData, error) {
	var w struct {
		ExpiresAt       *int64  `json:"expires_at"`
		Reference       *string `json:"reference"`
		DownloadURL     *string `json:"download_url"`
		InstructionsURL *string `json:"instructions_url"`
	}
	if err := decodeObject(raw, &w); err != nil {
		return VoucherNextStepData{}, err
	}
	if w.Reference == nil {
		return VoucherNextStepData{}, errors.New("missing field reference")
	}
	if err := optionalURL("download_url", w.DownloadURL); err != nil {
		return VoucherNextStepData{}, err
	}
	if err := optionalURL("instructions_url", w.InstructionsURL); err != nil {
		return VoucherNextStepData{}, err
	}
	return VoucherNextStepData{
		ExpiresAt:       w.ExpiresAt,
		Reference:       *w.Reference,
		DownloadURL:     w.DownloadURL,
		InstructionsURL: w.InstructionsURL,
	}, nil
}

// Typed accessors used by the resolver. The bool is false for Unknown.

func QrCode(raw json.RawMessage) (QrCodeInformation, bool) {
	v, ok := ParseAs(raw, KindQrCode).(QrCodeInformation)
	return v, ok
}

func SdkNextAction(raw json.RawMessage) (SdkNextActionData, bool) {
	v, ok := ParseAs(raw, KindSdkNextAction).(SdkNextActionData)
	return v, ok
}

func FetchQrCode(raw json.RawMessage) (FetchQrCodeInformation, bool) {
	v, ok := ParseAs(raw, KindFetchQrCode).(FetchQrCodeInformation)
	return v, ok
}

func WaitScreen(raw json.RawMessage) (WaitScreenInstructions, bool) {
	v, ok := ParseAs(raw, KindWaitScreen).(WaitScreenInstructions)
	return v, ok
}

func BankTransfer(raw json.RawMessage) (BankTransferNextStepsData, bool) {
	v, ok := ParseAs(raw, KindBankTransfer).(BankTransferNextStepsData)
	return v, ok
}

func Voucher(raw json.RawMessage) (VoucherNextStepData, bool) {
	v, ok := ParseAs(raw, KindVoucher).(VoucherNextStepData)
	return v, ok
}
