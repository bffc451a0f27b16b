// Package metadata parses the opaque connector metadata blob into the named
// shapes the core understands. A blob that does not fit the requested shape
// parses to Unknown; callers decide whether that is fatal.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/akylbek/payment-system/payment-core/internal/models"
)

type Kind string

const (
	KindQrCode          Kind = "QrCodeInformation"
	KindSdkNextAction   Kind = "SdkNextActionData"
	KindFetchQrCode     Kind = "FetchQrCodeInformation"
	KindWaitScreen      Kind = "WaitScreenInstructions"
	KindBankTransfer    Kind = "NextStepsRequirements/BankTransfer"
	KindVoucher         Kind = "NextStepsRequirements/Voucher"
	KindPaymentCharges  Kind = "PaymentCharges"
	KindConnectorConfig Kind = "ConnectorMetadata"
)

// Shape is one parsed form of connector metadata.
type Shape interface {
	shapeKind() Kind
}

// Unknown is returned when the blob is absent or does not fit the requested shape.
type Unknown struct {
	Raw json.RawMessage
	Err error
}

func (Unknown) shapeKind() Kind { return "" }

// ParseAs parses raw as the given kind. It never fails; a mismatch yields Unknown.
func ParseAs(raw json.RawMessage, kind Kind) Shape {
	if !present(raw) {
		return Unknown{Raw: raw, Err: errAbsent}
	}
	var (
		shape Shape
		err   error
	)
	switch kind {
	case KindQrCode:
		shape, err = parseQrCode(raw)
	case KindSdkNextAction:
		shape, err = parseSdkNextAction(raw)
	case KindFetchQrCode:
		shape, err = parseFetchQrCode(raw)
	case KindWaitScreen:
		shape, err = parseWaitScreen(raw)
	case KindBankTransfer:
		shape, err = parseBankTransfer(raw)
	case KindVoucher:
		shape, err = parseVoucher(raw)
	case KindPaymentCharges:
		shape, err = parsePaymentCharges(raw)
	case KindConnectorConfig:
		shape, err = parseConnectorMetadata(raw)
	default:
		err = fmt.Errorf("unsupported metadata kind %q", kind)
	}
	if err != nil {
		return Unknown{Raw: raw, Err: fmt.Errorf("parse %s: %w", kind, err)}
	}
	return shape
}

var errAbsent = errors.New("metadata absent")

// IsAbsent reports whether an Unknown came from a missing blob rather than a
// blob that failed to parse.
func (u Unknown) IsAbsent() bool {
	return errors.Is(u.Err, errAbsent)
}

// decodeObject decodes raw into dst and fails when raw is not a JSON object.
func decodeObject(raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("expected a JSON object")
	}
	return json.Unmarshal(trimmed, dst)
}

func requireURL(field string, v *string) error {
	if v == nil {
		return fmt.Errorf("missing field %s", field)
	}
	u, err := url.Parse(*v)
	if err != nil {
		return fmt.Errorf("field %s: %w", field, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("field %s: relative URL without a base", field)
	}
	return nil
}

func optionalURL(field string, v *string) error {
	if v == nil {
		return nil
	}
	return requireURL(field, v)
}

func present(raw json.RawMessage) bool {
	return models.Present(raw)
}
