package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"

	"github.com/akylbek/payment-system/payment-core/internal/money"
)

type BrowserInformation struct {
	ColorDepth        *uint8      `json:"color_depth,omitempty"`
	JavaEnabled       *bool       `json:"java_enabled,omitempty"`
	JavaScriptEnabled *bool       `json:"java_script_enabled,omitempty"`
	Language          *string     `json:"language,omitempty"`
	ScreenHeight      *uint32     `json:"screen_height,omitempty"`
	ScreenWidth       *uint32     `json:"screen_width,omitempty"`
	TimeZone          *int32      `json:"time_zone,omitempty"`
	IPAddress         *netip.Addr `json:"ip_address,omitempty"`
	AcceptHeader      *string     `json:"accept_header,omitempty"`
	UserAgent         *string     `json:"user_agent,omitempty"`
}

// ParseBrowserInfo decodes the attempt's browser info blob. A nil result with a
// nil error means no browser info was stored.
func ParseBrowserInfo(raw json.RawMessage) (*BrowserInformation, error) {
	if !present(raw) {
		return nil, nil
	}
	var b BrowserInformation
	if err := decodeObject(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

type OrderDetails struct {
	ProductName      string  `json:"product_name"`
	Quantity         uint16  `json:"quantity"`
	RequiresShipping *bool   `json:"requires_shipping,omitempty"`
	ProductImgLink   *string `json:"product_img_link,omitempty"`
	ProductID        *string `json:"product_id,omitempty"`
	Category         *string `json:"category,omitempty"`
	SubCategory      *string `json:"sub_category,omitempty"`
	Brand            *string `json:"brand,omitempty"`
	ProductType      *string `json:"product_type,omitempty"`
}

type OrderDetailsWithAmount struct {
	OrderDetails
	Amount money.MinorUnit `json:"amount"`
}

func parseOrderDetail(raw json.RawMessage) (OrderDetailsWithAmount, error) {
	var w struct {
		OrderDetails
		ProductName *string          `json:"product_name"`
		Quantity    *uint16          `json:"quantity"`
		Amount      *money.MinorUnit `json:"amount"`
	}
	if err := decodeObject(raw, &w); err != nil {
		return OrderDetailsWithAmount{}, err
	}
	switch {
	case w.ProductName == nil:
		return OrderDetailsWithAmount{}, errors.New("missing field product_name")
	case w.Quantity == nil:
		return OrderDetailsWithAmount{}, errors.New("missing field quantity")
	case w.Amount == nil:
		return OrderDetailsWithAmount{}, errors.New("missing field amount")
	}
	d := OrderDetailsWithAmount{OrderDetails: w.OrderDetails, Amount: *w.Amount}
	d.ProductName = *w.ProductName
	d.Quantity = *w.Quantity
	return d, nil
}

// ParseOrderDetails parses every element or none: one bad element fails the batch.
func ParseOrderDetails(raw []json.RawMessage) ([]OrderDetailsWithAmount, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([]OrderDetailsWithAmount, 0, len(raw))
	for i, item := range raw {
		d, err := parseOrderDetail(item)
		if err != nil {
			return nil, fmt.Errorf("order_details[%d]: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// ChangeOrderDetailsToNewType attaches an order amount to legacy order details.
func ChangeOrderDetailsToNewType(orderAmount money.MinorUnit, details OrderDetails) []OrderDetailsWithAmount {
	return []OrderDetailsWithAmount{{OrderDetails: details, Amount: orderAmount}}
}

type ChargeType string

const (
	ChargeTypeDirect      ChargeType = "direct"
	ChargeTypeDestination ChargeType = "destination"
)

// PaymentCharges splits a payment between the platform and a connected account.
type PaymentCharges struct {
	ChargeType        ChargeType      `json:"charge_type"`
	Fees              money.MinorUnit `json:"fees"`
	TransferAccountID string          `json:"transfer_account_id"`
}

func (PaymentCharges) shapeKind() Kind { return KindPaymentCharges }

func parsePaymentCharges(raw json.RawMessage) (PaymentCharges, error) {
	var w struct {
		ChargeType        *ChargeType      `json:"charge_type"`
		Fees              *money.MinorUnit `json:"fees"`
		TransferAccountID *string          `json:"transfer_account_id"`
	}
	if err := decodeObject(raw, &w); err != nil {
		return PaymentCharges{}, err
	}
	if w.ChargeType == nil || w.Fees == nil || w.TransferAccountID == nil {
		return PaymentCharges{}, errors.New("charge_type, fees and transfer_account_id are required")
	}
	if *w.ChargeType != ChargeTypeDirect && *w.ChargeType != ChargeTypeDestination {
		return PaymentCharges{}, fmt.Errorf("unknown charge_type %q", *w.ChargeType)
	}
	return PaymentCharges{ChargeType: *w.ChargeType, Fees: *w.Fees, TransferAccountID: *w.TransferAccountID}, nil
}

// ParseCharges is strict: a charges blob that does not parse is an error.
func ParseCharges(raw json.RawMessage) (*PaymentCharges, error) {
	if !present(raw) {
		return nil, nil
	}
	switch v := ParseAs(raw, KindPaymentCharges).(type) {
	case PaymentCharges:
		return &v, nil
	case Unknown:
		return nil, v.Err
	}
	return nil, errors.New("unexpected charges shape")
}

type NoonData struct {
	OrderCategory *string `json:"order_category,omitempty"`
}

// ConnectorMetadata is the intent-level per-connector configuration blob.
type ConnectorMetadata struct {
	ApplePay  json.RawMessage `json:"apple_pay,omitempty"`
	Airwallex json.RawMessage `json:"airwallex,omitempty"`
	Noon      *NoonData       `json:"noon,omitempty"`
	Braintree json.RawMessage `json:"braintree,omitempty"`
}

func (ConnectorMetadata) shapeKind() Kind { return KindConnectorConfig }

func parseConnectorMetadata(raw json.RawMessage) (ConnectorMetadata, error) {
	var m ConnectorMetadata
	err := decodeObject(raw, &m)
	return m, err
}

// OrderCategory returns noon's order category from the intent connector metadata.
// Unlike next-step metadata, a blob that is not valid ConnectorMetadata is an error.
func OrderCategory(raw json.RawMessage) (*string, error) {
	if !present(raw) {
		return nil, nil
	}
	switch v := ParseAs(raw, KindConnectorConfig).(type) {
	case ConnectorMetadata:
		if v.Noon == nil {
			return nil, nil
		}
		return v.Noon.OrderCategory, nil
	case Unknown:
		return nil, v.Err
	}
	return nil, errors.New("unexpected connector metadata shape")
}

// ValidatePaymentMethodData checks that stored additional payment method data
// is a JSON object before it is echoed back to clients.
func ValidatePaymentMethodData(raw json.RawMessage) (json.RawMessage, error) {
	if !present(raw) {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := decodeObject(raw, &obj); err != nil {
		return nil, err
	}
	return raw, nil
}
