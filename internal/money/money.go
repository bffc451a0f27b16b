package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnit is an amount in the smallest unit of its currency (cents for USD).
// Amounts never pass through floating point.
type MinorUnit int64

func NewMinorUnit(v int64) MinorUnit {
	return MinorUnit(v)
}

func (m MinorUnit) Int64() int64 {
	return int64(m)
}

func (m MinorUnit) Add(o MinorUnit) MinorUnit {
	return m + o
}

// ToBaseUnit converts the amount into the currency's major unit, e.g. 1050 USD -> 10.50.
func (m MinorUnit) ToBaseUnit(c Currency) (decimal.Decimal, error) {
	exp, err := c.Exponent()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.New(int64(m), -exp), nil
}

// FromBaseUnit converts a major-unit decimal into minor units. Fractions smaller than the
// currency's minor unit are rejected rather than rounded.
func FromBaseUnit(amount decimal.Decimal, c Currency) (MinorUnit, error) {
	exp, err := c.Exponent()
	if err != nil {
		return 0, err
	}
	shifted := amount.Shift(exp)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more precision than %s allows", amount.String(), c)
	}
	return MinorUnit(shifted.IntPart()), nil
}

// Currency is an ISO 4217 alphabetic code.
type Currency string

var zeroDecimalCurrencies = map[Currency]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {}, "KRW": {}, "MGA": {},
	"PYG": {}, "RWF": {}, "UGX": {}, "VND": {}, "VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

var threeDecimalCurrencies = map[Currency]struct{}{
	"BHD": {}, "JOD": {}, "KWD": {}, "OMR": {}, "TND": {},
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

func (c Currency) Validate() error {
	if len(c) != 3 {
		return fmt.Errorf("invalid currency code %q", string(c))
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("invalid currency code %q", string(c))
		}
	}
	return nil
}

// Exponent returns the number of minor-unit digits for the currency.
func (c Currency) Exponent() (int32, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if _, ok := zeroDecimalCurrencies[c]; ok {
		return 0, nil
	}
	if _, ok := threeDecimalCurrencies[c]; ok {
		return 3, nil
	}
	return 2, nil
}

func (c Currency) String() string {
	return string(c)
}
