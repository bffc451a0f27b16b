package models

type AddressDetails struct {
	City      *string `json:"city,omitempty"`
	Country   *string `json:"country,omitempty"`
	Line1     *string `json:"line1,omitempty"`
	Line2     *string `json:"line2,omitempty"`
	Line3     *string `json:"line3,omitempty"`
	Zip       *string `json:"zip,omitempty"`
	State     *string `json:"state,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type PhoneDetails struct {
	Number      *string `json:"number,omitempty"`
	CountryCode *string `json:"country_code,omitempty"`
}

type Address struct {
	Address *AddressDetails `json:"address,omitempty"`
	Phone   *PhoneDetails   `json:"phone,omitempty"`
	Email   *string         `json:"email,omitempty"`
}

// Unify fills every field missing on a from other. a wins wherever both are set.
func (a *Address) Unify(other *Address) *Address {
	if a == nil {
		return other
	}
	if other == nil {
		return a
	}
	out := &Address{
		Address: a.Address.unify(other.Address),
		Phone:   a.Phone.unify(other.Phone),
		Email:   first(a.Email, other.Email),
	}
	return out
}

func (d *AddressDetails) unify(other *AddressDetails) *AddressDetails {
	if d == nil {
		return other
	}
	if other == nil {
		return d
	}
	return &AddressDetails{
		City:      first(d.City, other.City),
		Country:   first(d.Country, other.Country),
		Line1:     first(d.Line1, other.Line1),
		Line2:     first(d.Line2, other.Line2),
		Line3:     first(d.Line3, other.Line3),
		Zip:       first(d.Zip, other.Zip),
		State:     first(d.State, other.State),
		FirstName: first(d.FirstName, other.FirstName),
		LastName:  first(d.LastName, other.LastName),
	}
}

func (p *PhoneDetails) unify(other *PhoneDetails) *PhoneDetails {
	if p == nil {
		return other
	}
	if other == nil {
		return p
	}
	return &PhoneDetails{
		Number:      first(p.Number, other.Number),
		CountryCode: first(p.CountryCode, other.CountryCode),
	}
}

func first[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}

// PaymentAddress is the address set of a payment. PaymentMethodBilling is the
// billing address sent with the request; UnifiedPaymentMethodBilling is that
// address merged with the one stored on the payment method.
type PaymentAddress struct {
	Shipping                    *Address `json:"shipping,omitempty"`
	Billing                     *Address `json:"billing,omitempty"`
	PaymentMethodBilling        *Address `json:"payment_method_billing,omitempty"`
	UnifiedPaymentMethodBilling *Address `json:"unified_payment_method_billing,omitempty"`
}

// UnifyWithPaymentMethodBilling merges the billing address stored on the payment
// method into the set. The stored address takes precedence field by field.
func (p PaymentAddress) UnifyWithPaymentMethodBilling(stored *Address) PaymentAddress {
	p.UnifiedPaymentMethodBilling = stored.Unify(p.PaymentMethodBilling)
	return p
}

// GetPaymentMethodBilling returns the unified billing address when one was
// computed, else the request-level payment method billing.
func (p PaymentAddress) GetPaymentMethodBilling() *Address {
	if p.UnifiedPaymentMethodBilling != nil {
		return p.UnifiedPaymentMethodBilling
	}
	return p.PaymentMethodBilling
}
