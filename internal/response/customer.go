package response

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/models"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

type CustomerDetailsResponse struct {
	ID               *string `json:"id,omitempty"`
	Name             *string `json:"name,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	PhoneCountryCode *string `json:"phone_country_code,omitempty"`
}

func customerTableResponse(c *models.Customer) *CustomerDetailsResponse {
	if c == nil {
		return nil
	}
	id := c.CustomerID
	return &CustomerDetailsResponse{
		ID:               &id,
		Name:             c.Name,
		Email:            c.Email,
		Phone:            c.Phone,
		PhoneCountryCode: c.PhoneCountryCode,
	}
}

// reconcileCustomer prefers the customer details stored on the intent. The id
// always comes from the customer table, and so does every field the intent
// blob leaves empty. A blob that does not decode is ignored.
func reconcileCustomer(intent *models.PaymentIntent, customer *models.Customer) *CustomerDetailsResponse {
	table := customerTableResponse(customer)
	if !models.Present(intent.CustomerDetails) {
		return table
	}
	var stored models.CustomerData
	if err := json.Unmarshal(intent.CustomerDetails, &stored); err != nil {
		telemetry.Logger.Debug("Intent customer details do not decode, using customer table",
			zap.String("payment_id", intent.PaymentID),
			zap.Error(err),
		)
		return table
	}
	out := &CustomerDetailsResponse{
		Name:             stored.Name,
		Email:            stored.Email,
		Phone:            stored.Phone,
		PhoneCountryCode: stored.PhoneCountryCode,
	}
	if customer != nil {
		out.ID = table.ID
		out.Name = orElse(out.Name, customer.Name)
		out.Email = orElse(out.Email, customer.Email)
		out.Phone = orElse(out.Phone, customer.Phone)
		out.PhoneCountryCode = orElse(out.PhoneCountryCode, customer.PhoneCountryCode)
	}
	return out
}

func orElse[T any](v, fallback *T) *T {
	if v != nil {
		return v
	}
	return fallback
}
