package handlers

import (
	"github.com/akylbek/payment-system/payment-core/internal/models"
)

type PaymentsResponseRequest struct {
	PaymentData             models.PaymentData `json:"payment_data"`
	Customer                *models.Customer   `json:"customer,omitempty"`
	AuthFlow                models.AuthFlow    `json:"auth_flow"`
	Operation               models.Operation   `json:"operation" binding:"required"`
	ConnectorHTTPStatusCode *int               `json:"connector_http_status_code,omitempty"`
	ExternalLatency         *int64             `json:"external_latency,omitempty"`
}

type SessionRequest struct {
	PaymentData models.PaymentData `json:"payment_data"`
}

type VerifyRequest struct {
	PaymentData models.PaymentData `json:"payment_data"`
	Customer    *models.Customer   `json:"customer,omitempty"`
}

type SummaryRequest struct {
	PaymentIntent  models.PaymentIntent  `json:"payment_intent"`
	PaymentAttempt models.PaymentAttempt `json:"payment_attempt"`
}

type RouterDataRequest struct {
	Flow                string                        `json:"flow" binding:"required"`
	PaymentData         models.PaymentData            `json:"payment_data"`
	MerchantID          string                        `json:"merchant_id" binding:"required"`
	MerchantConnectorID string                        `json:"merchant_connector_id" binding:"required"`
	Customer            *models.Customer              `json:"customer,omitempty"`
	RecipientData       *models.MerchantRecipientData `json:"recipient_data,omitempty"`
	ApplePayFlow        *string                       `json:"apple_pay_flow,omitempty"`
	Dispatch            bool                          `json:"dispatch"`
}

type CaptureSyncRequest struct {
	PaymentData         models.PaymentData `json:"payment_data"`
	MerchantID          string             `json:"merchant_id" binding:"required"`
	MerchantConnectorID string             `json:"merchant_connector_id" binding:"required"`
	Customer            *models.Customer   `json:"customer,omitempty"`
}
