package urls

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akylbek/payment-system/payment-core/internal/models"
)

func TestDerivedURLs(t *testing.T) {
	attempt := &models.PaymentAttempt{PaymentID: "pay_1", MerchantID: "m_1", AttemptID: "pay_1_1"}
	intent := &models.PaymentIntent{PaymentID: "pay_1", MerchantID: "m_1"}
	creds := "creds_a"
	const b = "https://router.example.com/"

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"webhook", Webhook(b, "m_1", "stripe"), "https://router.example.com/webhooks/m_1/stripe"},
		{"redirect response", RedirectResponse(b, attempt, "stripe", nil),
			"https://router.example.com/payments/pay_1/m_1/redirect/response/stripe"},
		{"redirect response with creds", RedirectResponse(b, attempt, "stripe", &creds),
			"https://router.example.com/payments/pay_1/m_1/redirect/response/stripe/creds_a"},
		{"complete authorize", CompleteAuthorize(b, attempt, "stripe"),
			"https://router.example.com/payments/pay_1/m_1/redirect/complete/stripe"},
		{"start pay", StartPay(b, attempt, intent),
			"https://router.example.com/payments/redirect/pay_1/m_1/pay_1_1"},
		{"3ds authentication", ThreeDSAuthentication(b, attempt),
			"https://router.example.com/payments/pay_1/3ds/authentication"},
		{"3ds authorize", ThreeDSAuthorize(b, attempt, "adyen"),
			"https://router.example.com/payments/pay_1/m_1/authorize/adyen"},
		{"poll id", ExternalAuthenticationPollID("pay_1"), "external_authentication_pay_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestNewSet(t *testing.T) {
	attempt := &models.PaymentAttempt{PaymentID: "pay_1", MerchantID: "m_1"}
	s := NewSet("https://r.example.com", attempt, "stripe", nil)
	assert.Equal(t, Set{
		Webhook:           "https://r.example.com/webhooks/m_1/stripe",
		RouterReturn:      "https://r.example.com/payments/pay_1/m_1/redirect/response/stripe",
		CompleteAuthorize: "https://r.example.com/payments/pay_1/m_1/redirect/complete/stripe",
	}, s)
}
