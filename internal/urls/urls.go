// Package urls derives every router-owned URL handed to connectors or clients.
// Builders and the next-action resolver both go through here so that a
// redirect target and the webhook a connector calls can never disagree.
package urls

import (
	"fmt"
	"strings"

	"github.com/akylbek/payment-system/payment-core/internal/models"
)

func base(u string) string {
	return strings.TrimRight(u, "/")
}

// Webhook is where the connector posts asynchronous notifications.
func Webhook(baseURL, merchantID, connector string) string {
	return fmt.Sprintf("%s/webhooks/%s/%s", base(baseURL), merchantID, connector)
}

// RedirectResponse is where the customer lands after the connector's redirect
// flow. The credentials identifier, when set, is appended as a final segment.
func RedirectResponse(baseURL string, attempt *models.PaymentAttempt, connector string, credsIdentifier *string) string {
	u := fmt.Sprintf("%s/payments/%s/%s/redirect/response/%s",
		base(baseURL), attempt.PaymentID, attempt.MerchantID, connector)
	if credsIdentifier != nil {
		u += "/" + *credsIdentifier
	}
	return u
}

func CompleteAuthorize(baseURL string, attempt *models.PaymentAttempt, connector string) string {
	return fmt.Sprintf("%s/payments/%s/%s/redirect/complete/%s",
		base(baseURL), attempt.PaymentID, attempt.MerchantID, connector)
}

// StartPay is the router page that renders the connector redirect form.
func StartPay(baseURL string, attempt *models.PaymentAttempt, intent *models.PaymentIntent) string {
	return fmt.Sprintf("%s/payments/redirect/%s/%s/%s",
		base(baseURL), intent.PaymentID, intent.MerchantID, attempt.AttemptID)
}

func ThreeDSAuthentication(baseURL string, attempt *models.PaymentAttempt) string {
	return fmt.Sprintf("%s/payments/%s/3ds/authentication", base(baseURL), attempt.PaymentID)
}

func ThreeDSAuthorize(baseURL string, attempt *models.PaymentAttempt, connector string) string {
	return fmt.Sprintf("%s/payments/%s/%s/authorize/%s",
		base(baseURL), attempt.PaymentID, attempt.MerchantID, connector)
}

// ExternalAuthenticationPollID is the poll id clients use while 3DS authentication runs.
func ExternalAuthenticationPollID(paymentID string) string {
	return "external_authentication_" + paymentID
}

// Set is the URL bundle the authorize-like builders attach to a request.
type Set struct {
	Webhook           string
	RouterReturn      string
	CompleteAuthorize string
}

func NewSet(baseURL string, attempt *models.PaymentAttempt, connector string, credsIdentifier *string) Set {
	return Set{
		Webhook:           Webhook(baseURL, attempt.MerchantID, connector),
		RouterReturn:      RedirectResponse(baseURL, attempt, connector, credsIdentifier),
		CompleteAuthorize: CompleteAuthorize(baseURL, attempt, connector),
	}
}
