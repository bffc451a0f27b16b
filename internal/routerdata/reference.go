package routerdata

import "github.com/akylbek/payment-system/payment-core/internal/models"

// ReferenceIDConfig lists the merchants whose connector requests are
// referenced by payment id instead of attempt id.
type ReferenceIDConfig struct {
	paymentIDMerchants map[string]struct{}
}

func NewReferenceIDConfig(merchantIDs []string) ReferenceIDConfig {
	set := make(map[string]struct{}, len(merchantIDs))
	for _, id := range merchantIDs {
		set[id] = struct{}{}
	}
	return ReferenceIDConfig{paymentIDMerchants: set}
}

// UsesPaymentID reports whether merchantID is referenced by payment id.
func (c ReferenceIDConfig) UsesPaymentID(merchantID string) bool {
	_, ok := c.paymentIDMerchants[merchantID]
	return ok
}

func (c ReferenceIDConfig) ConnectorRequestReferenceID(merchantID string, attempt *models.PaymentAttempt) string {
	if c.UsesPaymentID(merchantID) {
		return attempt.PaymentID
	}
	return attempt.AttemptID
}
