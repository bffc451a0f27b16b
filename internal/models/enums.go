package models

type IntentStatus string

const (
	IntentSucceeded                      IntentStatus = "succeeded"
	IntentFailed                         IntentStatus = "failed"
	IntentCancelled                      IntentStatus = "cancelled"
	IntentProcessing                     IntentStatus = "processing"
	IntentRequiresCustomerAction         IntentStatus = "requires_customer_action"
	IntentRequiresMerchantAction         IntentStatus = "requires_merchant_action"
	IntentRequiresPaymentMethod          IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation           IntentStatus = "requires_confirmation"
	IntentRequiresCapture                IntentStatus = "requires_capture"
	IntentPartiallyCaptured              IntentStatus = "partially_captured"
	IntentPartiallyCapturedAndCapturable IntentStatus = "partially_captured_and_capturable"
)

type AttemptStatus string

const (
	AttemptStarted                     AttemptStatus = "started"
	AttemptAuthenticationFailed        AttemptStatus = "authentication_failed"
	AttemptRouterDeclined              AttemptStatus = "router_declined"
	AttemptAuthenticationPending       AttemptStatus = "authentication_pending"
	AttemptAuthenticationSuccessful    AttemptStatus = "authentication_successful"
	AttemptAuthorized                  AttemptStatus = "authorized"
	AttemptAuthorizationFailed         AttemptStatus = "authorization_failed"
	AttemptCharged                     AttemptStatus = "charged"
	AttemptAuthorizing                 AttemptStatus = "authorizing"
	AttemptCodInitiated                AttemptStatus = "cod_initiated"
	AttemptVoided                      AttemptStatus = "voided"
	AttemptVoidInitiated               AttemptStatus = "void_initiated"
	AttemptCaptureInitiated            AttemptStatus = "capture_initiated"
	AttemptCaptureFailed               AttemptStatus = "capture_failed"
	AttemptVoidFailed                  AttemptStatus = "void_failed"
	AttemptAutoRefunded                AttemptStatus = "auto_refunded"
	AttemptPartialCharged              AttemptStatus = "partial_charged"
	AttemptPartialChargedAndChargeable AttemptStatus = "partial_charged_and_chargeable"
	AttemptUnresolved                  AttemptStatus = "unresolved"
	AttemptPending                     AttemptStatus = "pending"
	AttemptFailure                     AttemptStatus = "failure"
	AttemptPaymentMethodAwaited        AttemptStatus = "payment_method_awaited"
	AttemptConfirmationAwaited         AttemptStatus = "confirmation_awaited"
	AttemptDeviceDataCollectionPending AttemptStatus = "device_data_collection_pending"
)

type PaymentMethod string

const (
	PaymentMethodCard            PaymentMethod = "card"
	PaymentMethodCardRedirect    PaymentMethod = "card_redirect"
	PaymentMethodPayLater        PaymentMethod = "pay_later"
	PaymentMethodWallet          PaymentMethod = "wallet"
	PaymentMethodBankRedirect    PaymentMethod = "bank_redirect"
	PaymentMethodBankTransfer    PaymentMethod = "bank_transfer"
	PaymentMethodCrypto          PaymentMethod = "crypto"
	PaymentMethodBankDebit       PaymentMethod = "bank_debit"
	PaymentMethodReward          PaymentMethod = "reward"
	PaymentMethodRealTimePayment PaymentMethod = "real_time_payment"
	PaymentMethodUpi             PaymentMethod = "upi"
	PaymentMethodVoucher         PaymentMethod = "voucher"
	PaymentMethodGiftCard        PaymentMethod = "gift_card"
	PaymentMethodOpenBanking     PaymentMethod = "open_banking"
	PaymentMethodMobilePayment   PaymentMethod = "mobile_payment"
)

// PaymentMethodType is the concrete sub-type of a PaymentMethod. Only the
// values the core branches on are named here; any other string is valid.
type PaymentMethodType string

const (
	PaymentMethodTypeCredit         PaymentMethodType = "credit"
	PaymentMethodTypeDebit          PaymentMethodType = "debit"
	PaymentMethodTypePix            PaymentMethodType = "pix"
	PaymentMethodTypeOpenBankingPIS PaymentMethodType = "open_banking_pis"
	PaymentMethodTypeApplePay       PaymentMethodType = "apple_pay"
	PaymentMethodTypeGooglePay      PaymentMethodType = "google_pay"
	PaymentMethodTypePaypal         PaymentMethodType = "paypal"
	PaymentMethodTypeAch            PaymentMethodType = "ach"
	PaymentMethodTypeBoleto         PaymentMethodType = "boleto"
	PaymentMethodTypeOxxo           PaymentMethodType = "oxxo"
)

type CaptureStatus string

const (
	CaptureStarted CaptureStatus = "started"
	CaptureCharged CaptureStatus = "charged"
	CapturePending CaptureStatus = "pending"
	CaptureFailed  CaptureStatus = "failed"
)

type CaptureMethod string

const (
	CaptureMethodAutomatic      CaptureMethod = "automatic"
	CaptureMethodManual         CaptureMethod = "manual"
	CaptureMethodManualMultiple CaptureMethod = "manual_multiple"
	CaptureMethodScheduled      CaptureMethod = "scheduled"
)

type AuthenticationType string

const (
	AuthenticationThreeDS   AuthenticationType = "three_ds"
	AuthenticationNoThreeDS AuthenticationType = "no_three_ds"
)

type FutureUsage string

const (
	FutureUsageOffSession FutureUsage = "off_session"
	FutureUsageOnSession  FutureUsage = "on_session"
)

type RequestIncrementalAuthorization string

const (
	RequestIncrementalAuthorizationTrue    RequestIncrementalAuthorization = "true"
	RequestIncrementalAuthorizationFalse   RequestIncrementalAuthorization = "false"
	RequestIncrementalAuthorizationDefault RequestIncrementalAuthorization = "default"
)

// Requested reports whether incremental authorization should be asked of the connector.
func (r *RequestIncrementalAuthorization) Requested() bool {
	if r == nil {
		return false
	}
	return *r == RequestIncrementalAuthorizationTrue || *r == RequestIncrementalAuthorizationDefault
}

type AcceptanceType string

const (
	AcceptanceOnline  AcceptanceType = "online"
	AcceptanceOffline AcceptanceType = "offline"
)

type AuthenticationStatus string

const (
	AuthenticationStatusStarted AuthenticationStatus = "started"
	AuthenticationStatusPending AuthenticationStatus = "pending"
	AuthenticationStatusSuccess AuthenticationStatus = "success"
	AuthenticationStatusFailed  AuthenticationStatus = "failed"
)

// Operation names the payment operation a response is produced for.
type Operation string

const (
	OperationCreate            Operation = "PaymentCreate"
	OperationConfirm           Operation = "PaymentConfirm"
	OperationStatus            Operation = "PaymentStatus"
	OperationUpdate            Operation = "PaymentUpdate"
	OperationCapture           Operation = "PaymentCapture"
	OperationCancel            Operation = "PaymentCancel"
	OperationStart             Operation = "PaymentStart"
	OperationSession           Operation = "PaymentSession"
	OperationCompleteAuthorize Operation = "CompleteAuthorize"
	OperationApprove           Operation = "PaymentApprove"
	OperationReject            Operation = "PaymentReject"
)

// IsStartPay reports whether the operation renders the connector redirect form.
func (o Operation) IsStartPay() bool {
	return o == OperationStart
}

// AuthFlow tells response synthesis who is calling.
type AuthFlow string

const (
	AuthFlowMerchant AuthFlow = "merchant"
	AuthFlowClient   AuthFlow = "client"
)
