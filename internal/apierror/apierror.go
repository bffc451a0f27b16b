package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	KindMissingRequiredValue             Kind = "missing_required_value"
	KindInvalidDataValue                 Kind = "invalid_data_value"
	KindResourceIDNotFound               Kind = "resource_id_not_found"
	KindMerchantConnectorAccountDisabled Kind = "merchant_connector_account_disabled"
	KindInternalServerError              Kind = "internal_server_error"
	KindPreconditionFailed               Kind = "precondition_failed"
	KindPaymentAuthenticationFailed      Kind = "payment_authentication_failed"
)

// Error is the single error type surfaced by the core. Context holds printable
// notes attached on the way up; they never change the Kind.
type Error struct {
	Kind    Kind
	Field   string
	Context []string
	cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		b.WriteString(" (field: ")
		b.WriteString(e.Field)
		b.WriteString(")")
	}
	for i := len(e.Context) - 1; i >= 0; i-- {
		b.WriteString(": ")
		b.WriteString(e.Context[i])
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, apierror.ResourceIDNotFound()).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// StatusCode is the HTTP status the API layer answers with.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindMissingRequiredValue, KindInvalidDataValue, KindMerchantConnectorAccountDisabled,
		KindPreconditionFailed, KindPaymentAuthenticationFailed:
		return http.StatusBadRequest
	case KindResourceIDNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func MissingRequiredValue(field string) *Error {
	return &Error{Kind: KindMissingRequiredValue, Field: field}
}

func InvalidDataValue(field string, cause error) *Error {
	return &Error{Kind: KindInvalidDataValue, Field: field, cause: cause}
}

func ResourceIDNotFound() *Error {
	return &Error{Kind: KindResourceIDNotFound}
}

func MerchantConnectorAccountDisabled() *Error {
	return &Error{Kind: KindMerchantConnectorAccountDisabled}
}

func PreconditionFailed(message string) *Error {
	return &Error{Kind: KindPreconditionFailed, Context: []string{message}}
}

func PaymentAuthenticationFailed() *Error {
	return &Error{Kind: KindPaymentAuthenticationFailed}
}

func Internal(cause error) *Error {
	return &Error{Kind: KindInternalServerError, cause: cause}
}

// Attach adds printable context to err. Errors that are not *Error are
// reported as internal server errors.
func Attach(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	var apiErr *Error
	if errors.As(err, &apiErr) {
		clone := *apiErr
		clone.Context = append(append([]string(nil), apiErr.Context...), msg)
		return &clone
	}
	return &Error{Kind: KindInternalServerError, Context: []string{msg}, cause: err}
}

// KindOf returns the kind of err, or internal server error for foreign errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternalServerError
}
