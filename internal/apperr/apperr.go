// Package apperr defines the two error kinds every service returns:
// validation errors for malformed input and business errors for domain
// rule violations. Both are converted into the ServiceResult envelope
// at the HTTP boundary; nothing panics past a service.
package apperr

import (
	"errors"
	"fmt"
)

// Machine-readable business codes surfaced to callers.
const (
	CodeInvalidInput           = "INVALID_INPUT"
	CodeNotFound               = "NOT_FOUND"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeCartEmpty              = "CART_EMPTY"
	CodeCartInvalid            = "CART_INVALID"
	CodeUnauthorizedCartAccess = "UNAUTHORIZED_CART_ACCESS"
	CodeProductUnavailable     = "PRODUCT_UNAVAILABLE"
	CodeAddressNotFound        = "ADDRESS_NOT_FOUND"
	CodeDiscountNotFound       = "DISCOUNT_NOT_FOUND"
	CodeDiscountInactive       = "DISCOUNT_INACTIVE"
	CodeDiscountExpired        = "DISCOUNT_EXPIRED"
	CodeDiscountLimitReached   = "DISCOUNT_LIMIT_REACHED"
	CodeDiscountMinOrder       = "DISCOUNT_MIN_ORDER_NOT_MET"
	CodeOrderNotFound          = "ORDER_NOT_FOUND"
	CodeOrderAlreadyDelivered  = "ORDER_ALREADY_DELIVERED"
	CodeOrderAlreadyCancelled  = "ORDER_ALREADY_CANCELLED"
	CodeInvalidTransition      = "INVALID_STATUS_TRANSITION"
	CodeUnknown                = "UNKNOWN_ERROR"
)

// ValidationError means the caller supplied malformed or out-of-range
// input. It is field-addressable and always recoverable by correcting
// the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// BusinessError means a domain rule was violated despite well-formed
// input. Code is stable and machine-readable.
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string { return e.Message }

// Is matches two business errors by code so sentinels created with the
// same code compare equal under errors.Is.
func (e *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	return ok && t.Code == e.Code
}

func Business(code, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message}
}

func Businessf(code, format string, args ...any) *BusinessError {
	return &BusinessError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the machine code from err, unwrapping as needed.
// Validation errors map to INVALID_INPUT, unclassified errors to
// UNKNOWN_ERROR.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return CodeInvalidInput
	}
	return CodeUnknown
}

// IsCode reports whether err carries the given business code.
func IsCode(err error, code string) bool {
	var be *BusinessError
	return errors.As(err, &be) && be.Code == code
}

// IsValidation reports whether err is (or wraps) a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
