package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrValidation          = errors.New("validation failed")
	ErrOverpayment         = errors.New("payment amount exceeds outstanding balance")
	ErrImportParse         = errors.New("import payload could not be parsed")
	ErrNothingToExport     = errors.New("nothing to export")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	ErrCodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeOverpayment         = "OVERPAYMENT_ATTEMPT"
	ErrCodeImportParse         = "IMPORT_PARSE_ERROR"
	ErrCodeNothingToExport     = "NOTHING_TO_EXPORT"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapTransactionNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeTransactionNotFound,
		fmt.Sprintf("Transaction with ID %s not found", id),
		ErrTransactionNotFound,
	)
}

func WrapPaymentNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %s not found", id),
		ErrPaymentNotFound,
	)
}

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		message,
		ErrValidation,
	)
}

func WrapOverpayment(amount, balance string) *BusinessError {
	return NewBusinessError(
		ErrCodeOverpayment,
		fmt.Sprintf("Payment of %s exceeds outstanding balance of %s", amount, balance),
		ErrOverpayment,
	)
}

func WrapImportParse(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeImportParse,
		"import payload is malformed, collection left untouched",
		err,
	)
}

func WrapNothingToExport(what string) *BusinessError {
	return NewBusinessError(
		ErrCodeNothingToExport,
		fmt.Sprintf("No %s to export", what),
		ErrNothingToExport,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

// Helpers for classifying wrapped errors
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTransactionNotFound)
}

func IsPaymentNotFoundError(err error) bool {
	return errors.Is(err, ErrPaymentNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsOverpaymentError(err error) bool {
	return errors.Is(err, ErrOverpayment)
}

func IsNothingToExportError(err error) bool {
	return errors.Is(err, ErrNothingToExport)
}
