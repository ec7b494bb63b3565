package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindNotOrderable       ErrorKind = "not_orderable"
	KindInvalidQuantity    ErrorKind = "invalid_quantity"
	KindInsufficientStock  ErrorKind = "insufficient_stock"
	KindInvalidAddon       ErrorKind = "invalid_addon"
	KindEmptyCart          ErrorKind = "empty_cart"
	KindDuplicateRequest   ErrorKind = "duplicate_request"
	KindTransactionFailure ErrorKind = "transaction_failure"
)

// NoLine marks an OrderError that is not tied to a specific cart line.
const NoLine = -1

// OrderError is the failure reported by checkout. Line is the zero-based
// index of the offending cart line, or NoLine.
type OrderError struct {
	Kind      ErrorKind
	Line      int
	ProductID int64
	Message   string
	Err       error
}

func (e *OrderError) Error() string {
	if e.Line == NoLine {
		return e.Message
	}
	return fmt.Sprintf("line %d: %s", e.Line+1, e.Message)
}

func (e *OrderError) Unwrap() error { return e.Err }

// Validation reports whether the failure is caused by the request rather
// than by storage.
func (e *OrderError) Validation() bool {
	return e.Kind != KindTransactionFailure && e.Kind != KindDuplicateRequest
}

func NewOrderError(kind ErrorKind, line int, productID int64, format string, args ...any) *OrderError {
	return &OrderError{Kind: kind, Line: line, ProductID: productID, Message: fmt.Sprintf(format, args...)}
}

// TransactionFailure wraps a storage error that aborted checkout.
func TransactionFailure(err error) *OrderError {
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe
	}
	return &OrderError{Kind: KindTransactionFailure, Line: NoLine, Message: "Order could not be saved.", Err: err}
}

// KindOf returns the kind carried by err; foreign errors count as
// transaction failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindTransactionFailure
}
