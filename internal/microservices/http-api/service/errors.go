package service

import (
	stderrors "errors"
	"net/http"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindUnauthorized
	KindTransactionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindTransactionFailed:
		return "transaction_failed"
	default:
		return "unknown"
	}
}

// AppError is a classified failure with a client-safe Message. The cause, if
// any, is for logs only.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	status  int
	cause   error
}

func newAppError(kind ErrorKind, status int, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, status: status}
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.cause }

// Is matches any AppError with the same Code, so wrapped copies still compare
// equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) HTTPStatus() int { return e.status }

// Wrap returns a copy of e carrying cause with a stack trace.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.cause = errors.WithStack(cause)
	return &cp
}

var (
	ErrInvalidDuration = newAppError(KindValidation, http.StatusBadRequest, "INVALID_DURATION", "rental duration must be 7, 14 or 30 days")
	ErrInvalidRating   = newAppError(KindValidation, http.StatusBadRequest, "INVALID_RATING", "rating must be between 1 and 5")
	ErrExtensionLimit  = newAppError(KindValidation, http.StatusBadRequest, "EXTENSION_LIMIT", "rental cannot be extended any further")
	ErrInvalidInput    = newAppError(KindValidation, http.StatusBadRequest, "INVALID_INPUT", "invalid request payload")

	ErrBookNotFound   = newAppError(KindNotFound, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found")
	ErrRentalNotFound = newAppError(KindNotFound, http.StatusNotFound, "RENTAL_NOT_FOUND", "rental not found")
	ErrUserNotFound   = newAppError(KindNotFound, http.StatusNotFound, "USER_NOT_FOUND", "user not found")

	// a duplicate review answers 400, a reused email 409
	ErrDuplicateReview = newAppError(KindConflict, http.StatusBadRequest, "DUPLICATE_REVIEW", "you have already reviewed this book")
	ErrEmailInUse      = newAppError(KindConflict, http.StatusConflict, "EMAIL_IN_USE", "email already in use")

	ErrInvalidCredentials = newAppError(KindUnauthorized, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidToken       = newAppError(KindUnauthorized, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")

	ErrTransactionFailed = newAppError(KindTransactionFailed, http.StatusInternalServerError, "TRANSACTION_FAILED", "the operation could not be completed")
)

// AsAppError extracts the AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HTTPStatus maps err to a response status; unclassified errors are 500.
func HTTPStatus(err error) int {
	if ae, ok := AsAppError(err); ok {
		return ae.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// KindOf returns the kind of err, or KindTransactionFailed if unclassified.
func KindOf(err error) ErrorKind {
	if ae, ok := AsAppError(err); ok {
		return ae.Kind
	}
	return KindTransactionFailed
}

// classify keeps AppErrors as they are and turns anything else into TransactionFailed.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}
	return ErrTransactionFailed.Wrap(err)
}
