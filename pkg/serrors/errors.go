package serrors

import (
	"errors"
	"fmt"
)

// Kind classifies a BaseError into the failure taxonomy used across
// services and controllers.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindStorage
	KindPartialFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindStorage:
		return "storage"
	case KindPartialFailure:
		return "partial_failure"
	default:
		return "unknown"
	}
}

// BaseError is a structured error with a stable machine-readable code.
// The message is safe to show to callers; wrapped causes are not.
type BaseError struct {
	Code    string
	Message string
	Kind    Kind
	cause   error
}

func NotFound(code, message string) *BaseError {
	return &BaseError{Code: code, Message: message, Kind: KindNotFound}
}

func Validation(code, message string) *BaseError {
	return &BaseError{Code: code, Message: message, Kind: KindValidation}
}

func Storage(code, message string) *BaseError {
	return &BaseError{Code: code, Message: message, Kind: KindStorage}
}

func PartialFailure(code, message string) *BaseError {
	return &BaseError{Code: code, Message: message, Kind: KindPartialFailure}
}

func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BaseError) Unwrap() error {
	return e.cause
}

// WithCause returns a copy carrying the underlying error. The cause is
// reachable through errors.Is/As but never rendered by controllers.
func (e *BaseError) WithCause(err error) *BaseError {
	c := *e
	c.cause = err
	return &c
}

// Is matches by code so that sentinel instances compare equal to their
// WithCause copies.
func (e *BaseError) Is(target error) bool {
	var be *BaseError
	if !errors.As(target, &be) {
		return false
	}
	return be.Code == e.Code
}

// KindOf reports the taxonomy kind of err, or KindUnknown when err is not
// a BaseError.
func KindOf(err error) Kind {
	var be *BaseError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}
