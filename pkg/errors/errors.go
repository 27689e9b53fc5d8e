// Package errors defines the coded error type used across services and
// controllers. Every code carries metadata that fixes its HTTP status and
// the message clients are allowed to see.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeForbidden            Code = "FORBIDDEN"
	CodeNotFound             Code = "NOT_FOUND"
	CodeConflict             Code = "CONFLICT"
	CodeInsufficientResource Code = "INSUFFICIENT_RESOURCE"
	CodeGateway              Code = "GATEWAY_ERROR"
	CodeInvalidSignature     Code = "INVALID_SIGNATURE"
	CodeIdempotency          Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit            Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal             Code = "INTERNAL_ERROR"
	CodeDependency           Code = "DEPENDENCY_ERROR"
)

// Error is the coded error carried from repos and services up to the HTTP
// layer. The cause chain stays internal; only code, message, and details
// ever reach a response body.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches structured detail for codes whose metadata allows it.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts the coded error from anywhere in err's chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given business code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// Metadata fixes how a code renders over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:           {http.StatusBadRequest, false, "validation failed", true},
	CodeUnauthorized:         {http.StatusUnauthorized, false, "authentication required", false},
	CodeForbidden:            {http.StatusForbidden, false, "access denied", false},
	CodeNotFound:             {http.StatusNotFound, false, "resource not found", false},
	CodeConflict:             {http.StatusConflict, false, "conflict detected", true},
	CodeInsufficientResource: {http.StatusBadRequest, false, "insufficient resource", true},
	CodeGateway:              {http.StatusBadGateway, true, "payment gateway unavailable", true},
	CodeInvalidSignature:     {http.StatusBadRequest, false, "invalid signature", false},
	CodeIdempotency:          {http.StatusConflict, false, "idempotency key reused", true},
	CodeRateLimit:            {http.StatusTooManyRequests, false, "rate limit exceeded", false},
	CodeInternal:             {http.StatusInternalServerError, true, "internal server error", false},
	CodeDependency:           {http.StatusServiceUnavailable, true, "dependency unavailable", false},
}

// MetadataFor returns the metadata for code, defaulting to the internal
// error entry for codes it does not know.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}
