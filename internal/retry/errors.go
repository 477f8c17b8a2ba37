package retry

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a remote failure. Values follow the canonical RPC
// status names used by most document stores.
type Code string

const (
	CodeUnavailable        Code = "unavailable"
	CodeDeadlineExceeded   Code = "deadline-exceeded"
	CodeResourceExhausted  Code = "resource-exhausted"
	CodeAborted            Code = "aborted"
	CodeInternal           Code = "internal"
	CodeFailedPrecondition Code = "failed-precondition"
	CodeInvalidArgument    Code = "invalid-argument"
	CodeNotFound           Code = "not-found"
	CodePermissionDenied   Code = "permission-denied"
)

// DefaultRetryableCodes are the codes worth another attempt.
var DefaultRetryableCodes = []Code{
	CodeUnavailable,
	CodeDeadlineExceeded,
	CodeResourceExhausted,
	CodeAborted,
	CodeInternal,
}

// CodedError attaches a Code to an error.
type CodedError struct {
	Code Code
	Err  error
}

func (e *CodedError) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *CodedError) Unwrap() error { return e.Err }

// WithCode wraps err with code. A nil err stays nil.
func WithCode(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: code, Err: err}
}

// CodeOf returns the code of the first CodedError in err's chain.
func CodeOf(err error) (Code, bool) {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return "", false
}

// ErrMissingIndex marks a query that cannot succeed until an index or
// schema change is deployed.
var ErrMissingIndex = errors.New("query requires a missing index")

// schemaMarkers are driver messages for errors no retry can fix.
var schemaMarkers = []string{
	"requires an index",
	"no such index",
	"no such table",
	"no such column",
}

// IsSchemaError reports whether err is a missing-index or schema error.
func IsSchemaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingIndex) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range schemaMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
