// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure Result. Every server-side error is mapped
// to one of these codes at the dispatch boundary.
type ErrorCode string

const (
	// CodeUnsupportedOperation means the request named an unknown operation.
	CodeUnsupportedOperation ErrorCode = "unsupported_operation"

	// CodeBadRequest means the request frame was malformed or truncated,
	// or a required option was missing or invalid.
	CodeBadRequest ErrorCode = "bad_request"

	// CodeUnauthorized means the request token did not match the server's.
	CodeUnauthorized ErrorCode = "unauthorized"

	// CodeConversionFailed means the underlying conversion library or tool
	// failed: corrupt input, wrong password, unsupported sub-format.
	CodeConversionFailed ErrorCode = "conversion_failed"
)

// OpError wraps a cause with an ErrorCode so the dispatch boundary can
// build a failure Result without inspecting error strings.
type OpError struct {
	Code ErrorCode
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// BadRequest returns an OpError with CodeBadRequest.
func BadRequest(format string, args ...any) error {
	return &OpError{Code: CodeBadRequest, Err: fmt.Errorf(format, args...)}
}

// Unsupported returns an OpError with CodeUnsupportedOperation.
func Unsupported(op Operation) error {
	return &OpError{Code: CodeUnsupportedOperation, Err: fmt.Errorf("unsupported operation %q", op)}
}

// ConversionFailed wraps err with CodeConversionFailed.
func ConversionFailed(err error) error {
	return &OpError{Code: CodeConversionFailed, Err: err}
}

// CodeOf extracts the ErrorCode from err. Errors that are not OpErrors
// default to CodeConversionFailed, matching the policy that any fault in
// an underlying library is reported as a conversion failure.
func CodeOf(err error) ErrorCode {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return CodeConversionFailed
}

// FailureResult builds a failure Result for a request ID from err.
func FailureResult(id string, err error) *Result {
	return &Result{
		ID:     id,
		Status: StatusFailure,
		Code:   CodeOf(err),
		Error:  err.Error(),
	}
}
