package platform

import (
	"fmt"
	"strings"
)

const (
	transportErrorTemplateConstant           = "%s %s request failed: %v"
	transportStatusErrorTemplateConstant     = "%s %s request failed with status %d"
	rejectionErrorTemplateConstant           = "%s rejected %s with status %d"
	rejectionErrorWithDetailTemplateConstant = "%s rejected %s with status %d: %s"
)

// Operation names a platform call for error reporting.
type Operation string

// Platform operations.
const (
	OperationCreate = Operation("create")
	OperationUpdate = Operation("update")
)

// TransportError reports a platform call that did not produce a usable answer: network failures,
// throttling and server errors. Retrying later may succeed.
type TransportError struct {
	Platform   string
	Operation  Operation
	StatusCode int
	Cause      error
}

// Error describes the transport failure.
func (transportError TransportError) Error() string {
	if transportError.Cause == nil {
		return fmt.Sprintf(transportStatusErrorTemplateConstant, transportError.Platform, transportError.Operation, transportError.StatusCode)
	}
	return fmt.Sprintf(transportErrorTemplateConstant, transportError.Platform, transportError.Operation, transportError.Cause)
}

// Unwrap exposes the underlying cause.
func (transportError TransportError) Unwrap() error {
	return transportError.Cause
}

// RejectionError reports a request the platform refused, such as invalid content or bad credentials.
type RejectionError struct {
	Platform   string
	Operation  Operation
	StatusCode int
	Detail     string
}

// Error describes the rejection.
func (rejectionError RejectionError) Error() string {
	detail := strings.TrimSpace(rejectionError.Detail)
	if len(detail) == 0 {
		return fmt.Sprintf(rejectionErrorTemplateConstant, rejectionError.Platform, rejectionError.Operation, rejectionError.StatusCode)
	}
	return fmt.Sprintf(rejectionErrorWithDetailTemplateConstant, rejectionError.Platform, rejectionError.Operation, rejectionError.StatusCode, detail)
}
