package runtime

import (
	"errors"
	"fmt"
)

// Error type tokens reported through the function-error-type header.
const (
	InitErrorType             = "Runtime.InitError"
	MissingRequestIDErrorType = "Runtime.MissingRequestId"
)

// ContainerErrorMessage is the diagnostic for a non-recoverable control
// plane failure.
const ContainerErrorMessage = "Container error. Non-recoverable state."

var (
	// ErrNoDeadline is returned when the current invocation carries no
	// deadline information.
	ErrNoDeadline = errors.New("runtime: missing deadline info")

	// ErrDeadlineElapsed is returned once the invocation deadline has
	// already passed.
	ErrDeadlineElapsed = errors.New("runtime: deadline elapsed")
)

// ClientError is a runtime API rejection in the 4xx range. It is
// recoverable: the loop logs it and keeps polling.
type ClientError struct {
	StatusCode    int
	ErrorResponse string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("runtime: client error (%d). ErrorResponse: %s", e.StatusCode, e.ErrorResponse)
}

// ContainerError is a runtime API failure in the 5xx range. The
// execution environment is in a non-recoverable state and the process
// is expected to exit.
type ContainerError struct {
	StatusCode int
}

func (e *ContainerError) Error() string {
	return ContainerErrorMessage
}

// SerializationError wraps a failure to encode handler output. It is
// reported back as that invocation's error.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("runtime: failed serializing output to JSON: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
