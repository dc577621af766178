package emulator

import "fmt"

// HeaderFunctionError marks an invocation result as a function error on
// the invoke API response, mirroring the AWS Invoke API.
const HeaderFunctionError = "X-Amz-Function-Error"

// FunctionErrorUnhandled is the only error category the emulator
// reports. Real Lambda distinguishes handled and unhandled errors, a
// custom runtime only ever produces the latter.
const FunctionErrorUnhandled = "Unhandled"

// FunctionError reports an invocation that ran but ended with an error
// result. Payload holds the error document produced by the runtime.
type FunctionError struct {
	ErrorType string
	Payload   []byte
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("emulator: function error (%s): %s", e.ErrorType, e.Payload)
}
