package runtime

import "os"

// Environment variables defined by the Lambda execution environment.
const (
	EnvHandler            = "_HANDLER"
	EnvRegion             = "AWS_REGION"
	EnvExecutionEnv       = "AWS_EXECUTION_ENV"
	EnvFunctionName       = "AWS_LAMBDA_FUNCTION_NAME"
	EnvFunctionMemorySize = "AWS_LAMBDA_FUNCTION_MEMORY_SIZE"
	EnvFunctionVersion    = "AWS_LAMBDA_FUNCTION_VERSION"
	EnvInitializationType = "AWS_LAMBDA_INITIALIZATION_TYPE"
	EnvLogGroupName       = "AWS_LAMBDA_LOG_GROUP_NAME"
	EnvLogStreamName      = "AWS_LAMBDA_LOG_STREAM_NAME"
	EnvAccessKey          = "AWS_ACCESS_KEY"
	EnvAccessKeyID        = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	EnvSessionToken       = "AWS_SESSION_TOKEN"
	EnvRuntimeAPI         = "AWS_LAMBDA_RUNTIME_API"
	EnvTaskRoot           = "LAMBDA_TASK_ROOT"
	EnvRuntimeDir         = "LAMBDA_RUNTIME_DIR"
	EnvTZ                 = "TZ"
	EnvTraceID            = "_X_AMZN_TRACE_ID"
)

// InitializationType mirrors AWS_LAMBDA_INITIALIZATION_TYPE.
type InitializationType string

const (
	InitOnDemand               InitializationType = "on-demand"
	InitProvisionedConcurrency InitializationType = "provisioned-concurrency"
	InitUnknown                InitializationType = "unknown"
)

// ParseInitializationType maps the raw env value onto a known type.
// Unrecognized values become InitUnknown, never an error.
func ParseInitializationType(itype string) InitializationType {
	switch itype {
	case string(InitOnDemand):
		return InitOnDemand
	case string(InitProvisionedConcurrency):
		return InitProvisionedConcurrency
	default:
		return InitUnknown
	}
}

// EnvSink is the part of the process environment the runtime writes to.
type EnvSink interface {
	Setenv(key, value string) error
	Unsetenv(key string) error
}

type osEnvSink struct{}

func (osEnvSink) Setenv(key, value string) error { return os.Setenv(key, value) }

func (osEnvSink) Unsetenv(key string) error { return os.Unsetenv(key) }
