package runtime

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/aura-studio/bootstrap/transport"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// Context carries the static execution environment together with the
// data of the invocation currently being processed. One Context lives
// for the lifetime of the runtime; the per-invocation fields are
// overwritten by every successful poll.
type Context struct {
	// Environment snapshot, fixed at construction time.
	Handler            string
	Region             string
	ExecutionEnv       string
	FunctionName       string
	FunctionMemorySize int
	FunctionVersion    string
	InitializationType InitializationType
	LogGroupName       string
	LogStreamName      string
	AccessKey          string
	AccessKeyID        string
	SecretAccessKey    string
	SessionToken       string
	RuntimeAPI         string
	TaskRoot           string
	RuntimeDir         string
	TZ                 string

	// Per-invocation data, updated after each poll.
	RequestID          string
	Deadline           time.Time
	InvokedFunctionARN string
	TraceID            string
	ClientContext      string
	CognitoIdentity    string

	env EnvSink
}

// NewContext snapshots the Lambda environment variables. The sink
// receives the trace id mirror writes.
func NewContext(env EnvSink) *Context {
	memorySize, _ := strconv.Atoi(os.Getenv(EnvFunctionMemorySize))
	return &Context{
		Handler:            os.Getenv(EnvHandler),
		Region:             os.Getenv(EnvRegion),
		ExecutionEnv:       os.Getenv(EnvExecutionEnv),
		FunctionName:       os.Getenv(EnvFunctionName),
		FunctionMemorySize: memorySize,
		FunctionVersion:    os.Getenv(EnvFunctionVersion),
		InitializationType: ParseInitializationType(os.Getenv(EnvInitializationType)),
		LogGroupName:       os.Getenv(EnvLogGroupName),
		LogStreamName:      os.Getenv(EnvLogStreamName),
		AccessKey:          os.Getenv(EnvAccessKey),
		AccessKeyID:        os.Getenv(EnvAccessKeyID),
		SecretAccessKey:    os.Getenv(EnvSecretAccessKey),
		SessionToken:       os.Getenv(EnvSessionToken),
		RuntimeAPI:         os.Getenv(EnvRuntimeAPI),
		TaskRoot:           os.Getenv(EnvTaskRoot),
		RuntimeDir:         os.Getenv(EnvRuntimeDir),
		TZ:                 os.Getenv(EnvTZ),
		env:                env,
	}
}

// Update overwrites the per-invocation fields from a poll response and
// mirrors the trace id into the process environment. The environment
// snapshot is never touched.
func (c *Context) Update(resp *transport.Response) {
	c.RequestID = resp.Header(transport.HeaderAWSRequestID)
	c.InvokedFunctionARN = resp.Header(transport.HeaderInvokedFunctionARN)
	c.ClientContext = resp.Header(transport.HeaderClientContext)
	c.CognitoIdentity = resp.Header(transport.HeaderCognitoIdentity)

	c.Deadline = time.Time{}
	if v := resp.Header(transport.HeaderDeadlineMS); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Deadline = time.UnixMilli(ms)
		}
	}

	c.SetTraceID(resp.Header(transport.HeaderTraceID), resp.HasHeader(transport.HeaderTraceID))
}

// SetTraceID records the tracing id and mirrors it into _X_AMZN_TRACE_ID.
// An absent id clears both.
func (c *Context) SetTraceID(id string, present bool) {
	if present {
		c.TraceID = id
		c.env.Setenv(EnvTraceID, id)
		return
	}
	c.TraceID = ""
	c.env.Unsetenv(EnvTraceID)
}

// RemainingTime reports how long the handler has until the service
// times the invocation out.
func (c *Context) RemainingTime() (time.Duration, error) {
	if c.Deadline.IsZero() {
		return 0, ErrNoDeadline
	}
	remaining := time.Until(c.Deadline)
	if remaining < 0 {
		return 0, ErrDeadlineElapsed
	}
	return remaining, nil
}

// InvokeContext derives a per-invocation context.Context carrying the
// deadline and the aws-lambda-go context values, so handler code
// written against lambdacontext works unchanged.
func (c *Context) InvokeContext(parent context.Context) (context.Context, context.CancelFunc) {
	lc := &lambdacontext.LambdaContext{
		AwsRequestID:       c.RequestID,
		InvokedFunctionArn: c.InvokedFunctionARN,
	}
	if c.CognitoIdentity != "" {
		json.Unmarshal([]byte(c.CognitoIdentity), &lc.Identity)
	}
	if c.ClientContext != "" {
		json.Unmarshal([]byte(c.ClientContext), &lc.ClientContext)
	}

	ctx := lambdacontext.NewContext(parent, lc)
	if c.Deadline.IsZero() {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, c.Deadline)
}
