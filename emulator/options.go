package emulator

import (
	"time"

	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	FunctionName    string
	FunctionVersion string
	MemorySize      int
	Region          string
	FunctionTimeout time.Duration
	TraceID         string
	ClientContext   string
	CognitoIdentity string
	DebugMode       bool
}

var defaultOptions = &Options{
	FunctionName:    "function",
	FunctionVersion: "$LATEST",
	MemorySize:      3008,
	Region:          "us-east-1",
	FunctionTimeout: 300 * time.Second,
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	return options
}

func (o *Options) init(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
}

// WithFunctionName sets the function name used in the invoked function ARN.
func WithFunctionName(name string) Option {
	return OptionFunc(func(o *Options) {
		o.FunctionName = name
	})
}

// WithFunctionVersion sets the function version exported to the runtime.
func WithFunctionVersion(version string) Option {
	return OptionFunc(func(o *Options) {
		o.FunctionVersion = version
	})
}

// WithMemorySize sets the memory size in MB exported to the runtime.
func WithMemorySize(size int) Option {
	return OptionFunc(func(o *Options) {
		o.MemorySize = size
	})
}

// WithRegion sets the region used in the invoked function ARN.
func WithRegion(region string) Option {
	return OptionFunc(func(o *Options) {
		o.Region = region
	})
}

// WithFunctionTimeout sets how long an invocation may run before the
// emulator reports a timeout result.
func WithFunctionTimeout(timeout time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.FunctionTimeout = timeout
	})
}

// WithTraceID sets the tracing header handed to the runtime on each
// invocation. An empty value leaves the header out.
func WithTraceID(id string) Option {
	return OptionFunc(func(o *Options) {
		o.TraceID = id
	})
}

// WithClientContext sets the base64 client context handed to the runtime.
func WithClientContext(cc string) Option {
	return OptionFunc(func(o *Options) {
		o.ClientContext = cc
	})
}

// WithCognitoIdentity sets the cognito identity JSON handed to the runtime.
func WithCognitoIdentity(identity string) Option {
	return OptionFunc(func(o *Options) {
		o.CognitoIdentity = identity
	})
}

// WithDebugMode enables or disables debug mode
func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}
