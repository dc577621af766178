package runtime

import "github.com/mohae/deepcopy"

// DefaultVersion is the runtime API version spoken when none is given.
const DefaultVersion = "2018-06-01"

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	Version    string
	RuntimeAPI string
	Transport  Transport
	Serializer Serializer
	EnvSink    EnvSink
	DebugMode  bool
}

var defaultOptions = &Options{
	Version: DefaultVersion,
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

// WithVersion sets the runtime API version segment used in URLs.
func WithVersion(version string) Option {
	return OptionFunc(func(o *Options) {
		o.Version = version
	})
}

// WithRuntimeAPI overrides the control plane address normally taken
// from AWS_LAMBDA_RUNTIME_API.
func WithRuntimeAPI(addr string) Option {
	return OptionFunc(func(o *Options) {
		o.RuntimeAPI = addr
	})
}

// WithTransport replaces the HTTP transport.
func WithTransport(t Transport) Option {
	return OptionFunc(func(o *Options) {
		o.Transport = t
	})
}

// WithSerializer replaces the handler output serializer.
func WithSerializer(s Serializer) Option {
	return OptionFunc(func(o *Options) {
		o.Serializer = s
	})
}

// WithEnvSink replaces the process environment writer used for the
// trace id mirror.
func WithEnvSink(env EnvSink) Option {
	return OptionFunc(func(o *Options) {
		o.EnvSink = env
	})
}

// WithDebugMode enables or disables debug mode
func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}
