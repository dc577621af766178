package transport

import (
	"net/http"
	"time"

	"github.com/mohae/deepcopy"
)

// HTTPClient is the part of *http.Client the transport relies on.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	HTTPClient     HTTPClient
	BaseURL        string
	DefaultTimeout time.Duration
	Headers        map[string]string
}

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

// The next poll blocks until an event arrives, so the default timeout
// must outlive any realistic idle period.
var defaultOptions = &Options{
	HTTPClient:     http.DefaultClient,
	DefaultTimeout: 24 * time.Hour,
	Headers:        map[string]string{},
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

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client HTTPClient) Option {
	return OptionFunc(func(o *Options) {
		o.HTTPClient = client
	})
}

// WithBaseURL sets the URL prefix applied to every request path.
func WithBaseURL(url string) Option {
	return OptionFunc(func(o *Options) {
		o.BaseURL = url
	})
}

// WithDefaultTimeout sets the timeout used when the request context
// carries no deadline of its own.
func WithDefaultTimeout(timeout time.Duration) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultTimeout = timeout
	})
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return OptionFunc(func(o *Options) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	})
}
