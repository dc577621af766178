package emucli

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/mohae/deepcopy"
)

// LambdaClient is the part of the Lambda API the client calls.
type LambdaClient interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput,
		optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

type Options struct {
	LambdaClient LambdaClient
	FunctionName string
	BaseURL      string
	Region       string
}

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

var defaultOptions = &Options{
	FunctionName: "function",
	BaseURL:      "http://127.0.0.1:8080",
	Region:       "us-east-1",
}

func NewOptions(opts ...Option) *Options {
	o := deepcopy.Copy(defaultOptions).(*Options)
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
	return o
}

// WithLambdaClient injects a prebuilt Lambda client.
func WithLambdaClient(client LambdaClient) Option {
	return OptionFunc(func(o *Options) {
		o.LambdaClient = client
	})
}

// WithFunctionName sets the function name sent on each invoke.
func WithFunctionName(name string) Option {
	return OptionFunc(func(o *Options) {
		o.FunctionName = name
	})
}

// WithBaseURL points the client at an emulator address.
func WithBaseURL(url string) Option {
	return OptionFunc(func(o *Options) {
		o.BaseURL = url
	})
}

// WithRegion sets the region requests are signed for.
func WithRegion(region string) Option {
	return OptionFunc(func(o *Options) {
		o.Region = region
	})
}
