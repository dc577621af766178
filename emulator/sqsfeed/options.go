package sqsfeed

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/mohae/deepcopy"
)

// SQSClient is the part of the SQS API the feeder uses.
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Invoker executes one invocation against a function. Both the
// emulator engine and the lambda-backed client satisfy it.
type Invoker interface {
	Invoke(ctx context.Context, payload []byte) ([]byte, error)
}

type Options struct {
	SQSClient SQSClient
	Invoker   Invoker
	QueueURL  string
	QueueARN  string
	Region    string
	BatchSize int32
	WaitTime  int32
	DebugMode bool
}

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

var defaultOptions = &Options{
	Region:    "us-east-1",
	BatchSize: 10,
	WaitTime:  20,
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

// WithSQSClient injects a prebuilt SQS client.
func WithSQSClient(client SQSClient) Option {
	return OptionFunc(func(o *Options) {
		o.SQSClient = client
	})
}

// WithInvoker sets where received batches are sent.
func WithInvoker(invoker Invoker) Option {
	return OptionFunc(func(o *Options) {
		o.Invoker = invoker
	})
}

// WithQueueURL sets the queue the feeder polls.
func WithQueueURL(url string) Option {
	return OptionFunc(func(o *Options) {
		o.QueueURL = url
	})
}

// WithQueueARN sets the event source ARN stamped on each record.
func WithQueueARN(arn string) Option {
	return OptionFunc(func(o *Options) {
		o.QueueARN = arn
	})
}

// WithRegion sets the region stamped on each record.
func WithRegion(region string) Option {
	return OptionFunc(func(o *Options) {
		o.Region = region
	})
}

// WithBatchSize caps how many messages one receive may return.
func WithBatchSize(size int32) Option {
	return OptionFunc(func(o *Options) {
		o.BatchSize = size
	})
}

// WithWaitTime sets the long-poll wait in seconds.
func WithWaitTime(seconds int32) Option {
	return OptionFunc(func(o *Options) {
		o.WaitTime = seconds
	})
}

// WithDebugMode enables or disables debug mode
func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}
