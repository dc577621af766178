package sqsfeed

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Feeder long-polls an SQS queue and feeds each received batch to an
// invoker as a standard SQS event. Messages are deleted only after the
// invocation succeeded, so failed batches come back after the
// visibility timeout like they would on a real event source mapping.
type Feeder struct {
	*Options
	sqsClient SQSClient
	running   atomic.Int32
}

func NewFeeder(opts ...Option) *Feeder {
	f := &Feeder{
		Options: NewOptions(opts...),
	}

	if f.Options.SQSClient != nil {
		f.sqsClient = f.Options.SQSClient
	} else {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			panic(err)
		}
		f.sqsClient = sqs.NewFromConfig(cfg)
	}

	if f.Invoker == nil {
		panic("sqsfeed: missing invoker")
	}
	if f.QueueURL == "" {
		panic("sqsfeed: missing queue url")
	}

	f.running.Store(1)
	return f
}

func (f *Feeder) Start() {
	f.running.Store(1)
}

func (f *Feeder) Stop() {
	f.running.Store(0)
}

func (f *Feeder) IsRunning() bool {
	return f.running.Load() == 1
}

// Run polls the queue until ctx is canceled or Stop is called.
func (f *Feeder) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !f.IsRunning() {
			return nil
		}

		output, err := f.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(f.QueueURL),
			MaxNumberOfMessages: f.BatchSize,
			WaitTimeSeconds:     f.WaitTime,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[SQSFeed] Receive error: %v", err)
			time.Sleep(time.Second)
			continue
		}

		if len(output.Messages) == 0 {
			continue
		}

		event, err := f.wrapEvent(output.Messages)
		if err != nil {
			log.Printf("[SQSFeed] Encode error: %v", err)
			continue
		}
		if f.DebugMode {
			log.Printf("[SQSFeed] Event: %s", event)
		}

		if _, err := f.Invoker.Invoke(ctx, event); err != nil {
			log.Printf("[SQSFeed] Invoke error: %v", err)
			continue
		}

		for _, msg := range output.Messages {
			if _, err := f.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(f.QueueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				log.Printf("[SQSFeed] Delete error: %v", err)
			}
		}
	}
}

// wrapEvent wraps raw queue messages into the event shape Lambda hands
// to SQS-triggered functions.
func (f *Feeder) wrapEvent(messages []types.Message) ([]byte, error) {
	records := make([]events.SQSMessage, 0, len(messages))
	for _, msg := range messages {
		records = append(records, events.SQSMessage{
			MessageId:      aws.ToString(msg.MessageId),
			ReceiptHandle:  aws.ToString(msg.ReceiptHandle),
			Body:           aws.ToString(msg.Body),
			Md5OfBody:      aws.ToString(msg.MD5OfBody),
			Attributes:     msg.Attributes,
			EventSource:    "aws:sqs",
			EventSourceARN: f.QueueARN,
			AWSRegion:      f.Region,
		})
	}
	return json.Marshal(events.SQSEvent{Records: records})
}
