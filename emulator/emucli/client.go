package emucli

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// FunctionError reports an invoke that ran but returned an error
// document.
type FunctionError struct {
	ErrorType string
	Payload   []byte
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function error (%s): %s", e.ErrorType, e.Payload)
}

// Client drives a local emulator through the AWS Lambda Invoke API.
type Client struct {
	*Options
	lambdaClient LambdaClient
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		Options: NewOptions(opts...),
	}

	if c.Options.LambdaClient != nil {
		c.lambdaClient = c.Options.LambdaClient
	} else {
		// The emulator accepts any signature, static throwaway
		// credentials keep the SDK from probing the host for real ones.
		cfg, err := config.LoadDefaultConfig(context.Background(),
			config.WithRegion(c.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("emulator", "emulator", "")),
		)
		if err != nil {
			panic(err)
		}
		c.lambdaClient = lambda.NewFromConfig(cfg, func(o *lambda.Options) {
			o.BaseEndpoint = aws.String(c.BaseURL)
		})
	}

	return c
}

// Invoke sends one synchronous invocation and returns the response
// payload. The error is a *FunctionError when the function ran but
// reported an error document.
func (c *Client) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	output, err := c.lambdaClient.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(c.FunctionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("lambda invoke failed: %w", err)
	}

	if output.FunctionError != nil {
		return nil, &FunctionError{
			ErrorType: aws.ToString(output.FunctionError),
			Payload:   output.Payload,
		}
	}

	return output.Payload, nil
}
