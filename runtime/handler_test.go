package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

func TestHandlerFuncReceivesLambdaContext(t *testing.T) {
	c := NewContext(newFakeEnvSink())
	c.RequestID = "req-9"
	c.InvokedFunctionARN = "arn:aws:lambda:us-east-1:123456789012:function:echo"
	c.Deadline = time.Now().Add(time.Minute)

	var gotRequestID string
	var hadDeadline bool
	h := HandlerFunc(func(ctx context.Context, event []byte) ([]byte, error) {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			gotRequestID = lc.AwsRequestID
		}
		_, hadDeadline = ctx.Deadline()
		return []byte(`{"echo":` + string(event) + `}`), nil
	})

	if err := h.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	out, err := h.OnEvent(`{"x":1}`, c)
	if err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}
	if gotRequestID != "req-9" {
		t.Errorf("lambda context not propagated, got %q", gotRequestID)
	}
	if !hadDeadline {
		t.Error("deadline not propagated")
	}

	raw, ok := out.(json.RawMessage)
	if !ok {
		t.Fatalf("expected raw message output, got %T", out)
	}
	if string(raw) != `{"echo":{"x":1}}` {
		t.Errorf("unexpected output: %s", raw)
	}
}

func TestHandlerFuncEmptyOutput(t *testing.T) {
	c := NewContext(newFakeEnvSink())
	h := HandlerFunc(func(ctx context.Context, event []byte) ([]byte, error) {
		return nil, nil
	})

	out, err := h.OnEvent(`{}`, c)
	if err != nil {
		t.Fatalf("OnEvent failed: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil output, got %v", out)
	}

	body, err := jsonSerializer{}.Marshal(out)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(body) != "null" {
		t.Errorf("unexpected serialized form: %s", body)
	}
}

func TestHandlerFuncError(t *testing.T) {
	c := NewContext(newFakeEnvSink())
	want := errors.New("no can do")
	h := HandlerFunc(func(ctx context.Context, event []byte) ([]byte, error) {
		return nil, want
	})

	if _, err := h.OnEvent(`{}`, c); !errors.Is(err, want) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJSONSerializerRawPassthrough(t *testing.T) {
	body, err := jsonSerializer{}.Marshal(json.RawMessage(`{"a":1}`))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(body) != `{"a":1}` {
		t.Errorf("raw message must survive serialization, got %s", body)
	}

	if _, err := (jsonSerializer{}).Marshal(json.RawMessage(`not json`)); err == nil {
		t.Error("invalid raw output must fail serialization")
	}
}
