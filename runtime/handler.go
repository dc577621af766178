package runtime

import (
	"context"
	"encoding/json"
)

// Handler is the contract user code implements. Initialize runs once
// per runtime instance, before the first poll; resources it sets up are
// reusable across invocations. OnEvent runs once per invocation with
// the raw event payload and the current invocation context. Its output
// goes through the Serializer before being reported.
type Handler interface {
	Initialize() error
	OnEvent(event string, ictx *Context) (any, error)
}

// HandlerFunc adapts a plain function to the Handler contract. The
// function receives a context.Context carrying the invocation deadline
// and the lambdacontext values, so code written for the official Go
// SDK plugs in directly.
type HandlerFunc func(ctx context.Context, event []byte) ([]byte, error)

func (f HandlerFunc) Initialize() error { return nil }

func (f HandlerFunc) OnEvent(event string, ictx *Context) (any, error) {
	ctx, cancel := ictx.InvokeContext(context.Background())
	defer cancel()

	out, err := f(ctx, []byte(event))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return json.RawMessage(out), nil
}

// Serializer encodes handler output for the response report.
type Serializer interface {
	Marshal(v any) ([]byte, error)
}

// jsonSerializer is the default Serializer. json.RawMessage output
// passes through untouched.
type jsonSerializer struct{}

func (jsonSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
