package runtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/aura-studio/bootstrap/transport"
)

// Transport issues runtime API requests. *transport.Client satisfies it.
type Transport interface {
	Get(ctx context.Context, path string) (*transport.Response, error)
	Post(ctx context.Context, path string, body []byte, headers map[string]string) (*transport.Response, error)
}

// Engine drives the poll, invoke, report cycle against the runtime API.
// There is exactly one invocation in flight at any time: the control
// plane hands out one event per poll and waits for its report before
// handing out the next.
type Engine struct {
	*Options
	context *Context
	handler Handler
	running atomic.Int32
}

// NewEngine creates a runtime engine for the given handler. The control
// plane address comes from WithRuntimeAPI or AWS_LAMBDA_RUNTIME_API;
// its absence is a fatal configuration error, so NewEngine panics.
func NewEngine(handler Handler, opts ...Option) *Engine {
	options := NewOptions(opts...)

	if options.EnvSink == nil {
		options.EnvSink = osEnvSink{}
	}
	if options.Serializer == nil {
		options.Serializer = jsonSerializer{}
	}

	c := NewContext(options.EnvSink)
	if options.RuntimeAPI == "" {
		options.RuntimeAPI = c.RuntimeAPI
	}
	if options.RuntimeAPI == "" {
		panic("runtime: missing runtime API address in env vars")
	}

	options.Version = strings.TrimPrefix(options.Version, "/")

	if options.Transport == nil {
		options.Transport = transport.NewClient(
			transport.WithBaseURL("http://" + options.RuntimeAPI),
		)
	}

	e := &Engine{
		Options: options,
		context: c,
		handler: handler,
	}
	e.running.Store(1)
	return e
}

// Start allows the engine to poll for new invocations.
func (e *Engine) Start() {
	e.running.Store(1)
}

// Stop makes Run return cleanly after the current cycle.
func (e *Engine) Stop() {
	e.running.Store(0)
}

// IsRunning returns true if the engine is currently running.
func (e *Engine) IsRunning() bool {
	return e.running.Load() == 1
}

// Context returns the engine's invocation context.
func (e *Engine) Context() *Context {
	return e.context
}

// Run executes the runtime loop: initialize the handler once, then
// poll, invoke and report until ctx is canceled, Stop is called, or the
// control plane reports a non-recoverable state. The returned error is
// always fatal; recoverable conditions are logged and retried.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.runInitializer(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.IsRunning() {
			return nil
		}

		resp, err := e.NextInvocation(ctx)
		if err != nil {
			if isFatal(err) {
				return err
			}
			log.Printf("[Runtime] Next invocation error: %v", err)
			continue
		}

		requestID := e.context.RequestID
		if requestID == "" {
			// Protocol violation. Without a request id there is no way
			// to report a per-invocation result, so the handler must
			// not run this cycle.
			log.Printf("[Runtime] Next invocation response missing request id")
			if _, err := e.InitializationError(ctx, MissingRequestIDErrorType, nil); err != nil {
				if isFatal(err) {
					return err
				}
				log.Printf("[Runtime] Report missing request id: %v", err)
			}
			continue
		}

		output, invokeErr := e.invoke(string(resp.Body()))
		if invokeErr == nil {
			_, err := e.InvocationResponse(ctx, requestID, output)
			if err == nil {
				continue
			}
			var serializationErr *SerializationError
			if errors.As(err, &serializationErr) {
				invokeErr = serializationErr
			} else {
				if isFatal(err) {
					return err
				}
				log.Printf("[Runtime] Invocation response error: %v", err)
				continue
			}
		}

		errText := invokeErr.Error()
		if _, err := e.InvocationError(ctx, requestID, errText, []byte(errText)); err != nil {
			if isFatal(err) {
				return err
			}
			log.Printf("[Runtime] Invocation error report failed: %v", err)
		}
	}
}

// runInitializer runs the handler's one-time setup. A failure is
// reported best-effort to the init error endpoint and is always fatal.
func (e *Engine) runInitializer(ctx context.Context) error {
	initErr := e.initialize()
	if initErr == nil {
		return nil
	}

	if _, err := e.InitializationError(ctx, InitErrorType, []byte(initErr.Error())); err != nil {
		return fmt.Errorf("runtime: failed to report initialization error: %v (init error: %w)", err, initErr)
	}
	return fmt.Errorf("runtime: initialization error: %w", initErr)
}

func (e *Engine) initialize() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.handler.Initialize()
}

// invoke runs the handler for one event with panic recovery, so a
// panicking handler is reported like any other invocation error.
func (e *Engine) invoke(event string) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if e.DebugMode {
		log.Printf("[Runtime] Event %s: %s", e.context.RequestID, event)
	}
	return e.handler.OnEvent(event, e.context)
}

// NextInvocation polls for the next event. On success the invocation
// context is updated from the response headers and the trace id is
// mirrored into the environment, before the caller sees the response.
func (e *Engine) NextInvocation(ctx context.Context) (*transport.Response, error) {
	resp, err := e.Transport.Get(ctx, e.nextURL())
	if err != nil {
		return nil, fmt.Errorf("runtime: next invocation: %w", err)
	}
	if err := e.checkResponse(resp); err != nil {
		return nil, err
	}
	e.context.Update(resp)
	return resp, nil
}

// InvocationResponse serializes the handler output and reports it for
// the given request id.
func (e *Engine) InvocationResponse(ctx context.Context, requestID string, output any) (*transport.Response, error) {
	body, err := e.Serializer.Marshal(output)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}

	resp, err := e.Transport.Post(ctx, e.responseURL(requestID), body, nil)
	if err != nil {
		return nil, fmt.Errorf("runtime: invocation response: %w", err)
	}
	if err := e.checkResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// InitializationError reports a failure to the init error endpoint.
// A non-empty errorType goes out in the function-error-type header.
func (e *Engine) InitializationError(ctx context.Context, errorType string, diagnostic []byte) (*transport.Response, error) {
	resp, err := e.Transport.Post(ctx, e.initErrorURL(), diagnostic, errorTypeHeaders(errorType))
	if err != nil {
		return nil, fmt.Errorf("runtime: initialization error: %w", err)
	}
	if err := e.checkResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// InvocationError reports a handler failure for the given request id.
// A non-empty errorType goes out in the function-error-type header.
func (e *Engine) InvocationError(ctx context.Context, requestID string, errorType string, diagnostic []byte) (*transport.Response, error) {
	resp, err := e.Transport.Post(ctx, e.errorURL(requestID), diagnostic, errorTypeHeaders(errorType))
	if err != nil {
		return nil, fmt.Errorf("runtime: invocation error: %w", err)
	}
	if err := e.checkResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// checkResponse applies the protocol's classification to a runtime API
// response: below 400 passes, 4xx is recoverable, 5xx means the
// execution environment itself is compromised.
func (e *Engine) checkResponse(resp *transport.Response) error {
	switch {
	case resp.IsClientError():
		return &ClientError{
			StatusCode:    resp.StatusCode(),
			ErrorResponse: string(resp.Body()),
		}
	case resp.IsServerError():
		return &ContainerError{StatusCode: resp.StatusCode()}
	default:
		return nil
	}
}

func (e *Engine) nextURL() string {
	return fmt.Sprintf("/%s/runtime/invocation/next", e.Version)
}

func (e *Engine) responseURL(requestID string) string {
	return fmt.Sprintf("/%s/runtime/invocation/%s/response", e.Version, requestID)
}

func (e *Engine) errorURL(requestID string) string {
	return fmt.Sprintf("/%s/runtime/invocation/%s/error", e.Version, requestID)
}

func (e *Engine) initErrorURL() string {
	return fmt.Sprintf("/%s/runtime/init/error", e.Version)
}

func errorTypeHeaders(errorType string) map[string]string {
	if errorType == "" {
		return nil
	}
	return map[string]string{transport.HeaderFunctionErrorType: errorType}
}

func isFatal(err error) bool {
	var containerErr *ContainerError
	return errors.As(err, &containerErr)
}
