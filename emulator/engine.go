package emulator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/aura-studio/bootstrap/runtime"
)

// invocation is one queued event and the channel its result arrives on.
type invocation struct {
	id        string
	payload   []byte
	deadline  time.Time
	done      chan result
	abandoned atomic.Bool
}

type result struct {
	payload   []byte
	errorType string
}

// Engine is a local Lambda control plane. It serves the runtime API a
// bootstrap polls on one side and the invoke API clients call on the
// other, pairing events with reported results.
type Engine struct {
	*Options
	*gin.Engine

	queue chan *invocation

	mu      sync.Mutex
	pending map[string]*invocation
	initErr []byte
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Options: NewOptions(opts...),
		queue:   make(chan *invocation),
		pending: map[string]*invocation{},
	}

	if !e.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	e.Engine = gin.New()
	e.Use(gin.Recovery())
	if e.DebugMode {
		e.Use(gin.Logger())
	}

	e.InstallHandlers()

	return e
}

// Invoke queues one event, waits for the runtime to report a result and
// returns the response payload. The error is a *FunctionError when the
// runtime reported an error document or the invocation timed out.
func (e *Engine) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	if doc, ok := e.initErrorDoc(); ok {
		return nil, &FunctionError{ErrorType: FunctionErrorUnhandled, Payload: doc}
	}

	inv := &invocation{
		id:       uuid.NewString(),
		payload:  payload,
		deadline: time.Now().Add(e.FunctionTimeout),
		done:     make(chan result, 1),
	}

	if e.DebugMode {
		log.Printf("[Emulator] Invocation %s queued: %s", inv.id, inv.payload)
	}

	timer := time.NewTimer(time.Until(inv.deadline))
	defer timer.Stop()

	select {
	case e.queue <- inv:
	case <-timer.C:
		return nil, &FunctionError{ErrorType: FunctionErrorUnhandled, Payload: e.timeoutDocument(inv.id)}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-inv.done:
		if res.errorType != "" {
			return nil, &FunctionError{ErrorType: res.errorType, Payload: res.payload}
		}
		return res.payload, nil
	case <-timer.C:
		e.abandon(inv)
		return nil, &FunctionError{ErrorType: FunctionErrorUnhandled, Payload: e.timeoutDocument(inv.id)}
	case <-ctx.Done():
		e.abandon(inv)
		return nil, ctx.Err()
	}
}

// Environ returns the execution environment variables a runtime process
// pointed at this emulator expects, in the form accepted by exec.Cmd.
// addr is the host:port the emulator listens on.
func (e *Engine) Environ(addr string) []string {
	return []string{
		fmt.Sprintf("%s=%s", runtime.EnvRuntimeAPI, addr),
		fmt.Sprintf("%s=%s", runtime.EnvFunctionName, e.FunctionName),
		fmt.Sprintf("%s=%s", runtime.EnvFunctionVersion, e.FunctionVersion),
		fmt.Sprintf("%s=%d", runtime.EnvFunctionMemorySize, e.MemorySize),
		fmt.Sprintf("%s=%s", runtime.EnvRegion, e.Region),
		fmt.Sprintf("%s=%s", runtime.EnvInitializationType, runtime.InitOnDemand),
		fmt.Sprintf("%s=/var/log/%s", runtime.EnvLogGroupName, e.FunctionName),
		fmt.Sprintf("%s=%s", runtime.EnvLogStreamName, e.FunctionVersion),
	}
}

// Account id matches the one the AWS runtime interface emulator uses.
func (e *Engine) functionARN() string {
	return fmt.Sprintf("arn:aws:lambda:%s:012345678912:function:%s", e.Region, e.FunctionName)
}

func (e *Engine) timeoutDocument(id string) []byte {
	msg := fmt.Sprintf("%s %s Task timed out after %.2f seconds",
		time.Now().UTC().Format(time.RFC3339), id, e.FunctionTimeout.Seconds())
	doc, _ := sjson.Set("", "errorMessage", msg)
	doc, _ = sjson.Set(doc, "errorType", "Sandbox.Timedout")
	return []byte(doc)
}

func (e *Engine) abandon(inv *invocation) {
	inv.abandoned.Store(true)
	e.mu.Lock()
	delete(e.pending, inv.id)
	e.mu.Unlock()
}

func (e *Engine) takePending(id string) (*invocation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inv, ok := e.pending[id]
	if ok {
		delete(e.pending, id)
	}
	return inv, ok
}

func (e *Engine) initErrorDoc() ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initErr == nil {
		return nil, false
	}
	return e.initErr, true
}

// setInitError records a failed initialization and fails every pending
// invocation with the reported document.
func (e *Engine) setInitError(doc []byte) {
	e.mu.Lock()
	e.initErr = doc
	pending := e.pending
	e.pending = map[string]*invocation{}
	e.mu.Unlock()

	for _, inv := range pending {
		inv.done <- result{payload: doc, errorType: FunctionErrorUnhandled}
	}
}

// errorDocument normalizes a reported error body into the standard
// {"errorMessage":...,"errorType":...} shape. Bodies already carrying an
// errorMessage field pass through untouched.
func errorDocument(body []byte, errorType string) []byte {
	if gjson.ValidBytes(body) && gjson.GetBytes(body, "errorMessage").Exists() {
		return body
	}
	doc, _ := sjson.Set("", "errorMessage", string(body))
	doc, _ = sjson.Set(doc, "errorType", errorType)
	return []byte(doc)
}
