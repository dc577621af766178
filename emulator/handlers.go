package emulator

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/aura-studio/bootstrap/transport"
)

func (e *Engine) InstallHandlers() {
	e.GET("/:version/runtime/invocation/next", e.Next)
	e.POST("/:version/runtime/invocation/:id/response", e.InvocationResponse)
	e.POST("/:version/runtime/invocation/:id/error", e.InvocationError)
	e.POST("/:version/runtime/init/error", e.InitError)
	e.POST("/:version/functions/:function/invocations", e.Invocations)
}

// Next blocks until an event is queued and hands it to the runtime with
// the reserved invocation headers set. After a reported init error every
// poll is answered with a container error so the runtime stops.
func (e *Engine) Next(c *gin.Context) {
	if doc, ok := e.initErrorDoc(); ok {
		c.Data(http.StatusInternalServerError, "application/json", doc)
		return
	}

	for {
		select {
		case inv := <-e.queue:
			if inv.abandoned.Load() {
				continue
			}

			e.mu.Lock()
			e.pending[inv.id] = inv
			e.mu.Unlock()

			c.Header(transport.HeaderAWSRequestID, inv.id)
			c.Header(transport.HeaderDeadlineMS, strconv.FormatInt(inv.deadline.UnixMilli(), 10))
			c.Header(transport.HeaderInvokedFunctionARN, e.functionARN())
			if e.TraceID != "" {
				c.Header(transport.HeaderTraceID, e.TraceID)
			}
			if e.ClientContext != "" {
				c.Header(transport.HeaderClientContext, e.ClientContext)
			}
			if e.CognitoIdentity != "" {
				c.Header(transport.HeaderCognitoIdentity, e.CognitoIdentity)
			}
			c.Data(http.StatusOK, "application/json", inv.payload)
			return
		case <-c.Request.Context().Done():
			c.Status(http.StatusRequestTimeout)
			return
		}
	}
}

// InvocationResponse accepts the runtime's success report and completes
// the waiting invocation.
func (e *Engine) InvocationResponse(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errorMessage": err.Error(), "errorType": "BodyReadError"})
		return
	}

	id := c.Param("id")
	inv, ok := e.takePending(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"errorMessage": "invocation not found", "errorType": "InvalidRequestID"})
		return
	}

	if e.DebugMode {
		log.Printf("[Emulator] Invocation %s response: %s", id, body)
	}

	inv.done <- result{payload: body}
	c.JSON(http.StatusAccepted, gin.H{"status": "OK"})
}

// InvocationError accepts the runtime's error report, normalizes it into
// an error document and fails the waiting invocation.
func (e *Engine) InvocationError(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errorMessage": err.Error(), "errorType": "BodyReadError"})
		return
	}

	id := c.Param("id")
	inv, ok := e.takePending(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"errorMessage": "invocation not found", "errorType": "InvalidRequestID"})
		return
	}

	doc := errorDocument(body, c.GetHeader(transport.HeaderFunctionErrorType))
	log.Printf("[Emulator] Invocation %s error: %s", id, doc)

	inv.done <- result{payload: doc, errorType: FunctionErrorUnhandled}
	c.JSON(http.StatusAccepted, gin.H{"status": "OK"})
}

// InitError records a failed runtime initialization.
func (e *Engine) InitError(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errorMessage": err.Error(), "errorType": "BodyReadError"})
		return
	}

	doc := errorDocument(body, c.GetHeader(transport.HeaderFunctionErrorType))
	log.Printf("[Emulator] Init error: %s", doc)

	e.setInitError(doc)
	c.JSON(http.StatusAccepted, gin.H{"status": "OK"})
}

// Invocations implements the invoke side of the Lambda API that the SDK
// and the CLI talk to.
func (e *Engine) Invocations(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"errorMessage": err.Error(), "errorType": "BodyReadError"})
		return
	}

	if len(payload) > 0 && !gjson.ValidBytes(payload) {
		c.JSON(http.StatusBadRequest, gin.H{"errorMessage": "invalid request payload", "errorType": "InvalidRequestContent"})
		return
	}

	out, err := e.Invoke(c.Request.Context(), payload)
	if err != nil {
		var fe *FunctionError
		if errors.As(err, &fe) {
			c.Header(HeaderFunctionError, fe.ErrorType)
			c.Data(http.StatusOK, "application/json", fe.Payload)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"errorMessage": err.Error(), "errorType": "Service.InternalError"})
		return
	}

	c.Data(http.StatusOK, "application/json", out)
}
