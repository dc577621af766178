package transport

import "net/http"

// Reserved headers carried on runtime API responses and requests.
const (
	HeaderAWSRequestID       = "Lambda-Runtime-Aws-Request-Id"
	HeaderDeadlineMS         = "Lambda-Runtime-Deadline-Ms"
	HeaderInvokedFunctionARN = "Lambda-Runtime-Invoked-Function-Arn"
	HeaderTraceID            = "Lambda-Runtime-Trace-Id"
	HeaderClientContext      = "Lambda-Runtime-Client-Context"
	HeaderCognitoIdentity    = "Lambda-Runtime-Cognito-Identity"
	HeaderFunctionErrorType  = "Lambda-Runtime-Function-Error-Type"
)

// Response is a fully buffered runtime API response.
type Response struct {
	statusCode int
	headers    http.Header
	body       []byte
	consumed   bool
}

func NewResponse(statusCode int, headers http.Header, body []byte) *Response {
	if headers == nil {
		headers = http.Header{}
	}
	return &Response{
		statusCode: statusCode,
		headers:    headers,
		body:       body,
	}
}

func (r *Response) StatusCode() int { return r.statusCode }

// Body hands the buffered payload to the first caller. Later calls
// return nil.
func (r *Response) Body() []byte {
	if r.consumed {
		return nil
	}
	r.consumed = true
	return r.body
}

// Header returns the first value for key, or "" when absent.
func (r *Response) Header(key string) string {
	return r.headers.Get(key)
}

// HasHeader reports whether key is present, even with an empty value.
func (r *Response) HasHeader(key string) bool {
	return len(r.headers.Values(key)) > 0
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// IsClientError reports a 4xx status.
func (r *Response) IsClientError() bool {
	return r.statusCode >= 400 && r.statusCode < 500
}

// IsServerError reports a 5xx status.
func (r *Response) IsServerError() bool {
	return r.statusCode >= 500 && r.statusCode < 600
}
