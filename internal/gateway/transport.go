package gateway

import (
	"context"
	"net/http"
)

// Request is a single exchange handed to a Transport.
type Request struct {
	// Operation is the Endpoint name, used for metrics and circuit breaking.
	Operation string
	Method    string
	URL       string
	Header    http.Header
	Body      []byte
}

// Response is the raw answer received from the gateway.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport executes gateway exchanges. Timeouts and retries belong to the
// transport. For a non-2xx answer it returns the Response together with a
// *errors.TransportError carrying the status and body; when nothing was
// received it returns a *errors.TransportError with a zero status.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
