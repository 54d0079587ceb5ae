package httpclient

import (
	"context"
	"net/http"
)

// Request describes a single outbound call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	// Body is JSON encoded when non-nil.
	Body any
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
	Header() http.Header
	// JSON decodes the body into v, failing with *DecodeError.
	JSON(v any) error
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Non-2xx answers are returned as *StatusError and requests that never got an
// answer as *NetworkError.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// CookieStore persists cookies per host so a session survives process restarts.
type CookieStore interface {
	LoadCookies(host string) ([]*http.Cookie, error)
	SaveCookies(host string, cookies []*http.Cookie) error
}
