package httpclient

import (
	"fmt"
	"strings"
)

const maxSnippetBytes = 512

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
	// Summary is the title/heading of an HTML error page, if any.
	Summary  string
	Response Response
}

func (e *StatusError) Error() string {
	detail := e.Summary
	if detail == "" {
		detail = readBodySnippet(e.Body)
	}
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	if detail == "" {
		return fmt.Sprintf("%s %s: status %s", e.Method, e.URL, status)
	}
	return fmt.Sprintf("%s %s: status %s: %s", e.Method, e.URL, status, detail)
}

// NetworkError reports a request that produced no response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError reports a response body that could not be decoded.
type DecodeError struct {
	URL  string
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v (body: %s)", e.URL, e.Err, readBodySnippet(e.Body))
}

func (e *DecodeError) Unwrap() error { return e.Err }

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxSnippetBytes {
		body = body[:maxSnippetBytes]
	}
	return strings.TrimSpace(string(body))
}
