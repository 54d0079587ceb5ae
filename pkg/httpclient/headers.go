package httpclient

import "context"

// WithHeaders returns a Client that adds headers to every request sent through next.
// Headers already present on a request take precedence.
func WithHeaders(next Client, headers map[string]string) Client {
	if len(headers) == 0 {
		return next
	}
	return &headerClient{next: next, headers: headers}
}

type headerClient struct {
	next    Client
	headers map[string]string
}

func (h *headerClient) Do(ctx context.Context, req Request) (Response, error) {
	merged := make(map[string]string, len(h.headers)+len(req.Headers))
	for k, v := range h.headers {
		merged[k] = v
	}
	for k, v := range req.Headers {
		merged[k] = v
	}
	req.Headers = merged
	return h.next.Do(ctx, req)
}
