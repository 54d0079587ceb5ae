package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/publicsuffix"
)

// Config is the transport configuration handed to NewRestyClient.
type Config struct {
	// Timeout bounds a single request; zero means no timeout.
	Timeout time.Duration
	// WithCredentials attaches cookies to every request through a cookie jar.
	// SessionCookie seeds the jar for each host unless the jar already has a
	// cookie of that name; the backend may replace it afterwards.
	WithCredentials bool
	SessionCookie   *http.Cookie
	// CookieStore persists the jar; nil keeps cookies in memory only.
	CookieStore CookieStore
	Debug       bool
	// Tracing wraps the transport with OpenTelemetry instrumentation.
	Tracing bool
	Logger  resty.Logger
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient from cfg.
func NewRestyClient(cfg Config) (*RestyClient, error) {
	c := newRestyBaseClient(cfg.Timeout)
	if cfg.Logger != nil {
		c.SetLogger(cfg.Logger)
	}
	c.SetDebug(cfg.Debug)
	if cfg.Tracing {
		c.SetTransport(otelhttp.NewTransport(http.DefaultTransport))
	}

	if !cfg.WithCredentials {
		c.SetCookieJar(nil)
		return &RestyClient{client: c}, nil
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	var withCookies http.CookieJar = jar
	if cfg.CookieStore != nil {
		withCookies = newPersistentJar(jar, cfg.CookieStore, cfg.Logger)
	}
	if cfg.SessionCookie != nil && cfg.SessionCookie.Name != "" && cfg.SessionCookie.Value != "" {
		withCookies = newSessionJar(withCookies, cfg.SessionCookie)
	}
	c.SetCookieJar(withCookies)

	return &RestyClient{client: c}, nil
}

// NewRestyHTTPClient returns a bare resty.Client with the given timeout, without
// credentials or status classification. The webhook publisher builds on it.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Do performs the request and classifies the outcome.
func (r *RestyClient) Do(ctx context.Context, in Request) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(in.Headers) > 0 {
		req.SetHeaders(in.Headers)
	}
	if in.Body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(in.Body)
	}

	start := time.Now()
	resp, err := req.Execute(in.Method, in.URL)
	if err != nil {
		observeRequest(in.Method, 0, time.Since(start))
		return nil, &NetworkError{Method: in.Method, URL: in.URL, Err: err}
	}
	observeRequest(in.Method, resp.StatusCode(), time.Since(start))

	out := &restyResponseAdapter{resp: resp, url: in.URL}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &StatusError{
			Method:     in.Method,
			URL:        in.URL,
			StatusCode: code,
			Status:     resp.Status(),
			Body:       resp.Body(),
			Summary:    summarizeHTML(resp.Header().Get("Content-Type"), resp.Body()),
			Response:   out,
		}
	}
	return out, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
	url  string
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Status() string      { return r.resp.Status() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }

func (r *restyResponseAdapter) JSON(v any) error {
	return DecodeJSON(r.url, r.resp.Body(), v)
}

// DecodeJSON unmarshals body into v, reporting failures as *DecodeError.
func DecodeJSON(url string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return &DecodeError{URL: url, Body: body, Err: err}
	}
	return nil
}
