package publishers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Albertoimpl/animal-rescue/internal/logger"
	"github.com/Albertoimpl/animal-rescue/pkg/httpclient"
)

// SignatureHeader carries the hex HMAC-SHA256 of the body when a secret is set.
const SignatureHeader = "X-Signature-256"

// httpPublisher delivers events to a webhook.
type httpPublisher struct {
	id     string
	cfg    HTTPPublisherConfig
	client *resty.Client
	log    logger.Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	client := httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second).
		SetHeaders(cfg.HTTP.Headers).
		SetHeader("Content-Type", "application/json")

	return &httpPublisher{id: cfg.ID, cfg: *cfg.HTTP, client: client, log: log}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", evt.ID(), err)
	}

	req := h.client.R().
		SetContext(ctx).
		SetHeader("X-Event-Kind", evt.Kind).
		SetHeader("X-Event-Id", evt.ID()).
		SetBody(body)
	if h.cfg.Secret != "" {
		req.SetHeader(SignatureHeader, "sha256="+Sign(h.cfg.Secret, body))
	}

	resp, err := req.Execute(h.cfg.Method, h.cfg.URL)
	if err != nil {
		return &httpclient.NetworkError{Method: h.cfg.Method, URL: h.cfg.URL, Err: err}
	}
	if resp.IsError() {
		h.log.WarnObj("webhook rejected event", "publisher_error", map[string]any{
			"publisher_id": h.id,
			"event_id":     evt.ID(),
			"status":       resp.StatusCode(),
		})
		return &httpclient.StatusError{
			Method:     h.cfg.Method,
			URL:        h.cfg.URL,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       resp.Body(),
		}
	}
	h.log.DebugObj("webhook accepted event", "publisher_delivery", map[string]any{
		"publisher_id": h.id,
		"event_id":     evt.ID(),
		"status":       resp.StatusCode(),
	})
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
