package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Albertoimpl/animal-rescue/internal/config"
	"github.com/Albertoimpl/animal-rescue/internal/logger"
	"github.com/Albertoimpl/animal-rescue/internal/storage"
	"github.com/Albertoimpl/animal-rescue/pkg/animalrescue"
	"github.com/Albertoimpl/animal-rescue/pkg/httpclient"
)

// ClientOptions selects the backend a client talks to.
type ClientOptions struct {
	BaseURL string
	// Session is the session cookie value; empty sends none.
	Session string
	Headers map[string]string
	// Cookies persists the jar when cookie_store is "bbolt".
	Cookies httpclient.CookieStore
}

// NewShelterClient builds an animal rescue client with the transport described by cfg.
func NewShelterClient(cfg *config.Config, opts ClientOptions) (*animalrescue.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	transport, err := httpclient.NewRestyClient(transportConfig(cfg, opts))
	if err != nil {
		return nil, fmt.Errorf("build transport: %w", err)
	}

	var client httpclient.Client = transport
	if len(opts.Headers) > 0 {
		client = httpclient.WithHeaders(transport, opts.Headers)
	}
	return animalrescue.New(opts.BaseURL, client), nil
}

func transportConfig(cfg *config.Config, opts ClientOptions) httpclient.Config {
	tc := httpclient.Config{
		Timeout:         cfg.HTTPTimeout,
		WithCredentials: cfg.WithCredentials,
		Debug:           cfg.HTTPDebug,
		Tracing:         cfg.HTTPTracing,
	}
	if opts.Session != "" {
		tc.SessionCookie = &http.Cookie{Name: cfg.SessionCookieName, Value: opts.Session}
	}
	if opts.Cookies != nil && strings.EqualFold(strings.TrimSpace(cfg.CookieStore), storage.TypeBBolt) {
		tc.CookieStore = opts.Cookies
	}
	// a nil *SugaredLogger must not end up inside the interface
	if logger.S != nil {
		tc.Logger = logger.S
	}
	return tc
}
