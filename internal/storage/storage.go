package storage

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Store remembers which events the watcher already published and keeps the
// client's cookies between runs.
type Store interface {
	SeenEvent(id string) (bool, error)
	MarkEvent(id string) error
	LoadCookies(host string) ([]*http.Cookie, error)
	SaveCookies(host string, cookies []*http.Cookie) error
	Close() error
}

// Options tunes event retention. Zero values pick the defaults.
type Options struct {
	EventTTL        time.Duration
	CleanupInterval time.Duration
}

// Supported store types.
const (
	TypeBBolt = "bbolt"
	TypeNone  = "none"
)

// NewStore opens the store named by typ. "none" (or empty) remembers nothing.
func NewStore(typ, path string, opts Options) (Store, error) {
	if opts.EventTTL <= 0 {
		opts.EventTTL = 30 * 24 * time.Hour
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 12 * time.Hour
	}

	switch strings.ToLower(strings.TrimSpace(typ)) {
	case TypeNone, "", "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt store needs a path")
		}
		s, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

type noopStore struct{}

func (noopStore) SeenEvent(string) (bool, error)             { return false, nil }
func (noopStore) MarkEvent(string) error                     { return nil }
func (noopStore) LoadCookies(string) ([]*http.Cookie, error) { return nil, nil }
func (noopStore) SaveCookies(string, []*http.Cookie) error   { return nil }
func (noopStore) Close() error                               { return nil }
