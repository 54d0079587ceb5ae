package storage

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	bolt "go.etcd.io/bbolt"
)

// storedCookie is the persisted form of an http.Cookie.
type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

// LoadCookies returns the cookies persisted for host.
func (s *boltStore) LoadCookies(host string) ([]*http.Cookie, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	var stored []storedCookie
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(cookieBucket)
		if bucket == nil {
			return fmt.Errorf("cookie bucket missing")
		}
		raw := bucket.Get([]byte(host))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &stored)
	})
	if err != nil {
		return nil, fmt.Errorf("load cookies for %s: %w", host, err)
	}

	out := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	return out, nil
}

// SaveCookies replaces the cookies persisted for host.
func (s *boltStore) SaveCookies(host string, cookies []*http.Cookie) error {
	if s == nil || s.db == nil {
		return nil
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = time.Now().Add(time.Duration(c.MaxAge) * time.Second)
		}
		stored = append(stored, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(cookieBucket)
		if bucket == nil {
			return fmt.Errorf("cookie bucket missing")
		}
		if len(stored) == 0 {
			return bucket.Delete([]byte(host))
		}
		return bucket.Put([]byte(host), raw)
	})
}
