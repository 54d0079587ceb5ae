// Package shelters loads the animal rescue backends a watcher polls.
package shelters

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultRequestDelay = 500 * time.Millisecond

// Shelter is one animal rescue backend.
type Shelter struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	BaseURL string `json:"base_url" yaml:"base_url"`
	// Enabled defaults to true; disabled shelters stay addressable by id.
	Enabled        *bool          `json:"enabled" yaml:"enabled"`
	RequestDelayMs int            `json:"request_delay_ms" yaml:"request_delay_ms"`
	Config         map[string]any `json:"config" yaml:"config"`
}

// IsEnabled reports whether the shelter takes part in watch passes.
func (s Shelter) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// RequestDelay is the pause after this shelter before the next one in a pass.
func (s Shelter) RequestDelay() time.Duration {
	if s.RequestDelayMs <= 0 {
		return defaultRequestDelay
	}
	return time.Duration(s.RequestDelayMs) * time.Millisecond
}

// Registry is the immutable set of shelters read from a file.
type Registry struct {
	shelters []Shelter
	byID     map[string]int
}

// LoadRegistry reads a YAML or JSON shelters file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("shelters file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shelters file: %w", err)
	}

	var file struct {
		Shelters []Shelter `json:"shelters" yaml:"shelters"`
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &file)
	} else {
		err = yaml.Unmarshal(raw, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("decode shelters file %s: %w", filepath.Base(path), err)
	}
	if len(file.Shelters) == 0 {
		return nil, errors.New("shelters file declares no shelters")
	}

	reg := &Registry{byID: make(map[string]int, len(file.Shelters))}
	for i, s := range file.Shelters {
		s, err := clean(s)
		if err != nil {
			return nil, fmt.Errorf("shelters[%d]: %w", i, err)
		}
		if _, dup := reg.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate shelter id %q", s.ID)
		}
		reg.byID[s.ID] = len(reg.shelters)
		reg.shelters = append(reg.shelters, s)
	}
	return reg, nil
}

// clean trims s, fills defaults and rejects entries a client cannot reach.
func clean(s Shelter) (Shelter, error) {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")

	if s.ID == "" {
		return s, errors.New("id is required")
	}
	if s.BaseURL == "" {
		return s, fmt.Errorf("shelter %q: base_url is required", s.ID)
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return s, fmt.Errorf("shelter %q: base_url %q is not an absolute http(s) URL", s.ID, s.BaseURL)
	}

	if s.Name == "" {
		s.Name = s.ID
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	return s, nil
}

// All returns a copy of every shelter in file order.
func (r *Registry) All() []Shelter {
	if r == nil {
		return nil
	}
	return append([]Shelter(nil), r.shelters...)
}

// Enabled returns the shelters that take part in watch passes.
func (r *Registry) Enabled() []Shelter {
	var out []Shelter
	for _, s := range r.All() {
		if s.IsEnabled() {
			out = append(out, s)
		}
	}
	return out
}

// ByID returns the shelter with the given id.
func (r *Registry) ByID(id string) (Shelter, bool) {
	if r == nil {
		return Shelter{}, false
	}
	i, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return Shelter{}, false
	}
	return r.shelters[i], true
}
