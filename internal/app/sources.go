package app

import (
	"sync"

	"github.com/Albertoimpl/animal-rescue/internal/config"
	"github.com/Albertoimpl/animal-rescue/internal/watch"
	"github.com/Albertoimpl/animal-rescue/pkg/httpclient"
	"github.com/Albertoimpl/animal-rescue/pkg/shelters"
)

// shelterSources hands out one client per shelter and reuses it across passes
// so cookies set by a backend stick.
type shelterSources struct {
	cfg     *config.Config
	cookies httpclient.CookieStore

	mu      sync.Mutex
	clients map[string]watch.AnimalSource
}

func newShelterSources(cfg *config.Config, cookies httpclient.CookieStore) *shelterSources {
	return &shelterSources{
		cfg:     cfg,
		cookies: cookies,
		clients: make(map[string]watch.AnimalSource),
	}
}

func (s *shelterSources) SourceFor(shelter shelters.Shelter) (watch.AnimalSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[shelter.ID]; ok {
		return c, nil
	}

	c, err := NewShelterClient(s.cfg, ClientOptions{
		BaseURL: shelter.BaseURL,
		Session: shelters.SessionCookie(shelter, s.cfg.SessionCookie),
		Headers: shelters.Headers(shelter),
		Cookies: s.cookies,
	})
	if err != nil {
		return nil, err
	}
	s.clients[shelter.ID] = c
	return c, nil
}
