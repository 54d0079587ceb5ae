package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Albertoimpl/animal-rescue/internal/domain"
	"github.com/Albertoimpl/animal-rescue/internal/logger"
	"github.com/Albertoimpl/animal-rescue/pkg/publishers"
	"github.com/Albertoimpl/animal-rescue/pkg/shelters"
)

// Service polls shelters and publishes newly listed animals and adoption requests.
type Service struct {
	sources   SourceRegistry
	publisher EventPublisher
	deduper   Deduper
	log       logger.Logger
}

// NewService wires a watcher with its source registry, publisher and deduper.
func NewService(sources SourceRegistry, pub EventPublisher, log logger.Logger, deduper Deduper) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		sources:   sources,
		publisher: pub,
		deduper:   deduper,
		log:       log,
	}
}

// Run executes one watch pass over all shelters.
func (s *Service) Run(ctx context.Context, list []shelters.Shelter) error {
	if s == nil || s.sources == nil {
		return fmt.Errorf("watch service is not initialized")
	}
	if len(list) == 0 {
		return fmt.Errorf("no shelters configured for watching")
	}

	errs := s.runAll(ctx, list)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, list []shelters.Shelter) []error {
	errs := make([]error, 0, len(list))

	for i, shelter := range list {
		if ctx.Err() != nil {
			return errs
		}

		if err := s.runShelter(ctx, shelter); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("shelter watch failed", "shelter_error", map[string]any{
				"shelter_id": shelter.ID,
				"error":      err.Error(),
			})
		}

		if i < len(list)-1 {
			timer := time.NewTimer(shelter.RequestDelay())
			select {
			case <-ctx.Done():
				timer.Stop()
				return errs
			case <-timer.C:
			}
		}
	}

	return errs
}

func (s *Service) runShelter(ctx context.Context, shelter shelters.Shelter) error {
	source, err := s.sources.SourceFor(shelter)
	if err != nil {
		return fmt.Errorf("resolve source for shelter %s: %w", shelter.ID, err)
	}

	animals, err := source.GetAnimals(ctx)
	if err != nil {
		return fmt.Errorf("list animals of shelter %s: %w", shelter.ID, err)
	}

	events := s.filterNewEvents(shelter, buildEvents(shelter, animals))

	var errs []error
	published := 0
	for _, evt := range events {
		if ctx.Err() != nil {
			break
		}
		if err := s.publish(ctx, evt); err != nil {
			errs = append(errs, err)
			continue
		}
		published++
	}

	s.log.InfoObj("shelter watch completed", "shelter_result", map[string]any{
		"shelter_id":       shelter.ID,
		"animals_listed":   len(animals),
		"new_events":       len(events),
		"events_published": published,
	})
	return errors.Join(errs...)
}

// publish sends evt and marks it seen once every subscribed publisher accepted it.
// On a partial failure the event stays unmarked and the next pass delivers it
// again to all of them, including those that already accepted it.
func (s *Service) publish(ctx context.Context, evt publishers.Event) error {
	if s.publisher != nil {
		if _, err := s.publisher.Publish(ctx, evt); err != nil {
			return fmt.Errorf("publish event %s: %w", evt.ID(), err)
		}
	}
	if s.deduper != nil {
		if err := s.deduper.MarkEvent(evt.ID()); err != nil {
			return fmt.Errorf("mark event %s: %w", evt.ID(), err)
		}
	}
	return nil
}

// filterNewEvents drops events already published. Lookup failures keep the event.
func (s *Service) filterNewEvents(shelter shelters.Shelter, events []publishers.Event) []publishers.Event {
	if s.deduper == nil {
		return events
	}

	out := make([]publishers.Event, 0, len(events))
	for _, evt := range events {
		seen, err := s.deduper.SeenEvent(evt.ID())
		if err != nil {
			s.log.WarnObj("event dedupe lookup failed", "dedupe_error", map[string]any{
				"shelter_id": shelter.ID,
				"event_id":   evt.ID(),
				"error":      err.Error(),
			})
			out = append(out, evt)
			continue
		}
		if !seen {
			out = append(out, evt)
		}
	}
	return out
}

// buildEvents derives one event per animal and one per adoption request, in server order.
// Records without a readable id cannot be deduplicated and are skipped.
func buildEvents(shelter shelters.Shelter, animals []domain.Animal) []publishers.Event {
	var events []publishers.Event
	for _, animal := range animals {
		if animal.ID == "" {
			continue
		}
		events = append(events, publishers.NewAnimalListedEvent(shelter.ID, shelter.Name, animal))
		for _, req := range animal.AdoptionRequests {
			if req.ID == "" {
				continue
			}
			events = append(events, publishers.NewAdoptionRequestedEvent(shelter.ID, shelter.Name, animal, req))
		}
	}
	return events
}
