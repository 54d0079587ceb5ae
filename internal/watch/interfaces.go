package watch

import (
	"context"

	"github.com/Albertoimpl/animal-rescue/internal/domain"
	"github.com/Albertoimpl/animal-rescue/pkg/publishers"
	"github.com/Albertoimpl/animal-rescue/pkg/shelters"
)

// AnimalSource lists the animals of one shelter. *animalrescue.Client satisfies it.
type AnimalSource interface {
	GetAnimals(ctx context.Context) ([]domain.Animal, error)
}

// SourceRegistry resolves the AnimalSource for a shelter.
type SourceRegistry interface {
	SourceFor(s shelters.Shelter) (AnimalSource, error)
}

// EventPublisher publishes events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers which events were already published.
type Deduper interface {
	SeenEvent(id string) (bool, error)
	MarkEvent(id string) error
}
