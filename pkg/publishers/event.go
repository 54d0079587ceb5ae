package publishers

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/Albertoimpl/animal-rescue/internal/domain"
)

// Event kinds emitted by the watcher.
const (
	KindAnimalListed      = "animal_listed"
	KindAdoptionRequested = "adoption_requested"
)

// Event represents the payload published downstream.
type Event struct {
	Kind            string                  `json:"kind"`
	ShelterID       string                  `json:"shelter_id"`
	ShelterName     string                  `json:"shelter_name"`
	Animal          domain.Animal           `json:"animal"`
	AdoptionRequest *domain.AdoptionRequest `json:"adoption_request,omitempty"`
	ObservedAt      time.Time               `json:"observed_at"`
}

// NewAnimalListedEvent reports an animal seen for the first time.
func NewAnimalListedEvent(shelterID, shelterName string, animal domain.Animal) Event {
	return Event{
		Kind:        KindAnimalListed,
		ShelterID:   shelterID,
		ShelterName: shelterName,
		Animal:      animal,
		ObservedAt:  time.Now().UTC(),
	}
}

// NewAdoptionRequestedEvent reports an adoption request seen for the first time.
func NewAdoptionRequestedEvent(shelterID, shelterName string, animal domain.Animal, req domain.AdoptionRequest) Event {
	return Event{
		Kind:            KindAdoptionRequested,
		ShelterID:       shelterID,
		ShelterName:     shelterName,
		Animal:          animal,
		AdoptionRequest: &req,
		ObservedAt:      time.Now().UTC(),
	}
}

// ID identifies the event for deduplication; it is stable across polls.
func (e Event) ID() string {
	parts := []string{e.Kind, e.ShelterID, strings.TrimSpace(e.Animal.ID.String())}
	if e.AdoptionRequest != nil {
		parts = append(parts, strings.TrimSpace(e.AdoptionRequest.ID.String()))
	}
	return strings.Join(parts, ":")
}

// attributes are the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_kind": e.Kind,
		"shelter_id": e.ShelterID,
	}
}

// dedupeID derives the FIFO deduplication id from the event id, hashed to
// stay under the 128 character limit of SQS and SNS.
func dedupeID(e Event) string {
	sum := sha256.Sum256([]byte(e.ID()))
	return hex.EncodeToString(sum[:])
}
