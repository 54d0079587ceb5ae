package publishers

import "github.com/Albertoimpl/animal-rescue/internal/domain"

func sampleEvent() Event {
	return NewAdoptionRequestedEvent("downtown", "Downtown Rescue",
		domain.Animal{ID: domain.ID("1"), Name: "Chocobo"},
		domain.AdoptionRequest{ID: domain.ID("7"), AdopterName: "alice"},
	)
}
