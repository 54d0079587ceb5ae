package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAnimalDecodesOffShapeFieldsBestEffort(t *testing.T) {
	body := `[
		{"id":"a-1","name":"Chocobo"},
		{"id":2,"rescueDate":[2020,1,2],"name":5,"color":"grey"},
		{"id":3,"adoptionRequests":[{"id":"x","adopterName":"alice"},{"id":8,"email":7}]}
	]`

	var animals []Animal
	if err := json.Unmarshal([]byte(body), &animals); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(animals) != 3 {
		t.Fatalf("expected 3 animals, got %d", len(animals))
	}

	if animals[0].ID != "a-1" || animals[0].Name != "Chocobo" {
		t.Fatalf("string id not kept: %+v", animals[0])
	}
	if animals[1].ID != "2" || animals[1].Name != "" || animals[1].RescueDate != "" {
		t.Fatalf("mismatched fields should stay empty: %+v", animals[1])
	}
	if !strings.Contains(string(animals[1].Raw), `"rescueDate":[2020,1,2]`) {
		t.Fatalf("raw record lost: %s", animals[1].Raw)
	}

	reqs := animals[2].AdoptionRequests
	if len(reqs) != 2 || reqs[0].ID != "x" || reqs[0].AdopterName != "alice" || reqs[1].ID != "8" || reqs[1].Email != "" {
		t.Fatalf("unexpected adoption requests %+v", reqs)
	}
}

func TestAnimalRejectsMalformedJSON(t *testing.T) {
	var a Animal
	if err := a.UnmarshalJSON([]byte(`{"id":`)); err == nil {
		t.Fatal("expected error for truncated record")
	}
}

func TestIDMarshalKeepsNumbersNumeric(t *testing.T) {
	out, err := json.Marshal(AdoptionRequest{ID: "7", AdopterName: "alice"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), `"id":7`) {
		t.Fatalf("numeric id quoted: %s", out)
	}

	out, err = json.Marshal(Animal{ID: "a-1"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), `"id":"a-1"`) {
		t.Fatalf("string id not quoted: %s", out)
	}
}
