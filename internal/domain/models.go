package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ID is a server-assigned identifier. The backend uses numbers, but strings
// are accepted too; numeric ids keep their literal form.
type ID string

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	case isNumber(data):
		*id = ID(data)
		return nil
	}
	return errors.New("id is neither a number nor a string")
}

// MarshalJSON writes numeric ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if isNumber([]byte(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func isNumber(b []byte) bool {
	if len(b) == 0 || (b[0] != '-' && (b[0] < '0' || b[0] > '9')) {
		return false
	}
	var n json.Number
	return json.Unmarshal(b, &n) == nil
}

// Animal is a rescue animal as listed by the backend. Raw keeps the record
// exactly as the server sent it; the typed fields are filled best-effort and
// stay empty when the server sends something of another shape.
type Animal struct {
	ID               ID                `json:"id"`
	Name             string            `json:"name,omitempty"`
	AvatarURL        string            `json:"avatarUrl,omitempty"`
	Description      string            `json:"description,omitempty"`
	RescueDate       string            `json:"rescueDate,omitempty"`
	AdoptionRequests []AdoptionRequest `json:"adoptionRequests,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON retains the raw record and decodes each known field on its own.
// Only malformed JSON is an error.
func (a *Animal) UnmarshalJSON(data []byte) error {
	if !json.Valid(data) {
		return errors.New("animal: invalid JSON")
	}
	*a = Animal{Raw: append(json.RawMessage(nil), data...)}

	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil {
		return nil
	}
	decodeField(fields, "id", &a.ID)
	decodeField(fields, "name", &a.Name)
	decodeField(fields, "avatarUrl", &a.AvatarURL)
	decodeField(fields, "description", &a.Description)
	decodeField(fields, "rescueDate", &a.RescueDate)

	var reqs []json.RawMessage
	decodeField(fields, "adoptionRequests", &reqs)
	for _, raw := range reqs {
		var r AdoptionRequest
		_ = r.UnmarshalJSON(raw)
		a.AdoptionRequests = append(a.AdoptionRequests, r)
	}
	return nil
}

// MarshalJSON emits the raw record when present so unknown fields survive a round trip.
func (a Animal) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	type plain Animal
	return json.Marshal(plain(a))
}

// AdoptionRequest ties a prospective adopter to an animal.
type AdoptionRequest struct {
	ID          ID     `json:"id"`
	AdopterName string `json:"adopterName,omitempty"`
	Email       string `json:"email,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// UnmarshalJSON decodes the known fields best-effort, like Animal.
func (r *AdoptionRequest) UnmarshalJSON(data []byte) error {
	*r = AdoptionRequest{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	decodeField(fields, "id", &r.ID)
	decodeField(fields, "adopterName", &r.AdopterName)
	decodeField(fields, "email", &r.Email)
	decodeField(fields, "notes", &r.Notes)
	return nil
}

// decodeField unmarshals fields[key] into dst, leaving dst untouched on a type mismatch.
func decodeField[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var v T
	if json.Unmarshal(raw, &v) == nil {
		*dst = v
	}
}

// AdoptionRequestInput carries the caller-supplied values for submit, edit and delete.
// Ids are used verbatim in request paths.
type AdoptionRequestInput struct {
	AnimalID          string
	AdoptionRequestID string
	Email             string
	Notes             string
}

// AdoptionRequestBody is the wire body of submit and edit.
type AdoptionRequestBody struct {
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// Body returns the JSON payload for the input.
func (in AdoptionRequestInput) Body() AdoptionRequestBody {
	return AdoptionRequestBody{Email: in.Email, Notes: in.Notes}
}
