package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// EventType is the "type" tag of a delivered event.
type EventType string

const (
	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"
)

// ErrMalformedEvent indicates a verified body that is not a {type, data} object.
var ErrMalformedEvent = errors.New("malformed webhook event")

// Event is a decoded delivery. Data stays raw until the router picks the
// payload type that matches Type.
type Event struct {
	Type EventType
	Data json.RawMessage
}

// EmailAddress is one entry of a user's email_addresses list.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserData is the payload of user.created and user.updated. Absent or null
// string fields decode to "".
type UserData struct {
	ID             string         `json:"id"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	ImageURL       string         `json:"image_url"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Username       string         `json:"username"`
}

// PrimaryEmail returns the first listed address, or "" when there is none.
func (d UserData) PrimaryEmail() string {
	if len(d.EmailAddresses) == 0 {
		return ""
	}
	return d.EmailAddresses[0].EmailAddress
}

// DeletedData is the payload of user.deleted.
type DeletedData struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// Decode parses a verified body. It requires a JSON object with a string
// "type" and an object "data"; other fields are ignored.
func Decode(body []byte) (Event, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if envelope == nil {
		return Event{}, fmt.Errorf("%w: body is not an object", ErrMalformedEvent)
	}

	rawType, ok := envelope["type"]
	if !ok {
		return Event{}, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	var eventType string
	if err := json.Unmarshal(rawType, &eventType); err != nil || bytes.Equal(bytes.TrimSpace(rawType), []byte("null")) {
		return Event{}, fmt.Errorf("%w: type is not a string", ErrMalformedEvent)
	}

	data, ok := envelope["data"]
	if !ok {
		return Event{}, fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return Event{}, fmt.Errorf("%w: data is not an object", ErrMalformedEvent)
	}

	return Event{Type: EventType(eventType), Data: data}, nil
}

func decodeData(evt Event, dst any) error {
	if err := json.Unmarshal(evt.Data, dst); err != nil {
		return fmt.Errorf("%w: %s data: %v", ErrMalformedEvent, evt.Type, err)
	}
	return nil
}
