package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/frahmantamala/room-reservation/internal/core/events"
)

// DefaultQueue is used when no queue name is configured.
const DefaultQueue = "room_reservation.events"

// Envelope is the wire shape of a relayed domain event.
type Envelope struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func NewEnvelope(event events.Event) Envelope {
	env := Envelope{
		ID:         event.EventID(),
		Type:       event.EventType(),
		OccurredAt: event.OccurredAt().UTC(),
	}
	if data, ok := event.Payload().(map[string]interface{}); ok {
		env.Data = data
	}
	return env
}

func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}
