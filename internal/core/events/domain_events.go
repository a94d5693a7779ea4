package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePermissionUpdated    = "permission.updated"
	EventTypeVerificationChanged  = "user.verification_changed"
	EventTypeReservationCreated   = "reservation.created"
	EventTypeReservationCancelled = "reservation.cancelled"
)

// DomainEventTypes lists every event the application publishes; relays
// subscribe to all of them.
func DomainEventTypes() []string {
	return []string{
		EventTypePermissionUpdated,
		EventTypeVerificationChanged,
		EventTypeReservationCreated,
		EventTypeReservationCancelled,
	}
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// NewPermissionUpdatedEvent records a permission change. change is either a
// capability name or a bulk action.
func NewPermissionUpdatedEvent(actorID, targetID int64, change string, value bool) BaseEvent {
	return newBase(EventTypePermissionUpdated, map[string]interface{}{
		"actor_id":  actorID,
		"target_id": targetID,
		"change":    change,
		"value":     value,
	})
}

func NewVerificationChangedEvent(actorID, targetID int64, verified bool) BaseEvent {
	return newBase(EventTypeVerificationChanged, map[string]interface{}{
		"actor_id":  actorID,
		"target_id": targetID,
		"verified":  verified,
	})
}

func NewReservationCreatedEvent(reservationID, roomID, userID int64, startsAt, endsAt time.Time) BaseEvent {
	return newBase(EventTypeReservationCreated, map[string]interface{}{
		"reservation_id": reservationID,
		"room_id":        roomID,
		"user_id":        userID,
		"starts_at":      startsAt.UTC().Format(time.RFC3339),
		"ends_at":        endsAt.UTC().Format(time.RFC3339),
	})
}

func NewReservationCancelledEvent(reservationID, roomID, cancelledBy int64) BaseEvent {
	return newBase(EventTypeReservationCancelled, map[string]interface{}{
		"reservation_id": reservationID,
		"room_id":        roomID,
		"cancelled_by":   cancelledBy,
	})
}
