package reservation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/room-reservation/internal"
	reservationDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/reservation"
	"github.com/frahmantamala/room-reservation/internal/core/events"
	"github.com/frahmantamala/room-reservation/internal/permission"
)

type RepositoryAPI interface {
	// CreateIfFree locks the room, checks it is active and that no confirmed
	// booking overlaps, then inserts. All of it runs in one transaction.
	CreateIfFree(ctx context.Context, r *reservationDatamodel.Reservation) error
	GetByID(ctx context.Context, id int64) (*reservationDatamodel.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]*reservationDatamodel.Reservation, error)
	ListAll(ctx context.Context) ([]*reservationDatamodel.Reservation, error)
	// TransitionStatus moves a reservation from one status to another and
	// reports false when it was no longer in the expected status.
	TransitionStatus(ctx context.Context, id int64, from, to string) (bool, error)
}

type Authorizer interface {
	Allowed(ctx context.Context, userID int64, capability permission.Capability) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

var (
	ErrConflict      = internal.NewConflictError("the room is already booked for that time", internal.ErrCodeReservationConflict)
	ErrNotCancelable = internal.NewValidationError("only confirmed reservations can be cancelled", internal.ErrCodeInvalidStatus)
)

type Service struct {
	repo   RepositoryAPI
	gate   Authorizer
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, gate Authorizer, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		events: publisher,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source; tests use it to pin "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, userID int64, dto CreateReservationDTO) (*Reservation, error) {
	dto.Normalize()
	if appErr := dto.Validate(s.now()); appErr != nil {
		return nil, appErr
	}

	row := &reservationDatamodel.Reservation{
		RoomID:   dto.RoomID,
		UserID:   userID,
		Title:    dto.Title,
		StartsAt: dto.StartsAt,
		EndsAt:   dto.EndsAt,
		Status:   string(StatusConfirmed),
	}

	if err := s.repo.CreateIfFree(ctx, row); err != nil {
		switch {
		case errors.Is(err, ErrConflict):
			return nil, ErrConflict
		case errors.Is(err, internal.ErrRoomNotFound):
			return nil, internal.ErrRoomNotFound
		}
		return nil, internal.NewInternalError("failed to create reservation", err)
	}

	s.logger.InfoContext(ctx, "reservation created",
		"reservation_id", row.ID,
		"room_id", row.RoomID,
		"user_id", userID)
	s.publish(ctx, events.NewReservationCreatedEvent(row.ID, row.RoomID, userID, row.StartsAt, row.EndsAt))

	return FromDataModel(row), nil
}

// List returns the caller's reservations, or every reservation when all is
// set and the caller may manage reservations.
func (s *Service) List(ctx context.Context, userID int64, all bool) ([]*Reservation, error) {
	var (
		rows []*reservationDatamodel.Reservation
		err  error
	)

	if all {
		ok, gateErr := s.gate.Allowed(ctx, userID, permission.CanManageReservations)
		if gateErr != nil {
			return nil, internal.NewInternalError("failed to check permissions", gateErr)
		}
		if !ok {
			return nil, internal.ErrForbidden
		}
		rows, err = s.repo.ListAll(ctx)
	} else {
		rows, err = s.repo.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to list reservations", err)
	}

	out := make([]*Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

// Get hides reservations the caller may not see behind a not found.
func (s *Service) Get(ctx context.Context, userID, id int64) (*Reservation, error) {
	return s.loadVisible(ctx, userID, id)
}

func (s *Service) Cancel(ctx context.Context, userID, id int64) (*Reservation, error) {
	res, err := s.loadVisible(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if !res.CanBeCancelled() {
		return nil, ErrNotCancelable
	}

	ok, err := s.repo.TransitionStatus(ctx, id, string(StatusConfirmed), string(StatusCancelled))
	if err != nil {
		return nil, internal.NewInternalError("failed to cancel reservation", err)
	}
	if !ok {
		return nil, ErrNotCancelable
	}

	s.logger.InfoContext(ctx, "reservation cancelled", "reservation_id", id, "cancelled_by", userID)
	s.publish(ctx, events.NewReservationCancelledEvent(id, res.RoomID, userID))

	res.Status = StatusCancelled
	return res, nil
}

func (s *Service) loadVisible(ctx context.Context, userID, id int64) (*Reservation, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load reservation", err)
	}
	if row == nil {
		return nil, internal.ErrReservationNotFound
	}

	res := FromDataModel(row)
	if res.IsOwnedBy(userID) {
		return res, nil
	}

	ok, err := s.gate.Allowed(ctx, userID, permission.CanManageReservations)
	if err != nil {
		return nil, internal.NewInternalError("failed to check permissions", err)
	}
	if !ok {
		return nil, internal.ErrReservationNotFound
	}
	return res, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
