package room

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/room-reservation/internal"
	roomDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/room"
)

type RepositoryAPI interface {
	ListActive(ctx context.Context) ([]*roomDatamodel.Room, error)
	GetByID(ctx context.Context, id int64) (*roomDatamodel.Room, error)
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, room *roomDatamodel.Room) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Deactivate(ctx context.Context, id int64) error
}

var ErrNameTaken = internal.NewConflictError("a room with this name already exists", internal.ErrCodeRoomNameTaken)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Room, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list rooms", err)
	}

	rooms := make([]*Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, FromDataModel(row))
	}
	return rooms, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Room, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load room", err)
	}
	if row == nil {
		return nil, internal.ErrRoomNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actorID int64, dto CreateRoomDTO) (*Room, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	if err := s.ensureNameFree(ctx, dto.Name, 0); err != nil {
		return nil, err
	}

	row := ToDataModel(NewRoom(dto.Name, dto.Location, dto.Capacity, dto.Description))
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrNameTaken) {
			return nil, ErrNameTaken
		}
		return nil, internal.NewInternalError("failed to create room", err)
	}

	s.logger.InfoContext(ctx, "room created", "room_id", row.ID, "name", row.Name, "actor_id", actorID)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, actorID, id int64, dto UpdateRoomDTO) (*Room, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.IsEmpty() {
		return current, nil
	}

	fields := make(map[string]interface{})
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name != current.Name {
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
			fields["name"] = name
		}
	}
	if dto.Location != nil {
		fields["location"] = strings.TrimSpace(*dto.Location)
	}
	if dto.Capacity != nil {
		fields["capacity"] = *dto.Capacity
	}
	if dto.Description != nil {
		fields["description"] = strings.TrimSpace(*dto.Description)
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, ErrNameTaken) {
			return nil, ErrNameTaken
		}
		return nil, internal.NewInternalError("failed to update room", err)
	}

	s.logger.InfoContext(ctx, "room updated", "room_id", id, "actor_id", actorID)
	return s.GetByID(ctx, id)
}

// Delete deactivates the room. Existing reservations are kept.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete room", err)
	}

	s.logger.InfoContext(ctx, "room deactivated", "room_id", id, "actor_id", actorID)
	return nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string, excludeID int64) error {
	taken, err := s.repo.NameTaken(ctx, name, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check room name", err)
	}
	if taken {
		return ErrNameTaken
	}
	return nil
}
