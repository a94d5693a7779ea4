package permission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/core/events"
)

// UserDirectory answers whether a target user exists.
type UserDirectory interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

var (
	ErrInvalidPermission = internal.NewValidationFieldError("permission", "unknown permission", internal.ErrCodeInvalidPermission)
	ErrInvalidBulkAction = internal.NewValidationFieldError("bulk_action", "bulk_action must be grant_all or revoke_all", internal.ErrCodeInvalidBulkAction)
	ErrMissingValue      = internal.NewValidationFieldError("value", "value is required", internal.ErrCodeValidationFailed)
)

type Service struct {
	repo   RepositoryAPI
	gate   *Gate
	users  UserDirectory
	events EventPublisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, gate *Gate, users UserDirectory, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		users:  users,
		events: publisher,
		logger: logger,
	}
}

// Update applies a permission change requested by actorID. Every check runs
// before the single write statement, so a rejected request never mutates the
// store.
func (s *Service) Update(ctx context.Context, actorID int64, dto UpdatePermissionDTO) (*UpdateResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	allowed, err := s.gate.Allowed(ctx, actorID, CanEditUsers)
	if err != nil {
		return nil, internal.NewInternalError("failed to check permissions", err)
	}
	if !allowed {
		s.logger.WarnContext(ctx, "access denied: cannot edit users", "actor_id", actorID, "target_id", dto.UserID)
		return nil, internal.ErrForbidden
	}

	exists, err := s.users.Exists(ctx, dto.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load target user", err)
	}
	if !exists {
		return nil, internal.ErrUserNotFound
	}

	if dto.UserID == actorID {
		return nil, internal.ErrSelfTarget
	}

	if dto.IsBulk() {
		return s.applyBulk(ctx, actorID, dto.UserID, strings.TrimSpace(*dto.BulkAction))
	}
	return s.applySingle(ctx, actorID, dto)
}

func (s *Service) applyBulk(ctx context.Context, actorID, targetID int64, raw string) (*UpdateResult, error) {
	action, ok := ParseBulkAction(raw)
	if !ok {
		return nil, ErrInvalidBulkAction
	}

	if err := s.repo.SetAll(ctx, targetID, action.Value(), actorID); err != nil {
		return nil, internal.NewInternalError("failed to update permissions", err)
	}

	s.logger.InfoContext(ctx, "permissions replaced",
		"actor_id", actorID,
		"target_id", targetID,
		"action", action)
	s.publish(ctx, events.NewPermissionUpdatedEvent(actorID, targetID, string(action), action.Value()))

	changes := make(map[string]bool, len(canonical))
	for _, c := range canonical {
		changes[c.String()] = action.Value()
	}

	message := fmt.Sprintf("All permissions granted to user %d", targetID)
	if !action.Value() {
		message = fmt.Sprintf("All permissions revoked from user %d", targetID)
	}
	return &UpdateResult{UserID: targetID, Message: message, Changes: changes}, nil
}

func (s *Service) applySingle(ctx context.Context, actorID int64, dto UpdatePermissionDTO) (*UpdateResult, error) {
	capability, ok := Parse(strings.TrimSpace(*dto.Permission))
	if !ok {
		return nil, ErrInvalidPermission
	}
	if dto.Value == nil {
		return nil, ErrMissingValue
	}
	value := *dto.Value

	if err := s.repo.SetFlag(ctx, dto.UserID, capability, value, actorID); err != nil {
		return nil, internal.NewInternalError("failed to update permission", err)
	}

	s.logger.InfoContext(ctx, "permission updated",
		"actor_id", actorID,
		"target_id", dto.UserID,
		"capability", capability,
		"value", value)
	s.publish(ctx, events.NewPermissionUpdatedEvent(actorID, dto.UserID, capability.String(), value))

	message := fmt.Sprintf("Permission %s granted to user %d", capability, dto.UserID)
	if !value {
		message = fmt.Sprintf("Permission %s revoked from user %d", capability, dto.UserID)
	}
	return &UpdateResult{
		UserID:  dto.UserID,
		Message: message,
		Changes: map[string]bool{capability.String(): value},
	}, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
