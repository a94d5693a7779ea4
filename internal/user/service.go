package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/core/common/password"
	"github.com/frahmantamala/room-reservation/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/user"
	"github.com/frahmantamala/room-reservation/internal/core/events"
	"github.com/frahmantamala/room-reservation/internal/permission"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, excludeID int64) (bool, error)
	SetVerified(ctx context.Context, id int64, verified bool) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Create(ctx context.Context, u *userDatamodel.User) error
}

// EditorGate is the part of the permission gate user administration needs.
type EditorGate interface {
	Allowed(ctx context.Context, userID int64, capability permission.Capability) (bool, error)
	Capabilities(ctx context.Context, userID int64) (map[string]bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

var (
	ErrEmailTaken      = internal.NewValidationError("email already in use", internal.ErrCodeEmailTaken)
	ErrCurrentPassword = internal.NewValidationError("current password is incorrect", internal.ErrCodeCurrentPassword)
)

type Service struct {
	repo       RepositoryAPI
	gate       EditorGate
	events     EventPublisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, gate EditorGate, publisher EventPublisher, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		gate:       gate,
		events:     publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(u), nil
}

// GetProfile returns the user together with every capability flag.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	caps, err := s.gate.Capabilities(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permissions", err)
	}

	return &ProfileResponse{User: u, Capabilities: caps}, nil
}

// Verify sets the verification flag of another user. Setting the flag to the
// value it already has reports changed=false and writes nothing.
func (s *Service) Verify(ctx context.Context, actorID int64, dto VerifyUserDTO) (*ChangeResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	allowed, err := s.gate.Allowed(ctx, actorID, permission.CanEditUsers)
	if err != nil {
		return nil, internal.NewInternalError("failed to check permissions", err)
	}
	if !allowed {
		s.logger.WarnContext(ctx, "access denied: cannot verify users", "actor_id", actorID, "target_id", dto.UserID)
		return nil, internal.ErrForbidden
	}

	target, err := s.repo.GetByID(ctx, dto.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load target user", err)
	}
	if target == nil {
		return nil, internal.ErrUserNotFound
	}

	if dto.UserID == actorID {
		return nil, internal.ErrSelfTarget
	}

	verified := *dto.Verified
	if target.IsVerified == verified {
		return &ChangeResponse{Success: true, Changed: false, Message: "No changes made"}, nil
	}

	if err := s.repo.SetVerified(ctx, dto.UserID, verified); err != nil {
		return nil, internal.NewInternalError("failed to update verification", err)
	}

	s.logger.InfoContext(ctx, "user verification changed",
		"actor_id", actorID,
		"target_id", dto.UserID,
		"verified", verified)
	s.publish(ctx, events.NewVerificationChangedEvent(actorID, dto.UserID, verified))

	message := fmt.Sprintf("User %d verified", dto.UserID)
	if !verified {
		message = fmt.Sprintf("User %d unverified", dto.UserID)
	}
	return &ChangeResponse{Success: true, Changed: true, Message: message}, nil
}

// UpdateProfile applies a partial self-service update. All checks, including
// the current-password comparison, finish before the single write.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, dto UpdateProfileDTO) (*ChangeResponse, error) {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if current == nil {
		return nil, internal.ErrUserNotFound
	}

	fields := make(map[string]interface{})

	v := validation.NewValidator()
	if name, ok := supplied(dto.Name); ok {
		v.Field("name", name).MaxLength(100)
		if name != current.Name {
			fields["name"] = name
		}
	}
	if surname, ok := supplied(dto.Surname); ok {
		v.Field("surname", surname).MaxLength(100)
		if surname != current.Surname {
			fields["surname"] = surname
		}
	}
	email, emailSupplied := supplied(dto.Email)
	email = strings.ToLower(email)
	if emailSupplied {
		v.Field("email", email).Email().MaxLength(255)
	}
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	if emailSupplied && !strings.EqualFold(email, current.Email) {
		taken, err := s.repo.EmailTakenByOther(ctx, email, userID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check email", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		fields["email"] = email
	}

	if _, ok := supplied(dto.Password); ok {
		hash, err := s.newPasswordHash(current.PasswordHash, *dto.Password, dto.CurrentPassword)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}

	if len(fields) == 0 {
		return &ChangeResponse{Success: true, Changed: false, Message: "No changes made"}, nil
	}

	if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, internal.NewInternalError("failed to update profile", err)
	}

	changed := make([]string, 0, len(fields))
	for k := range fields {
		changed = append(changed, k)
	}
	s.logger.InfoContext(ctx, "profile updated", "user_id", userID, "fields", changed)

	return &ChangeResponse{Success: true, Changed: true, Message: "Profile updated"}, nil
}

func (s *Service) newPasswordHash(storedHash, newPassword string, currentPassword *string) (string, error) {
	if currentPassword == nil || *currentPassword == "" {
		return "", ErrCurrentPassword.WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
			{Field: "current_password", Message: "current_password is required to change password", Code: string(internal.ErrCodeCurrentPassword)},
		}})
	}

	if err := password.Compare(storedHash, *currentPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", ErrCurrentPassword
		}
		return "", internal.NewInternalError("failed to verify current password", err)
	}

	if appErr := validation.ValidatePassword(newPassword); appErr != nil {
		return "", appErr
	}

	hash, err := password.Hash(newPassword, s.bcryptCost)
	if err != nil {
		return "", internal.NewInternalError("failed to hash password", err)
	}
	return hash, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
