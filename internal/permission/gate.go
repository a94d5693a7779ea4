package permission

import (
	"context"
	"fmt"
	"log/slog"

	permissionDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/permission"
)

type RepositoryAPI interface {
	// GetByUserID returns nil, nil when the user has no permissions row.
	GetByUserID(ctx context.Context, userID int64) (*permissionDatamodel.UserPermission, error)
	SetFlag(ctx context.Context, userID int64, capability Capability, value bool, actorID int64) error
	SetAll(ctx context.Context, userID int64, value bool, actorID int64) error
}

// Gate answers "may this user do that". It reads the store on every call and
// keeps nothing between requests, so a revoke is visible on the next check.
type Gate struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewGate(repo RepositoryAPI, logger *slog.Logger) *Gate {
	return &Gate{repo: repo, logger: logger}
}

// Allowed is the decision with store failures surfaced to the caller.
// Unknown capabilities and users without a row are denied without error.
func (g *Gate) Allowed(ctx context.Context, userID int64, capability Capability) (bool, error) {
	if !capability.Valid() || userID <= 0 {
		return false, nil
	}

	row, err := g.repo.GetByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load permissions for user %d: %w", userID, err)
	}

	return FromDataModel(row).Has(capability), nil
}

// CanPerform never fails: a store error is logged and treated as deny.
func (g *Gate) CanPerform(ctx context.Context, userID int64, capability Capability) bool {
	allowed, err := g.Allowed(ctx, userID, capability)
	if err != nil {
		g.logger.ErrorContext(ctx, "permission check failed, denying",
			"user_id", userID,
			"capability", capability,
			"error", err)
		return false
	}
	return allowed
}

func (g *Gate) CanEditUsers(ctx context.Context, userID int64) bool {
	return g.CanPerform(ctx, userID, CanEditUsers)
}

// Capabilities returns every canonical flag of the user, all false when the
// user has no row.
func (g *Gate) Capabilities(ctx context.Context, userID int64) (map[string]bool, error) {
	row, err := g.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load permissions for user %d: %w", userID, err)
	}
	return FromDataModel(row).Map(), nil
}
