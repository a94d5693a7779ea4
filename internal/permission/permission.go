package permission

import (
	"time"

	permissionDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/permission"
)

// PermissionSet is the domain view of a user's permissions row. A nil set is
// the stored state of a user without a row and denies everything.
type PermissionSet struct {
	UserID                int64
	CanEditUsers          bool
	CanManageRooms        bool
	CanManageReservations bool
	UpdatedBy             *int64
	UpdatedAt             time.Time
}

// NewPermissionSet returns a set with every canonical flag set to value.
func NewPermissionSet(userID int64, value bool) *PermissionSet {
	return &PermissionSet{
		UserID:                userID,
		CanEditUsers:          value,
		CanManageRooms:        value,
		CanManageReservations: value,
	}
}

func (p *PermissionSet) Has(c Capability) bool {
	if p == nil {
		return false
	}
	switch c {
	case CanEditUsers:
		return p.CanEditUsers
	case CanManageRooms:
		return p.CanManageRooms
	case CanManageReservations:
		return p.CanManageReservations
	}
	return false
}

// Set changes one flag; unknown capabilities are ignored and reported false.
func (p *PermissionSet) Set(c Capability, value bool) bool {
	switch c {
	case CanEditUsers:
		p.CanEditUsers = value
	case CanManageRooms:
		p.CanManageRooms = value
	case CanManageReservations:
		p.CanManageReservations = value
	default:
		return false
	}
	return true
}

// Map renders every canonical flag, keyed by capability name.
func (p *PermissionSet) Map() map[string]bool {
	out := make(map[string]bool, len(canonical))
	for _, c := range canonical {
		out[c.String()] = p.Has(c)
	}
	return out
}

func ToDataModel(p *PermissionSet) *permissionDatamodel.UserPermission {
	return &permissionDatamodel.UserPermission{
		UserID:                p.UserID,
		CanEditUsers:          p.CanEditUsers,
		CanManageRooms:        p.CanManageRooms,
		CanManageReservations: p.CanManageReservations,
		UpdatedBy:             p.UpdatedBy,
		UpdatedAt:             p.UpdatedAt,
	}
}

func FromDataModel(p *permissionDatamodel.UserPermission) *PermissionSet {
	if p == nil {
		return nil
	}
	return &PermissionSet{
		UserID:                p.UserID,
		CanEditUsers:          p.CanEditUsers,
		CanManageRooms:        p.CanManageRooms,
		CanManageReservations: p.CanManageReservations,
		UpdatedBy:             p.UpdatedBy,
		UpdatedAt:             p.UpdatedAt,
	}
}
