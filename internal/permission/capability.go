package permission

// Capability is a named privilege stored as one boolean column per user.
// The set is closed: names that are not listed here can never be read or
// written, and storage columns come only from capabilityColumns.
type Capability string

const (
	CanEditUsers          Capability = "can_edit_users"
	CanManageRooms        Capability = "can_manage_rooms"
	CanManageReservations Capability = "can_manage_reservations"
)

var canonical = []Capability{
	CanEditUsers,
	CanManageRooms,
	CanManageReservations,
}

var capabilityColumns = map[Capability]string{
	CanEditUsers:          "can_edit_users",
	CanManageRooms:        "can_manage_rooms",
	CanManageReservations: "can_manage_reservations",
}

// All returns the canonical capability list in a stable order.
func All() []Capability {
	out := make([]Capability, len(canonical))
	copy(out, canonical)
	return out
}

// Columns returns the storage column of every canonical capability.
func Columns() []string {
	cols := make([]string, 0, len(canonical))
	for _, c := range canonical {
		cols = append(cols, capabilityColumns[c])
	}
	return cols
}

// Parse maps a request-supplied name onto the closed list.
func Parse(name string) (Capability, bool) {
	c := Capability(name)
	if _, ok := capabilityColumns[c]; !ok {
		return "", false
	}
	return c, true
}

func (c Capability) Valid() bool {
	_, ok := capabilityColumns[c]
	return ok
}

// Column is the only way a capability turns into SQL.
func (c Capability) Column() (string, bool) {
	col, ok := capabilityColumns[c]
	return col, ok
}

func (c Capability) String() string {
	return string(c)
}

type BulkAction string

const (
	GrantAll  BulkAction = "grant_all"
	RevokeAll BulkAction = "revoke_all"
)

func ParseBulkAction(name string) (BulkAction, bool) {
	switch BulkAction(name) {
	case GrantAll, RevokeAll:
		return BulkAction(name), true
	}
	return "", false
}

// Value is the flag value every capability receives under this action.
func (a BulkAction) Value() bool {
	return a == GrantAll
}
