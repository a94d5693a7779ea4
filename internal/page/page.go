package page

import (
	"github.com/frahmantamala/room-reservation/internal/permission"
)

// Page names a loadable fragment. The set is closed; anything else is rejected
// before a template is looked up.
type Page string

const (
	Dashboard      Page = "dashboard"
	Rooms          Page = "rooms"
	Reservations   Page = "reservations"
	Profile        Page = "profile"
	UserManagement Page = "user-management"
)

type definition struct {
	template string
	requires permission.Capability
}

var pages = map[Page]definition{
	Dashboard:      {template: "dashboard.html"},
	Rooms:          {template: "rooms.html"},
	Reservations:   {template: "reservations.html"},
	Profile:        {template: "profile.html"},
	UserManagement: {template: "user_management.html", requires: permission.CanEditUsers},
}

func All() []Page {
	return []Page{Dashboard, Rooms, Reservations, Profile, UserManagement}
}

func Parse(name string) (Page, bool) {
	p := Page(name)
	_, ok := pages[p]
	return p, ok
}

// Requires returns the capability needed to load p, if any.
func (p Page) Requires() (permission.Capability, bool) {
	def, ok := pages[p]
	if !ok || def.requires == "" {
		return "", false
	}
	return def.requires, true
}
