// File: models/identity.go
package models

// Identity is the authenticated caller of a request, resolved from the
// server-side session by the auth middleware.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsOrganization reports whether the caller acts as an organization.
func (i Identity) IsOrganization() bool {
	return i.Role == RoleOrganization
}

// Notification event names delivered over the realtime relay.
const (
	EventNewAttendant    = "new_attendant"
	EventNewInvite       = "new_invite"
	EventAttendantUpdate = "attendant_update"
)
