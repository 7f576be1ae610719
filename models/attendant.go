// File: models/attendant.go
package models

import "time"

// InviteStatus is the state of a group invite.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// ParseInviteStatus validates s as an invite status.
func ParseInviteStatus(s string) (InviteStatus, bool) {
	switch st := InviteStatus(s); st {
	case InvitePending, InviteAccepted, InviteDeclined:
		return st, true
	}
	return "", false
}

// Invite asks the owning attendant to join the sender's group.
type Invite struct {
	ID     string       `json:"_id"`
	From   string       `json:"from"`
	Date   time.Time    `json:"date"`
	Status InviteStatus `json:"status"`
}

// Attendant links a user to one hackathon and carries its group state.
type Attendant struct {
	ID        string    `json:"_id"`
	User      string    `json:"user"`
	Hackathon string    `json:"hackathon"`
	Group     *int      `json:"group,omitempty"`
	Invites   []Invite  `json:"invites"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasInviteFrom reports whether an invite sent by attendantID is on a.
func (a *Attendant) HasInviteFrom(attendantID string) bool {
	for _, inv := range a.Invites {
		if inv.From == attendantID {
			return true
		}
	}
	return false
}

// FindInvite returns the index of the invite with the given id, or -1.
func (a *Attendant) FindInvite(inviteID string) int {
	for i, inv := range a.Invites {
		if inv.ID == inviteID {
			return i
		}
	}
	return -1
}

// ClearPendingInvites drops every pending invite except keepID.
func (a *Attendant) ClearPendingInvites(keepID string) {
	kept := a.Invites[:0]
	for _, inv := range a.Invites {
		if inv.Status != InvitePending || inv.ID == keepID {
			kept = append(kept, inv)
		}
	}
	a.Invites = kept
}

// InGroup reports whether a has been assigned a group.
func (a *Attendant) InGroup() bool {
	return a.Group != nil
}

// AttendantView is an attendant joined with its public user and hackathon summary.
type AttendantView struct {
	Attendant
	UserInfo      *User      `json:"userInfo,omitempty"`
	HackathonInfo *Hackathon `json:"hackathonInfo,omitempty"`
}
