//go:build unit
// +build unit

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanAdvanceTo(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusPending, true},
		{StatusPending, StatusStarted, true},
		{StatusPending, StatusFinished, true},
		{StatusStarted, StatusPending, false},
		{StatusFinished, StatusStarted, false},
		{StatusFinished, StatusFinished, true},
		{StatusPending, Status("archived"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanAdvanceTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" Started ")
	assert.True(t, ok)
	assert.Equal(t, StatusStarted, st)

	_, ok = ParseStatus("closed")
	assert.False(t, ok)
}

func TestHackathonFilter_Matches(t *testing.T) {
	h := Hackathon{
		Name:     "Green Code Jam",
		Status:   StatusPending,
		Location: Location{City: "Milano", Country: "Italy"},
	}

	assert.True(t, HackathonFilter{}.Matches(h))
	assert.True(t, HackathonFilter{City: "milano"}.Matches(h))
	assert.True(t, HackathonFilter{Country: "ITALY", Name: "code"}.Matches(h))
	assert.False(t, HackathonFilter{City: "Torino"}.Matches(h))
	assert.False(t, HackathonFilter{Name: "hack"}.Matches(h))
	assert.False(t, HackathonFilter{Status: StatusStarted}.Matches(h))
}

func TestAttendant_ClearPendingInvites(t *testing.T) {
	a := Attendant{Invites: []Invite{
		{ID: "1", Status: InvitePending},
		{ID: "2", Status: InviteDeclined},
		{ID: "3", Status: InvitePending},
	}}

	a.ClearPendingInvites("3")

	assert.Len(t, a.Invites, 2)
	assert.Equal(t, 0, a.FindInvite("2"))
	assert.Equal(t, -1, a.FindInvite("1"))
	assert.Equal(t, 1, a.FindInvite("3"))
}

func TestUser_Public(t *testing.T) {
	u := User{Username: "ada", PasswordHash: "$2a$..."}
	pub := u.Public()

	assert.Empty(t, pub.PasswordHash)
	assert.NotNil(t, pub.Skills)
	assert.Equal(t, "$2a$...", u.PasswordHash, "original untouched")
}
