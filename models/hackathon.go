// File: models/hackathon.go
package models

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a hackathon.
type Status string

const (
	StatusPending  Status = "pending"
	StatusStarted  Status = "started"
	StatusFinished Status = "finished"
)

var statusRank = map[Status]int{
	StatusPending:  0,
	StatusStarted:  1,
	StatusFinished: 2,
}

// ParseStatus validates s as a hackathon status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	_, ok := statusRank[st]
	return st, ok
}

// Rank orders statuses; unknown statuses rank -1.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// CanAdvanceTo reports whether a hackathon in status s may move to next.
// Staying in the same status is allowed; going back is not.
func (s Status) CanAdvanceTo(next Status) bool {
	return next.Rank() >= 0 && next.Rank() >= s.Rank()
}

// ----------------------- hackathon model -----------------------

// Location is where a hackathon takes place.
type Location struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

// Prize is the award for the winning group.
type Prize struct {
	Amount int    `json:"amount"`
	Extra  string `json:"extra,omitempty"`
}

// AttendantsRequirements bounds who and how many may take part.
type AttendantsRequirements struct {
	Description        string `json:"description,omitempty"`
	MinNum             int    `json:"minNum"`
	MaxNum             int    `json:"maxNum"`
	MaxGroupComponents int    `json:"maxGroupComponents"`
}

// Hackathon is an event created by an ORGANIZATION user. Attendants is not
// persisted with the document; it is joined from the attendant collection.
type Hackathon struct {
	ID                     string                 `json:"_id"`
	Name                   string                 `json:"name"`
	Description            string                 `json:"description"`
	Organization           string                 `json:"organization"`
	StartDate              time.Time              `json:"startDate"`
	EndDate                time.Time              `json:"endDate"`
	Status                 Status                 `json:"status"`
	Location               Location               `json:"location"`
	Prize                  Prize                  `json:"prize"`
	AttendantsRequirements AttendantsRequirements `json:"attendantsRequirements"`
	CreatedAt              time.Time              `json:"createdAt"`

	Attendants []string `json:"attendants"`
}

// Full reports whether the attendant count has reached the advertised maximum.
func (h Hackathon) Full() bool {
	return h.AttendantsRequirements.MaxNum > 0 && len(h.Attendants) >= h.AttendantsRequirements.MaxNum
}

// HackathonFilter narrows hackathon listings. Empty fields match everything.
type HackathonFilter struct {
	City         string
	Country      string
	Name         string
	Status       Status
	Organization string
}

// Matches applies the filter: city and country compare case-insensitively,
// name is a case-insensitive substring match.
func (f HackathonFilter) Matches(h Hackathon) bool {
	if f.City != "" && !strings.EqualFold(f.City, h.Location.City) {
		return false
	}
	if f.Country != "" && !strings.EqualFold(f.Country, h.Location.Country) {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(h.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Status != "" && f.Status != h.Status {
		return false
	}
	if f.Organization != "" && f.Organization != h.Organization {
		return false
	}
	return true
}
