package store

import (
	"context"
	"fmt"

	"go-hackhub/models"
)

// AttachAttendants fills h.Attendants with the user ids of its attendant records.
func AttachAttendants(ctx context.Context, repo AttendantRepository, h *models.Hackathon) error {
	attendants, err := repo.ListAttendantsByHackathon(ctx, h.ID)
	if err != nil {
		return fmt.Errorf("list attendants of hackathon %s: %w", h.ID, err)
	}
	h.Attendants = make([]string, 0, len(attendants))
	for _, a := range attendants {
		h.Attendants = append(h.Attendants, a.User)
	}
	return nil
}

// GroupMembers returns the attendants of one hackathon carrying the given group number.
func GroupMembers(attendants []models.Attendant, group int) []models.Attendant {
	var members []models.Attendant
	for _, a := range attendants {
		if a.Group != nil && *a.Group == group {
			members = append(members, a)
		}
	}
	return members
}

// MaxGroup returns the highest group number among attendants, or 0 when none is grouped.
func MaxGroup(attendants []models.Attendant) int {
	highest := 0
	for _, a := range attendants {
		if a.Group != nil && *a.Group > highest {
			highest = *a.Group
		}
	}
	return highest
}
