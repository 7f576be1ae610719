// file: services/attendant_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go-hackhub/logger"
	"go-hackhub/metrics"
	"go-hackhub/models"
	"go-hackhub/store"
)

// AttendantService handles invites and group formation inside a hackathon.
type AttendantService struct {
	Store    store.Store
	Notifier Notifier
	Metrics  metrics.Publisher
	locks    *KeyedMutex
}

// NewAttendantService wires an AttendantService. locks must be the one given
// to the HackathonService over the same store; nil creates a private one.
func NewAttendantService(s store.Store, n Notifier, m metrics.Publisher, locks *KeyedMutex) *AttendantService {
	if n == nil {
		n = NoopNotifier{}
	}
	if m == nil {
		m = metrics.Noop{}
	}
	if locks == nil {
		locks = NewKeyedMutex()
	}
	return &AttendantService{Store: s, Notifier: n, Metrics: m, locks: locks}
}

// Invite asks the attendant toAttendantID to join the acting user's group.
// The acting user must attend the same hackathon. A repeated invite leaves
// the target unchanged.
func (s *AttendantService) Invite(ctx context.Context, actor models.Identity, toAttendantID string) (*models.Attendant, error) {
	target, err := s.Store.GetAttendant(ctx, toAttendantID)
	if err != nil {
		return nil, wrapNotFound(err, "attendant %s", toAttendantID)
	}

	unlock := s.locks.Lock(target.Hackathon)
	defer unlock()

	// reload under the lock
	target, err = s.Store.GetAttendant(ctx, toAttendantID)
	if err != nil {
		return nil, wrapNotFound(err, "attendant %s", toAttendantID)
	}
	if target.User == actor.UserID {
		return nil, fmt.Errorf("%w: cannot invite yourself", ErrInvalidInput)
	}

	sender, err := s.Store.FindAttendant(ctx, target.Hackathon, actor.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s does not attend hackathon %s", ErrInvalidInput, actor.Username, target.Hackathon)
	}
	if err != nil {
		return nil, fmt.Errorf("find sender: %w", err)
	}

	if target.HasInviteFrom(sender.ID) {
		logger.Debug.Printf("[AttendantService.Invite] %s already invited %s", sender.ID, target.ID)
		return target, nil
	}

	invite := models.Invite{
		ID:     uuid.NewString(),
		From:   sender.ID,
		Date:   time.Now().UTC(),
		Status: models.InvitePending,
	}
	target.Invites = append(target.Invites, invite)
	if err := s.Store.UpdateAttendant(ctx, target); err != nil {
		return nil, fmt.Errorf("update attendant: %w", err)
	}
	logger.Info.Printf("[AttendantService.Invite] %s invited attendant %s in hackathon %s", actor.Username, target.ID, target.Hackathon)
	s.Metrics.InviteSent(target.Hackathon)

	if receiver, err := s.Store.GetUser(ctx, target.User); err != nil {
		logger.Warn.Printf("[AttendantService.Invite] Cannot notify user %s: %v", target.User, err)
	} else {
		s.Notifier.NotifyUser(receiver.Username, models.EventNewInvite, payload{
			"hackathonId": target.Hackathon,
			"attendantId": target.ID,
			"invite":      invite,
			"from":        actor.Username,
		})
	}
	return target, nil
}

// Respond records the acting user's answer to one of their invites. Accepting
// joins the sender's group, or opens a new group numbered after the highest
// group of the hackathon when the sender has none. A full group or an already
// grouped receiver rejects the answer without changing anything.
func (s *AttendantService) Respond(ctx context.Context, actor models.Identity, inviteID, status string) (*models.Attendant, error) {
	answer, ok := models.ParseInviteStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: invite status %q", ErrInvalidInput, status)
	}

	receiver, err := s.Store.FindAttendantByInvite(ctx, inviteID)
	if err != nil {
		return nil, wrapNotFound(err, "invite %s", inviteID)
	}

	unlock := s.locks.Lock(receiver.Hackathon)
	defer unlock()

	receiver, err = s.Store.FindAttendantByInvite(ctx, inviteID)
	if err != nil {
		return nil, wrapNotFound(err, "invite %s", inviteID)
	}
	if receiver.User != actor.UserID {
		return nil, fmt.Errorf("%w: invite %s belongs to another user", ErrForbidden, inviteID)
	}
	idx := receiver.FindInvite(inviteID)
	if receiver.Invites[idx].Status != models.InvitePending {
		return nil, fmt.Errorf("%w: invite %s was already %s", ErrInvalidInput, inviteID, receiver.Invites[idx].Status)
	}

	sender, err := s.Store.GetAttendant(ctx, receiver.Invites[idx].From)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: sender of invite %s left the hackathon", ErrInvalidInput, inviteID)
		}
		return nil, fmt.Errorf("load sender: %w", err)
	}

	changed := []*models.Attendant{receiver}
	if answer == models.InviteAccepted {
		senderChanged, err := s.joinGroups(ctx, receiver, sender, inviteID)
		if err != nil {
			return nil, err
		}
		if senderChanged {
			changed = append(changed, sender)
		}
	}

	idx = receiver.FindInvite(inviteID)
	receiver.Invites[idx].Status = answer
	if err := s.Store.UpdateAttendants(ctx, changed...); err != nil {
		return nil, fmt.Errorf("update attendants: %w", err)
	}
	if len(changed) > 1 {
		logger.Info.Printf("[AttendantService.Respond] Formed group %d in hackathon %s", *receiver.Group, receiver.Hackathon)
		s.Metrics.GroupFormed(receiver.Hackathon)
	}
	logger.Info.Printf("[AttendantService.Respond] %s %s invite %s", actor.Username, answer, inviteID)

	if u, err := s.Store.GetUser(ctx, sender.User); err != nil {
		logger.Warn.Printf("[AttendantService.Respond] Cannot notify user %s: %v", sender.User, err)
	} else {
		s.Notifier.NotifyUser(u.Username, models.EventAttendantUpdate, payload{
			"hackathonId": receiver.Hackathon,
			"attendantId": receiver.ID,
			"inviteId":    inviteID,
			"status":      answer,
			"group":       receiver.Group,
		})
	}
	return receiver, nil
}

// joinGroups assigns receiver (and an ungrouped sender) to a group in memory.
// It reports whether sender changed too; the caller stores both together.
func (s *AttendantService) joinGroups(ctx context.Context, receiver, sender *models.Attendant, inviteID string) (bool, error) {
	if receiver.InGroup() {
		return false, fmt.Errorf("%w: attendant %s", ErrAlreadyGrouped, receiver.ID)
	}

	h, err := s.Store.GetHackathon(ctx, receiver.Hackathon)
	if err != nil {
		return false, wrapNotFound(err, "hackathon %s", receiver.Hackathon)
	}
	limit := h.AttendantsRequirements.MaxGroupComponents

	attendants, err := s.Store.ListAttendantsByHackathon(ctx, receiver.Hackathon)
	if err != nil {
		return false, fmt.Errorf("list attendants: %w", err)
	}

	if sender.InGroup() {
		group := *sender.Group
		if len(store.GroupMembers(attendants, group)) >= limit {
			return false, fmt.Errorf("%w: group %d has %d members", ErrGroupFull, group, limit)
		}
		receiver.Group = &group
		receiver.ClearPendingInvites(inviteID)
		return false, nil
	}

	if limit < 2 {
		return false, fmt.Errorf("%w: groups are limited to %d member", ErrGroupFull, limit)
	}
	group := store.MaxGroup(attendants) + 1
	sender.Group = &group
	sender.ClearPendingInvites("")
	receiver.Group = &group
	receiver.ClearPendingInvites(inviteID)
	return true, nil
}

// ListForUser returns the attendant records of userID with a summary of each hackathon.
func (s *AttendantService) ListForUser(ctx context.Context, userID string) ([]models.AttendantView, error) {
	attendants, err := s.Store.ListAttendantsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attendants: %w", err)
	}
	views := make([]models.AttendantView, 0, len(attendants))
	for _, a := range attendants {
		v := models.AttendantView{Attendant: a}
		if h, err := s.Store.GetHackathon(ctx, a.Hackathon); err == nil {
			v.HackathonInfo = h
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("load hackathon %s: %w", a.Hackathon, err)
		}
		views = append(views, v)
	}
	return views, nil
}

// ListForHackathon returns the attendants of a hackathon with their public profiles.
func (s *AttendantService) ListForHackathon(ctx context.Context, hackathonID string) ([]models.AttendantView, error) {
	if _, err := s.Store.GetHackathon(ctx, hackathonID); err != nil {
		return nil, wrapNotFound(err, "hackathon %s", hackathonID)
	}
	attendants, err := s.Store.ListAttendantsByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("list attendants: %w", err)
	}
	views := make([]models.AttendantView, 0, len(attendants))
	for _, a := range attendants {
		v := models.AttendantView{Attendant: a}
		if u, err := s.Store.GetUser(ctx, a.User); err == nil {
			pub := u.Public()
			v.UserInfo = &pub
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("load user %s: %w", a.User, err)
		}
		views = append(views, v)
	}
	return views, nil
}
