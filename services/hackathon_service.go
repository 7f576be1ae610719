// file: services/hackathon_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go-hackhub/logger"
	"go-hackhub/metrics"
	"go-hackhub/models"
	"go-hackhub/store"
)

// HackathonInput carries the fields of a new hackathon.
type HackathonInput struct {
	Name                   string
	Description            string
	StartDate              time.Time
	EndDate                time.Time
	Location               models.Location
	Prize                  models.Prize
	AttendantsRequirements models.AttendantsRequirements
}

func (in HackathonInput) validate() error {
	req := in.AttendantsRequirements
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return fmt.Errorf("%w: start and end date are required", ErrInvalidInput)
	case !in.EndDate.After(in.StartDate):
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidInput)
	case in.Prize.Amount < 0:
		return fmt.Errorf("%w: prize amount cannot be negative", ErrInvalidInput)
	case req.MinNum < 0 || req.MaxNum < 0:
		return fmt.Errorf("%w: attendant bounds cannot be negative", ErrInvalidInput)
	case req.MaxNum > 0 && req.MaxNum < req.MinNum:
		return fmt.Errorf("%w: maxNum is lower than minNum", ErrInvalidInput)
	case req.MaxGroupComponents < 1:
		return fmt.Errorf("%w: maxGroupComponents must be at least 1", ErrInvalidInput)
	}
	return nil
}

// HackathonService manages hackathons and their subscriptions.
type HackathonService struct {
	Store          store.Store
	Notifier       Notifier
	Metrics        metrics.Publisher
	ApplicationURL string
	// Encode renders share codes; nil uses the real QR encoder.
	Encode QREncoder
	locks  *KeyedMutex
}

// NewHackathonService wires a HackathonService. locks is shared with the
// AttendantService; nil creates a private one.
func NewHackathonService(s store.Store, n Notifier, m metrics.Publisher, locks *KeyedMutex, applicationURL string) *HackathonService {
	if n == nil {
		n = NoopNotifier{}
	}
	if m == nil {
		m = metrics.Noop{}
	}
	if locks == nil {
		locks = NewKeyedMutex()
	}
	return &HackathonService{Store: s, Notifier: n, Metrics: m, ApplicationURL: applicationURL, locks: locks}
}

// Create stores a new pending hackathon owned by the acting organization.
func (s *HackathonService) Create(ctx context.Context, actor models.Identity, in HackathonInput) (*models.Hackathon, error) {
	if !actor.IsOrganization() {
		return nil, fmt.Errorf("%w: only organizations create hackathons", ErrForbidden)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	h := &models.Hackathon{
		ID:                     uuid.NewString(),
		Name:                   strings.TrimSpace(in.Name),
		Description:            in.Description,
		Organization:           actor.UserID,
		StartDate:              in.StartDate.UTC(),
		EndDate:                in.EndDate.UTC(),
		Status:                 models.StatusPending,
		Location:               in.Location,
		Prize:                  in.Prize,
		AttendantsRequirements: in.AttendantsRequirements,
		CreatedAt:              time.Now().UTC(),
		Attendants:             []string{},
	}
	if err := s.Store.CreateHackathon(ctx, h); err != nil {
		return nil, fmt.Errorf("create hackathon: %w", err)
	}
	logger.Info.Printf("[HackathonService.Create] %s created hackathon %s (%s)", actor.Username, h.Name, h.ID)
	return h, nil
}

// Get loads a hackathon with its attendants joined.
func (s *HackathonService) Get(ctx context.Context, id string) (*models.Hackathon, error) {
	h, err := s.Store.GetHackathon(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "hackathon %s", id)
	}
	if err := store.AttachAttendants(ctx, s.Store, h); err != nil {
		return nil, err
	}
	return h, nil
}

// List returns the hackathons matching f, newest first, with attendants joined.
func (s *HackathonService) List(ctx context.Context, f models.HackathonFilter) ([]models.Hackathon, error) {
	list, err := s.Store.ListHackathons(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list hackathons: %w", err)
	}
	for i := range list {
		if err := store.AttachAttendants(ctx, s.Store, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ListByOrganization returns the hackathons owned by the organization username.
func (s *HackathonService) ListByOrganization(ctx context.Context, username string) ([]models.Hackathon, error) {
	org, err := s.Store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, wrapNotFound(err, "organization %s", username)
	}
	if !org.IsOrganization() {
		return nil, fmt.Errorf("%w: %s is not an organization", ErrNotFound, username)
	}
	return s.List(ctx, models.HackathonFilter{Organization: org.ID})
}

// Subscribe adds the acting user to the hackathon. Subscribing twice leaves
// the hackathon unchanged. Capacity is not enforced; see Hackathon.Full.
func (s *HackathonService) Subscribe(ctx context.Context, actor models.Identity, hackathonID string) (*models.Hackathon, error) {
	if actor.IsOrganization() {
		return nil, fmt.Errorf("%w: organizations cannot attend hackathons", ErrForbidden)
	}
	unlock := s.locks.Lock(hackathonID)
	defer unlock()

	h, err := s.Get(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if h.Status == models.StatusFinished {
		return nil, fmt.Errorf("%w: hackathon %s is finished", ErrInvalidInput, h.ID)
	}
	if containsString(h.Attendants, actor.UserID) {
		logger.Debug.Printf("[HackathonService.Subscribe] %s already attends %s", actor.Username, h.ID)
		return h, nil
	}

	a := &models.Attendant{
		ID:        uuid.NewString(),
		User:      actor.UserID,
		Hackathon: h.ID,
		Invites:   []models.Invite{},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.CreateAttendant(ctx, a); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// a concurrent subscribe won
			return s.Get(ctx, hackathonID)
		}
		return nil, fmt.Errorf("create attendant: %w", err)
	}
	h.Attendants = append(h.Attendants, actor.UserID)

	logger.Info.Printf("[HackathonService.Subscribe] %s subscribed to %s", actor.Username, h.ID)
	s.Metrics.Subscription(h.ID, 1)
	s.Notifier.NotifyOrganizations(models.EventNewAttendant, payload{
		"hackathonId":   h.ID,
		"hackathonName": h.Name,
		"organization":  h.Organization,
		"attendantId":   a.ID,
		"username":      actor.Username,
	})
	return h, nil
}

// Unsubscribe removes the acting user from the hackathon. Invites the user
// sent that are still pending are withdrawn. Non-members get the hackathon unchanged.
func (s *HackathonService) Unsubscribe(ctx context.Context, actor models.Identity, hackathonID string) (*models.Hackathon, error) {
	unlock := s.locks.Lock(hackathonID)
	defer unlock()

	h, err := s.Get(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if h.Status == models.StatusFinished {
		return nil, fmt.Errorf("%w: hackathon %s is finished", ErrInvalidInput, h.ID)
	}

	a, err := s.Store.FindAttendant(ctx, h.ID, actor.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attendant: %w", err)
	}

	if err := s.Store.DeleteAttendant(ctx, a.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("delete attendant: %w", err)
	}
	if err := s.withdrawInvites(ctx, h.ID, a.ID); err != nil {
		logger.Error.Printf("[HackathonService.Unsubscribe] Withdrawing invites of %s: %v", a.ID, err)
	}

	h.Attendants = removeString(h.Attendants, actor.UserID)
	logger.Info.Printf("[HackathonService.Unsubscribe] %s left %s", actor.Username, h.ID)
	s.Metrics.Subscription(h.ID, -1)
	return h, nil
}

// withdrawInvites drops pending invites sent by senderID inside one hackathon.
// The caller holds the hackathon lock.
func (s *HackathonService) withdrawInvites(ctx context.Context, hackathonID, senderID string) error {
	attendants, err := s.Store.ListAttendantsByHackathon(ctx, hackathonID)
	if err != nil {
		return err
	}
	for i := range attendants {
		a := &attendants[i]
		kept := a.Invites[:0]
		for _, inv := range a.Invites {
			if inv.From != senderID || inv.Status != models.InvitePending {
				kept = append(kept, inv)
			}
		}
		if len(kept) == len(a.Invites) {
			continue
		}
		a.Invites = kept
		if err := s.Store.UpdateAttendant(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus moves the hackathon to target. Only the owning organization may
// do so and statuses never move backwards. Finishing a hackathon counts one
// participation on the badge of every CLIENT attendant.
func (s *HackathonService) UpdateStatus(ctx context.Context, actor models.Identity, hackathonID, target string) (*models.Hackathon, error) {
	next, ok := models.ParseStatus(target)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	unlock := s.locks.Lock(hackathonID)
	defer unlock()

	h, err := s.Get(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if h.Organization != actor.UserID {
		return nil, fmt.Errorf("%w: %s does not own hackathon %s", ErrForbidden, actor.Username, h.ID)
	}
	if !h.Status.CanAdvanceTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrStatusRegression, h.Status, next)
	}
	if h.Status == next {
		return h, nil
	}

	previous := h.Status
	h.Status = next
	if err := s.Store.UpdateHackathon(ctx, h); err != nil {
		return nil, fmt.Errorf("update hackathon: %w", err)
	}
	logger.Info.Printf("[HackathonService.UpdateStatus] Hackathon %s: %s -> %s", h.ID, previous, next)

	if next == models.StatusFinished {
		s.countParticipations(ctx, h)
	}
	return h, nil
}

// countParticipations bumps the participation counter of each CLIENT attendant.
// Failures are logged; the status change itself has already been stored.
func (s *HackathonService) countParticipations(ctx context.Context, h *models.Hackathon) {
	for _, userID := range h.Attendants {
		_, err := s.Store.ModifyUser(ctx, userID, func(u *models.User) error {
			if u.Role != models.RoleClient {
				return nil
			}
			if u.Badge == nil {
				u.Badge = &models.Badge{}
			}
			u.Badge.Participation++
			return nil
		})
		if err != nil {
			logger.Error.Printf("[HackathonService.countParticipations] Update user %s: %v", userID, err)
		}
	}
}

// ShareURL is the public address of the hackathon page.
func (s *HackathonService) ShareURL(id string) string {
	return strings.TrimRight(s.ApplicationURL, "/") + "/hackathons/" + id
}

// ShareCode renders a QR code PNG pointing at the hackathon page.
func (s *HackathonService) ShareCode(ctx context.Context, id string, size int) ([]byte, error) {
	if _, err := s.Store.GetHackathon(ctx, id); err != nil {
		return nil, wrapNotFound(err, "hackathon %s", id)
	}
	png, err := GenerateQRCode(s.ShareURL(id), size, s.Encode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return png, nil
}

// payload is the body of a realtime notification.
type payload = map[string]interface{}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
