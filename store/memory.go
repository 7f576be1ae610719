package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go-hackhub/models"
)

// MemoryStore keeps documents in process memory. Every read returns a fresh
// copy so callers can mutate results without touching stored state.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string][]byte
	hackathons map[string][]byte
	attendants map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string][]byte),
		hackathons: make(map[string][]byte),
		attendants: make(map[string][]byte),
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func encode(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

func decode[T any](b []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &v, nil
}

// ---------------- users ----------------

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicate
	}
	for _, raw := range s.users {
		existing, err := decode[models.User](raw)
		if err != nil {
			return err
		}
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	b, err := encode(u)
	if err != nil {
		return err
	}
	s.users[u.ID] = b
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return decode[models.User](raw)
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, raw := range s.users {
		u, err := decode[models.User](raw)
		if err != nil {
			return nil, err
		}
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return ErrNotFound
	}
	b, err := encode(u)
	if err != nil {
		return err
	}
	s.users[u.ID] = b
	return nil
}

func (s *MemoryStore) ModifyUser(_ context.Context, id string, fn func(u *models.User) error) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u, err := decode[models.User](raw)
	if err != nil {
		return nil, err
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	b, err := encode(u)
	if err != nil {
		return nil, err
	}
	s.users[id] = b
	return u, nil
}

func (s *MemoryStore) ListUsers(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, raw := range s.users {
		u, err := decode[models.User](raw)
		if err != nil {
			return nil, err
		}
		if role == "" || u.Role == role {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// ---------------- hackathons ----------------

func (s *MemoryStore) CreateHackathon(_ context.Context, h *models.Hackathon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hackathons[h.ID]; ok {
		return ErrDuplicate
	}
	return s.putHackathon(h)
}

func (s *MemoryStore) putHackathon(h *models.Hackathon) error {
	doc := *h
	doc.Attendants = nil
	b, err := encode(doc)
	if err != nil {
		return err
	}
	s.hackathons[h.ID] = b
	return nil
}

func (s *MemoryStore) GetHackathon(_ context.Context, id string) (*models.Hackathon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.hackathons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return decode[models.Hackathon](raw)
}

func (s *MemoryStore) UpdateHackathon(_ context.Context, h *models.Hackathon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hackathons[h.ID]; !ok {
		return ErrNotFound
	}
	return s.putHackathon(h)
}

func (s *MemoryStore) ListHackathons(_ context.Context, f models.HackathonFilter) ([]models.Hackathon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.Hackathon, 0, len(s.hackathons))
	for _, raw := range s.hackathons {
		h, err := decode[models.Hackathon](raw)
		if err != nil {
			return nil, err
		}
		if f.Matches(*h) {
			list = append(list, *h)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// ---------------- attendants ----------------

func (s *MemoryStore) CreateAttendant(_ context.Context, a *models.Attendant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attendants[a.ID]; ok {
		return ErrDuplicate
	}
	existing, err := s.findAttendant(func(x *models.Attendant) bool {
		return x.Hackathon == a.Hackathon && x.User == a.User
	})
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicate
	}
	b, err := encode(a)
	if err != nil {
		return err
	}
	s.attendants[a.ID] = b
	return nil
}

func (s *MemoryStore) findAttendant(match func(*models.Attendant) bool) (*models.Attendant, error) {
	for _, raw := range s.attendants {
		a, err := decode[models.Attendant](raw)
		if err != nil {
			return nil, err
		}
		if match(a) {
			return a, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) filterAttendants(match func(*models.Attendant) bool) ([]models.Attendant, error) {
	list := []models.Attendant{}
	for _, raw := range s.attendants {
		a, err := decode[models.Attendant](raw)
		if err != nil {
			return nil, err
		}
		if match(a) {
			list = append(list, *a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (s *MemoryStore) GetAttendant(_ context.Context, id string) (*models.Attendant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.attendants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return decode[models.Attendant](raw)
}

func (s *MemoryStore) FindAttendant(_ context.Context, hackathonID, userID string) (*models.Attendant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, err := s.findAttendant(func(x *models.Attendant) bool {
		return x.Hackathon == hackathonID && x.User == userID
	})
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) FindAttendantByInvite(_ context.Context, inviteID string) (*models.Attendant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, err := s.findAttendant(func(x *models.Attendant) bool {
		return x.FindInvite(inviteID) >= 0
	})
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) UpdateAttendant(ctx context.Context, a *models.Attendant) error {
	return s.UpdateAttendants(ctx, a)
}

func (s *MemoryStore) UpdateAttendants(_ context.Context, attendants ...*models.Attendant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded := make([][]byte, len(attendants))
	for i, a := range attendants {
		if _, ok := s.attendants[a.ID]; !ok {
			return ErrNotFound
		}
		b, err := encode(a)
		if err != nil {
			return err
		}
		encoded[i] = b
	}
	for i, a := range attendants {
		s.attendants[a.ID] = encoded[i]
	}
	return nil
}

func (s *MemoryStore) DeleteAttendant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attendants[id]; !ok {
		return ErrNotFound
	}
	delete(s.attendants, id)
	return nil
}

func (s *MemoryStore) ListAttendantsByHackathon(_ context.Context, hackathonID string) ([]models.Attendant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAttendants(func(x *models.Attendant) bool { return x.Hackathon == hackathonID })
}

func (s *MemoryStore) ListAttendantsByUser(_ context.Context, userID string) ([]models.Attendant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterAttendants(func(x *models.Attendant) bool { return x.User == userID })
}
