package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hackhub/models"
)

// storeFactories lets every contract test run against each implementation.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"sqlite": func() Store {
			dsn := "file:" + filepath.Join(t.TempDir(), "hub.db")
			s, err := OpenSQL(context.Background(), "sqlite", dsn)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func newUser(username string, role models.Role) *models.User {
	return &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Name:      username,
		Role:      role,
		CreatedAt: time.Now(),
	}
}

func intPtr(n int) *int { return &n }

func TestStore_Users(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory()

			ada := newUser("ada", models.RoleClient)
			require.NoError(t, s.CreateUser(ctx, ada))
			assert.ErrorIs(t, s.CreateUser(ctx, newUser("ada", models.RoleClient)), ErrDuplicate)

			got, err := s.GetUserByUsername(ctx, "ada")
			require.NoError(t, err)
			assert.Equal(t, ada.ID, got.ID)

			_, err = s.GetUserByUsername(ctx, "Ada")
			assert.ErrorIs(t, err, ErrNotFound, "lookup is case-sensitive")

			got.Skills = []string{"go", "sql"}
			require.NoError(t, s.UpdateUser(ctx, got))
			again, err := s.GetUser(ctx, ada.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{"go", "sql"}, again.Skills)

			require.NoError(t, s.CreateUser(ctx, newUser("acme", models.RoleOrganization)))
			clients, err := s.ListUsers(ctx, models.RoleClient)
			require.NoError(t, err)
			assert.Len(t, clients, 1)

			assert.ErrorIs(t, s.UpdateUser(ctx, newUser("ghost", models.RoleClient)), ErrNotFound)
		})
	}
}

func TestStore_Hackathons(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory()

			h := &models.Hackathon{
				ID:           uuid.NewString(),
				Name:         "Green Code Jam",
				Organization: "org-1",
				Status:       models.StatusPending,
				Location:     models.Location{City: "Milano", Country: "Italy"},
				CreatedAt:    time.Now(),
				Attendants:   []string{"ignored"},
			}
			require.NoError(t, s.CreateHackathon(ctx, h))
			require.NoError(t, s.CreateHackathon(ctx, &models.Hackathon{
				ID:        uuid.NewString(),
				Name:      "Rust Night",
				Status:    models.StatusPending,
				Location:  models.Location{City: "Berlin", Country: "Germany"},
				CreatedAt: time.Now().Add(time.Second),
			}))

			got, err := s.GetHackathon(ctx, h.ID)
			require.NoError(t, err)
			assert.Empty(t, got.Attendants, "attendants are not persisted on the hackathon")

			list, err := s.ListHackathons(ctx, models.HackathonFilter{City: "milano"})
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, h.ID, list[0].ID)

			list, err = s.ListHackathons(ctx, models.HackathonFilter{Name: "night"})
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "Rust Night", list[0].Name)

			list, err = s.ListHackathons(ctx, models.HackathonFilter{})
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "Rust Night", list[0].Name, "newest first")

			got.Status = models.StatusStarted
			require.NoError(t, s.UpdateHackathon(ctx, got))
			list, err = s.ListHackathons(ctx, models.HackathonFilter{Status: models.StatusStarted})
			require.NoError(t, err)
			assert.Len(t, list, 1)

			_, err = s.GetHackathon(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Attendants(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory()

			a := &models.Attendant{ID: uuid.NewString(), User: "u1", Hackathon: "h1", CreatedAt: time.Now()}
			b := &models.Attendant{ID: uuid.NewString(), User: "u2", Hackathon: "h1", CreatedAt: time.Now().Add(time.Millisecond)}
			require.NoError(t, s.CreateAttendant(ctx, a))
			require.NoError(t, s.CreateAttendant(ctx, b))
			assert.ErrorIs(t, s.CreateAttendant(ctx, &models.Attendant{
				ID: uuid.NewString(), User: "u1", Hackathon: "h1", CreatedAt: time.Now(),
			}), ErrDuplicate)

			found, err := s.FindAttendant(ctx, "h1", "u2")
			require.NoError(t, err)
			assert.Equal(t, b.ID, found.ID)

			inviteID := uuid.NewString()
			found.Invites = append(found.Invites, models.Invite{
				ID: inviteID, From: a.ID, Date: time.Now(), Status: models.InvitePending,
			})
			found.Group = intPtr(3)
			require.NoError(t, s.UpdateAttendant(ctx, found))

			byInvite, err := s.FindAttendantByInvite(ctx, inviteID)
			require.NoError(t, err)
			assert.Equal(t, b.ID, byInvite.ID)
			require.NotNil(t, byInvite.Group)
			assert.Equal(t, 3, *byInvite.Group)

			list, err := s.ListAttendantsByHackathon(ctx, "h1")
			require.NoError(t, err)
			assert.Len(t, list, 2)

			h := &models.Hackathon{ID: "h1"}
			require.NoError(t, AttachAttendants(ctx, s, h))
			assert.ElementsMatch(t, []string{"u1", "u2"}, h.Attendants)

			require.NoError(t, s.DeleteAttendant(ctx, b.ID))
			_, err = s.FindAttendantByInvite(ctx, inviteID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.DeleteAttendant(ctx, b.ID), ErrNotFound)

			mine, err := s.ListAttendantsByUser(ctx, "u1")
			require.NoError(t, err)
			assert.Len(t, mine, 1)
		})
	}
}

func TestStore_ModifyUser(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory()
			ada := newUser("ada", models.RoleClient)
			require.NoError(t, s.CreateUser(ctx, ada))

			const workers = 20
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.ModifyUser(ctx, ada.ID, func(u *models.User) error {
						if u.Badge == nil {
							u.Badge = &models.Badge{}
						}
						u.Badge.Participation++
						return nil
					})
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			got, err := s.GetUser(ctx, ada.ID)
			require.NoError(t, err)
			require.NotNil(t, got.Badge)
			assert.Equal(t, workers, got.Badge.Participation, "no increment is lost")

			boom := errors.New("boom")
			_, err = s.ModifyUser(ctx, ada.ID, func(u *models.User) error {
				u.Name = "changed"
				return boom
			})
			assert.ErrorIs(t, err, boom)
			got, err = s.GetUser(ctx, ada.ID)
			require.NoError(t, err)
			assert.Equal(t, "ada", got.Name)

			_, err = s.ModifyUser(ctx, "missing", func(*models.User) error { return nil })
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_UpdateAttendants_AllOrNothing(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := factory()
			a := &models.Attendant{ID: uuid.NewString(), User: "u1", Hackathon: "h1", CreatedAt: time.Now()}
			b := &models.Attendant{ID: uuid.NewString(), User: "u2", Hackathon: "h1", CreatedAt: time.Now()}
			require.NoError(t, s.CreateAttendant(ctx, a))
			require.NoError(t, s.CreateAttendant(ctx, b))

			a.Group, b.Group = intPtr(1), intPtr(1)
			require.NoError(t, s.UpdateAttendants(ctx, a, b))
			list, err := s.ListAttendantsByHackathon(ctx, "h1")
			require.NoError(t, err)
			assert.Len(t, GroupMembers(list, 1), 2)

			a.Group = intPtr(2)
			ghost := &models.Attendant{ID: "ghost", User: "u3", Hackathon: "h1"}
			assert.ErrorIs(t, s.UpdateAttendants(ctx, a, ghost), ErrNotFound)
			got, err := s.GetAttendant(ctx, a.ID)
			require.NoError(t, err)
			require.NotNil(t, got.Group)
			assert.Equal(t, 1, *got.Group, "a failed batch writes nothing")
		})
	}
}

func TestGroupHelpers(t *testing.T) {
	attendants := []models.Attendant{
		{ID: "a", Group: intPtr(1)},
		{ID: "b", Group: intPtr(1)},
		{ID: "c", Group: intPtr(4)},
		{ID: "d"},
	}

	assert.Equal(t, 4, MaxGroup(attendants))
	assert.Len(t, GroupMembers(attendants, 1), 2)
	assert.Empty(t, GroupMembers(attendants, 2))
	assert.Equal(t, 0, MaxGroup(nil))
}

func TestOpenSQL_UnknownDriver(t *testing.T) {
	_, err := OpenSQL(context.Background(), "mongo", "x")
	assert.Error(t, err)
}
