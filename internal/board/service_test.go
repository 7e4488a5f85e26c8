package board

import (
	"context"
	"sync"
	"testing"
	"time"

	"board/internal/database"
	"board/internal/models"
	"board/internal/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recordingSink collects published moderation events.
type recordingSink struct {
	mu     sync.Mutex
	events []models.ModerationEvent
}

func (r *recordingSink) Publish(ctx context.Context, event models.ModerationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) kinds() []models.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]models.EventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type fixture struct {
	ctx   context.Context
	store *database.SQLStore
	svc   *Service
	sink  *recordingSink
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := database.NewSQLStore(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.InitializeTables(context.Background()))
	t.Cleanup(func() { store.Close(context.Background()) })

	f := &fixture{
		ctx:   context.Background(),
		store: store,
		sink:  &recordingSink{},
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(store, f.sink)
	f.svc.bcryptCost = bcrypt.MinCost
	// Every call to now advances the clock so orderings are deterministic.
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	return f
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.svc.RegisterUser(f.ctx, username, username+"@example.com", "secret1", "")
	require.NoError(t, err)
	return u
}

func (f *fixture) moderator(t *testing.T, username string) *models.User {
	t.Helper()
	u := f.user(t, username)
	u.Role = models.RoleModerator
	require.NoError(t, f.store.UpdateUser(f.ctx, u))
	return u
}

func (f *fixture) post(t *testing.T, author *models.User) *models.Post {
	t.Helper()
	p, err := f.svc.CreatePost(f.ctx, "T", "C", "", author)
	require.NoError(t, err)
	return p
}

func (f *fixture) comment(t *testing.T, post *models.Post, author *models.User) *models.Comment {
	t.Helper()
	c, err := f.svc.CreateComment(f.ctx, post.ID, "first", author)
	require.NoError(t, err)
	return c
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, utils.IsErrorCode(err, code), "expected %s, got %v", code, err)
}
