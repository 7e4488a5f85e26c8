package board

import (
	"testing"

	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUser(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.RegisterUser(f.ctx, "alice", "alice@example.com", "secret1", "Al")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, u.Role)
	assert.Equal(t, "Al", u.Nickname)
	assert.NotEqual(t, "secret1", u.HashedPassword)
	assert.False(t, IsModerator(u))

	_, err = f.svc.RegisterUser(f.ctx, "alice", "other@example.com", "secret1", "")
	requireCode(t, err, utils.ErrDuplicate)

	_, err = f.svc.RegisterUser(f.ctx, "alice2", "alice@example.com", "secret1", "")
	requireCode(t, err, utils.ErrDuplicate)
}

func TestRegisterUserValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name, username, email, password string
	}{
		{"blank username", "  ", "a@example.com", "secret1"},
		{"email without at", "bob", "example.com", "secret1"},
		{"email without dot", "bob", "bob@example", "secret1"},
		{"short password", "bob", "bob@example.com", "123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.RegisterUser(f.ctx, tc.username, tc.email, tc.password, "")
			requireCode(t, err, utils.ErrInvalidInput)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice")

	u, err := f.svc.Authenticate(f.ctx, "alice", "secret1")
	require.NoError(t, err)
	require.NotNil(t, u.LastLoginAt)

	stored, err := f.store.GetUser(f.ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.True(t, stored.LastLoginAt.Equal(*u.LastLoginAt))

	_, err = f.svc.Authenticate(f.ctx, "alice", "wrong-password")
	requireCode(t, err, utils.ErrUnauthorized)

	_, err = f.svc.Authenticate(f.ctx, "nobody", "secret1")
	requireCode(t, err, utils.ErrUnauthorized)
}

func TestResolveUser(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	got, err := f.svc.ResolveUser(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = f.svc.ResolveUser(f.ctx, uuid.New())
	requireCode(t, err, utils.ErrUnauthorized)
}

func TestUpdateProfileAndStats(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")

	updated, err := f.svc.UpdateProfile(f.ctx, alice, "Alice A.", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.Nickname)
	assert.Equal(t, "alice@example.com", updated.Email)

	_, err = f.svc.UpdateProfile(f.ctx, alice, "", "bob@example.com")
	requireCode(t, err, utils.ErrDuplicate)

	_, err = f.svc.UpdateProfile(f.ctx, nil, "x", "")
	requireCode(t, err, utils.ErrUnauthorized)

	post := f.post(t, alice)
	f.comment(t, post, alice)
	gone := f.post(t, alice)
	require.NoError(t, f.svc.SoftDeletePost(f.ctx, gone.ID, alice))

	profile, err := f.svc.GetProfile(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, profile.PostCount)
	assert.Equal(t, 1, profile.CommentCount)
	assert.Equal(t, 2, profile.TotalActivity())

	_, err = f.svc.GetProfile(f.ctx, "nobody")
	requireCode(t, err, utils.ErrNotFound)
}

func TestEnsureModerator(t *testing.T) {
	f := newFixture(t)
	f.user(t, "root")

	require.NoError(t, f.svc.EnsureModerator(f.ctx, "root"))
	require.NoError(t, f.svc.EnsureModerator(f.ctx, "root"))
	require.NoError(t, f.svc.EnsureModerator(f.ctx, "ghost"))

	root, err := f.store.GetUserByUsername(f.ctx, "root")
	require.NoError(t, err)
	assert.True(t, root.IsModerator())
}
