package board

import (
	"strings"
	"testing"

	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommentRules(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	post := f.post(t, alice)

	c, err := f.svc.CreateComment(f.ctx, post.ID, "hello", alice)
	require.NoError(t, err)
	assert.Nil(t, c.ParentID)
	assert.Equal(t, post.ID, c.PostID)
	assert.Equal(t, 0, c.LikeCount)

	_, err = f.svc.CreateComment(f.ctx, uuid.New(), "hello", alice)
	requireCode(t, err, utils.ErrNotFound)

	_, err = f.svc.CreateComment(f.ctx, post.ID, strings.Repeat("x", MaxCommentLength+1), alice)
	requireCode(t, err, utils.ErrInvalidInput)

	_, err = f.svc.CreateComment(f.ctx, post.ID, "   ", alice)
	requireCode(t, err, utils.ErrInvalidInput)

	require.NoError(t, f.svc.SoftDeletePost(f.ctx, post.ID, alice))
	_, err = f.svc.CreateComment(f.ctx, post.ID, "hello", alice)
	requireCode(t, err, utils.ErrInvalidInput)
}

func TestRepliesAreLimitedToOneLevel(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	post := f.post(t, alice)
	top := f.comment(t, post, alice)

	reply, err := f.svc.CreateReply(f.ctx, top.ID, "reply", bob)
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)
	assert.Equal(t, post.ID, reply.PostID)
	assert.True(t, reply.IsReply())

	_, err = f.svc.CreateReply(f.ctx, reply.ID, "too deep", alice)
	requireCode(t, err, utils.ErrInvalidInput)

	_, err = f.svc.CreateReply(f.ctx, uuid.New(), "orphan", alice)
	requireCode(t, err, utils.ErrNotFound)

	require.NoError(t, f.svc.SoftDeleteComment(f.ctx, top.ID, alice))
	_, err = f.svc.CreateReply(f.ctx, top.ID, "late", bob)
	requireCode(t, err, utils.ErrInvalidInput)
}

func TestReplyRejectedOnDeletedPost(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	post := f.post(t, alice)
	top := f.comment(t, post, alice)

	require.NoError(t, f.svc.SoftDeletePost(f.ctx, post.ID, alice))
	_, err := f.svc.CreateReply(f.ctx, top.ID, "reply", alice)
	requireCode(t, err, utils.ErrInvalidInput)
}

func TestCommentEditDeleteRestore(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	mod := f.moderator(t, "mod")
	post := f.post(t, alice)
	c := f.comment(t, post, alice)

	_, err := f.svc.UpdateComment(f.ctx, c.ID, "edited", bob)
	requireCode(t, err, utils.ErrForbidden)

	edited, err := f.svc.UpdateComment(f.ctx, c.ID, "edited", alice)
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)

	requireCode(t, f.svc.SoftDeleteComment(f.ctx, c.ID, bob), utils.ErrForbidden)
	require.NoError(t, f.svc.SoftDeleteComment(f.ctx, c.ID, mod))
	requireCode(t, f.svc.SoftDeleteComment(f.ctx, c.ID, alice), utils.ErrAlreadyDeleted)

	_, err = f.svc.GetComment(f.ctx, c.ID)
	requireCode(t, err, utils.ErrNotFound)

	_, err = f.svc.UpdateComment(f.ctx, c.ID, "again", alice)
	requireCode(t, err, utils.ErrInvalidInput)

	restored, err := f.svc.RestoreComment(f.ctx, c.ID, alice)
	require.NoError(t, err)
	assert.False(t, restored.Deleted)
	assert.Nil(t, restored.DeletedAt)

	_, err = f.svc.RestoreComment(f.ctx, c.ID, alice)
	requireCode(t, err, utils.ErrInvalidInput)
}

func TestCommentQueries(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	post := f.post(t, alice)

	first := f.comment(t, post, alice)
	second := f.comment(t, post, bob)
	hidden := f.comment(t, post, bob)
	require.NoError(t, f.svc.SoftDeleteComment(f.ctx, hidden.ID, bob))

	r1, err := f.svc.CreateReply(f.ctx, first.ID, "r1", bob)
	require.NoError(t, err)
	r2, err := f.svc.CreateReply(f.ctx, first.ID, "r2", alice)
	require.NoError(t, err)

	top, err := f.svc.CommentsByPost(f.ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, first.ID, top[0].ID)
	assert.Equal(t, second.ID, top[1].ID)

	replies, err := f.svc.RepliesByParent(f.ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, r1.ID, replies[0].ID)
	assert.Equal(t, r2.ID, replies[1].ID)

	byBob, err := f.svc.CommentsByAuthor(f.ctx, bob.ID, models.Page{})
	require.NoError(t, err)
	assert.Len(t, byBob, 2)

	count, err := f.svc.CommentCount(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	_, err = f.svc.CommentsByPost(f.ctx, uuid.New())
	requireCode(t, err, utils.ErrNotFound)
	_, err = f.svc.RepliesByParent(f.ctx, uuid.New())
	requireCode(t, err, utils.ErrNotFound)
}
