package board

import (
	"testing"

	"board/internal/models"
	"board/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioVoteLifecycle(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	p, err := f.svc.CreatePost(f.ctx, "T", "C", "", a)
	require.NoError(t, err)
	assert.Equal(t, 0, p.ViewCount)

	_, err = f.svc.Vote(f.ctx, p.ID, b, true)
	require.NoError(t, err)
	assert.Equal(t, 1, f.likeCount(t, p.ID))

	_, err = f.svc.Vote(f.ctx, p.ID, b, false)
	require.NoError(t, err)
	assert.Equal(t, 0, f.likeCount(t, p.ID))
	vote, err := f.store.GetPostVote(f.ctx, p.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, vote.IsUpvote)
	counts, err := f.svc.VoteCounts(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Upvotes+counts.Downvotes)

	_, err = f.svc.CancelVote(f.ctx, p.ID, b)
	require.NoError(t, err)
	_, err = f.store.GetPostVote(f.ctx, p.ID, b.ID)
	requireCode(t, err, utils.ErrNotFound)
	assert.Equal(t, 0, f.likeCount(t, p.ID))
}

func TestScenarioReplyDepth(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	p := f.post(t, a)

	c1, err := f.svc.CreateComment(f.ctx, p.ID, "C1", a)
	require.NoError(t, err)
	c2, err := f.svc.CreateReply(f.ctx, c1.ID, "C2", b)
	require.NoError(t, err)
	require.NotNil(t, c2.ParentID)
	assert.Equal(t, c1.ID, *c2.ParentID)

	_, err = f.svc.CreateReply(f.ctx, c2.ID, "C3", a)
	requireCode(t, err, utils.ErrInvalidInput)
}

func TestScenarioReportResolution(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	m := f.moderator(t, "m")
	p := f.post(t, a)

	report, err := f.svc.ReportPost(f.ctx, p.ID, b, "spam")
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, report.Status)

	_, err = f.svc.ReportPost(f.ctx, p.ID, b, "spam")
	requireCode(t, err, utils.ErrAlreadyReported)

	resolved, err := f.svc.UpdateReportStatus(f.ctx, report.ID, models.ReportResolved, m)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, resolved.Status)

	again, err := f.svc.UpdateReportStatus(f.ctx, report.ID, models.ReportResolved, m)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, again.Status)

	stored, err := f.store.GetReport(f.ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, stored.Status)
}
