package board

import (
	"context"
	"log/slog"

	"board/internal/database"
	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
)

// Vote sets the user's vote on a post to up or down.
func (s *Service) Vote(ctx context.Context, postID uuid.UUID, user *models.User, up bool) (*models.VoteResult, error) {
	direction := models.VoteDown
	if up {
		direction = models.VoteUp
	}
	return s.SetVote(ctx, postID, user, direction)
}

// CancelVote removes the user's vote on a post, if any.
func (s *Service) CancelVote(ctx context.Context, postID uuid.UUID, user *models.User) (*models.VoteResult, error) {
	return s.SetVote(ctx, postID, user, models.VoteNone)
}

// SetVote moves the user's vote on a post to direction. The like counter
// tracks upvotes only: it changes by the difference in upvote weight between
// the old and the new direction.
func (s *Service) SetVote(ctx context.Context, postID uuid.UUID, user *models.User, direction models.VoteDirection) (*models.VoteResult, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if !direction.Valid() {
		return nil, utils.NewValidationError("vote direction must be up, down or none")
	}

	var result *models.VoteResult
	run := func() error {
		return s.store.InTx(ctx, func(r database.Repository) error {
			var err error
			result, err = s.applyVote(ctx, r, postID, user, direction)
			return err
		})
	}

	err := run()
	if utils.IsErrorCode(err, utils.ErrDuplicate) {
		// A concurrent first vote inserted the row; the retry sees it and updates.
		slog.Debug("Vote insert raced, retrying", "post", postID, "user", user.ID)
		err = run()
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) applyVote(ctx context.Context, r database.Repository, postID uuid.UUID, user *models.User, next models.VoteDirection) (*models.VoteResult, error) {
	post, err := r.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Deleted {
		return nil, utils.NewValidationError("cannot vote on a deleted post")
	}

	existing, lookupErr := r.GetPostVote(ctx, postID, user.ID)
	if lookupErr != nil && !utils.IsErrorCode(lookupErr, utils.ErrNotFound) {
		return nil, lookupErr
	}
	prev := existing.Direction()

	switch {
	case prev == next:
		// Repeating the current direction changes nothing
	case next == models.VoteNone:
		err = r.DeletePostVote(ctx, existing.ID)
	case existing == nil:
		err = r.CreatePostVote(ctx, &models.PostVote{
			ID:        uuid.New(),
			PostID:    postID,
			UserID:    user.ID,
			IsUpvote:  next == models.VoteUp,
			CreatedAt: s.now(),
		})
	default:
		err = r.UpdatePostVote(ctx, existing.ID, next == models.VoteUp)
	}
	if err != nil {
		return nil, err
	}

	delta := next.Upvotes() - prev.Upvotes()
	if delta != 0 {
		if err := r.AdjustPostLikes(ctx, postID, delta); err != nil {
			return nil, err
		}
	}

	return &models.VoteResult{
		PostID:    postID,
		Direction: next,
		LikeCount: post.LikeCount + delta,
	}, nil
}

// VoteStatus reports the direction the user currently holds on a post.
func (s *Service) VoteStatus(ctx context.Context, postID, userID uuid.UUID) (models.VoteDirection, error) {
	vote, err := s.store.GetPostVote(ctx, postID, userID)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return models.VoteNone, nil
	}
	if err != nil {
		return models.VoteNone, err
	}
	return vote.Direction(), nil
}

// VoteCounts derives the up and down totals of a post from its vote rows.
func (s *Service) VoteCounts(ctx context.Context, postID uuid.UUID) (*models.VoteCounts, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.CountPostVotes(ctx, postID)
}
