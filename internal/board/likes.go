package board

import (
	"context"

	"board/internal/database"
	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
)

// ToggleLike likes the comment if the user has not, and unlikes it otherwise.
func (s *Service) ToggleLike(ctx context.Context, commentID uuid.UUID, user *models.User) (*models.LikeResult, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	result := &models.LikeResult{CommentID: commentID}
	err := s.store.InTx(ctx, func(r database.Repository) error {
		comment, err := r.GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		if comment.Deleted {
			return utils.NewValidationError("cannot like a deleted comment")
		}

		existing, err := r.GetCommentLike(ctx, commentID, user.ID)
		switch {
		case err == nil:
			if err := r.DeleteCommentLike(ctx, existing.ID); err != nil {
				return err
			}
			if err := r.AdjustCommentLikes(ctx, commentID, -1); err != nil {
				return err
			}
			result.Liked = false
			result.LikeCount = max(comment.LikeCount-1, 0)
		case utils.IsErrorCode(err, utils.ErrNotFound):
			like := &models.CommentLike{
				ID:        uuid.New(),
				CommentID: commentID,
				UserID:    user.ID,
				CreatedAt: s.now(),
			}
			if err := r.CreateCommentLike(ctx, like); err != nil {
				return err
			}
			if err := r.AdjustCommentLikes(ctx, commentID, 1); err != nil {
				return err
			}
			result.Liked = true
			result.LikeCount = comment.LikeCount + 1
		default:
			return err
		}
		return nil
	})

	if utils.IsErrorCode(err, utils.ErrDuplicate) {
		// A concurrent request by the same user already liked the comment.
		comment, err := s.store.GetComment(ctx, commentID)
		if err != nil {
			return nil, err
		}
		return &models.LikeResult{CommentID: commentID, Liked: true, LikeCount: comment.LikeCount}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LikeCount derives the number of likes from the like rows.
func (s *Service) LikeCount(ctx context.Context, commentID uuid.UUID) (int, error) {
	if _, err := s.store.GetComment(ctx, commentID); err != nil {
		return 0, err
	}
	return s.store.CountCommentLikes(ctx, commentID)
}

func (s *Service) IsLikedBy(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	_, err := s.store.GetCommentLike(ctx, commentID, userID)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
