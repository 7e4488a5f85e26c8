package board

import (
	"context"

	"board/internal/database"
	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
)

// CreateComment adds a top-level comment to a live post.
func (s *Service) CreateComment(ctx context.Context, postID uuid.UUID, content string, author *models.User) (*models.Comment, error) {
	if err := requireUser(author); err != nil {
		return nil, err
	}
	if err := requireText("content", content, MaxCommentLength); err != nil {
		return nil, err
	}

	comment := s.newComment(postID, content, author, nil)
	err := s.store.InTx(ctx, func(r database.Repository) error {
		post, err := r.GetPost(ctx, postID)
		if err != nil {
			return err
		}
		if post.Deleted {
			return utils.NewValidationError("cannot comment on a deleted post")
		}
		return r.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReply answers a top-level comment. Replies to replies are rejected.
func (s *Service) CreateReply(ctx context.Context, parentID uuid.UUID, content string, author *models.User) (*models.Comment, error) {
	if err := requireUser(author); err != nil {
		return nil, err
	}
	if err := requireText("content", content, MaxCommentLength); err != nil {
		return nil, err
	}

	var reply *models.Comment
	err := s.store.InTx(ctx, func(r database.Repository) error {
		parent, err := r.GetComment(ctx, parentID)
		if err != nil {
			return err
		}
		if parent.Deleted {
			return utils.NewValidationError("cannot reply to a deleted comment")
		}
		if parent.IsReply() {
			return utils.NewValidationError("cannot reply to a reply")
		}
		post, err := r.GetPost(ctx, parent.PostID)
		if err != nil {
			return err
		}
		if post.Deleted {
			return utils.NewValidationError("cannot comment on a deleted post")
		}
		reply = s.newComment(parent.PostID, content, author, &parent.ID)
		return r.CreateComment(ctx, reply)
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *Service) newComment(postID uuid.UUID, content string, author *models.User, parentID *uuid.UUID) *models.Comment {
	now := s.now()
	return &models.Comment{
		ID:        uuid.New(),
		Content:   content,
		PostID:    postID,
		AuthorID:  author.ID,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetComment returns a live comment.
func (s *Service) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.store.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.Deleted {
		return nil, utils.NewNotFoundError("comment", id)
	}
	return comment, nil
}

func (s *Service) UpdateComment(ctx context.Context, id uuid.UUID, content string, user *models.User) (*models.Comment, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	var comment *models.Comment
	err := s.store.InTx(ctx, func(r database.Repository) error {
		var err error
		if comment, err = r.GetComment(ctx, id); err != nil {
			return err
		}
		if comment.Deleted {
			return utils.NewValidationError("cannot modify a deleted comment")
		}
		if !canModify(comment.AuthorID, user) {
			return utils.NewForbiddenError("only the author or a moderator can edit this comment")
		}
		if err := requireText("content", content, MaxCommentLength); err != nil {
			return err
		}
		comment.Content = content
		comment.UpdatedAt = s.now()
		return r.UpdateComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Service) SoftDeleteComment(ctx context.Context, id uuid.UUID, user *models.User) error {
	if err := requireUser(user); err != nil {
		return err
	}
	return s.store.InTx(ctx, func(r database.Repository) error {
		comment, err := r.GetComment(ctx, id)
		if err != nil {
			return err
		}
		if comment.Deleted {
			return utils.NewAlreadyDeletedError("comment")
		}
		if !canModify(comment.AuthorID, user) {
			return utils.NewForbiddenError("only the author or a moderator can delete this comment")
		}
		comment.MarkDeleted(s.now())
		return r.UpdateComment(ctx, comment)
	})
}

func (s *Service) RestoreComment(ctx context.Context, id uuid.UUID, user *models.User) (*models.Comment, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	var comment *models.Comment
	err := s.store.InTx(ctx, func(r database.Repository) error {
		var err error
		if comment, err = r.GetComment(ctx, id); err != nil {
			return err
		}
		if !canModify(comment.AuthorID, user) {
			return utils.NewForbiddenError("only the author or a moderator can restore this comment")
		}
		if !comment.Deleted {
			return utils.NewValidationError("comment is not deleted")
		}
		comment.Restore(s.now())
		return r.UpdateComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CommentsByPost lists the live top-level comments of a post, oldest first.
func (s *Service) CommentsByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.ListTopLevelComments(ctx, postID)
}

// RepliesByParent lists the live replies to a comment, oldest first.
func (s *Service) RepliesByParent(ctx context.Context, parentID uuid.UUID) ([]*models.Comment, error) {
	if _, err := s.store.GetComment(ctx, parentID); err != nil {
		return nil, err
	}
	return s.store.ListReplies(ctx, parentID)
}

func (s *Service) CommentsByAuthor(ctx context.Context, authorID uuid.UUID, page models.Page) ([]*models.Comment, error) {
	return s.store.ListCommentsByAuthor(ctx, authorID, page)
}

// CommentCount counts live comments and replies on a post.
func (s *Service) CommentCount(ctx context.Context, postID uuid.UUID) (int, error) {
	return s.store.CountActiveCommentsByPost(ctx, postID)
}
