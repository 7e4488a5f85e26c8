package board

import (
	"context"

	"board/internal/database"
	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
)

func (s *Service) CreatePost(ctx context.Context, title, content, category string, author *models.User) (*models.Post, error) {
	if author == nil {
		return nil, utils.NewValidationError("author is required")
	}
	if err := validatePost(title, content, category); err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		Category:  category,
		AuthorID:  author.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns a live post. Soft-deleted posts are reported as not found.
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Deleted {
		return nil, utils.NewNotFoundError("post", id)
	}
	return post, nil
}

func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, title, content, category string, user *models.User) (*models.Post, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	var post *models.Post
	err := s.store.InTx(ctx, func(r database.Repository) error {
		var err error
		if post, err = r.GetPost(ctx, id); err != nil {
			return err
		}
		if post.Deleted {
			return utils.NewValidationError("cannot modify a deleted post")
		}
		if !canModify(post.AuthorID, user) {
			return utils.NewForbiddenError("only the author or a moderator can edit this post")
		}
		if err := validatePost(title, content, category); err != nil {
			return err
		}

		post.Title = title
		post.Content = content
		post.Category = category
		post.UpdatedAt = s.now()
		return r.UpdatePost(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// SoftDeletePost hides a post. Its comments are left untouched.
func (s *Service) SoftDeletePost(ctx context.Context, id uuid.UUID, user *models.User) error {
	if err := requireUser(user); err != nil {
		return err
	}
	return s.store.InTx(ctx, func(r database.Repository) error {
		post, err := r.GetPost(ctx, id)
		if err != nil {
			return err
		}
		if post.Deleted {
			return utils.NewAlreadyDeletedError("post")
		}
		if !canModify(post.AuthorID, user) {
			return utils.NewForbiddenError("only the author or a moderator can delete this post")
		}
		post.MarkDeleted(s.now())
		return r.UpdatePost(ctx, post)
	})
}

func (s *Service) RestorePost(ctx context.Context, id uuid.UUID, user *models.User) (*models.Post, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	var post *models.Post
	err := s.store.InTx(ctx, func(r database.Repository) error {
		var err error
		if post, err = r.GetPost(ctx, id); err != nil {
			return err
		}
		if !canModify(post.AuthorID, user) {
			return utils.NewForbiddenError("only the author or a moderator can restore this post")
		}
		if !post.Deleted {
			return utils.NewValidationError("post is not deleted")
		}
		post.Restore(s.now())
		return r.UpdatePost(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// SetNotice pins or unpins a post at the top of listings. Moderators only.
func (s *Service) SetNotice(ctx context.Context, id uuid.UUID, notice bool, user *models.User) (*models.Post, error) {
	if err := requireModerator(user); err != nil {
		return nil, err
	}

	var post *models.Post
	err := s.store.InTx(ctx, func(r database.Repository) error {
		var err error
		if post, err = r.GetPost(ctx, id); err != nil {
			return err
		}
		if post.Deleted {
			return utils.NewValidationError("cannot change the notice flag of a deleted post")
		}
		post.IsNotice = notice
		post.UpdatedAt = s.now()
		return r.UpdatePost(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	detail := "unpinned"
	if notice {
		detail = "pinned"
	}
	s.publish(ctx, models.EventNoticeChanged, user, models.TargetPost, id, detail)
	return post, nil
}

// IncreaseViewCount adds one view. Deduplication is the caller's concern.
func (s *Service) IncreaseViewCount(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post *models.Post
	err := s.store.InTx(ctx, func(r database.Repository) error {
		var err error
		if post, err = r.GetPost(ctx, id); err != nil {
			return err
		}
		if post.Deleted {
			return utils.NewNotFoundError("post", id)
		}
		if err := r.IncrementPostViews(ctx, id); err != nil {
			return err
		}
		post.ViewCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) ListPosts(ctx context.Context, page models.Page) ([]*models.Post, error) {
	return s.store.ListPosts(ctx, page)
}

func (s *Service) PostsByAuthor(ctx context.Context, authorID uuid.UUID, page models.Page) ([]*models.Post, error) {
	return s.store.ListPostsByAuthor(ctx, authorID, page)
}
