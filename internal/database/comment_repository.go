package database

import (
	"context"

	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
)

const commentColumns = `id, content, post_id, author_id, parent_id, like_count, deleted, deleted_at, created_at, updated_at`

// CreateComment inserts a comment or a reply.
func (r *repo) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (` + commentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx, query,
		comment.ID,
		comment.Content,
		comment.PostID,
		comment.AuthorID,
		comment.ParentID,
		comment.LikeCount,
		comment.Deleted,
		comment.DeletedAt,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return insertError(err, "comment")
	}
	return nil
}

// GetComment fetches a comment regardless of its deleted flag.
func (r *repo) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.get(ctx, &comment, `SELECT `+commentColumns+` FROM comments WHERE id = ?`+r.lock, id); err != nil {
		return nil, lookupError(err, "comment", id)
	}
	return &comment, nil
}

func (r *repo) UpdateComment(ctx context.Context, comment *models.Comment) error {
	query := `UPDATE comments SET content = ?, deleted = ?, deleted_at = ?, updated_at = ? WHERE id = ?`
	return r.execOne(ctx, "comment", comment.ID, query,
		comment.Content, comment.Deleted, comment.DeletedAt, comment.UpdatedAt, comment.ID)
}

// AdjustCommentLikes applies delta to the like counter, never going below zero.
func (r *repo) AdjustCommentLikes(ctx context.Context, id uuid.UUID, delta int) error {
	query := `
		UPDATE comments
		SET like_count = CASE WHEN like_count + ? < 0 THEN 0 ELSE like_count + ? END
		WHERE id = ?
	`
	return r.execOne(ctx, "comment", id, query, delta, delta, id)
}

// ListTopLevelComments returns the live top-level comments of a post, oldest first.
func (r *repo) ListTopLevelComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE post_id = ? AND parent_id IS NULL AND deleted = ?
		ORDER BY created_at ASC
	`
	comments := []*models.Comment{}
	if err := r.selectRows(ctx, &comments, query, postID, false); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to list comments", err)
	}
	return comments, nil
}

// ListReplies returns the live replies to a comment, oldest first.
func (r *repo) ListReplies(ctx context.Context, parentID uuid.UUID) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE parent_id = ? AND deleted = ?
		ORDER BY created_at ASC
	`
	comments := []*models.Comment{}
	if err := r.selectRows(ctx, &comments, query, parentID, false); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to list replies", err)
	}
	return comments, nil
}

func (r *repo) ListCommentsByAuthor(ctx context.Context, authorID uuid.UUID, page models.Page) ([]*models.Comment, error) {
	page = page.Normalize()
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE author_id = ? AND deleted = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	comments := []*models.Comment{}
	if err := r.selectRows(ctx, &comments, query, authorID, false, page.Limit, page.Offset); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to list comments by author", err)
	}
	return comments, nil
}

// CountActiveCommentsByPost counts live comments and replies on a post.
func (r *repo) CountActiveCommentsByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	return r.count(ctx, "comments", `SELECT COUNT(*) FROM comments WHERE post_id = ? AND deleted = ?`, postID, false)
}

func (r *repo) CountComments(ctx context.Context) (int, int, error) {
	total, err := r.count(ctx, "comments", `SELECT COUNT(*) FROM comments`)
	if err != nil {
		return 0, 0, err
	}
	active, err := r.count(ctx, "comments", `SELECT COUNT(*) FROM comments WHERE deleted = ?`, false)
	if err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (r *repo) CountCommentsByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	return r.count(ctx, "comments", `SELECT COUNT(*) FROM comments WHERE author_id = ? AND deleted = ?`, authorID, false)
}

// --- Like Methods ---

const likeColumns = `id, comment_id, user_id, created_at`

func (r *repo) GetCommentLike(ctx context.Context, commentID, userID uuid.UUID) (*models.CommentLike, error) {
	var like models.CommentLike
	query := `SELECT ` + likeColumns + ` FROM comment_likes WHERE comment_id = ? AND user_id = ?` + r.lock
	if err := r.get(ctx, &like, query, commentID, userID); err != nil {
		return nil, lookupError(err, "like", commentID)
	}
	return &like, nil
}

func (r *repo) CreateCommentLike(ctx context.Context, like *models.CommentLike) error {
	query := `INSERT INTO comment_likes (` + likeColumns + `) VALUES (?, ?, ?, ?)`
	if _, err := r.exec(ctx, query, like.ID, like.CommentID, like.UserID, like.CreatedAt); err != nil {
		return insertError(err, "like")
	}
	return nil
}

func (r *repo) DeleteCommentLike(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, "like", id, `DELETE FROM comment_likes WHERE id = ?`, id)
}

func (r *repo) CountCommentLikes(ctx context.Context, commentID uuid.UUID) (int, error) {
	return r.count(ctx, "likes", `SELECT COUNT(*) FROM comment_likes WHERE comment_id = ?`, commentID)
}
