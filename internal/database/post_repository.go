package database

import (
	"context"

	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
)

const postColumns = `id, title, content, category, author_id, view_count, like_count, deleted, deleted_at, is_notice, created_at, updated_at`

// CreatePost inserts a new post.
func (r *repo) CreatePost(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (` + postColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		post.Category,
		post.AuthorID,
		post.ViewCount,
		post.LikeCount,
		post.Deleted,
		post.DeletedAt,
		post.IsNotice,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return insertError(err, "post")
	}
	return nil
}

// GetPost fetches a post regardless of its deleted flag. Inside a
// PostgreSQL transaction the row is locked until commit.
func (r *repo) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.get(ctx, &post, `SELECT `+postColumns+` FROM posts WHERE id = ?`+r.lock, id); err != nil {
		return nil, lookupError(err, "post", id)
	}
	return &post, nil
}

// UpdatePost writes the editable fields together with the deletion and notice state.
func (r *repo) UpdatePost(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = ?, content = ?, category = ?, deleted = ?, deleted_at = ?, is_notice = ?, updated_at = ?
		WHERE id = ?
	`
	return r.execOne(ctx, "post", post.ID, query,
		post.Title, post.Content, post.Category, post.Deleted, post.DeletedAt, post.IsNotice, post.UpdatedAt, post.ID)
}

func (r *repo) IncrementPostViews(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, "post", id, `UPDATE posts SET view_count = view_count + 1 WHERE id = ?`, id)
}

// AdjustPostLikes applies delta to the like counter in a single statement.
func (r *repo) AdjustPostLikes(ctx context.Context, id uuid.UUID, delta int) error {
	return r.execOne(ctx, "post", id, `UPDATE posts SET like_count = like_count + ? WHERE id = ?`, delta, id)
}

// ListPosts returns live posts, notices first and then newest first.
func (r *repo) ListPosts(ctx context.Context, page models.Page) ([]*models.Post, error) {
	page = page.Normalize()
	query := `
		SELECT ` + postColumns + ` FROM posts
		WHERE deleted = ?
		ORDER BY is_notice DESC, created_at DESC
		LIMIT ? OFFSET ?
	`
	posts := []*models.Post{}
	if err := r.selectRows(ctx, &posts, query, false, page.Limit, page.Offset); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to list posts", err)
	}
	return posts, nil
}

func (r *repo) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID, page models.Page) ([]*models.Post, error) {
	page = page.Normalize()
	query := `
		SELECT ` + postColumns + ` FROM posts
		WHERE author_id = ? AND deleted = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	posts := []*models.Post{}
	if err := r.selectRows(ctx, &posts, query, authorID, false, page.Limit, page.Offset); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to list posts by author", err)
	}
	return posts, nil
}

// CountPosts returns the number of posts ever created and the number still live.
func (r *repo) CountPosts(ctx context.Context) (int, int, error) {
	total, err := r.count(ctx, "posts", `SELECT COUNT(*) FROM posts`)
	if err != nil {
		return 0, 0, err
	}
	active, err := r.count(ctx, "posts", `SELECT COUNT(*) FROM posts WHERE deleted = ?`, false)
	if err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (r *repo) CountPostsByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	return r.count(ctx, "posts", `SELECT COUNT(*) FROM posts WHERE author_id = ? AND deleted = ?`, authorID, false)
}

// --- Vote Methods ---

const voteColumns = `id, post_id, user_id, is_upvote, created_at`

// GetPostVote returns the vote row a user holds on a post, or NOT_FOUND.
func (r *repo) GetPostVote(ctx context.Context, postID, userID uuid.UUID) (*models.PostVote, error) {
	var vote models.PostVote
	query := `SELECT ` + voteColumns + ` FROM post_votes WHERE post_id = ? AND user_id = ?` + r.lock
	if err := r.get(ctx, &vote, query, postID, userID); err != nil {
		return nil, lookupError(err, "vote", postID)
	}
	return &vote, nil
}

// CreatePostVote inserts a vote row; a concurrent insert for the same
// (post, user) surfaces as DUPLICATE.
func (r *repo) CreatePostVote(ctx context.Context, vote *models.PostVote) error {
	query := `INSERT INTO post_votes (` + voteColumns + `) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.exec(ctx, query, vote.ID, vote.PostID, vote.UserID, vote.IsUpvote, vote.CreatedAt); err != nil {
		return insertError(err, "vote")
	}
	return nil
}

func (r *repo) UpdatePostVote(ctx context.Context, id uuid.UUID, isUpvote bool) error {
	return r.execOne(ctx, "vote", id, `UPDATE post_votes SET is_upvote = ? WHERE id = ?`, isUpvote, id)
}

func (r *repo) DeletePostVote(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, "vote", id, `DELETE FROM post_votes WHERE id = ?`, id)
}

// CountPostVotes derives up and down totals from the vote rows.
func (r *repo) CountPostVotes(ctx context.Context, postID uuid.UUID) (*models.VoteCounts, error) {
	up, err := r.count(ctx, "votes", `SELECT COUNT(*) FROM post_votes WHERE post_id = ? AND is_upvote = ?`, postID, true)
	if err != nil {
		return nil, err
	}
	down, err := r.count(ctx, "votes", `SELECT COUNT(*) FROM post_votes WHERE post_id = ? AND is_upvote = ?`, postID, false)
	if err != nil {
		return nil, err
	}
	return &models.VoteCounts{Upvotes: up, Downvotes: down}, nil
}
