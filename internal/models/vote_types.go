package models

import (
	"time"

	"github.com/google/uuid"
)

// VoteDirection represents the direction a user currently holds on a post.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
	VoteNone VoteDirection = "none" // Used to indicate vote removal
)

func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown || d == VoteNone
}

// Upvotes is the contribution of this direction to a post's like counter.
// Downvotes are tracked as rows only and never subtract from the counter.
func (d VoteDirection) Upvotes() int {
	if d == VoteUp {
		return 1
	}
	return 0
}

// PostVote is the single row a user holds on a post.
type PostVote struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PostID    uuid.UUID `json:"postId" db:"post_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	IsUpvote  bool      `json:"isUpvote" db:"is_upvote"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

func (v *PostVote) Direction() VoteDirection {
	if v == nil {
		return VoteNone
	}
	if v.IsUpvote {
		return VoteUp
	}
	return VoteDown
}

type VoteCounts struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

type VoteResult struct {
	PostID    uuid.UUID     `json:"postId"`
	Direction VoteDirection `json:"direction"`
	LikeCount int           `json:"likeCount"`
}

type CommentLike struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CommentID uuid.UUID `json:"commentId" db:"comment_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type LikeResult struct {
	CommentID uuid.UUID `json:"commentId"`
	Liked     bool      `json:"liked"`
	LikeCount int       `json:"likeCount"`
}

func (r *LikeResult) Status() string {
	if r.Liked {
		return "liked"
	}
	return "unliked"
}
