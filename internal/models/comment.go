package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a top-level comment on a post, or a reply when ParentID is set.
// A reply's parent is never itself a reply.
type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Content   string     `json:"content" db:"content"`
	PostID    uuid.UUID  `json:"postId" db:"post_id"`
	AuthorID  uuid.UUID  `json:"authorId" db:"author_id"`
	ParentID  *uuid.UUID `json:"parentId,omitempty" db:"parent_id"`
	LikeCount int        `json:"likeCount" db:"like_count"`
	Deleted   bool       `json:"deleted" db:"deleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

func (c *Comment) MarkDeleted(at time.Time) {
	c.Deleted = true
	c.DeletedAt = &at
	c.UpdatedAt = at
}

func (c *Comment) Restore(at time.Time) {
	c.Deleted = false
	c.DeletedAt = nil
	c.UpdatedAt = at
}
