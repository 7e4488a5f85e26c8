package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Content   string     `json:"content" db:"content"`
	Category  string     `json:"category,omitempty" db:"category"`
	AuthorID  uuid.UUID  `json:"authorId" db:"author_id"`
	ViewCount int        `json:"viewCount" db:"view_count"`
	LikeCount int        `json:"likeCount" db:"like_count"`
	Deleted   bool       `json:"deleted" db:"deleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
	IsNotice  bool       `json:"isNotice" db:"is_notice"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// MarkDeleted soft-deletes the post. Comments are left as they are.
func (p *Post) MarkDeleted(at time.Time) {
	p.Deleted = true
	p.DeletedAt = &at
	p.UpdatedAt = at
}

func (p *Post) Restore(at time.Time) {
	p.Deleted = false
	p.DeletedAt = nil
	p.UpdatedAt = at
}
