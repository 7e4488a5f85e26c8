package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the permission level of a user.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleModerator
}

type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	Nickname       string     `json:"nickname" db:"nickname"`
	HashedPassword string     `json:"-" db:"password_hash"`
	Role           Role       `json:"role" db:"role"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

func (u *User) IsModerator() bool {
	return u != nil && u.Role == RoleModerator
}

// UserProfile is the public view of a user with activity counts.
type UserProfile struct {
	User         *User `json:"user"`
	PostCount    int   `json:"postCount"`
	CommentCount int   `json:"commentCount"`
}

func (p *UserProfile) TotalActivity() int {
	return p.PostCount + p.CommentCount
}
