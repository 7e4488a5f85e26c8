// Package api holds the JSON request and response bodies shared by the HTTP
// handlers and the load simulator.
package api

import (
	"time"

	"board/internal/models"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Error     string       `json:"error,omitempty"`
	User      *models.User `json:"user,omitempty"`
}

type UpdateProfileRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type UpdatePostRequest struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Category string    `json:"category"`
}

type NoticeRequest struct {
	PostID uuid.UUID `json:"postId"`
	Notice bool      `json:"notice"`
}

// VoteRequest sets the caller's vote. Direction "none" cancels it.
type VoteRequest struct {
	PostID    uuid.UUID            `json:"postId"`
	Direction models.VoteDirection `json:"direction"`
}

type VoteStatusResponse struct {
	PostID    uuid.UUID            `json:"postId"`
	Direction models.VoteDirection `json:"direction"`
	Upvotes   int                  `json:"upvotes"`
	Downvotes int                  `json:"downvotes"`
	LikeCount int                  `json:"likeCount"`
}

type CreateCommentRequest struct {
	PostID  uuid.UUID `json:"postId"`
	Content string    `json:"content"`
}

type CreateReplyRequest struct {
	ParentID uuid.UUID `json:"parentId"`
	Content  string    `json:"content"`
}

type UpdateCommentRequest struct {
	ID      uuid.UUID `json:"id"`
	Content string    `json:"content"`
}

type LikeRequest struct {
	CommentID uuid.UUID `json:"commentId"`
}

type LikeResponse struct {
	CommentID uuid.UUID `json:"commentId"`
	Status    string    `json:"status"`
	LikeCount int       `json:"likeCount"`
}

type ReportRequest struct {
	TargetType models.TargetType `json:"targetType"`
	TargetID   uuid.UUID         `json:"targetId"`
	Reason     string            `json:"reason"`
}

type ReportStatusRequest struct {
	ReportID uuid.UUID           `json:"reportId"`
	Status   models.ReportStatus `json:"status"`
}

type ForceDeleteRequest struct {
	TargetType models.TargetType `json:"targetType"`
	TargetID   uuid.UUID         `json:"targetId"`
}

type RoleRequest struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
