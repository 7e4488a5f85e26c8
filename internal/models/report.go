package models

import (
	"time"

	"github.com/google/uuid"
)

type TargetType string

const (
	TargetPost    TargetType = "POST"
	TargetComment TargetType = "COMMENT"

	// TargetUser marks moderation events about an account. Users cannot be reported.
	TargetUser TargetType = "USER"
)

func (t TargetType) Valid() bool {
	return t == TargetPost || t == TargetComment
}

type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// Report flags a post or a comment. A reporter holds at most one report per target.
type Report struct {
	ID         uuid.UUID    `json:"id" db:"id"`
	TargetType TargetType   `json:"targetType" db:"target_type"`
	TargetID   uuid.UUID    `json:"targetId" db:"target_id"`
	ReporterID uuid.UUID    `json:"reporterId" db:"reporter_id"`
	Reason     string       `json:"reason" db:"reason"`
	Status     ReportStatus `json:"status" db:"status"`
	CreatedAt  time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time    `json:"updatedAt" db:"updated_at"`
}

// ReportFilter narrows report listings; zero values match everything.
type ReportFilter struct {
	Status     ReportStatus
	TargetType TargetType
}

// ReportCount is one row of the grouped report aggregate.
type ReportCount struct {
	TargetType TargetType   `db:"target_type"`
	Status     ReportStatus `db:"status"`
	Count      int          `db:"n"`
}

type ReportStats struct {
	PendingPostReports      int `json:"pendingPostReports"`
	PendingCommentReports   int `json:"pendingCommentReports"`
	ResolvedPostReports     int `json:"resolvedPostReports"`
	ResolvedCommentReports  int `json:"resolvedCommentReports"`
	DismissedPostReports    int `json:"dismissedPostReports"`
	DismissedCommentReports int `json:"dismissedCommentReports"`
	TotalPending            int `json:"totalPending"`
	TotalResolved           int `json:"totalResolved"`
	TotalDismissed          int `json:"totalDismissed"`
}

// Add folds one grouped count into the stats.
func (s *ReportStats) Add(c ReportCount) {
	switch c.Status {
	case ReportPending:
		s.TotalPending += c.Count
		if c.TargetType == TargetPost {
			s.PendingPostReports += c.Count
		} else {
			s.PendingCommentReports += c.Count
		}
	case ReportResolved:
		s.TotalResolved += c.Count
		if c.TargetType == TargetPost {
			s.ResolvedPostReports += c.Count
		} else {
			s.ResolvedCommentReports += c.Count
		}
	case ReportDismissed:
		s.TotalDismissed += c.Count
		if c.TargetType == TargetPost {
			s.DismissedPostReports += c.Count
		} else {
			s.DismissedCommentReports += c.Count
		}
	}
}

type AdminStats struct {
	TotalUsers      int `json:"totalUsers"`
	TotalPosts      int `json:"totalPosts"`
	ActivePosts     int `json:"activePosts"`
	DeletedPosts    int `json:"deletedPosts"`
	TotalComments   int `json:"totalComments"`
	ActiveComments  int `json:"activeComments"`
	DeletedComments int `json:"deletedComments"`
}
