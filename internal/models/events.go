package models

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventReportFiled         EventKind = "report_filed"
	EventReportStatusChanged EventKind = "report_status_changed"
	EventContentForceDeleted EventKind = "content_force_deleted"
	EventRoleChanged         EventKind = "role_changed"
	EventNoticeChanged       EventKind = "notice_changed"
)

// ModerationEvent is published after a moderation-relevant change commits.
type ModerationEvent struct {
	Kind       EventKind  `json:"kind"`
	ActorID    uuid.UUID  `json:"actorId"`
	TargetType TargetType `json:"targetType,omitempty"`
	TargetID   uuid.UUID  `json:"targetId"`
	Detail     string     `json:"detail,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// Page is a limit/offset window over a listing.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps the window to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
