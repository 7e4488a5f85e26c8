// Package board implements the content lifecycle and moderation rules of the
// discussion board: posts, comments, votes, likes and reports.
package board

import (
	"context"
	"log/slog"
	"time"

	"board/internal/database"
	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EventSink receives moderation events after the change has committed.
// Implementations must not block the caller for long.
type EventSink interface {
	Publish(ctx context.Context, event models.ModerationEvent)
}

// Service is the synchronous core. Every mutating operation runs in one
// store transaction.
type Service struct {
	store      database.Store
	sinks      []EventSink
	now        func() time.Time
	bcryptCost int
}

func NewService(store database.Store, sinks ...EventSink) *Service {
	return &Service{
		store:      store,
		sinks:      sinks,
		now:        func() time.Time { return time.Now().UTC() },
		bcryptCost: bcrypt.DefaultCost,
	}
}

// SetPasswordCost overrides the bcrypt cost used for new password hashes.
func (s *Service) SetPasswordCost(cost int) {
	s.bcryptCost = cost
}

// AddSink registers another event receiver. Not safe to call while serving.
func (s *Service) AddSink(sink EventSink) {
	s.sinks = append(s.sinks, sink)
}

func (s *Service) publish(ctx context.Context, kind models.EventKind, actor *models.User, targetType models.TargetType, targetID uuid.UUID, detail string) {
	event := models.ModerationEvent{
		Kind:       kind,
		ActorID:    actor.ID,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
		OccurredAt: s.now(),
	}
	slog.Info("Moderation event", "kind", kind, "actor", actor.ID, "target", targetID, "detail", detail)
	for _, sink := range s.sinks {
		sink.Publish(ctx, event)
	}
}

// canModify is the author-or-moderator rule shared by posts and comments.
func canModify(authorID uuid.UUID, user *models.User) bool {
	return user != nil && (user.ID == authorID || user.IsModerator())
}

func requireUser(user *models.User) error {
	if user == nil {
		return utils.NewUnauthorizedError("authentication required")
	}
	return nil
}

func requireModerator(user *models.User) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if !user.IsModerator() {
		return utils.NewForbiddenError("moderator role required")
	}
	return nil
}

// IsModerator reports whether user holds the moderator role.
func IsModerator(user *models.User) bool {
	return user.IsModerator()
}
