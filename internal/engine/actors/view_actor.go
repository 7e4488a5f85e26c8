package actors

import (
	"log/slog"
	"time"

	"board/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// DefaultViewWindow is how long a session's view of a post suppresses further counts.
const DefaultViewWindow = 30 * time.Minute

// Message types for ViewTrackerActor
type (
	// MarkViewedMsg is answered with true when the view should be counted.
	MarkViewedMsg struct {
		SessionID string
		PostID    uuid.UUID
	}

	// GetCountsMsg is answered with the number of tracked sessions.
	GetCountsMsg struct{}
)

// ViewTrackerActor remembers which posts each browsing session has viewed
// recently. All state is owned by the actor goroutine.
type ViewTrackerActor struct {
	seen      map[string]map[uuid.UUID]time.Time
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
	metrics   *utils.MetricsCollector
}

func NewViewTrackerActor(window time.Duration, metrics *utils.MetricsCollector) actor.Actor {
	if window <= 0 {
		window = DefaultViewWindow
	}
	return &ViewTrackerActor{
		seen:    make(map[string]map[uuid.UUID]time.Time),
		window:  window,
		now:     time.Now,
		metrics: metrics,
	}
}

func (a *ViewTrackerActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		slog.Info("ViewTrackerActor started", "pid", context.Self(), "window", a.window)
		a.lastSweep = a.now()

	case *MarkViewedMsg:
		startTime := time.Now()
		context.Respond(a.markViewed(msg))
		if a.metrics != nil {
			a.metrics.AddOperationLatency("mark_viewed", time.Since(startTime))
		}

	case *GetCountsMsg:
		a.sweep(a.now())
		context.Respond(len(a.seen))
	}
}

func (a *ViewTrackerActor) markViewed(msg *MarkViewedMsg) bool {
	now := a.now()
	if now.Sub(a.lastSweep) >= a.window {
		a.sweep(now)
	}

	views, ok := a.seen[msg.SessionID]
	if !ok {
		views = make(map[uuid.UUID]time.Time)
		a.seen[msg.SessionID] = views
	}
	if at, ok := views[msg.PostID]; ok && now.Sub(at) < a.window {
		return false
	}
	views[msg.PostID] = now
	return true
}

// sweep drops expired views and empty sessions.
func (a *ViewTrackerActor) sweep(now time.Time) {
	for session, views := range a.seen {
		for postID, at := range views {
			if now.Sub(at) >= a.window {
				delete(views, postID)
			}
		}
		if len(views) == 0 {
			delete(a.seen, session)
		}
	}
	a.lastSweep = now
}
