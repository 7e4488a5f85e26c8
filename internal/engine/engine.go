// Package engine hosts the actor-backed collaborators of the board, currently
// the per-session view tracker.
package engine

import (
	"fmt"
	"time"

	"board/internal/engine/actors"
	"board/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

type Engine struct {
	system         *actor.ActorSystem
	viewTrackerPID *actor.PID
	timeout        time.Duration
}

// NewEngine spawns the view tracker with the given dedup window.
func NewEngine(system *actor.ActorSystem, viewWindow time.Duration, metrics *utils.MetricsCollector) *Engine {
	props := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewViewTrackerActor(viewWindow, metrics)
	})
	return &Engine{
		system:         system,
		viewTrackerPID: system.Root.Spawn(props),
		timeout:        5 * time.Second,
	}
}

// MarkViewed reports whether this session's view of the post should be counted.
func (e *Engine) MarkViewed(sessionID string, postID uuid.UUID) (bool, error) {
	future := e.system.Root.RequestFuture(e.viewTrackerPID, &actors.MarkViewedMsg{
		SessionID: sessionID,
		PostID:    postID,
	}, e.timeout)

	result, err := future.Result()
	if err != nil {
		return false, utils.NewActorTimeoutError("view tracker")
	}
	first, ok := result.(bool)
	if !ok {
		return false, utils.NewAppError(utils.ErrActorTimeout, fmt.Sprintf("unexpected view tracker response %T", result), nil)
	}
	return first, nil
}

// TrackedSessions returns the number of sessions with unexpired views.
func (e *Engine) TrackedSessions() (int, error) {
	result, err := e.system.Root.RequestFuture(e.viewTrackerPID, &actors.GetCountsMsg{}, e.timeout).Result()
	if err != nil {
		return 0, utils.NewActorTimeoutError("view tracker")
	}
	count, _ := result.(int)
	return count, nil
}

func (e *Engine) Stop() {
	e.system.Root.Stop(e.viewTrackerPID)
}
