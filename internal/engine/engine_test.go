package engine

import (
	"testing"
	"time"

	"board/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineMarkViewed(t *testing.T) {
	e := NewEngine(actor.NewActorSystem(), time.Minute, utils.NewMetricsCollector())
	defer e.Stop()

	postID := uuid.New()
	first, err := e.MarkViewed("session", postID)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := e.MarkViewed("session", postID)
	require.NoError(t, err)
	assert.False(t, again)

	sessions, err := e.TrackedSessions()
	require.NoError(t, err)
	assert.Equal(t, 1, sessions)
}
