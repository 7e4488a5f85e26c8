package simulator

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"board/internal/board"
	"board/internal/database"
	"board/internal/engine"
	"board/internal/handlers"
	"board/internal/middleware"
	"board/internal/utils"
	"board/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	store, err := database.NewSQLStore(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.InitializeTables(ctx))
	t.Cleanup(func() { store.Close(ctx) })

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	metrics := utils.NewMetricsCollector()
	eng := engine.NewEngine(actor.NewActorSystem(), time.Minute, metrics)
	t.Cleanup(eng.Stop)

	service := board.NewService(store, hub)
	service.SetPasswordCost(bcrypt.MinCost)
	auth := &middleware.Authenticator{
		Tokens: middleware.NewTokenManager("sim-secret", time.Hour),
		Users:  service,
	}

	srv := httptest.NewServer(handlers.NewServer(service, eng, auth, hub, metrics).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestSimulationKeepsCountersConsistent(t *testing.T) {
	srv := startServer(t)

	config := SimConfig{
		NumUsers:   8,
		Rounds:     6,
		NumWorkers: 3,
		EngineURL:  srv.URL,
		Timeout:    10 * time.Second,
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sim := NewSimulator(config)
	result, err := sim.Run(ctx)
	require.NoError(t, err)

	assert.True(t, result.Consistent(config.NumUsers), "%+v", result)
	assert.Equal(t, result.Upvotes, result.PostLikeCount)
	assert.LessOrEqual(t, result.Reports, config.NumUsers)
	assert.Zero(t, sim.Stats().FailedRequests-int64(result.RejectedReports))
}

func TestResultConsistent(t *testing.T) {
	ok := &Result{PostLikeCount: 2, Upvotes: 2, Downvotes: 1, CommentLikeCount: 3, CommentLikeRows: 3, Reports: 2}
	assert.True(t, ok.Consistent(3))

	drift := *ok
	drift.PostLikeCount = 3
	assert.False(t, drift.Consistent(3))

	tooMany := *ok
	tooMany.Downvotes = 2
	assert.False(t, tooMany.Consistent(3))
}
