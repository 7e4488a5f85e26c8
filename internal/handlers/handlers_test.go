package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"board/internal/api"
	"board/internal/board"
	"board/internal/database"
	"board/internal/engine"
	"board/internal/middleware"
	"board/internal/models"
	"board/internal/utils"
	"board/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	handler http.Handler
	service *board.Service
}

func newTestServer(t *testing.T) *testServer {
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
		Tokens: middleware.NewTokenManager("test-secret", time.Hour),
		Users:  service,
	}
	server := NewServer(service, eng, auth, hub, metrics)
	return &testServer{handler: server.Routes(), service: service}
}

// do sends a JSON request and returns the recorder.
func (ts *testServer) do(t *testing.T, method, target, token string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

// signUp registers a user and logs in, returning the token.
func (ts *testServer) signUp(t *testing.T, username string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/user/register", "", api.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/user/login", "", api.LoginRequest{Username: username, Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login api.LoginResponse
	decode(t, w, &login)
	require.True(t, login.Success)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body api.ErrorResponse
	decode(t, w, &body)
	return body.Error
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])

	w = ts.do(t, http.MethodPost, "/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp(t, "alice")

	w := ts.do(t, http.MethodPost, "/user/login", "", api.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, utils.ErrUnauthorized, errorCode(t, w))

	w = ts.do(t, http.MethodPost, "/user/register", "", api.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProfile(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signUp(t, "alice")

	w := ts.do(t, http.MethodPut, "/user/profile", alice, api.UpdateProfileRequest{Nickname: "Al"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/user/profile?username=alice", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.UserProfile
	decode(t, w, &profile)
	assert.Equal(t, "Al", profile.User.Nickname)
	assert.Equal(t, 0, profile.PostCount)

	w = ts.do(t, http.MethodPut, "/user/profile", "", api.UpdateProfileRequest{Nickname: "X"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")

	w := ts.do(t, http.MethodPost, "/post", "", api.CreatePostRequest{Title: "T", Content: "C"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, utils.ErrUnauthorized, errorCode(t, w))

	w = ts.do(t, http.MethodPost, "/post", alice, api.CreatePostRequest{Title: "Hello", Content: "World"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post models.Post
	decode(t, w, &post)

	// First view issues a session cookie and counts once.
	w = ts.do(t, http.MethodGet, "/post?id="+post.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &post)
	assert.Equal(t, 1, post.ViewCount)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionCookie, cookies[0].Name)

	w = ts.do(t, http.MethodGet, "/post?id="+post.ID.String(), "", nil, cookies...)
	decode(t, w, &post)
	assert.Equal(t, 1, post.ViewCount)

	w = ts.do(t, http.MethodPut, "/post", bob, api.UpdatePostRequest{ID: post.ID, Title: "Hijack", Content: "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPut, "/post", alice, api.UpdatePostRequest{ID: post.ID, Title: "Hello again", Content: "World"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodDelete, "/post?id="+post.ID.String(), alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/post?id="+post.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/post?id="+post.ID.String(), alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, utils.ErrAlreadyDeleted, errorCode(t, w))

	w = ts.do(t, http.MethodPost, "/post/restore?id="+post.ID.String(), alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []models.Post
	decode(t, w, &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello again", posts[0].Title)

	w = ts.do(t, http.MethodGet, "/post?id=not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoteAndLikeOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")

	w := ts.do(t, http.MethodPost, "/post", alice, api.CreatePostRequest{Title: "Poll", Content: "Vote"})
	require.Equal(t, http.StatusCreated, w.Code)
	var post models.Post
	decode(t, w, &post)

	// Cancelling without a vote is a no-op.
	w = ts.do(t, http.MethodPost, "/post/vote", bob, api.VoteRequest{PostID: post.ID, Direction: models.VoteNone})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var vote models.VoteResult
	decode(t, w, &vote)
	assert.Equal(t, models.VoteNone, vote.Direction)
	assert.Equal(t, 0, vote.LikeCount)

	w = ts.do(t, http.MethodPost, "/post/vote", bob, api.VoteRequest{PostID: post.ID, Direction: models.VoteUp})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &vote)
	assert.Equal(t, 1, vote.LikeCount)

	w = ts.do(t, http.MethodPost, "/post/vote", bob, api.VoteRequest{PostID: post.ID, Direction: "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/post/votes?id="+post.ID.String(), bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status api.VoteStatusResponse
	decode(t, w, &status)
	assert.Equal(t, models.VoteUp, status.Direction)
	assert.Equal(t, 1, status.Upvotes)
	assert.Equal(t, 1, status.LikeCount)

	w = ts.do(t, http.MethodPost, "/post/vote", bob, api.VoteRequest{PostID: post.ID, Direction: models.VoteNone})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &vote)
	assert.Equal(t, 0, vote.LikeCount)

	w = ts.do(t, http.MethodPost, "/comment", bob, api.CreateCommentRequest{PostID: post.ID, Content: "nice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var comment models.Comment
	decode(t, w, &comment)

	w = ts.do(t, http.MethodPost, "/comment/reply", alice, api.CreateReplyRequest{ParentID: comment.ID, Content: "thanks"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/comment/like", alice, api.LikeRequest{CommentID: comment.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var like api.LikeResponse
	decode(t, w, &like)
	assert.Equal(t, "liked", like.Status)
	assert.Equal(t, 1, like.LikeCount)

	w = ts.do(t, http.MethodGet, "/comment/like?commentId="+comment.ID.String(), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &like)
	assert.Equal(t, "liked", like.Status)

	w = ts.do(t, http.MethodPost, "/comment/like", alice, api.LikeRequest{CommentID: comment.ID})
	decode(t, w, &like)
	assert.Equal(t, "unliked", like.Status)
	assert.Equal(t, 0, like.LikeCount)

	w = ts.do(t, http.MethodGet, "/comment/post?postId="+post.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Count    int              `json:"count"`
		Comments []models.Comment `json:"comments"`
	}
	decode(t, w, &listing)
	assert.Equal(t, 2, listing.Count)

	w = ts.do(t, http.MethodGet, "/comment/replies?parentId="+comment.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var replies []models.Comment
	decode(t, w, &replies)
	require.Len(t, replies, 1)
	assert.Equal(t, "thanks", replies[0].Content)
}

func TestModerationOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.signUp(t, "alice")
	mod := ts.signUp(t, "mod")
	require.NoError(t, ts.service.EnsureModerator(context.Background(), "mod"))

	w := ts.do(t, http.MethodPost, "/post", alice, api.CreatePostRequest{Title: "Spam", Content: "Buy now"})
	require.Equal(t, http.StatusCreated, w.Code)
	var post models.Post
	decode(t, w, &post)

	report := api.ReportRequest{TargetType: models.TargetPost, TargetID: post.ID, Reason: "spam"}
	w = ts.do(t, http.MethodPost, "/report", alice, report)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var filed models.Report
	decode(t, w, &filed)
	assert.Equal(t, models.ReportPending, filed.Status)

	w = ts.do(t, http.MethodPost, "/report", alice, report)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, utils.ErrAlreadyReported, errorCode(t, w))

	w = ts.do(t, http.MethodGet, "/moderation/stats", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/moderation/stats", mod, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats models.ReportStats
	decode(t, w, &stats)
	assert.Equal(t, 1, stats.PendingPostReports)

	w = ts.do(t, http.MethodGet, "/moderation/reports?status=PENDING", mod, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reports []models.Report
	decode(t, w, &reports)
	require.Len(t, reports, 1)

	w = ts.do(t, http.MethodPut, "/moderation/report/status", mod, api.ReportStatusRequest{ReportID: filed.ID, Status: models.ReportResolved})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodDelete, "/moderation/content", mod, api.ForceDeleteRequest{TargetType: models.TargetPost, TargetID: post.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/moderation/admin-stats", mod, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var admin models.AdminStats
	decode(t, w, &admin)
	assert.Equal(t, 2, admin.TotalUsers)
	assert.Equal(t, 1, admin.DeletedPosts)

	w = ts.do(t, http.MethodPut, "/moderation/role", mod, api.RoleRequest{Username: "alice", Role: models.RoleModerator})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var promoted models.User
	decode(t, w, &promoted)
	assert.Equal(t, models.RoleModerator, promoted.Role)

	w = ts.do(t, http.MethodGet, "/moderation/audit", mod, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidTokenRejected(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/post/vote", "garbage", api.VoteRequest{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
