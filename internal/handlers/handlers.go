package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"board/internal/board"
	"board/internal/database"
	"board/internal/engine"
	"board/internal/middleware"
	"board/internal/models"
	"board/internal/utils"
	"board/internal/websocket"

	"github.com/google/uuid"
)

const sessionCookie = "board_session"

// Server holds all server dependencies
type Server struct {
	Service        *board.Service
	Engine         *engine.Engine
	Auth           *middleware.Authenticator
	Hub            *websocket.Hub
	Metrics        *utils.MetricsCollector
	Audit          *database.AuditLog // nil when no MongoDB is configured
	CORS           *middleware.CORSConfig
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	service *board.Service,
	engine *engine.Engine,
	auth *middleware.Authenticator,
	hub *websocket.Hub,
	metrics *utils.MetricsCollector,
) *Server {
	return &Server{
		Service:        service,
		Engine:         engine,
		Auth:           auth,
		Hub:            hub,
		Metrics:        metrics,
		CORS:           middleware.DefaultCORSConfig(nil),
		RequestTimeout: 10 * time.Second,
	}
}

// Routes registers every endpoint on a fresh mux wrapped in CORS handling.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.instrument("health", s.HandleHealth()))
	mux.Handle("/metrics", s.Metrics.Handler())

	// Identity
	mux.HandleFunc("/user/register", s.instrument("user_register", s.HandleUserRegistration()))
	mux.HandleFunc("/user/login", s.instrument("user_login", s.HandleUserLogin()))
	mux.HandleFunc("/user/profile", s.instrument("user_profile", s.Auth.OptionalUser(s.HandleUserProfile())))

	// Posts and votes
	mux.HandleFunc("/posts", s.instrument("posts", s.HandleListPosts()))
	mux.HandleFunc("/post", s.instrument("post", s.Auth.OptionalUser(s.HandlePost())))
	mux.HandleFunc("/post/restore", s.instrument("post_restore", s.Auth.RequireUser(s.HandleRestorePost())))
	mux.HandleFunc("/post/notice", s.instrument("post_notice", s.Auth.RequireUser(s.HandleNotice())))
	mux.HandleFunc("/post/vote", s.instrument("post_vote", s.Auth.RequireUser(s.HandleVote())))
	mux.HandleFunc("/post/votes", s.instrument("post_votes", s.Auth.OptionalUser(s.HandleVoteStatus())))

	// Comments and likes
	mux.HandleFunc("/comment", s.instrument("comment", s.Auth.OptionalUser(s.HandleComment())))
	mux.HandleFunc("/comment/reply", s.instrument("comment_reply", s.Auth.RequireUser(s.HandleReply())))
	mux.HandleFunc("/comment/restore", s.instrument("comment_restore", s.Auth.RequireUser(s.HandleRestoreComment())))
	mux.HandleFunc("/comment/post", s.instrument("comment_post", s.HandlePostComments()))
	mux.HandleFunc("/comment/replies", s.instrument("comment_replies", s.HandleReplies()))
	mux.HandleFunc("/comment/like", s.instrument("comment_like", s.Auth.RequireUser(s.HandleLike())))

	// Reports and moderation
	mux.HandleFunc("/report", s.instrument("report", s.Auth.RequireUser(s.HandleReport())))
	mux.HandleFunc("/moderation/reports", s.instrument("moderation_reports", s.Auth.RequireUser(s.HandleListReports())))
	mux.HandleFunc("/moderation/report/status", s.instrument("moderation_report_status", s.Auth.RequireUser(s.HandleReportStatus())))
	mux.HandleFunc("/moderation/stats", s.instrument("moderation_stats", s.Auth.RequireUser(s.HandleReportStats())))
	mux.HandleFunc("/moderation/content", s.instrument("moderation_content", s.Auth.RequireUser(s.HandleForceDelete())))
	mux.HandleFunc("/moderation/role", s.instrument("moderation_role", s.Auth.RequireUser(s.HandleChangeRole())))
	mux.HandleFunc("/moderation/admin-stats", s.instrument("moderation_admin_stats", s.Auth.RequireUser(s.HandleAdminStats())))
	mux.HandleFunc("/moderation/audit", s.instrument("moderation_audit", s.Auth.RequireUser(s.HandleAuditLog())))

	mux.HandleFunc("/ws", s.Auth.RequireUser(s.HandleWebSocket()))

	return middleware.CORSMiddleware(s.CORS)(mux)
}

// instrument counts the request, bounds it by RequestTimeout and records its latency.
func (s *Server) instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.Metrics.IncrementRequests()

		ctx, cancel := context.WithTimeout(r.Context(), s.RequestTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))

		s.Metrics.AddOperationLatency(name, time.Since(start))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := utils.ErrorStatus(err)
	s.Metrics.IncrementErrors()

	message := err.Error()
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "code", code, "error", err)
		message = "internal server error"
	}
	s.writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return utils.NewValidationError("invalid request body")
	}
	return nil
}

func queryID(r *http.Request, key string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return uuid.Nil, utils.NewValidationError(key + " is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, utils.NewValidationError("invalid " + key + " format")
	}
	return id, nil
}

func pageFromQuery(r *http.Request) models.Page {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))
	return models.Page{Limit: limit, Offset: offset}.Normalize()
}

// actingUser is nil for anonymous requests.
func actingUser(r *http.Request) *models.User {
	user, _ := middleware.GetUserFromContext(r.Context())
	return user
}

// sessionID returns the caller's view session, issuing a cookie on first contact.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
