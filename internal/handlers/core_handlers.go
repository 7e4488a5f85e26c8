package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"board/internal/api"
	"board/internal/models"
	"board/internal/utils"
)

// HandleHealth reports liveness along with a few runtime gauges
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Only allow GET requests
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}

		sessions, err := s.Engine.TrackedSessions()
		if err != nil {
			s.writeError(w, err)
			return
		}

		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":             "healthy",
			"view_sessions":      sessions,
			"socket_connections": s.Hub.ConnectionCount(),
			"uptime_seconds":     int64(s.Metrics.Uptime() / time.Second),
			"server_time":        time.Now(),
		})
	}
}

// HandleListPosts lists live posts, notices first, optionally by one author
func (s *Server) HandleListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}

		page := pageFromQuery(r)
		var (
			posts []*models.Post
			err   error
		)
		if r.URL.Query().Get("authorId") != "" {
			authorID, idErr := queryID(r, "authorId")
			if idErr != nil {
				s.writeError(w, idErr)
				return
			}
			posts, err = s.Service.PostsByAuthor(r.Context(), authorID, page)
		} else {
			posts, err = s.Service.ListPosts(r.Context(), page)
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, posts)
	}
}

// HandlePost handles post-related requests
func (s *Server) HandlePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.getPost(w, r)

		case http.MethodPost:
			author := actingUser(r)
			if author == nil {
				s.writeError(w, utils.NewUnauthorizedError("authentication required"))
				return
			}
			var req api.CreatePostRequest
			if err := decodeJSON(r, &req); err != nil {
				s.writeError(w, err)
				return
			}
			post, err := s.Service.CreatePost(r.Context(), req.Title, req.Content, req.Category, author)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusCreated, post)

		case http.MethodPut:
			var req api.UpdatePostRequest
			if err := decodeJSON(r, &req); err != nil {
				s.writeError(w, err)
				return
			}
			post, err := s.Service.UpdatePost(r.Context(), req.ID, req.Title, req.Content, req.Category, actingUser(r))
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, post)

		case http.MethodDelete:
			id, err := queryID(r, "id")
			if err != nil {
				s.writeError(w, err)
				return
			}
			if err := s.Service.SoftDeletePost(r.Context(), id, actingUser(r)); err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, models.StatusResponse{Success: true, Message: "post deleted"})

		default:
			methodNotAllowed(w)
		}
	}
}

// getPost returns a live post and counts the view once per session window.
func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}

	post, err := s.Service.GetPost(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	first, err := s.Engine.MarkViewed(sessionID(w, r), id)
	if err != nil {
		slog.Warn("View tracking unavailable", "postId", id, "error", err)
	} else if first {
		if viewed, err := s.Service.IncreaseViewCount(r.Context(), id); err == nil {
			post = viewed
		} else {
			slog.Warn("Failed to count view", "postId", id, "error", err)
		}
	}
	s.writeJSON(w, http.StatusOK, post)
}

func (s *Server) HandleRestorePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		id, err := queryID(r, "id")
		if err != nil {
			s.writeError(w, err)
			return
		}
		post, err := s.Service.RestorePost(r.Context(), id, actingUser(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, post)
	}
}

// HandleNotice pins or unpins a post; moderators only
func (s *Server) HandleNotice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req api.NoticeRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		post, err := s.Service.SetNotice(r.Context(), req.PostID, req.Notice, actingUser(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, post)
	}
}

// HandleVote handles post voting
func (s *Server) HandleVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req api.VoteRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}

		result, err := s.Service.SetVote(r.Context(), req.PostID, actingUser(r), req.Direction)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	}
}

// HandleVoteStatus returns vote totals and, for signed-in callers, their own direction
func (s *Server) HandleVoteStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		id, err := queryID(r, "id")
		if err != nil {
			s.writeError(w, err)
			return
		}

		post, err := s.Service.GetPost(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		counts, err := s.Service.VoteCounts(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}

		resp := api.VoteStatusResponse{
			PostID:    id,
			Direction: models.VoteNone,
			Upvotes:   counts.Upvotes,
			Downvotes: counts.Downvotes,
			LikeCount: post.LikeCount,
		}
		if user := actingUser(r); user != nil {
			if resp.Direction, err = s.Service.VoteStatus(r.Context(), id, user.ID); err != nil {
				s.writeError(w, err)
				return
			}
		}
		s.writeJSON(w, http.StatusOK, resp)
	}
}
