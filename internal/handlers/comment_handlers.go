package handlers

import (
	"net/http"

	"board/internal/api"
	"board/internal/models"
)

// HandleComment handles comment-related operations
func (s *Server) HandleComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("authorId") != "" {
				authorID, err := queryID(r, "authorId")
				if err != nil {
					s.writeError(w, err)
					return
				}
				comments, err := s.Service.CommentsByAuthor(r.Context(), authorID, pageFromQuery(r))
				if err != nil {
					s.writeError(w, err)
					return
				}
				s.writeJSON(w, http.StatusOK, comments)
				return
			}

			id, err := queryID(r, "id")
			if err != nil {
				s.writeError(w, err)
				return
			}
			comment, err := s.Service.GetComment(r.Context(), id)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, comment)

		case http.MethodPost:
			var req api.CreateCommentRequest
			if err := decodeJSON(r, &req); err != nil {
				s.writeError(w, err)
				return
			}
			comment, err := s.Service.CreateComment(r.Context(), req.PostID, req.Content, actingUser(r))
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusCreated, comment)

		case http.MethodPut:
			var req api.UpdateCommentRequest
			if err := decodeJSON(r, &req); err != nil {
				s.writeError(w, err)
				return
			}
			comment, err := s.Service.UpdateComment(r.Context(), req.ID, req.Content, actingUser(r))
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, comment)

		case http.MethodDelete:
			id, err := queryID(r, "id")
			if err != nil {
				s.writeError(w, err)
				return
			}
			if err := s.Service.SoftDeleteComment(r.Context(), id, actingUser(r)); err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, models.StatusResponse{Success: true, Message: "comment deleted"})

		default:
			methodNotAllowed(w)
		}
	}
}

// HandleReply attaches a reply to an existing comment
func (s *Server) HandleReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req api.CreateReplyRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		reply, err := s.Service.CreateReply(r.Context(), req.ParentID, req.Content, actingUser(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, reply)
	}
}

func (s *Server) HandleRestoreComment() http.HandlerFunc {
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
		comment, err := s.Service.RestoreComment(r.Context(), id, actingUser(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, comment)
	}
}

// HandlePostComments lists the live comments of a post with their count
func (s *Server) HandlePostComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		postID, err := queryID(r, "postId")
		if err != nil {
			s.writeError(w, err)
			return
		}
		comments, err := s.Service.CommentsByPost(r.Context(), postID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		count, err := s.Service.CommentCount(r.Context(), postID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"postId":   postID,
			"count":    count,
			"comments": comments,
		})
	}
}

func (s *Server) HandleReplies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		parentID, err := queryID(r, "parentId")
		if err != nil {
			s.writeError(w, err)
			return
		}
		replies, err := s.Service.RepliesByParent(r.Context(), parentID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, replies)
	}
}

// HandleLike toggles the caller's like (POST) or reports the like state (GET)
func (s *Server) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req api.LikeRequest
			if err := decodeJSON(r, &req); err != nil {
				s.writeError(w, err)
				return
			}
			result, err := s.Service.ToggleLike(r.Context(), req.CommentID, actingUser(r))
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, likeResponse(result))

		case http.MethodGet:
			commentID, err := queryID(r, "commentId")
			if err != nil {
				s.writeError(w, err)
				return
			}
			count, err := s.Service.LikeCount(r.Context(), commentID)
			if err != nil {
				s.writeError(w, err)
				return
			}
			liked, err := s.Service.IsLikedBy(r.Context(), commentID, actingUser(r).ID)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, http.StatusOK, likeResponse(&models.LikeResult{
				CommentID: commentID,
				Liked:     liked,
				LikeCount: count,
			}))

		default:
			methodNotAllowed(w)
		}
	}
}

func likeResponse(result *models.LikeResult) api.LikeResponse {
	return api.LikeResponse{
		CommentID: result.CommentID,
		Status:    result.Status(),
		LikeCount: result.LikeCount,
	}
}
