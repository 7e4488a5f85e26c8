package handlers

import (
	"net/http"
	"strconv"

	"board/internal/api"
	"board/internal/board"
	"board/internal/models"
	"board/internal/utils"
)

const defaultAuditLimit = 50

// HandleReport files a report against a post or a comment
func (s *Server) HandleReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req api.ReportRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		report, err := s.Service.Report(r.Context(), req.TargetType, req.TargetID, actingUser(r), req.Reason)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, report)
	}
}

// HandleListReports lists reports by status and type, or every report on one target
func (s *Server) HandleListReports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}

		query := r.URL.Query()
		targetType := models.TargetType(query.Get("targetType"))

		var (
			reports []*models.Report
			err     error
		)
		if query.Get("targetId") != "" {
			targetID, idErr := queryID(r, "targetId")
			if idErr != nil {
				s.writeError(w, idErr)
				return
			}
			reports, err = s.Service.ReportsForTarget(r.Context(), targetType, targetID, actingUser(r))
		} else {
			filter := models.ReportFilter{
				Status:     models.ReportStatus(query.Get("status")),
				TargetType: targetType,
			}
			reports, err = s.Service.ListReports(r.Context(), filter, pageFromQuery(r), actingUser(r))
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, reports)
	}
}

func (s *Server) HandleReportStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		var req api.ReportStatusRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		report, err := s.Service.UpdateReportStatus(r.Context(), req.ReportID, req.Status, actingUser(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) HandleReportStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		stats, err := s.Service.ReportStats(r.Context(), actingUser(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, stats)
	}
}

// HandleForceDelete soft-deletes any post or comment regardless of author
func (s *Server) HandleForceDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		var req api.ForceDeleteRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		if err := s.Service.ForceDelete(r.Context(), req.TargetType, req.TargetID, actingUser(r)); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, models.StatusResponse{Success: true, Message: "content deleted"})
	}
}

func (s *Server) HandleChangeRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		var req api.RoleRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		user, err := s.Service.ChangeUserRole(r.Context(), req.Username, req.Role, actingUser(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) HandleAdminStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		stats, err := s.Service.AdminStats(r.Context(), actingUser(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, stats)
	}
}

// HandleAuditLog returns the most recent moderation events from MongoDB
func (s *Server) HandleAuditLog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		if !board.IsModerator(actingUser(r)) {
			s.writeError(w, utils.NewForbiddenError("moderator role required"))
			return
		}
		if s.Audit == nil {
			s.writeError(w, utils.NewAppError(utils.ErrNotFound, "audit log is not configured", nil))
			return
		}

		limit := int64(defaultAuditLimit)
		if n, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && n > 0 && n <= models.MaxPageSize {
			limit = n
		}
		events, err := s.Audit.Recent(r.Context(), limit)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, events)
	}
}
