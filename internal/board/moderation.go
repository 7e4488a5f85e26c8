package board

import (
	"context"

	"board/internal/database"
	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
)

func (s *Service) ReportPost(ctx context.Context, postID uuid.UUID, reporter *models.User, reason string) (*models.Report, error) {
	return s.report(ctx, models.TargetPost, postID, reporter, reason)
}

func (s *Service) ReportComment(ctx context.Context, commentID uuid.UUID, reporter *models.User, reason string) (*models.Report, error) {
	return s.report(ctx, models.TargetComment, commentID, reporter, reason)
}

// Report files a report against either target type.
func (s *Service) Report(ctx context.Context, targetType models.TargetType, targetID uuid.UUID, reporter *models.User, reason string) (*models.Report, error) {
	if !targetType.Valid() {
		return nil, utils.NewValidationError("target type must be POST or COMMENT")
	}
	return s.report(ctx, targetType, targetID, reporter, reason)
}

func (s *Service) report(ctx context.Context, targetType models.TargetType, targetID uuid.UUID, reporter *models.User, reason string) (*models.Report, error) {
	if err := requireUser(reporter); err != nil {
		return nil, err
	}
	if err := maxLength("reason", reason, MaxReasonLength); err != nil {
		return nil, err
	}

	now := s.now()
	report := &models.Report{
		ID:         uuid.New(),
		TargetType: targetType,
		TargetID:   targetID,
		ReporterID: reporter.ID,
		Reason:     reason,
		Status:     models.ReportPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.store.InTx(ctx, func(r database.Repository) error {
		var err error
		if targetType == models.TargetPost {
			_, err = r.GetPost(ctx, targetID)
		} else {
			_, err = r.GetComment(ctx, targetID)
		}
		if err != nil {
			return err
		}

		if _, err := r.FindReport(ctx, targetType, targetID, reporter.ID); err == nil {
			return utils.NewAlreadyReportedError(targetLabel(targetType))
		} else if !utils.IsErrorCode(err, utils.ErrNotFound) {
			return err
		}
		return r.CreateReport(ctx, report)
	})
	if utils.IsErrorCode(err, utils.ErrDuplicate) {
		return nil, utils.NewAlreadyReportedError(targetLabel(targetType))
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventReportFiled, reporter, targetType, targetID, reason)
	return report, nil
}

// UpdateReportStatus overwrites the status of a report. Setting the
// current status again is allowed.
func (s *Service) UpdateReportStatus(ctx context.Context, reportID uuid.UUID, status models.ReportStatus, moderator *models.User) (*models.Report, error) {
	if err := requireModerator(moderator); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, utils.NewValidationError("unknown report status: " + string(status))
	}

	var report *models.Report
	err := s.store.InTx(ctx, func(r database.Repository) error {
		var err error
		if report, err = r.GetReport(ctx, reportID); err != nil {
			return err
		}
		report.Status = status
		report.UpdatedAt = s.now()
		return r.UpdateReportStatus(ctx, reportID, status, report.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventReportStatusChanged, moderator, report.TargetType, report.TargetID, string(status))
	return report, nil
}

// ForceDeletePost soft-deletes any post on behalf of a moderator.
func (s *Service) ForceDeletePost(ctx context.Context, postID uuid.UUID, moderator *models.User) error {
	if err := requireModerator(moderator); err != nil {
		return err
	}
	err := s.store.InTx(ctx, func(r database.Repository) error {
		post, err := r.GetPost(ctx, postID)
		if err != nil {
			return err
		}
		if post.Deleted {
			return utils.NewAlreadyDeletedError("post")
		}
		post.MarkDeleted(s.now())
		return r.UpdatePost(ctx, post)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, models.EventContentForceDeleted, moderator, models.TargetPost, postID, "")
	return nil
}

func (s *Service) ForceDeleteComment(ctx context.Context, commentID uuid.UUID, moderator *models.User) error {
	if err := requireModerator(moderator); err != nil {
		return err
	}
	err := s.store.InTx(ctx, func(r database.Repository) error {
		comment, err := r.GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		if comment.Deleted {
			return utils.NewAlreadyDeletedError("comment")
		}
		comment.MarkDeleted(s.now())
		return r.UpdateComment(ctx, comment)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, models.EventContentForceDeleted, moderator, models.TargetComment, commentID, "")
	return nil
}

// ForceDelete dispatches on the target type.
func (s *Service) ForceDelete(ctx context.Context, targetType models.TargetType, targetID uuid.UUID, moderator *models.User) error {
	switch targetType {
	case models.TargetPost:
		return s.ForceDeletePost(ctx, targetID, moderator)
	case models.TargetComment:
		return s.ForceDeleteComment(ctx, targetID, moderator)
	default:
		return utils.NewValidationError("target type must be POST or COMMENT")
	}
}

// ChangeUserRole assigns role to the named user. A moderator may demote
// themselves, including the last moderator.
func (s *Service) ChangeUserRole(ctx context.Context, username string, role models.Role, moderator *models.User) (*models.User, error) {
	if err := requireModerator(moderator); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, utils.NewValidationError("unknown role: " + string(role))
	}

	var target *models.User
	err := s.store.InTx(ctx, func(r database.Repository) error {
		var err error
		if target, err = r.GetUserByUsername(ctx, username); err != nil {
			return err
		}
		target.Role = role
		target.UpdatedAt = s.now()
		return r.UpdateUser(ctx, target)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventRoleChanged, moderator, models.TargetUser, target.ID, string(role))
	return target, nil
}

// ReportStats aggregates report rows by status and target type.
func (s *Service) ReportStats(ctx context.Context, moderator *models.User) (*models.ReportStats, error) {
	if err := requireModerator(moderator); err != nil {
		return nil, err
	}
	counts, err := s.store.CountReports(ctx)
	if err != nil {
		return nil, err
	}
	stats := &models.ReportStats{}
	for _, c := range counts {
		stats.Add(c)
	}
	return stats, nil
}

func (s *Service) ListReports(ctx context.Context, filter models.ReportFilter, page models.Page, moderator *models.User) ([]*models.Report, error) {
	if err := requireModerator(moderator); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, utils.NewValidationError("unknown report status: " + string(filter.Status))
	}
	if filter.TargetType != "" && !filter.TargetType.Valid() {
		return nil, utils.NewValidationError("target type must be POST or COMMENT")
	}
	return s.store.ListReports(ctx, filter, page)
}

func (s *Service) ReportsForTarget(ctx context.Context, targetType models.TargetType, targetID uuid.UUID, moderator *models.User) ([]*models.Report, error) {
	if err := requireModerator(moderator); err != nil {
		return nil, err
	}
	if !targetType.Valid() {
		return nil, utils.NewValidationError("target type must be POST or COMMENT")
	}
	return s.store.ListReportsForTarget(ctx, targetType, targetID)
}

func (s *Service) AdminStats(ctx context.Context, moderator *models.User) (*models.AdminStats, error) {
	if err := requireModerator(moderator); err != nil {
		return nil, err
	}
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	totalPosts, activePosts, err := s.store.CountPosts(ctx)
	if err != nil {
		return nil, err
	}
	totalComments, activeComments, err := s.store.CountComments(ctx)
	if err != nil {
		return nil, err
	}
	return &models.AdminStats{
		TotalUsers:      users,
		TotalPosts:      totalPosts,
		ActivePosts:     activePosts,
		DeletedPosts:    totalPosts - activePosts,
		TotalComments:   totalComments,
		ActiveComments:  activeComments,
		DeletedComments: totalComments - activeComments,
	}, nil
}

func targetLabel(t models.TargetType) string {
	if t == models.TargetComment {
		return "comment"
	}
	return "post"
}
