package database

import (
	"context"
	"strings"
	"time"

	"board/internal/models"
	"board/internal/utils"

	"github.com/google/uuid"
)

const reportColumns = `id, target_type, target_id, reporter_id, reason, status, created_at, updated_at`

// CreateReport inserts a report. A second report by the same user on the
// same target surfaces as DUPLICATE.
func (r *repo) CreateReport(ctx context.Context, report *models.Report) error {
	query := `INSERT INTO reports (` + reportColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.exec(ctx, query,
		report.ID,
		report.TargetType,
		report.TargetID,
		report.ReporterID,
		report.Reason,
		report.Status,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return insertError(err, "report")
	}
	return nil
}

func (r *repo) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.get(ctx, &report, `SELECT `+reportColumns+` FROM reports WHERE id = ?`+r.lock, id); err != nil {
		return nil, lookupError(err, "report", id)
	}
	return &report, nil
}

// FindReport looks up the report a user filed against a target, or NOT_FOUND.
func (r *repo) FindReport(ctx context.Context, targetType models.TargetType, targetID, reporterID uuid.UUID) (*models.Report, error) {
	var report models.Report
	query := `SELECT ` + reportColumns + ` FROM reports WHERE target_type = ? AND target_id = ? AND reporter_id = ?`
	if err := r.get(ctx, &report, query, targetType, targetID, reporterID); err != nil {
		return nil, lookupError(err, "report", targetID)
	}
	return &report, nil
}

func (r *repo) UpdateReportStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus, at time.Time) error {
	return r.execOne(ctx, "report", id, `UPDATE reports SET status = ?, updated_at = ? WHERE id = ?`, status, at, id)
}

// ListReports returns reports matching filter, newest first.
func (r *repo) ListReports(ctx context.Context, filter models.ReportFilter, page models.Page) ([]*models.Report, error) {
	page = page.Normalize()

	var conditions []string
	var args []interface{}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.TargetType != "" {
		conditions = append(conditions, "target_type = ?")
		args = append(args, filter.TargetType)
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	reports := []*models.Report{}
	if err := r.selectRows(ctx, &reports, query, args...); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to list reports", err)
	}
	return reports, nil
}

func (r *repo) ListReportsForTarget(ctx context.Context, targetType models.TargetType, targetID uuid.UUID) ([]*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE target_type = ? AND target_id = ? ORDER BY created_at DESC`
	reports := []*models.Report{}
	if err := r.selectRows(ctx, &reports, query, targetType, targetID); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to list reports for target", err)
	}
	return reports, nil
}

// CountReports groups report rows by target type and status.
func (r *repo) CountReports(ctx context.Context) ([]models.ReportCount, error) {
	query := `SELECT target_type, status, COUNT(*) AS n FROM reports GROUP BY target_type, status`
	counts := []models.ReportCount{}
	if err := r.selectRows(ctx, &counts, query); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to count reports", err)
	}
	return counts, nil
}
