package pg

import (
	"context"
	"fmt"

	"github.com/floatdr/forum/internal/domain"
	internal_errors "github.com/floatdr/forum/internal/errors"
)

func (s *Storage) CreateReport(ctx context.Context, data domain.ReportCreationData) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO forum_reports (thread_id, reporter_id, reason, details)
        VALUES ($1, $2, $3, $4)
    `, data.ThreadId, data.ReporterId, data.Reason, data.Details)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (s *Storage) OpenReports(ctx context.Context) ([]domain.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT
            rep.id, rep.thread_id, rep.reporter_id, rep.reason, rep.details,
            rep.status, rep.created_at, t.title, p.username
        FROM forum_reports rep
        JOIN forum_threads t ON t.id = rep.thread_id
        JOIN profiles p ON p.id = rep.reporter_id
        WHERE rep.status = $1
        ORDER BY rep.created_at DESC
    `, domain.ReportOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var r domain.Report
		err := rows.Scan(
			&r.Id, &r.ThreadId, &r.ReporterId, &r.Reason, &r.Details,
			&r.Status, &r.CreatedAt, &r.ThreadTitle, &r.ReporterUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *Storage) ResolveReport(ctx context.Context, id domain.ReportId) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE forum_reports SET status = $2 WHERE id = $1", id, domain.ReportResolved)
	if err != nil {
		return fmt.Errorf("failed to resolve report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return internal_errors.NotFound("report not found")
	}
	return nil
}

func (s *Storage) DeleteReport(ctx context.Context, id domain.ReportId) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM forum_reports WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return internal_errors.NotFound("report not found")
	}
	return nil
}
