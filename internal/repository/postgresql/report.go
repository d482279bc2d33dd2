package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/workpulse/attendance-backend-go/internal/domain/report"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
)

type reportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepository{db: db}
}

// GetAttendanceSummary implements report.ReportRepository.
func (r *reportRepository) GetAttendanceSummary(ctx context.Context, companyID string, start, end time.Time) ([]report.EmployeeSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			employee_id,
			COUNT(*) AS total_days,
			COALESCE(SUM(hours_worked), 0) AS total_hours,
			COALESCE(SUM(overtime_hours), 0) AS total_overtime_hours,
			COALESCE(AVG(hours_worked), 0) AS average_hours,
			COUNT(*) FILTER (WHERE jsonb_array_length(violations) > 0) AS violation_days
		FROM attendances
		WHERE company_id = $1
		  AND date >= $2 AND date <= $3
		GROUP BY employee_id
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendance summary: %w", err)
	}
	defer rows.Close()

	var result []report.EmployeeSummary
	for rows.Next() {
		var row report.EmployeeSummary
		if err := rows.Scan(
			&row.EmployeeID,
			&row.TotalDays,
			&row.TotalHours,
			&row.TotalOvertimeHours,
			&row.AverageHours,
			&row.ViolationDays,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read summary rows: %w", err)
	}

	return result, nil
}

// CountRecords implements report.ReportRepository.
func (r *reportRepository) CountRecords(ctx context.Context, companyID string, start, end time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendances
		WHERE company_id = $1 AND date >= $2 AND date <= $3
	`, companyID, start, end).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance records: %w", err)
	}
	return total, nil
}

// CountPresentOn implements report.ReportRepository.
func (r *reportRepository) CountPresentOn(ctx context.Context, companyID string, day time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendances
		WHERE company_id = $1 AND date = $2 AND clock_in IS NOT NULL
	`, companyID, day).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count present employees: %w", err)
	}
	return total, nil
}

// CountCurrentlyClocked implements report.ReportRepository.
func (r *reportRepository) CountCurrentlyClocked(ctx context.Context, companyID string, day time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendances
		WHERE company_id = $1 AND date = $2 AND status IN ('clocked_in', 'on_break')
	`, companyID, day).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count clocked-in employees: %w", err)
	}
	return total, nil
}
