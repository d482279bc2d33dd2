package report

import (
	"context"
	"time"
)

// ReportRepository provides read-only rollups over stored attendance.
type ReportRepository interface {
	// GetAttendanceSummary groups a company's records by employee over
	// [start, end], summing hours and overtime, averaging hours, and
	// counting days with at least one violation.
	GetAttendanceSummary(ctx context.Context, companyID string, start, end time.Time) ([]EmployeeSummary, error)

	// CountRecords counts attendance rows in [start, end].
	CountRecords(ctx context.Context, companyID string, start, end time.Time) (int64, error)

	// CountPresentOn counts records on day with a recorded clock-in.
	CountPresentOn(ctx context.Context, companyID string, day time.Time) (int64, error)

	// CountCurrentlyClocked counts records on day still in clocked_in or
	// on_break.
	CountCurrentlyClocked(ctx context.Context, companyID string, day time.Time) (int64, error)
}

// ReportService exposes the summary rollup to handlers.
type ReportService interface {
	GetAttendanceSummary(ctx context.Context, filter SummaryFilter) (AttendanceSummaryResponse, error)
}
