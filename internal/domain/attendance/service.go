package attendance

import (
	"context"
)

// AttendanceService defines business logic for the attendance lifecycle.
// Identity (employee_id, company_id) is resolved from JWT claims in ctx.
type AttendanceService interface {
	// ClockIn opens today's attendance record after policy validation.
	ClockIn(ctx context.Context, req ClockInRequest) (ClockInResponse, error)

	// ClockOut closes today's record and recomputes hours and violations.
	ClockOut(ctx context.Context, req ClockOutRequest) (ClockOutResponse, error)

	// BreakStart opens a break segment on today's record.
	BreakStart(ctx context.Context, req BreakStartRequest) (BreakStartResponse, error)

	// BreakEnd closes the open break segment.
	BreakEnd(ctx context.Context) (BreakEndResponse, error)

	// SyncRecords reconciles a batch of offline-recorded daily records using
	// last-writer-wins by timestamp. Failures are isolated per record.
	SyncRecords(ctx context.Context, req SyncRequest) (SyncResponse, error)

	// GetToday returns today's record, if any, with derived flags.
	GetToday(ctx context.Context) (TodayResponse, error)

	// GetMyAttendance retrieves records for the authenticated employee.
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListResponse, error)

	// ListCompanyAttendance retrieves company-wide records (manager only).
	ListCompanyAttendance(ctx context.Context, filter CompanyAttendanceFilter) (ListResponse, error)
}
