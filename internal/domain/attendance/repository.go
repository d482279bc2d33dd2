package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance records. Methods
// that read company data take companyID to keep tenants isolated. The store
// guarantees at most one record per (employee_id, date) via a unique index;
// Create surfaces a duplicate as ErrAlreadyClockedIn for callers to map.
type AttendanceRepository interface {
	// Create inserts a new attendance record and returns it with its
	// generated ID and timestamps.
	Create(ctx context.Context, att Attendance) (Attendance, error)

	// GetByEmployeeAndDate retrieves the record for an employee on a calendar
	// day. Returns nil (no error) when none exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*Attendance, error)

	// Update overwrites a record's mutable fields.
	Update(ctx context.Context, att Attendance) error

	// UpdateIfOlder overwrites a record only when its stored updated_at is
	// strictly before clientModified. Returns false when the stored row was
	// newer and left untouched. This is the last-writer-wins primitive used
	// by sync reconciliation.
	UpdateIfOlder(ctx context.Context, att Attendance, clientModified time.Time) (bool, error)

	// ListByEmployee retrieves an employee's records, newest first.
	ListByEmployee(ctx context.Context, employeeID string, filter MyAttendanceFilter, companyID string) ([]Attendance, int64, error)

	// ListByCompany retrieves a company's records, newest first.
	ListByCompany(ctx context.Context, filter CompanyAttendanceFilter, companyID string) ([]Attendance, int64, error)

	// ListOpenBefore retrieves records dated before cutoff that are still in
	// clocked_in or on_break. Used by the missing clock-out sweep.
	ListOpenBefore(ctx context.Context, cutoff time.Time) ([]Attendance, error)
}
