package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, employee_id, company_id, date,
	clock_in, clock_out, breaks, shift,
	hours_worked, regular_hours, overtime_hours,
	status, violations, notes,
	sync_status, last_sync_at, is_modified,
	approval_status, approved_by, approved_at,
	created_at, updated_at
`

// scanAttendance reads one row, decoding the jsonb columns into their typed
// shapes.
func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	var clockIn, clockOut, breaks, shift, violations []byte

	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date,
		&clockIn, &clockOut, &breaks, &shift,
		&att.HoursWorked, &att.RegularHours, &att.OvertimeHours,
		&att.Status, &violations, &att.Notes,
		&att.SyncStatus, &att.LastSyncAt, &att.IsModified,
		&att.ApprovalStatus, &att.ApprovedBy, &att.ApprovedAt,
		&att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	if len(clockIn) > 0 {
		att.ClockIn = &attendance.ClockEvent{}
		if err := json.Unmarshal(clockIn, att.ClockIn); err != nil {
			return attendance.Attendance{}, fmt.Errorf("decode clock_in: %w", err)
		}
	}
	if len(clockOut) > 0 {
		att.ClockOut = &attendance.ClockEvent{}
		if err := json.Unmarshal(clockOut, att.ClockOut); err != nil {
			return attendance.Attendance{}, fmt.Errorf("decode clock_out: %w", err)
		}
	}
	if len(breaks) > 0 {
		if err := json.Unmarshal(breaks, &att.Breaks); err != nil {
			return attendance.Attendance{}, fmt.Errorf("decode breaks: %w", err)
		}
	}
	if len(shift) > 0 {
		att.Shift = &attendance.Shift{}
		if err := json.Unmarshal(shift, att.Shift); err != nil {
			return attendance.Attendance{}, fmt.Errorf("decode shift: %w", err)
		}
	}
	if len(violations) > 0 {
		if err := json.Unmarshal(violations, &att.Violations); err != nil {
			return attendance.Attendance{}, fmt.Errorf("decode violations: %w", err)
		}
	}

	return att, nil
}

// encodeFields marshals the jsonb columns of a record. nil pointers become
// SQL NULL; slices always encode, so breaks/violations round-trip as [].
func encodeFields(att attendance.Attendance) (clockIn, clockOut, breaks, shift, violations []byte, err error) {
	if att.ClockIn != nil {
		if clockIn, err = json.Marshal(att.ClockIn); err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("encode clock_in: %w", err)
		}
	}
	if att.ClockOut != nil {
		if clockOut, err = json.Marshal(att.ClockOut); err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("encode clock_out: %w", err)
		}
	}
	if att.Breaks == nil {
		att.Breaks = []attendance.BreakEntry{}
	}
	if breaks, err = json.Marshal(att.Breaks); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encode breaks: %w", err)
	}
	if att.Shift != nil {
		if shift, err = json.Marshal(att.Shift); err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("encode shift: %w", err)
		}
	}
	if att.Violations == nil {
		att.Violations = []attendance.Violation{}
	}
	if violations, err = json.Marshal(att.Violations); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encode violations: %w", err)
	}
	return clockIn, clockOut, breaks, shift, violations, nil
}

// Create implements attendance.AttendanceRepository. A duplicate
// (employee_id, date) insert is reported as ErrAlreadyClockedIn: the unique
// index is the backstop against two racing first-writes for the same day.
func (a *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	clockIn, clockOut, breaks, shift, violations, err := encodeFields(att)
	if err != nil {
		return attendance.Attendance{}, err
	}

	if att.ID == "" {
		att.ID = uuid.NewString()
	}

	query := `
		INSERT INTO attendances (
			id, employee_id, company_id, date,
			clock_in, clock_out, breaks, shift,
			hours_worked, regular_hours, overtime_hours,
			status, violations, notes,
			sync_status, last_sync_at, is_modified,
			approval_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		att.ID, att.EmployeeID, att.CompanyID, att.Date,
		clockIn, clockOut, breaks, shift,
		att.HoursWorked, att.RegularHours, att.OvertimeHours,
		att.Status, violations, att.Notes,
		att.SyncStatus, att.LastSyncAt, att.IsModified,
		att.ApprovalStatus,
	).Scan(&att.CreatedAt, &att.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.Attendance{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1
		  AND date = $2
		  AND company_id = $3
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	clockIn, clockOut, breaks, shift, violations, err := encodeFields(att)
	if err != nil {
		return err
	}

	query := `
		UPDATE attendances SET
			clock_in = $2,
			clock_out = $3,
			breaks = $4,
			shift = $5,
			hours_worked = $6,
			regular_hours = $7,
			overtime_hours = $8,
			status = $9,
			violations = $10,
			notes = $11,
			sync_status = $12,
			last_sync_at = $13,
			is_modified = $14,
			approval_status = $15,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		clockIn, clockOut, breaks, shift,
		att.HoursWorked, att.RegularHours, att.OvertimeHours,
		att.Status, violations, att.Notes,
		att.SyncStatus, att.LastSyncAt, att.IsModified,
		att.ApprovalStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// UpdateIfOlder implements attendance.AttendanceRepository. The updated_at
// guard lives in the statement itself so the compare-and-swap is atomic even
// under concurrent sync batches.
func (a *attendanceRepository) UpdateIfOlder(ctx context.Context, att attendance.Attendance, clientModified time.Time) (bool, error) {
	q := GetQuerier(ctx, a.db)

	clockIn, clockOut, breaks, shift, violations, err := encodeFields(att)
	if err != nil {
		return false, err
	}

	query := `
		UPDATE attendances SET
			clock_in = $2,
			clock_out = $3,
			breaks = $4,
			shift = $5,
			hours_worked = $6,
			regular_hours = $7,
			overtime_hours = $8,
			status = $9,
			violations = $10,
			notes = $11,
			sync_status = $12,
			last_sync_at = $13,
			is_modified = $14,
			updated_at = NOW()
		WHERE id = $1
		  AND updated_at < $15
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		clockIn, clockOut, breaks, shift,
		att.HoursWorked, att.RegularHours, att.OvertimeHours,
		att.Status, violations, att.Notes,
		att.SyncStatus, att.LastSyncAt, att.IsModified,
		clientModified,
	)
	if err != nil {
		return false, fmt.Errorf("failed to apply sync update: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "employee_id = $1 AND company_id = $2"
	args := []interface{}{employeeID, companyID}
	argIdx := 3

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendances WHERE " + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances
		WHERE %s
		ORDER BY date DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var result []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		result = append(result, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read attendance rows: %w", err)
	}

	return result, total, nil
}

// ListByCompany implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByCompany(ctx context.Context, filter attendance.CompanyAttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendances WHERE " + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances
		WHERE %s
		ORDER BY date DESC, (clock_in->>'time') DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list company attendance: %w", err)
	}
	defer rows.Close()

	var result []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		result = append(result, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read attendance rows: %w", err)
	}

	return result, total, nil
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date < $1
		  AND status IN ('clocked_in', 'on_break')
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance: %w", err)
	}
	defer rows.Close()

	var result []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		result = append(result, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance rows: %w", err)
	}

	return result, nil
}
