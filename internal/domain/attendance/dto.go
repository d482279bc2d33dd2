package attendance

import (
	"time"

	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

var validMethods = []string{
	string(MethodManual), string(MethodBiometric), string(MethodQRCode), string(MethodNFC),
}

var validBreakTypes = []string{
	string(BreakLunch), string(BreakCoffee), string(BreakPersonal), string(BreakMeeting),
}

var validStatuses = []string{
	string(StatusNotStarted), string(StatusClockedIn), string(StatusOnBreak),
	string(StatusClockedOut), string(StatusCompleted),
}

// LocationPayload is a client-supplied position.
type LocationPayload struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Address   *string  `json:"address,omitempty"`
}

func (l *LocationPayload) validate(field string, errs validator.ValidationErrors) validator.ValidationErrors {
	if !validator.IsValidLatitude(l.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   field + ".latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if !validator.IsValidLongitude(l.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   field + ".longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	return errs
}

// DeviceInfoPayload identifies the client device.
type DeviceInfoPayload struct {
	Platform string `json:"platform,omitempty"`
	Version  string `json:"version,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
}

type ClockInRequest struct {
	Location   *LocationPayload   `json:"location,omitempty"`
	Photo      *string            `json:"photo,omitempty"`
	Method     string             `json:"method,omitempty"`
	DeviceInfo *DeviceInfoPayload `json:"device_info,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Method == "" {
		r.Method = string(MethodManual)
	}
	if !validator.IsInSlice(r.Method, validMethods) {
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method must be one of manual, biometric, qr_code, nfc",
		})
	}

	if r.Location != nil {
		errs = r.Location.validate("location", errs)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ClockOutRequest struct {
	Location *LocationPayload `json:"location,omitempty"`
	Photo    *string          `json:"photo,omitempty"`
	Method   string           `json:"method,omitempty"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Method == "" {
		r.Method = string(MethodManual)
	}
	if !validator.IsInSlice(r.Method, validMethods) {
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method must be one of manual, biometric, qr_code, nfc",
		})
	}

	if r.Location != nil {
		errs = r.Location.validate("location", errs)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BreakStartRequest struct {
	Type     string           `json:"type,omitempty"`
	Location *LocationPayload `json:"location,omitempty"`
}

func (r *BreakStartRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Type == "" {
		r.Type = string(BreakLunch)
	}
	if !validator.IsInSlice(r.Type, validBreakTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of lunch, coffee, personal, meeting",
		})
	}

	if r.Location != nil {
		errs = r.Location.validate("location", errs)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// SYNC DTOs
// ========================================

// ClockEventPayload mirrors ClockEvent for offline-recorded events.
type ClockEventPayload struct {
	Time       *time.Time         `json:"time,omitempty"`
	Location   *LocationPayload   `json:"location,omitempty"`
	Photo      *string            `json:"photo,omitempty"`
	Method     string             `json:"method,omitempty"`
	DeviceInfo *DeviceInfoPayload `json:"device_info,omitempty"`
}

// BreakPayload mirrors BreakEntry for offline-recorded breaks.
type BreakPayload struct {
	StartTime       time.Time        `json:"start_time"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	DurationMinutes int              `json:"duration_minutes,omitempty"`
	Type            string           `json:"type,omitempty"`
	Location        *LocationPayload `json:"location,omitempty"`
}

// SyncRecord is one client-originated daily record in a sync batch.
type SyncRecord struct {
	Date         string             `json:"date"` // YYYY-MM-DD or RFC3339
	ClockIn      *ClockEventPayload `json:"clock_in,omitempty"`
	ClockOut     *ClockEventPayload `json:"clock_out,omitempty"`
	Breaks       []BreakPayload     `json:"breaks,omitempty"`
	Status       string             `json:"status,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
	LastModified time.Time          `json:"last_modified"`
}

func (r *SyncRecord) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := parseDay(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be YYYY-MM-DD or an ISO8601 timestamp",
		})
	}

	if r.LastModified.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "last_modified",
			Message: "last_modified is required",
		})
	}

	if r.Status != "" && !validator.IsInSlice(r.Status, validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "invalid status",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Day resolves the record's calendar day, truncated to midnight UTC.
func (r *SyncRecord) Day() (time.Time, bool) {
	return parseDay(r.Date)
}

func parseDay(s string) (time.Time, bool) {
	if d, ok := validator.IsValidDate(s); ok {
		return DayOf(d), true
	}
	if t, ok := validator.IsValidDateTime(s); ok {
		return DayOf(t), true
	}
	return time.Time{}, false
}

type SyncRequest struct {
	Records []SyncRecord `json:"attendance_records"`
}

func (r *SyncRequest) Validate() error {
	if len(r.Records) == 0 {
		return ErrEmptySyncBatch
	}
	return nil
}

// SyncAction is the per-record reconciliation outcome.
type SyncAction string

const (
	SyncCreated SyncAction = "created"
	SyncUpdated SyncAction = "updated"
	SyncSkipped SyncAction = "skipped"
)

type SyncOutcome struct {
	Date   string     `json:"date"`
	Action SyncAction `json:"action"`
	ID     string     `json:"id,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

type SyncError struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

type SyncResponse struct {
	Results        []SyncOutcome `json:"sync_results"`
	Errors         []SyncError   `json:"errors"`
	TotalProcessed int           `json:"total_processed"`
	Successful     int           `json:"successful"`
	Failed         int           `json:"failed"`
}

// ========================================
// FILTERS
// ========================================

type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 30
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be YYYY-MM-DD",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be YYYY-MM-DD",
			})
		}
	}
	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "invalid status",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CompanyAttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *CompanyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be YYYY-MM-DD",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be YYYY-MM-DD",
			})
		}
	}
	if f.Status != nil && *f.Status != "" && !validator.IsInSlice(*f.Status, validStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "invalid status",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSES
// ========================================

// RecordResponse is the wire representation of an attendance record.
type RecordResponse struct {
	ID             string         `json:"id"`
	EmployeeID     string         `json:"employee_id"`
	CompanyID      string         `json:"company_id"`
	Date           string         `json:"date"` // YYYY-MM-DD
	ClockIn        *ClockEvent    `json:"clock_in,omitempty"`
	ClockOut       *ClockEvent    `json:"clock_out,omitempty"`
	Breaks         []BreakEntry   `json:"breaks"`
	Shift          *Shift         `json:"shift,omitempty"`
	HoursWorked    float64        `json:"hours_worked"`
	RegularHours   float64        `json:"regular_hours"`
	OvertimeHours  float64        `json:"overtime_hours"`
	Status         Status         `json:"status"`
	Violations     []Violation    `json:"violations"`
	Notes          *string        `json:"notes,omitempty"`
	SyncStatus     SyncStatus     `json:"sync_status"`
	LastSyncAt     *time.Time     `json:"last_sync_at,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ClockInResponse struct {
	Record      RecordResponse `json:"attendance"`
	ClockInTime time.Time      `json:"clock_in_time"`
	Location    *GeoPoint      `json:"location,omitempty"`
}

type ClockOutResponse struct {
	Record        RecordResponse `json:"attendance"`
	ClockOutTime  time.Time      `json:"clock_out_time"`
	HoursWorked   float64        `json:"hours_worked"`
	OvertimeHours float64        `json:"overtime_hours"`
}

type BreakStartResponse struct {
	BreakStartTime time.Time `json:"break_start_time"`
	Status         Status    `json:"status"`
}

type BreakEndResponse struct {
	BreakEndTime         time.Time `json:"break_end_time"`
	BreakDurationMinutes int       `json:"break_duration"`
	Status               Status    `json:"status"`
}

type TodayResponse struct {
	Record        *RecordResponse `json:"attendance"`
	HasClockIn    bool            `json:"has_clock_in"`
	HasClockOut   bool            `json:"has_clock_out"`
	CurrentStatus Status          `json:"current_status"`
}

type ListResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Records    []RecordResponse `json:"attendance"`
}
