package attendance

import (
	"time"
)

// Status is the lifecycle state of a daily attendance record.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusClockedIn  Status = "clocked_in"
	StatusOnBreak    Status = "on_break"
	StatusClockedOut Status = "clocked_out"

	// StatusCompleted is accepted on input (offline clients may send it) but
	// transitions never produce it; clocked_out is the terminal state.
	StatusCompleted Status = "completed"
)

// Method is how a clock event was recorded.
type Method string

const (
	MethodManual    Method = "manual"
	MethodBiometric Method = "biometric"
	MethodQRCode    Method = "qr_code"
	MethodNFC       Method = "nfc"
)

// BreakType classifies a break segment.
type BreakType string

const (
	BreakLunch    BreakType = "lunch"
	BreakCoffee   BreakType = "coffee"
	BreakPersonal BreakType = "personal"
	BreakMeeting  BreakType = "meeting"
)

// SyncStatus tracks whether a record is reconciled with the server.
type SyncStatus string

const (
	SyncSynced  SyncStatus = "synced"
	SyncPending SyncStatus = "pending"
	SyncFailed  SyncStatus = "failed"
)

// ApprovalStatus is mutated by the (external) approval workflow, never by the
// state machine.
type ApprovalStatus string

const (
	ApprovalPending      ApprovalStatus = "pending"
	ApprovalApproved     ApprovalStatus = "approved"
	ApprovalRejected     ApprovalStatus = "rejected"
	ApprovalAutoApproved ApprovalStatus = "auto_approved"
)

// ViolationType enumerates detectable anomalies. EarlyDeparture and
// LocationViolation are reserved; no detection rule emits them yet.
type ViolationType string

const (
	ViolationLateArrival       ViolationType = "late_arrival"
	ViolationEarlyDeparture    ViolationType = "early_departure"
	ViolationLongBreak         ViolationType = "long_break"
	ViolationMissingClockOut   ViolationType = "missing_clock_out"
	ViolationLocationViolation ViolationType = "location_violation"
)

// Severity of a violation.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// GeoPoint is a recorded device position.
type GeoPoint struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Address   *string  `json:"address,omitempty"`
}

// DeviceInfo identifies the device a clock event came from.
type DeviceInfo struct {
	Platform string `json:"platform,omitempty"`
	Version  string `json:"version,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
}

// ClockEvent is a clock-in or clock-out with its evidence.
type ClockEvent struct {
	Time       time.Time   `json:"time"`
	Location   *GeoPoint   `json:"location,omitempty"`
	Photo      *string     `json:"photo,omitempty"`
	Method     Method      `json:"method"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
}

// BreakEntry is one break segment. An open break has a nil EndTime; at most
// one break per record may be open at a time.
type BreakEntry struct {
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Type            BreakType  `json:"type"`
	Location        *GeoPoint  `json:"location,omitempty"`
}

// Shift is informational scheduling context, used only for violation checks.
type Shift struct {
	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduled_end,omitempty"`
	ShiftType      string     `json:"shift_type,omitempty"`
}

// Violation is a detected anomaly on a record.
type Violation struct {
	Type        ViolationType `json:"type"`
	Description string        `json:"description"`
	Severity    Severity      `json:"severity"`
	DetectedAt  time.Time     `json:"detected_at"`
}

// Attendance is the aggregate root: one record per (employee, company,
// calendar day). Date is truncated to midnight UTC.
type Attendance struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time

	ClockIn  *ClockEvent
	ClockOut *ClockEvent
	Breaks   []BreakEntry
	Shift    *Shift

	HoursWorked   float64
	RegularHours  float64
	OvertimeHours float64

	Status     Status
	Violations []Violation
	Notes      *string

	SyncStatus SyncStatus
	LastSyncAt *time.Time
	IsModified bool

	ApprovalStatus ApprovalStatus
	ApprovedBy     *string
	ApprovedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasClockIn reports whether a clock-in time is recorded.
func (a *Attendance) HasClockIn() bool {
	return a.ClockIn != nil && !a.ClockIn.Time.IsZero()
}

// HasClockOut reports whether a clock-out time is recorded.
func (a *Attendance) HasClockOut() bool {
	return a.ClockOut != nil && !a.ClockOut.Time.IsZero()
}

// ActiveBreak returns the open break entry, or nil when none is open.
func (a *Attendance) ActiveBreak() *BreakEntry {
	for i := range a.Breaks {
		if a.Breaks[i].EndTime == nil {
			return &a.Breaks[i]
		}
	}
	return nil
}

// DayOf truncates t to midnight UTC, the granularity of Attendance.Date.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
