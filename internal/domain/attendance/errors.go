package attendance

import "errors"

// Attendance domain errors
var (
	// Clock-in errors
	ErrAlreadyClockedIn = errors.New("already clocked in today")
	ErrLocationRequired = errors.New("gps location is required for clock-in")
	ErrOutsideGeofence  = errors.New("you are outside the allowed work area")
	ErrPhotoRequired    = errors.New("photo verification is required for clock-in")

	// Clock-out errors
	ErrNoClockIn         = errors.New("no clock-in record found for today")
	ErrAlreadyClockedOut = errors.New("already clocked out today")

	// Break errors
	ErrNotClockedIn          = errors.New("must clock in before taking a break")
	ErrAlreadyOnBreak        = errors.New("already on break")
	ErrNotOnBreak            = errors.New("not currently on break")
	ErrNoActiveBreak         = errors.New("no active break found")
	ErrBreakTrackingDisabled = errors.New("break tracking is disabled for this company")

	// Sync errors
	ErrEmptySyncBatch = errors.New("no attendance records provided")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
