package response

import (
	"errors"
	"net/http"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/auth"
	"github.com/workpulse/attendance-backend-go/internal/domain/policy"
	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token has been revoked")
	case errors.Is(err, auth.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")

	// Clock-in errors
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		Conflict(w, "Already clocked in today")
	case errors.Is(err, attendance.ErrLocationRequired):
		BadRequest(w, "Location is required for clock in", nil)
	case errors.Is(err, attendance.ErrOutsideGeofence):
		BadRequest(w, "You are outside the allowed work area", nil)
	case errors.Is(err, attendance.ErrPhotoRequired):
		BadRequest(w, "Photo is required for clock in", nil)

	// Clock-out errors
	case errors.Is(err, attendance.ErrNoClockIn):
		BadRequest(w, "No clock in found for today", nil)
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		Conflict(w, "Already clocked out today")

	// Break errors
	case errors.Is(err, attendance.ErrNotClockedIn):
		BadRequest(w, "Must be clocked in to start a break", nil)
	case errors.Is(err, attendance.ErrAlreadyOnBreak):
		Conflict(w, "Already on break")
	case errors.Is(err, attendance.ErrNotOnBreak):
		BadRequest(w, "Not currently on break", nil)
	case errors.Is(err, attendance.ErrNoActiveBreak):
		BadRequest(w, "No active break found", nil)
	case errors.Is(err, attendance.ErrBreakTrackingDisabled):
		Forbidden(w, "Break tracking is disabled for this company")

	// Sync errors
	case errors.Is(err, attendance.ErrEmptySyncBatch):
		BadRequest(w, "No attendance records provided", nil)

	// Lookup errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, policy.ErrPolicyNotFound):
		NotFound(w, "Company attendance policy not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
