package report

import (
	"time"

	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

// EmployeeSummary is one employee's aggregate over a report period.
type EmployeeSummary struct {
	EmployeeID         string  `json:"employee_id"`
	TotalDays          int64   `json:"total_days"`
	TotalHours         float64 `json:"total_hours"`
	TotalOvertimeHours float64 `json:"total_overtime_hours"`
	AverageHours       float64 `json:"average_hours"`
	ViolationDays      int64   `json:"violation_days"`
}

// SummaryStats are company-wide presence counts for the period.
type SummaryStats struct {
	TotalRecords       int64     `json:"total_records"`
	PresentToday       int64     `json:"present_today"`
	CurrentlyClockedIn int64     `json:"currently_clocked_in"`
	PeriodStart        time.Time `json:"period_start"`
	PeriodEnd          time.Time `json:"period_end"`
}

type AttendanceSummaryResponse struct {
	Summary []EmployeeSummary `json:"summary"`
	Stats   SummaryStats      `json:"stats"`
}

// SummaryFilter bounds the report period. Empty bounds default to the
// current month.
type SummaryFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
}

func (f *SummaryFilter) Validate() error {
	var errs validator.ValidationErrors

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

	if len(errs) > 0 {
		return errs
	}

	return nil
}
