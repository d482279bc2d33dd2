package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/workpulse/attendance-backend-go/internal/domain/policy"
	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

// lateGraceMinutes is how far past the scheduled start a clock-in may land
// before it counts as a late arrival.
const lateGraceMinutes = 15

// longBreakMinutes is the completed-break duration above which a long_break
// violation is recorded.
const longBreakMinutes = 60

// CalculateHours recomputes HoursWorked, RegularHours and OvertimeHours from
// the clock pair and break segments. Breaks without an end time contribute
// zero. The result is never negative. threshold is the daily boundary between
// regular and overtime hours.
func (a *Attendance) CalculateHours(threshold float64) {
	if !a.HasClockIn() || !a.HasClockOut() {
		a.HoursWorked = 0
		a.RegularHours = 0
		a.OvertimeHours = 0
		return
	}

	total := a.ClockOut.Time.Sub(a.ClockIn.Time)

	for _, b := range a.Breaks {
		if b.EndTime != nil {
			total -= b.EndTime.Sub(b.StartTime)
		}
	}

	totalHours := math.Max(0, total.Hours())

	a.HoursWorked = totalHours
	a.RegularHours = math.Min(totalHours, threshold)
	a.OvertimeHours = math.Max(0, totalHours-threshold)
}

// DetectViolations rebuilds the violation list from scratch against the
// company policy. It is not additive: a prior list is replaced wholesale.
func (a *Attendance) DetectViolations(pol policy.AttendancePolicy, now time.Time) []Violation {
	var violations []Violation

	if a.HasClockIn() {
		if scheduledStart, ok := scheduledStartOn(a.Date, pol.WorkingHours.Start); ok {
			grace := scheduledStart.Add(lateGraceMinutes * time.Minute)
			if a.ClockIn.Time.After(grace) {
				minutesLate := int(math.Round(a.ClockIn.Time.Sub(scheduledStart).Minutes()))
				violations = append(violations, Violation{
					Type:        ViolationLateArrival,
					Description: fmt.Sprintf("Arrived %d minutes late", minutesLate),
					Severity:    SeverityMedium,
					DetectedAt:  now,
				})
			}
		}
	}

	// Only meaningful on a record that should be closed but never was; a
	// record still in clocked_in is simply an open day.
	if a.HasClockIn() && !a.HasClockOut() && a.Status != StatusClockedIn {
		violations = append(violations, Violation{
			Type:        ViolationMissingClockOut,
			Description: "Employee forgot to clock out",
			Severity:    SeverityHigh,
			DetectedAt:  now,
		})
	}

	for _, b := range a.Breaks {
		if b.EndTime == nil {
			continue
		}
		minutes := b.EndTime.Sub(b.StartTime).Minutes()
		if minutes > longBreakMinutes {
			violations = append(violations, Violation{
				Type:        ViolationLongBreak,
				Description: fmt.Sprintf("Break lasted %d minutes", int(math.Round(minutes))),
				Severity:    SeverityLow,
				DetectedAt:  now,
			})
		}
	}

	a.Violations = violations
	return violations
}

// scheduledStartOn resolves an "HH:MM" working-hours start against a record
// date. Returns false when the policy defines no valid start, in which case
// late arrivals cannot be judged.
func scheduledStartOn(date time.Time, start string) (time.Time, bool) {
	if !validator.IsValidClock(start) {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", start)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, date.Location()), true
}
