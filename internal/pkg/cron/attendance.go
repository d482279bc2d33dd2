package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/policy"
	"github.com/workpulse/attendance-backend-go/internal/pkg/metrics"
)

// AttendanceJobs contains attendance-related cron jobs
type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	policyRepo     policy.PolicyRepository
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	policyRepo policy.PolicyRepository,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		policyRepo:     policyRepo,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("close_stale_attendances", 1*time.Hour, j.CloseStaleAttendances)
}

// CloseStaleAttendances finds records from past days still sitting in
// clocked_in or on_break and forces them to the terminal state. The clock-out
// event stays empty so the missing clock-out shows up as a violation.
func (j *AttendanceJobs) CloseStaleAttendances(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := attendance.DayOf(now)

	stale, err := j.attendanceRepo.ListOpenBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale open records: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	// Policies rarely differ within a run; cache per company.
	policies := make(map[string]policy.AttendancePolicy)

	closedCount := 0
	for _, record := range stale {
		if active := record.ActiveBreak(); active != nil {
			end := active.StartTime
			active.EndTime = &end
		}
		record.Status = attendance.StatusClockedOut

		pol, ok := policies[record.CompanyID]
		if !ok {
			var polErr error
			pol, polErr = j.policyRepo.GetByCompanyID(ctx, record.CompanyID)
			if polErr != nil {
				pol = policy.AttendancePolicy{CompanyID: record.CompanyID}
			}
			policies[record.CompanyID] = pol
		}

		for _, v := range record.DetectViolations(pol, now) {
			metrics.Violations.WithLabelValues(string(v.Type)).Inc()
		}

		if err := j.attendanceRepo.Update(ctx, record); err != nil {
			slog.Error("Cron: failed to close stale attendance",
				"attendance_id", record.ID, "error", err)
			continue
		}
		closedCount++
	}

	slog.Info("Cron: closed stale attendances", "count", closedCount, "found", len(stale))
	return nil
}
