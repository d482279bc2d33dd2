package attendance

import (
	"context"
	"fmt"
	"math"

	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/policy"
	"github.com/workpulse/attendance-backend-go/internal/pkg/metrics"
)

// Server data is newer: the stored record's updated_at is at or past the
// client's last_modified, so the client copy loses.
const skipReasonStale = "Server data is newer"

// SyncRecords implements attendance.AttendanceService. Records are
// reconciled one at a time; a bad record never fails the batch.
func (s *AttendanceServiceImpl) SyncRecords(ctx context.Context, req attendance.SyncRequest) (attendance.SyncResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SyncResponse{}, err
	}

	employeeID, companyID, err := identityFromContext(ctx)
	if err != nil {
		return attendance.SyncResponse{}, err
	}

	// One policy lookup for the whole batch. A missing policy degrades to
	// the default overtime threshold rather than rejecting the sync.
	threshold := policy.AttendancePolicy{}.DailyThreshold()
	if pol, polErr := s.policyRepo.GetByCompanyID(ctx, companyID); polErr == nil {
		threshold = pol.DailyThreshold()
	}

	resp := attendance.SyncResponse{
		Results:        []attendance.SyncOutcome{},
		Errors:         []attendance.SyncError{},
		TotalProcessed: len(req.Records),
	}

	for _, rec := range req.Records {
		outcome, err := s.syncOne(ctx, employeeID, companyID, rec, threshold)
		if err != nil {
			resp.Errors = append(resp.Errors, attendance.SyncError{
				Date:  rec.Date,
				Error: err.Error(),
			})
			resp.Failed++
			metrics.SyncOutcomes.WithLabelValues("failed").Inc()
			continue
		}

		resp.Results = append(resp.Results, outcome)
		resp.Successful++
		metrics.SyncOutcomes.WithLabelValues(string(outcome.Action)).Inc()
	}

	return resp, nil
}

func (s *AttendanceServiceImpl) syncOne(ctx context.Context, employeeID, companyID string, rec attendance.SyncRecord, threshold float64) (outcome attendance.SyncOutcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while syncing record: %v", p)
		}
	}()

	if err := rec.Validate(); err != nil {
		return attendance.SyncOutcome{}, err
	}

	day, ok := rec.Day()
	if !ok {
		return attendance.SyncOutcome{}, fmt.Errorf("unparseable date %q", rec.Date)
	}

	key := recordKey(employeeID, day)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, day, companyID)
	if err != nil {
		return attendance.SyncOutcome{}, fmt.Errorf("failed to load attendance record: %w", err)
	}

	now := s.now()

	if existing == nil {
		att := attendance.Attendance{
			EmployeeID:     employeeID,
			CompanyID:      companyID,
			Date:           day,
			ClockIn:        toSyncedClockEvent(rec.ClockIn),
			ClockOut:       toSyncedClockEvent(rec.ClockOut),
			Breaks:         toBreakEntries(rec.Breaks),
			Status:         syncedStatus(rec.Status),
			Notes:          rec.Notes,
			SyncStatus:     attendance.SyncSynced,
			LastSyncAt:     &now,
			ApprovalStatus: attendance.ApprovalPending,
		}

		if att.HasClockIn() && att.HasClockOut() {
			att.CalculateHours(threshold)
		}

		created, err := s.AttendanceRepository.Create(ctx, att)
		if err != nil {
			return attendance.SyncOutcome{}, fmt.Errorf("failed to create attendance record: %w", err)
		}

		return attendance.SyncOutcome{
			Date:   rec.Date,
			Action: attendance.SyncCreated,
			ID:     created.ID,
		}, nil
	}

	if !rec.LastModified.After(existing.UpdatedAt) {
		return attendance.SyncOutcome{
			Date:   rec.Date,
			Action: attendance.SyncSkipped,
			ID:     existing.ID,
			Reason: skipReasonStale,
		}, nil
	}

	updated := *existing
	updated.ClockIn = toSyncedClockEvent(rec.ClockIn)
	updated.ClockOut = toSyncedClockEvent(rec.ClockOut)
	updated.Breaks = toBreakEntries(rec.Breaks)
	updated.Status = syncedStatus(rec.Status)
	if rec.Notes != nil {
		updated.Notes = rec.Notes
	}
	updated.SyncStatus = attendance.SyncSynced
	updated.LastSyncAt = &now

	if updated.HasClockIn() && updated.HasClockOut() {
		updated.CalculateHours(threshold)
	}

	// The conditional write re-checks last_modified against updated_at so a
	// concurrent server-side write between the read above and this update
	// still wins.
	applied, err := s.AttendanceRepository.UpdateIfOlder(ctx, updated, rec.LastModified)
	if err != nil {
		return attendance.SyncOutcome{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	if !applied {
		return attendance.SyncOutcome{
			Date:   rec.Date,
			Action: attendance.SyncSkipped,
			ID:     existing.ID,
			Reason: skipReasonStale,
		}, nil
	}

	return attendance.SyncOutcome{
		Date:   rec.Date,
		Action: attendance.SyncUpdated,
		ID:     existing.ID,
	}, nil
}

// syncedStatus keeps the client status, folding the accepted input alias
// onto the terminal state and defaulting an absent status.
func syncedStatus(raw string) attendance.Status {
	switch attendance.Status(raw) {
	case "":
		return attendance.StatusNotStarted
	case attendance.StatusCompleted:
		return attendance.StatusClockedOut
	default:
		return attendance.Status(raw)
	}
}

func toSyncedClockEvent(p *attendance.ClockEventPayload) *attendance.ClockEvent {
	if p == nil || p.Time == nil {
		return nil
	}
	method := attendance.Method(p.Method)
	if method == "" {
		method = attendance.MethodManual
	}
	return &attendance.ClockEvent{
		Time:       *p.Time,
		Location:   toGeoPoint(p.Location),
		Photo:      p.Photo,
		Method:     method,
		DeviceInfo: toDeviceInfo(p.DeviceInfo),
	}
}

func toBreakEntries(payloads []attendance.BreakPayload) []attendance.BreakEntry {
	if len(payloads) == 0 {
		return nil
	}

	entries := make([]attendance.BreakEntry, 0, len(payloads))
	for _, p := range payloads {
		entry := attendance.BreakEntry{
			StartTime:       p.StartTime,
			EndTime:         p.EndTime,
			DurationMinutes: p.DurationMinutes,
			Type:            attendance.BreakType(p.Type),
			Location:        toGeoPoint(p.Location),
		}
		if entry.Type == "" {
			entry.Type = attendance.BreakLunch
		}
		if entry.EndTime != nil && entry.DurationMinutes == 0 {
			entry.DurationMinutes = int(math.Round(entry.EndTime.Sub(entry.StartTime).Minutes()))
		}
		entries = append(entries, entry)
	}
	return entries
}
