package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/policy"
	"github.com/workpulse/attendance-backend-go/internal/pkg/geo"
	"github.com/workpulse/attendance-backend-go/internal/pkg/keymutex"
	"github.com/workpulse/attendance-backend-go/internal/pkg/metrics"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	policyRepo policy.PolicyRepository
	locks      *keymutex.KeyMutex

	// now is injected so tests can fix the clock.
	now func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	policyRepo policy.PolicyRepository,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		policyRepo:           policyRepo,
		locks:                keymutex.New(),
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Test helper.
func (s *AttendanceServiceImpl) WithClock(now func() time.Time) *AttendanceServiceImpl {
	s.now = now
	return s
}

// identityFromContext resolves the caller from JWT claims.
func identityFromContext(ctx context.Context) (employeeID, companyID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	companyID, ok = claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	return employeeID, companyID, nil
}

// recordKey serializes writers touching the same (employee, day) record.
func recordKey(employeeID string, day time.Time) string {
	return employeeID + "|" + day.Format("2006-01-02")
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.ClockInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockInResponse{}, err
	}

	employeeID, companyID, err := identityFromContext(ctx)
	if err != nil {
		return attendance.ClockInResponse{}, err
	}

	now := s.now()
	today := attendance.DayOf(now)

	key := recordKey(employeeID, today)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today, companyID)
	if err != nil {
		return attendance.ClockInResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}

	if existing != nil && existing.HasClockIn() {
		metrics.Rejections.WithLabelValues("clock_in", "already_clocked_in").Inc()
		return attendance.ClockInResponse{}, attendance.ErrAlreadyClockedIn
	}

	pol, err := s.policyRepo.GetByCompanyID(ctx, companyID)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			return attendance.ClockInResponse{}, policy.ErrPolicyNotFound
		}
		return attendance.ClockInResponse{}, fmt.Errorf("failed to load attendance policy: %w", err)
	}

	if pol.GPSRequired && req.Location == nil {
		metrics.Rejections.WithLabelValues("clock_in", "location_required").Inc()
		return attendance.ClockInResponse{}, attendance.ErrLocationRequired
	}

	// The record must not be created when the caller is outside every
	// configured circle.
	if pol.Geofencing.Enabled && req.Location != nil {
		if !insideAnyGeofence(pol.Geofencing, req.Location.Latitude, req.Location.Longitude) {
			metrics.Rejections.WithLabelValues("clock_in", "outside_geofence").Inc()
			return attendance.ClockInResponse{}, attendance.ErrOutsideGeofence
		}
	}

	if pol.PhotoRequired && req.Photo == nil {
		metrics.Rejections.WithLabelValues("clock_in", "photo_required").Inc()
		return attendance.ClockInResponse{}, attendance.ErrPhotoRequired
	}

	event := &attendance.ClockEvent{
		Time:       now,
		Location:   toGeoPoint(req.Location),
		Photo:      req.Photo,
		Method:     attendance.Method(req.Method),
		DeviceInfo: toDeviceInfo(req.DeviceInfo),
	}

	var record attendance.Attendance
	if existing != nil {
		// Sync-created record for today without a clock-in yet.
		existing.ClockIn = event
		existing.Status = attendance.StatusClockedIn
		existing.SyncStatus = attendance.SyncSynced
		existing.LastSyncAt = &now
		if err := s.AttendanceRepository.Update(ctx, *existing); err != nil {
			return attendance.ClockInResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
		}
		record = *existing
	} else {
		created, err := s.AttendanceRepository.Create(ctx, attendance.Attendance{
			EmployeeID:     employeeID,
			CompanyID:      companyID,
			Date:           today,
			ClockIn:        event,
			Status:         attendance.StatusClockedIn,
			SyncStatus:     attendance.SyncSynced,
			LastSyncAt:     &now,
			ApprovalStatus: attendance.ApprovalPending,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyClockedIn) {
				return attendance.ClockInResponse{}, attendance.ErrAlreadyClockedIn
			}
			return attendance.ClockInResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
		}
		record = created
	}

	metrics.ClockIns.WithLabelValues(companyID, req.Method).Inc()

	return attendance.ClockInResponse{
		Record:      mapRecord(record),
		ClockInTime: record.ClockIn.Time,
		Location:    record.ClockIn.Location,
	}, nil
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.ClockOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ClockOutResponse{}, err
	}

	employeeID, companyID, err := identityFromContext(ctx)
	if err != nil {
		return attendance.ClockOutResponse{}, err
	}

	now := s.now()
	today := attendance.DayOf(now)

	key := recordKey(employeeID, today)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today, companyID)
	if err != nil {
		return attendance.ClockOutResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}

	if record == nil || !record.HasClockIn() {
		metrics.Rejections.WithLabelValues("clock_out", "no_clock_in").Inc()
		return attendance.ClockOutResponse{}, attendance.ErrNoClockIn
	}
	if record.HasClockOut() {
		metrics.Rejections.WithLabelValues("clock_out", "already_clocked_out").Inc()
		return attendance.ClockOutResponse{}, attendance.ErrAlreadyClockedOut
	}

	record.ClockOut = &attendance.ClockEvent{
		Time:     now,
		Location: toGeoPoint(req.Location),
		Photo:    req.Photo,
		Method:   attendance.Method(req.Method),
	}
	record.Status = attendance.StatusClockedOut
	record.SyncStatus = attendance.SyncSynced
	record.LastSyncAt = &now

	// Hours use the policy threshold; a missing policy degrades to the
	// default threshold and skips violation checks, mirroring a clock-out
	// that must not fail because company settings are gone.
	threshold := policy.AttendancePolicy{}.DailyThreshold()
	pol, polErr := s.policyRepo.GetByCompanyID(ctx, companyID)
	if polErr == nil {
		threshold = pol.DailyThreshold()
	}

	record.CalculateHours(threshold)

	if polErr == nil {
		for _, v := range record.DetectViolations(pol, now) {
			metrics.Violations.WithLabelValues(string(v.Type)).Inc()
		}
	}

	if err := s.AttendanceRepository.Update(ctx, *record); err != nil {
		return attendance.ClockOutResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	metrics.ClockOuts.WithLabelValues(companyID, req.Method).Inc()

	return attendance.ClockOutResponse{
		Record:        mapRecord(*record),
		ClockOutTime:  record.ClockOut.Time,
		HoursWorked:   record.HoursWorked,
		OvertimeHours: record.OvertimeHours,
	}, nil
}

// BreakStart implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) BreakStart(ctx context.Context, req attendance.BreakStartRequest) (attendance.BreakStartResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BreakStartResponse{}, err
	}

	employeeID, companyID, err := identityFromContext(ctx)
	if err != nil {
		return attendance.BreakStartResponse{}, err
	}

	now := s.now()
	today := attendance.DayOf(now)

	key := recordKey(employeeID, today)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today, companyID)
	if err != nil {
		return attendance.BreakStartResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}

	if record == nil || !record.HasClockIn() {
		metrics.Rejections.WithLabelValues("break_start", "not_clocked_in").Inc()
		return attendance.BreakStartResponse{}, attendance.ErrNotClockedIn
	}
	if record.Status == attendance.StatusOnBreak {
		metrics.Rejections.WithLabelValues("break_start", "already_on_break").Inc()
		return attendance.BreakStartResponse{}, attendance.ErrAlreadyOnBreak
	}

	if pol, polErr := s.policyRepo.GetByCompanyID(ctx, companyID); polErr == nil && !pol.BreakTracking {
		metrics.Rejections.WithLabelValues("break_start", "break_tracking_disabled").Inc()
		return attendance.BreakStartResponse{}, attendance.ErrBreakTrackingDisabled
	}

	record.Breaks = append(record.Breaks, attendance.BreakEntry{
		StartTime: now,
		Type:      attendance.BreakType(req.Type),
		Location:  toGeoPoint(req.Location),
	})
	record.Status = attendance.StatusOnBreak
	record.SyncStatus = attendance.SyncSynced
	record.LastSyncAt = &now

	if err := s.AttendanceRepository.Update(ctx, *record); err != nil {
		return attendance.BreakStartResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return attendance.BreakStartResponse{
		BreakStartTime: now,
		Status:         record.Status,
	}, nil
}

// BreakEnd implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) BreakEnd(ctx context.Context) (attendance.BreakEndResponse, error) {
	employeeID, companyID, err := identityFromContext(ctx)
	if err != nil {
		return attendance.BreakEndResponse{}, err
	}

	now := s.now()
	today := attendance.DayOf(now)

	key := recordKey(employeeID, today)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today, companyID)
	if err != nil {
		return attendance.BreakEndResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}

	if record == nil || record.Status != attendance.StatusOnBreak {
		metrics.Rejections.WithLabelValues("break_end", "not_on_break").Inc()
		return attendance.BreakEndResponse{}, attendance.ErrNotOnBreak
	}

	active := record.ActiveBreak()
	if active == nil {
		// Should not happen while the open-break invariant holds.
		return attendance.BreakEndResponse{}, attendance.ErrNoActiveBreak
	}

	active.EndTime = &now
	active.DurationMinutes = int(math.Round(now.Sub(active.StartTime).Minutes()))
	record.Status = attendance.StatusClockedIn
	record.SyncStatus = attendance.SyncSynced
	record.LastSyncAt = &now

	if err := s.AttendanceRepository.Update(ctx, *record); err != nil {
		return attendance.BreakEndResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return attendance.BreakEndResponse{
		BreakEndTime:         now,
		BreakDurationMinutes: active.DurationMinutes,
		Status:               record.Status,
	}, nil
}

// GetToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context) (attendance.TodayResponse, error) {
	employeeID, companyID, err := identityFromContext(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	today := attendance.DayOf(s.now())

	record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, today, companyID)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to load today's attendance: %w", err)
	}

	resp := attendance.TodayResponse{
		CurrentStatus: attendance.StatusNotStarted,
	}
	if record != nil {
		mapped := mapRecord(*record)
		resp.Record = &mapped
		resp.HasClockIn = record.HasClockIn()
		resp.HasClockOut = record.HasClockOut()
		resp.CurrentStatus = record.Status
	}

	return resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListResponse{}, err
	}

	employeeID, companyID, err := identityFromContext(ctx)
	if err != nil {
		return attendance.ListResponse{}, err
	}

	records, total, err := s.AttendanceRepository.ListByEmployee(ctx, employeeID, filter, companyID)
	if err != nil {
		return attendance.ListResponse{}, fmt.Errorf("failed to get my attendance: %w", err)
	}

	return buildListResponse(records, total, filter.Page, filter.Limit), nil
}

// ListCompanyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListCompanyAttendance(ctx context.Context, filter attendance.CompanyAttendanceFilter) (attendance.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListResponse{}, err
	}

	_, companyID, err := identityFromContext(ctx)
	if err != nil {
		return attendance.ListResponse{}, err
	}

	records, total, err := s.AttendanceRepository.ListByCompany(ctx, filter, companyID)
	if err != nil {
		return attendance.ListResponse{}, fmt.Errorf("failed to list company attendance: %w", err)
	}

	return buildListResponse(records, total, filter.Page, filter.Limit), nil
}

// insideAnyGeofence tests the point against every configured circle, each
// with its own radius falling back to the company-wide default.
func insideAnyGeofence(cfg policy.GeofencingConfig, lat, lng float64) bool {
	for _, loc := range cfg.Locations {
		if geo.WithinRadius(lat, lng, loc.Latitude, loc.Longitude, cfg.Radius(loc)) {
			return true
		}
	}
	return false
}

func toGeoPoint(p *attendance.LocationPayload) *attendance.GeoPoint {
	if p == nil {
		return nil
	}
	return &attendance.GeoPoint{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Accuracy:  p.Accuracy,
		Address:   p.Address,
	}
}

func toDeviceInfo(p *attendance.DeviceInfoPayload) *attendance.DeviceInfo {
	if p == nil {
		return nil
	}
	return &attendance.DeviceInfo{
		Platform: p.Platform,
		Version:  p.Version,
		DeviceID: p.DeviceID,
	}
}

func mapRecord(att attendance.Attendance) attendance.RecordResponse {
	breaks := att.Breaks
	if breaks == nil {
		breaks = []attendance.BreakEntry{}
	}
	violations := att.Violations
	if violations == nil {
		violations = []attendance.Violation{}
	}

	return attendance.RecordResponse{
		ID:             att.ID,
		EmployeeID:     att.EmployeeID,
		CompanyID:      att.CompanyID,
		Date:           att.Date.Format("2006-01-02"),
		ClockIn:        att.ClockIn,
		ClockOut:       att.ClockOut,
		Breaks:         breaks,
		Shift:          att.Shift,
		HoursWorked:    att.HoursWorked,
		RegularHours:   att.RegularHours,
		OvertimeHours:  att.OvertimeHours,
		Status:         att.Status,
		Violations:     violations,
		Notes:          att.Notes,
		SyncStatus:     att.SyncStatus,
		LastSyncAt:     att.LastSyncAt,
		ApprovalStatus: att.ApprovalStatus,
		CreatedAt:      att.CreatedAt,
		UpdatedAt:      att.UpdatedAt,
	}
}

func buildListResponse(records []attendance.Attendance, total int64, page, limit int) attendance.ListResponse {
	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, att := range records {
		responses = append(responses, mapRecord(att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return attendance.ListResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		Records:    responses,
	}
}
