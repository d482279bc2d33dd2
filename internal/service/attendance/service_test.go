package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/policy"
)

const (
	testEmployeeID = "emp-001"
	testCompanyID  = "comp-001"
)

// fakeAttendanceRepo is an in-memory AttendanceRepository keyed by
// (employee, day), mirroring the store's unique index.
type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*attendance.Attendance
	seq     int
	now     func() time.Time
}

func newFakeAttendanceRepo(now func() time.Time) *fakeAttendanceRepo {
	return &fakeAttendanceRepo{
		records: make(map[string]*attendance.Attendance),
		now:     now,
	}
}

func (f *fakeAttendanceRepo) key(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := f.key(att.EmployeeID, att.Date)
	if _, exists := f.records[k]; exists {
		return attendance.Attendance{}, attendance.ErrAlreadyClockedIn
	}

	f.seq++
	att.ID = f.key("id", att.Date) + "-" + att.EmployeeID
	att.CreatedAt = f.now()
	att.UpdatedAt = f.now()

	stored := att
	f.records[k] = &stored
	return att, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.records[f.key(employeeID, date)]
	if !ok || stored.CompanyID != companyID {
		return nil, nil
	}
	cp := *stored
	return &cp, nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, att attendance.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := f.key(att.EmployeeID, att.Date)
	if _, ok := f.records[k]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	att.UpdatedAt = f.now()
	stored := att
	f.records[k] = &stored
	return nil
}

func (f *fakeAttendanceRepo) UpdateIfOlder(ctx context.Context, att attendance.Attendance, clientModified time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := f.key(att.EmployeeID, att.Date)
	stored, ok := f.records[k]
	if !ok {
		return false, attendance.ErrAttendanceNotFound
	}
	if !clientModified.After(stored.UpdatedAt) {
		return false, nil
	}
	att.UpdatedAt = f.now()
	updated := att
	f.records[k] = &updated
	return true, nil
}

func (f *fakeAttendanceRepo) ListByEmployee(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []attendance.Attendance
	for _, stored := range f.records {
		if stored.EmployeeID == employeeID && stored.CompanyID == companyID {
			result = append(result, *stored)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeAttendanceRepo) ListByCompany(ctx context.Context, filter attendance.CompanyAttendanceFilter, companyID string) ([]attendance.Attendance, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []attendance.Attendance
	for _, stored := range f.records {
		if stored.CompanyID != companyID {
			continue
		}
		if filter.EmployeeID != nil && stored.EmployeeID != *filter.EmployeeID {
			continue
		}
		result = append(result, *stored)
	}
	return result, int64(len(result)), nil
}

func (f *fakeAttendanceRepo) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []attendance.Attendance
	for _, stored := range f.records {
		if stored.Date.Before(cutoff) &&
			(stored.Status == attendance.StatusClockedIn || stored.Status == attendance.StatusOnBreak) {
			result = append(result, *stored)
		}
	}
	return result, nil
}

// seed inserts a record directly, bypassing Create.
func (f *fakeAttendanceRepo) seed(att attendance.Attendance) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := att
	f.records[f.key(att.EmployeeID, att.Date)] = &stored
}

func (f *fakeAttendanceRepo) stored(employeeID string, date time.Time) *attendance.Attendance {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[f.key(employeeID, date)]
	if !ok {
		return nil
	}
	cp := *stored
	return &cp
}

type fakePolicyRepo struct {
	pol policy.AttendancePolicy
	err error
}

func (f *fakePolicyRepo) GetByCompanyID(ctx context.Context, companyID string) (policy.AttendancePolicy, error) {
	if f.err != nil {
		return policy.AttendancePolicy{}, f.err
	}
	return f.pol, nil
}

func basePolicy() policy.AttendancePolicy {
	return policy.AttendancePolicy{
		CompanyID:     testCompanyID,
		BreakTracking: true,
		WorkingHours:  policy.WorkingHours{Start: "09:00", End: "17:00"},
	}
}

func authedContext(t *testing.T, employeeID, companyID string) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key"), nil)
	tok, _, err := ja.Encode(map[string]interface{}{
		"user_id":     "user-001",
		"employee_id": employeeID,
		"company_id":  companyID,
		"role":        "employee",
		"type":        "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), tok, nil)
}

// testClock is a settable clock shared by service and fake repo.
type testClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newTestClock(t *testing.T, value string) *testClock {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return &testClock{cur: parsed}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *testClock) Set(t *testing.T, value string) {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = parsed
}

func newTestService(clock *testClock, pol policy.AttendancePolicy) (*AttendanceServiceImpl, *fakeAttendanceRepo) {
	repo := newFakeAttendanceRepo(clock.Now)
	svc := NewAttendanceService(repo, &fakePolicyRepo{pol: pol}).WithClock(clock.Now)
	return svc, repo
}

func TestClockIn_Success(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, repo := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	resp, err := svc.ClockIn(ctx, attendance.ClockInRequest{})

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusClockedIn, resp.Record.Status)
	assert.Equal(t, clock.Now(), resp.ClockInTime)
	assert.Equal(t, attendance.MethodManual, resp.Record.ClockIn.Method)

	stored := repo.stored(testEmployeeID, attendance.DayOf(clock.Now()))
	require.NotNil(t, stored)
	assert.Equal(t, attendance.SyncSynced, stored.SyncStatus)
}

func TestClockIn_Twice(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, attendance.ClockInRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
}

func TestClockIn_LocationRequired(t *testing.T) {
	pol := basePolicy()
	pol.GPSRequired = true

	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, repo := newTestService(clock, pol)
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})

	assert.ErrorIs(t, err, attendance.ErrLocationRequired)
	assert.Nil(t, repo.stored(testEmployeeID, attendance.DayOf(clock.Now())))
}

func TestClockIn_OutsideGeofence(t *testing.T) {
	pol := basePolicy()
	pol.GPSRequired = true
	pol.Geofencing = policy.GeofencingConfig{
		Enabled:      true,
		RadiusMeters: 100,
		Locations: []policy.GeofenceLocation{
			{Name: "HQ", Latitude: -6.2088, Longitude: 106.8456},
		},
	}

	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, repo := newTestService(clock, pol)
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	// ~1.1km away from HQ.
	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{
		Location: &attendance.LocationPayload{Latitude: -6.2188, Longitude: 106.8456},
	})

	assert.ErrorIs(t, err, attendance.ErrOutsideGeofence)
	assert.Nil(t, repo.stored(testEmployeeID, attendance.DayOf(clock.Now())))
}

func TestClockIn_InsideGeofence(t *testing.T) {
	pol := basePolicy()
	pol.GPSRequired = true
	pol.Geofencing = policy.GeofencingConfig{
		Enabled:      true,
		RadiusMeters: 100,
		Locations: []policy.GeofenceLocation{
			{Name: "HQ", Latitude: -6.2088, Longitude: 106.8456},
		},
	}

	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, pol)
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	// ~22m away from HQ.
	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{
		Location: &attendance.LocationPayload{Latitude: -6.2090, Longitude: 106.8456},
	})

	assert.NoError(t, err)
}

func TestClockIn_PerLocationRadiusOverride(t *testing.T) {
	wideRadius := 2000.0
	pol := basePolicy()
	pol.GPSRequired = true
	pol.Geofencing = policy.GeofencingConfig{
		Enabled:      true,
		RadiusMeters: 100,
		Locations: []policy.GeofenceLocation{
			{Name: "HQ", Latitude: -6.2088, Longitude: 106.8456},
			{Name: "Warehouse", Latitude: -6.2300, Longitude: 106.8456, RadiusMeters: &wideRadius},
		},
	}

	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, pol)
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	// ~1.1km from the warehouse: outside the company-wide 100m, inside its
	// 2km override.
	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{
		Location: &attendance.LocationPayload{Latitude: -6.2200, Longitude: 106.8456},
	})

	assert.NoError(t, err)
}

func TestClockIn_PhotoRequired(t *testing.T) {
	pol := basePolicy()
	pol.PhotoRequired = true

	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, pol)
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	assert.ErrorIs(t, err, attendance.ErrPhotoRequired)

	photo := "data:image/jpeg;base64,..."
	_, err = svc.ClockIn(ctx, attendance.ClockInRequest{Photo: &photo})
	assert.NoError(t, err)
}

func TestClockIn_InvalidMethod(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{Method: "telepathy"})
	assert.Error(t, err)
}

func TestClockOut_Success(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, repo := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	clock.Set(t, "2026-08-10T17:00:00Z")
	resp, err := svc.ClockOut(ctx, attendance.ClockOutRequest{})

	require.NoError(t, err)
	assert.Equal(t, attendance.StatusClockedOut, resp.Record.Status)
	assert.InDelta(t, 8.0, resp.HoursWorked, 1e-9)
	assert.Equal(t, 0.0, resp.OvertimeHours)

	stored := repo.stored(testEmployeeID, attendance.DayOf(clock.Now()))
	require.NotNil(t, stored)
	assert.Equal(t, attendance.StatusClockedOut, stored.Status)
}

func TestClockOut_WithoutClockIn(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T17:00:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockOut(ctx, attendance.ClockOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNoClockIn)
}

func TestClockOut_Twice(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	clock.Set(t, "2026-08-10T17:00:00Z")
	_, err = svc.ClockOut(ctx, attendance.ClockOutRequest{})
	require.NoError(t, err)

	_, err = svc.ClockOut(ctx, attendance.ClockOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)
}

func TestClockOut_Overtime(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T08:00:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	clock.Set(t, "2026-08-10T18:00:00Z")
	resp, err := svc.ClockOut(ctx, attendance.ClockOutRequest{})

	require.NoError(t, err)
	assert.InDelta(t, 10.0, resp.HoursWorked, 1e-9)
	assert.InDelta(t, 2.0, resp.OvertimeHours, 1e-9)
	assert.InDelta(t, 8.0, resp.Record.RegularHours, 1e-9)
}

func TestClockOut_PolicyThreshold(t *testing.T) {
	pol := basePolicy()
	pol.DailyOvertimeThresholdHours = 6

	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, pol)
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	clock.Set(t, "2026-08-10T17:00:00Z")
	resp, err := svc.ClockOut(ctx, attendance.ClockOutRequest{})

	require.NoError(t, err)
	assert.InDelta(t, 6.0, resp.Record.RegularHours, 1e-9)
	assert.InDelta(t, 2.0, resp.OvertimeHours, 1e-9)
}

func TestClockOut_LateArrivalViolation(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:20:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	clock.Set(t, "2026-08-10T17:00:00Z")
	resp, err := svc.ClockOut(ctx, attendance.ClockOutRequest{})

	require.NoError(t, err)
	require.Len(t, resp.Record.Violations, 1)
	assert.Equal(t, attendance.ViolationLateArrival, resp.Record.Violations[0].Type)
	assert.Equal(t, "Arrived 20 minutes late", resp.Record.Violations[0].Description)
}

func TestBreakCycle(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, repo := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	clock.Set(t, "2026-08-10T12:00:00Z")
	startResp, err := svc.BreakStart(ctx, attendance.BreakStartRequest{Type: "lunch"})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusOnBreak, startResp.Status)

	clock.Set(t, "2026-08-10T12:45:00Z")
	endResp, err := svc.BreakEnd(ctx)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusClockedIn, endResp.Status)
	assert.Equal(t, 45, endResp.BreakDurationMinutes)

	stored := repo.stored(testEmployeeID, attendance.DayOf(clock.Now()))
	require.NotNil(t, stored)
	require.Len(t, stored.Breaks, 1)
	assert.Nil(t, stored.ActiveBreak())

	// The break is excluded from hours.
	clock.Set(t, "2026-08-10T17:00:00Z")
	outResp, err := svc.ClockOut(ctx, attendance.ClockOutRequest{})
	require.NoError(t, err)
	assert.InDelta(t, 7.25, outResp.HoursWorked, 1e-9)
}

func TestBreakStart_BeforeClockIn(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.BreakStart(ctx, attendance.BreakStartRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
}

func TestBreakStart_AlreadyOnBreak(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	_, err = svc.BreakStart(ctx, attendance.BreakStartRequest{})
	require.NoError(t, err)

	_, err = svc.BreakStart(ctx, attendance.BreakStartRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyOnBreak)
}

func TestBreakStart_TrackingDisabled(t *testing.T) {
	pol := basePolicy()
	pol.BreakTracking = false

	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, pol)
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	_, err = svc.BreakStart(ctx, attendance.BreakStartRequest{})
	assert.ErrorIs(t, err, attendance.ErrBreakTrackingDisabled)
}

func TestBreakEnd_NotOnBreak(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	_, err = svc.BreakEnd(ctx)
	assert.ErrorIs(t, err, attendance.ErrNotOnBreak)
}

func TestGetToday_NoRecord(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	resp, err := svc.GetToday(ctx)

	require.NoError(t, err)
	assert.Nil(t, resp.Record)
	assert.False(t, resp.HasClockIn)
	assert.False(t, resp.HasClockOut)
	assert.Equal(t, attendance.StatusNotStarted, resp.CurrentStatus)
}

func TestGetToday_AfterClockIn(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, basePolicy())
	ctx := authedContext(t, testEmployeeID, testCompanyID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	resp, err := svc.GetToday(ctx)

	require.NoError(t, err)
	require.NotNil(t, resp.Record)
	assert.True(t, resp.HasClockIn)
	assert.False(t, resp.HasClockOut)
	assert.Equal(t, attendance.StatusClockedIn, resp.CurrentStatus)
}

func TestTenantIsolation(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, basePolicy())

	ctxA := authedContext(t, testEmployeeID, testCompanyID)
	_, err := svc.ClockIn(ctxA, attendance.ClockInRequest{})
	require.NoError(t, err)

	// Same employee ID under a different company sees nothing.
	ctxB := authedContext(t, testEmployeeID, "comp-other")
	resp, err := svc.GetToday(ctxB)
	require.NoError(t, err)
	assert.Nil(t, resp.Record)
}

func TestMissingClaims(t *testing.T) {
	clock := newTestClock(t, "2026-08-10T09:00:00Z")
	svc, _ := newTestService(clock, basePolicy())

	_, err := svc.ClockIn(context.Background(), attendance.ClockInRequest{})
	assert.Error(t, err)
}
