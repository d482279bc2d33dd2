package report

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse/attendance-backend-go/internal/domain/report"
	"github.com/workpulse/attendance-backend-go/internal/pkg/validator"
)

type ReportServiceImpl struct {
	report.ReportRepository

	now func() time.Time
}

func NewReportService(reportRepo report.ReportRepository) *ReportServiceImpl {
	return &ReportServiceImpl{
		ReportRepository: reportRepo,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Test helper.
func (s *ReportServiceImpl) WithClock(now func() time.Time) *ReportServiceImpl {
	s.now = now
	return s
}

// GetAttendanceSummary implements report.ReportService.
func (s *ReportServiceImpl) GetAttendanceSummary(ctx context.Context, filter report.SummaryFilter) (report.AttendanceSummaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return report.AttendanceSummaryResponse{}, err
	}

	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return report.AttendanceSummaryResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return report.AttendanceSummaryResponse{}, fmt.Errorf("company_id claim is missing or invalid")
	}

	now := s.now()
	start, end := s.periodBounds(filter, now)

	summary, err := s.ReportRepository.GetAttendanceSummary(ctx, companyID, start, end)
	if err != nil {
		return report.AttendanceSummaryResponse{}, fmt.Errorf("failed to get attendance summary: %w", err)
	}
	if summary == nil {
		summary = []report.EmployeeSummary{}
	}

	totalRecords, err := s.ReportRepository.CountRecords(ctx, companyID, start, end)
	if err != nil {
		return report.AttendanceSummaryResponse{}, fmt.Errorf("failed to count attendance records: %w", err)
	}

	today := attendance.DayOf(now)

	presentToday, err := s.ReportRepository.CountPresentOn(ctx, companyID, today)
	if err != nil {
		return report.AttendanceSummaryResponse{}, fmt.Errorf("failed to count present employees: %w", err)
	}

	currentlyClocked, err := s.ReportRepository.CountCurrentlyClocked(ctx, companyID, today)
	if err != nil {
		return report.AttendanceSummaryResponse{}, fmt.Errorf("failed to count clocked-in employees: %w", err)
	}

	return report.AttendanceSummaryResponse{
		Summary: summary,
		Stats: report.SummaryStats{
			TotalRecords:       totalRecords,
			PresentToday:       presentToday,
			CurrentlyClockedIn: currentlyClocked,
			PeriodStart:        start,
			PeriodEnd:          end,
		},
	}, nil
}

// periodBounds resolves the report window, defaulting either edge to the
// current month.
func (s *ReportServiceImpl) periodBounds(filter report.SummaryFilter, now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	if filter.StartDate != nil && *filter.StartDate != "" {
		if d, ok := validator.IsValidDate(*filter.StartDate); ok {
			start = attendance.DayOf(d)
		}
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		if d, ok := validator.IsValidDate(*filter.EndDate); ok {
			end = attendance.DayOf(d)
		}
	}

	return start, end
}
