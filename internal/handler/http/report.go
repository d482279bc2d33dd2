package http

import (
	"net/http"

	"github.com/workpulse/attendance-backend-go/internal/domain/report"
	"github.com/workpulse/attendance-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	AttendanceSummary(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// AttendanceSummary implements ReportHandler.
func (h *reportHandlerImpl) AttendanceSummary(w http.ResponseWriter, r *http.Request) {
	filter := report.SummaryFilter{}

	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}

	result, err := h.reportService.GetAttendanceSummary(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
