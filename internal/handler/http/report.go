package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
	"github.com/go-chi/chi/v5"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type ReportHandler interface {
	GetEmployeeSummary(w http.ResponseWriter, r *http.Request)
	ExportAttendance(w http.ResponseWriter, r *http.Request)
	ExportLeaveBalance(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	clock         clock.Clock
	location      *time.Location
}

func NewReportHandler(reportService report.ReportService, clk clock.Clock, loc *time.Location) ReportHandler {
	if clk == nil {
		clk = clock.System()
	}
	return &reportHandlerImpl{
		reportService: reportService,
		clock:         clk,
		location:      loc,
	}
}

// GetEmployeeSummary handles GET /reports/summary/{employeeID}
func (h *reportHandlerImpl) GetEmployeeSummary(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	month, year, err := period(r, h.clock, h.location)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.EmployeeSummary(r.Context(), scope, chi.URLParam(r, "employeeID"), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportAttendance handles GET /reports/attendance/{employeeID}.xlsx
func (h *reportHandlerImpl) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	month, year, err := period(r, h.clock, h.location)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	// Buffered so a failure can still become a JSON error
	var buf bytes.Buffer
	if err := h.reportService.ExportAttendanceXLSX(r.Context(), scope, employeeID, month, year, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s-%04d-%02d.xlsx", employeeID, year, month)
	writeAttachment(w, contentTypeXLSX, filename, buf.Bytes())
}

// ExportLeaveBalance handles GET /reports/leave-balance/{employeeID}.pdf
func (h *reportHandlerImpl) ExportLeaveBalance(w http.ResponseWriter, r *http.Request) {
	scope, ok := callerScope(w, r)
	if !ok {
		return
	}

	year, err := yearParam(r, h.clock, h.location)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	var buf bytes.Buffer
	if err := h.reportService.ExportLeaveBalancePDF(r.Context(), scope, employeeID, year, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("leave-balance-%s-%04d.pdf", employeeID, year)
	writeAttachment(w, contentTypePDF, filename, buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("Failed to write attachment", "filename", filename, "error", err)
	}
}
