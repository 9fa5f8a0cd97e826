package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/xuri/excelize/v2"
)

const (
	recordsSheet = "Records"
	summarySheet = "Summary"
)

var recordHeaders = []string{"Date", "Status", "Clock In", "Clock Out", "Hours Worked", "Clock In Location", "Clock Out Location"}

// ExportAttendanceXLSX implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendanceXLSX(ctx context.Context, scope user.Scope, employeeID string, month, year int, w io.Writer) error {
	if err := validatePeriod(employeeID, month, year); err != nil {
		return err
	}

	stats, err := s.attendanceService.ComputeStats(ctx, scope, employeeID, month, year)
	if err != nil {
		return err
	}
	records, err := s.monthRecords(ctx, scope, stats)
	if err != nil {
		return err
	}
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("Failed to close workbook", "error", err)
		}
	}()

	// NewFile starts with Sheet1
	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}
	if err := s.writeRecords(f, records); err != nil {
		return fmt.Errorf("%w: records sheet: %v", report.ErrReportGenerationFailed, err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}
	summary := [][2]any{
		{"Employee", emp.FullName},
		{"Employee Code", emp.EmployeeCode},
		{"Period", fmt.Sprintf("%s to %s", stats.PeriodStart, stats.PeriodEnd)},
		{"Total Days", stats.TotalDays},
		{"Present Days", stats.PresentDays},
		{"Late Days", stats.LateDays},
		{"Absent Days", stats.AbsentDays},
		{"Half Days", stats.HalfDays},
		{"Completed Days", stats.CompletedDays},
		{"Average Hours Worked", stats.AverageHoursWorked},
	}
	for i, kv := range summary {
		if err := writeCell(f, summarySheet, 1, i+1, kv[0]); err != nil {
			return fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
		}
		if err := writeCell(f, summarySheet, 2, i+1, kv[1]); err != nil {
			return fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 24); err != nil {
		return fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (s *ReportServiceImpl) writeRecords(f *excelize.File, records []attendance.AttendanceResponse) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(recordHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(recordsSheet, "A1", lastCol+"1", style); err != nil {
		return err
	}
	if err := f.SetColWidth(recordsSheet, "A", lastCol, 18); err != nil {
		return err
	}
	for i, h := range recordHeaders {
		if err := writeCell(f, recordsSheet, i+1, 1, h); err != nil {
			return err
		}
	}

	for i, r := range records {
		row := i + 2
		var hours any
		if r.HoursWorked != nil {
			hours = *r.HoursWorked
		}
		values := []any{
			r.Date,
			r.Status,
			s.clockTime(r.ClockIn),
			s.clockTime(r.ClockOut),
			hours,
			deref(r.ClockInLocation),
			deref(r.ClockOutLocation),
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			if err := writeCell(f, recordsSheet, col+1, row, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
