package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
	"github.com/go-pdf/fpdf"
)

var balanceColumns = []struct {
	title string
	width float64
}{
	{"Leave Type", 70},
	{"Entitlement", 40},
	{"Used", 40},
	{"Balance", 40},
}

// ExportLeaveBalancePDF implements report.ReportService.
func (s *ReportServiceImpl) ExportLeaveBalancePDF(ctx context.Context, scope user.Scope, employeeID string, year int, w io.Writer) error {
	if !validator.IsValidUUID(employeeID) {
		var errs validator.ValidationErrors
		errs.Add("employee_id", "employee_id must be a valid UUID")
		return errs
	}

	balance, err := s.leaveService.ComputeBalance(ctx, scope, employeeID, year)
	if err != nil {
		return err
	}
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Leave balance %d", year), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Leave Balance Statement %d", year), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr("Employee: "+emp.FullName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr("Employee Code: "+emp.EmployeeCode), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range balanceColumns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, t := range leave.LeaveTypes {
		row := []string{
			string(t),
			strconv.Itoa(balance.Entitlements[t]),
			strconv.Itoa(balance.Used[t]),
			strconv.Itoa(balance.Balance[t]),
		}
		for i, c := range balanceColumns {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(c.width, 8, row[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
