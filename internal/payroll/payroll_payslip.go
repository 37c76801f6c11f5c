package payroll

import (
	"bytes"
	"context"

	payrollerrors "github.com/mrpavithran/Hrms-Backend/internal/payroll/errors"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const payslipSheet = "Payslip"

// Payslip renders a processed or paid payroll as a one-sheet workbook.
func (s *service) Payslip(ctx context.Context, id string) ([]byte, error) {
	p, err := s.visible(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusProcessed && p.Status != StatusPaid {
		return nil, payrollerrors.ErrPayslipNotReady
	}

	r := mapToResponse(*p)
	employeeNo := ""
	if p.Employee != nil {
		employeeNo = p.Employee.EmployeeNumber
	}
	rows := [][]any{
		{"Employee", r.EmployeeName},
		{"Employee Number", employeeNo},
		{"Period", r.PeriodStart + " to " + r.PeriodEnd},
		{"Status", r.Status},
		{},
		{"Base Salary", p.BaseSalary.StringFixed(2)},
		{"Allowance", p.Allowance.StringFixed(2)},
		{"Deduction", "-" + p.Deduction.StringFixed(2)},
		{"Net Salary", p.NetSalary.StringFixed(2)},
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(payslipSheet)
	if err != nil {
		return nil, payrollerrors.ErrPayslipFailed
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	f.SetColWidth(payslipSheet, "A", "A", 20)
	f.SetColWidth(payslipSheet, "B", "B", 32)

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, row := range rows {
		c, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(payslipSheet, c, &row); err != nil {
			s.logger.Error("payslip row failed", zap.Int("row", i+1), zap.Error(err))
			return nil, payrollerrors.ErrPayslipFailed
		}
	}
	f.SetCellStyle(payslipSheet, "A1", "A9", bold)
	f.SetCellStyle(payslipSheet, "B9", "B9", bold)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("payslip write failed", zap.Error(err))
		return nil, payrollerrors.ErrPayslipFailed
	}

	s.logger.Info("payslip generated", zap.String("payroll_id", id))
	return buf.Bytes(), nil
}
