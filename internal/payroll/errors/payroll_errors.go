package payrollerrors

import (
	"net/http"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
)

var (
	ErrPayrollNotFound = apperror.New(
		apperror.CodeNotFound,
		"Payroll not found",
		http.StatusNotFound,
	)
	ErrInvalidPayrollID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid payroll ID",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeInvalidReference,
		"Employee does not exist",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidRange,
		"period_start must be on or before period_end",
		http.StatusBadRequest,
	)
	ErrNegativeAmount = apperror.New(
		apperror.CodeInvalidInput,
		"Salary amounts must not be negative",
		http.StatusBadRequest,
	)
	ErrNegativeNetSalary = apperror.New(
		apperror.CodeInvalidInput,
		"Deduction exceeds base salary plus allowance",
		http.StatusBadRequest,
	)
	ErrPayrollOverlap = apperror.New(
		apperror.CodeConflict,
		"A payroll for this employee already covers part of the period",
		http.StatusConflict,
	)
	ErrNotDraft = apperror.New(
		apperror.CodeInvalidState,
		"Only DRAFT payrolls can be changed or deleted",
		http.StatusConflict,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidTransition,
		"Payroll cannot move to the requested status",
		http.StatusConflict,
	)
	ErrPayslipNotReady = apperror.New(
		apperror.CodeInvalidState,
		"Payslip is available once the payroll is processed",
		http.StatusConflict,
	)
	ErrPayslipFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to generate payslip",
		http.StatusInternalServerError,
	)
)
