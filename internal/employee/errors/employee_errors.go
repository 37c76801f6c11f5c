package employeeerrors

import (
	"net/http"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusConflict,
	)
	ErrEmployeeNumberAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee number already exists",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidHireDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid hire_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidEmploymentStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employment status",
		http.StatusBadRequest,
	)
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeInvalidReference,
		"Department does not exist or is inactive",
		http.StatusUnprocessableEntity,
	)
	ErrPositionNotFound = apperror.New(
		apperror.CodeInvalidReference,
		"Position does not exist or is inactive",
		http.StatusUnprocessableEntity,
	)
	ErrManagerNotFound = apperror.New(
		apperror.CodeInvalidReference,
		"Manager does not exist",
		http.StatusUnprocessableEntity,
	)
	ErrSelfManager = apperror.New(
		apperror.CodeInvalidInput,
		"An employee cannot manage themselves",
		http.StatusBadRequest,
	)
	ErrAlreadyTerminated = apperror.New(
		apperror.CodeInvalidState,
		"Employee is already terminated",
		http.StatusConflict,
	)
)
