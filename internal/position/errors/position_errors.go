package positionerrors

import (
	"net/http"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
)

var (
	ErrPositionNotFound = apperror.New(
		apperror.CodeNotFound,
		"Position not found",
		http.StatusNotFound,
	)
	ErrInvalidPositionID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid position ID",
		http.StatusBadRequest,
	)
	ErrPositionExists = apperror.New(
		apperror.CodeConflict,
		"A position with this title already exists in the department",
		http.StatusConflict,
	)
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeInvalidReference,
		"Department does not exist or is inactive",
		http.StatusUnprocessableEntity,
	)
	ErrNegativeSalary = apperror.New(
		apperror.CodeInvalidInput,
		"min_salary must not be negative",
		http.StatusBadRequest,
	)
	ErrAlreadyInactive = apperror.New(
		apperror.CodeInvalidState,
		"Position is already inactive",
		http.StatusConflict,
	)
)
