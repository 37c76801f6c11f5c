package departmenterrors

import (
	"net/http"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
)

var (
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Department not found",
		http.StatusNotFound,
	)
	ErrDepartmentAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Department with the same name already exists",
		http.StatusConflict,
	)
	ErrInvalidDepartmentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid department ID",
		http.StatusBadRequest,
	)
	ErrManagerNotFound = apperror.New(
		apperror.CodeInvalidReference,
		"Manager does not exist or is terminated",
		http.StatusUnprocessableEntity,
	)
	ErrParentNotFound = apperror.New(
		apperror.CodeInvalidReference,
		"Parent department does not exist or is inactive",
		http.StatusUnprocessableEntity,
	)
	ErrParentCycle = apperror.New(
		apperror.CodeInvalidInput,
		"A department cannot be its own ancestor",
		http.StatusBadRequest,
	)
	ErrAlreadyInactive = apperror.New(
		apperror.CodeInvalidState,
		"Department is already inactive",
		http.StatusConflict,
	)
)
