package leavebalanceerrors

import (
	"net/http"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave balance not found",
		http.StatusNotFound,
	)
	ErrInvalidBalanceID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave balance ID",
		http.StatusBadRequest,
	)
	ErrBalanceExists = apperror.New(
		apperror.CodeConflict,
		"A balance for this employee, policy and year already exists",
		http.StatusConflict,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeInvalidReference,
		"Employee does not exist",
		http.StatusUnprocessableEntity,
	)
	ErrPolicyNotFound = apperror.New(
		apperror.CodeInvalidReference,
		"Leave policy does not exist or is inactive",
		http.StatusUnprocessableEntity,
	)
	ErrUsedExceedsAllowed = apperror.New(
		apperror.CodeInvalidInput,
		"days_used cannot exceed the policy allowance",
		http.StatusBadRequest,
	)
	ErrNegativeDays = apperror.New(
		apperror.CodeInvalidInput,
		"days_used must not be negative",
		http.StatusBadRequest,
	)
	ErrBalanceInUse = apperror.New(
		apperror.CodeInvalidState,
		"Balance is referenced by pending or approved leave requests",
		http.StatusConflict,
	)
)
