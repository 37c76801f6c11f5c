package leavepolicyerrors

import (
	"net/http"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
)

var (
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave policy not found",
		http.StatusNotFound,
	)
	ErrInvalidPolicyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave policy ID",
		http.StatusBadRequest,
	)
	ErrPolicyNameExists = apperror.New(
		apperror.CodeConflict,
		"A leave policy with this name already exists",
		http.StatusConflict,
	)
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave type",
		http.StatusBadRequest,
	)
	ErrNegativeDays = apperror.New(
		apperror.CodeInvalidInput,
		"days_allowed must not be negative",
		http.StatusBadRequest,
	)
	ErrPolicyInUse = apperror.New(
		apperror.CodeInvalidState,
		"Name and leave type cannot change once the policy is referenced by balances or requests",
		http.StatusConflict,
	)
	ErrAlreadyInactive = apperror.New(
		apperror.CodeInvalidState,
		"Leave policy is already inactive",
		http.StatusConflict,
	)
)
