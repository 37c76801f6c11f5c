package leaveerrors

import (
	"net/http"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave request ID",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidPolicyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave policy ID",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown leave request status",
		http.StatusBadRequest,
	)

	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeInactive = apperror.New(
		apperror.CodeInvalidReference,
		"Employee is not in active employment",
		http.StatusUnprocessableEntity,
	)
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave policy not found",
		http.StatusNotFound,
	)
	ErrPolicyInactive = apperror.New(
		apperror.CodeInvalidReference,
		"Leave policy is inactive",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidRange,
		"start_date must be on or before end_date",
		http.StatusBadRequest,
	)
	ErrNoBalance = apperror.New(
		apperror.CodeNoBalance,
		"No leave balance for this policy in the current year",
		http.StatusUnprocessableEntity,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"Insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrOverlappingRequest = apperror.New(
		apperror.CodeOverlappingRequest,
		"Another pending or approved leave request overlaps this period",
		http.StatusConflict,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidTransition,
		"Leave request cannot move to the requested status",
		http.StatusConflict,
	)
	ErrInvalidState = apperror.New(
		apperror.CodeInvalidState,
		"Only pending leave requests can be deleted",
		http.StatusConflict,
	)

	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required when status is REJECTED",
		http.StatusBadRequest,
	)
	ErrApproverRequired = apperror.New(
		apperror.CodeInvalidReference,
		"The approving account is not linked to an employee",
		http.StatusUnprocessableEntity,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"You are not allowed to perform this action on the leave request",
		http.StatusForbidden,
	)
	ErrExportFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to generate export",
		http.StatusInternalServerError,
	)
)
