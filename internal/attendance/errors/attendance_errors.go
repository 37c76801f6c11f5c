package attendanceerrors

import (
	"net/http"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
)

var (
	ErrAttendanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
	ErrInvalidAttendanceID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid attendance ID",
		http.StatusBadRequest,
	)
	ErrAttendanceExists = apperror.New(
		apperror.CodeConflict,
		"An attendance record for this employee and date already exists",
		http.StatusConflict,
	)
	ErrAlreadyClockedIn = apperror.New(
		apperror.CodeInvalidState,
		"Already clocked in today",
		http.StatusConflict,
	)
	ErrNotClockedIn = apperror.New(
		apperror.CodeInvalidState,
		"No clock-in found for today",
		http.StatusConflict,
	)
	ErrAlreadyClockedOut = apperror.New(
		apperror.CodeInvalidState,
		"Already clocked out today",
		http.StatusConflict,
	)
	ErrNoEmployeeRecord = apperror.New(
		apperror.CodeForbidden,
		"This account is not linked to an employee",
		http.StatusForbidden,
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
	ErrInvalidClockTime = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid clock time, expected RFC3339",
		http.StatusBadRequest,
	)
	ErrInvalidClockRange = apperror.New(
		apperror.CodeInvalidInput,
		"clock_out must not be before clock_in",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid attendance status",
		http.StatusBadRequest,
	)
)
