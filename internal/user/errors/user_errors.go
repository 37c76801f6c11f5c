package usererrors

import (
	"net/http"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)

	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid role",
		http.StatusBadRequest,
	)

	ErrNothingToUpdate = apperror.New(
		apperror.CodeInvalidInput,
		"No changes supplied",
		http.StatusBadRequest,
	)

	ErrSelfModification = apperror.New(
		apperror.CodeForbidden,
		"You cannot change your own role or deactivate yourself",
		http.StatusForbidden,
	)
)
