package auditerrors

import (
	"net/http"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
)

var (
	ErrAuditLogNotFound = apperror.New(
		apperror.CodeNotFound,
		"Audit log not found",
		http.StatusNotFound,
	)
	ErrInvalidAuditLogID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid audit log ID",
		http.StatusBadRequest,
	)
)
