package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// formatFieldName turns a json field name into a label: policy_id -> Policy Id.
func formatFieldName(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// FieldError is one broken rule, keyed by the json field name.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// MapValidationError converts validator failures into an AppError whose
// message names the first field and whose details list all of them.
// Field names come from json tags once Init has been called.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fields := make([]FieldError, len(errs))
		for i, e := range errs {
			fields[i] = FieldError{Field: e.Field(), Rule: e.Tag()}
		}

		e := errs[0]
		field := formatFieldName(e.Field())

		switch e.Tag() {
		case "required":
			return RequiredField(field).WithDetails(fields)
		default:
			return InvalidField(field).WithDetails(fields)
		}
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
