package employee

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	employeeerrors "github.com/mrpavithran/Hrms-Backend/internal/employee/errors"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "employee_number"):
			return employeeerrors.ErrEmployeeNumberAlreadyExists
		case pgErr.ConstraintName == "uq_employees_email":
			return employeeerrors.ErrEmployeeAlreadyExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "employee_number") {
		return employeeerrors.ErrEmployeeNumberAlreadyExists
	}
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_employees_email") {
		return employeeerrors.ErrEmployeeAlreadyExists
	}

	return err
}
