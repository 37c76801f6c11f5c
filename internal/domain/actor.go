package domain

import (
	"context"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/contextutil"
)

// Actor is the authenticated caller with its role already parsed.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       Role
}

// ActorFrom reads the caller put into ctx by the auth middleware. It fails
// when there is no caller or the stored role is outside the enum.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := contextutil.GetActor(ctx)
	if !ok {
		return Actor{}, false
	}
	role, err := ParseRole(a.Role)
	if err != nil {
		return Actor{}, false
	}
	return Actor{UserID: a.UserID, EmployeeID: a.EmployeeID, Role: role}, true
}

// Owns reports whether employeeID is the caller's own employee record.
func (a Actor) Owns(employeeID string) bool {
	return a.EmployeeID != "" && a.EmployeeID == employeeID
}

// Visibility is the row filter a list query must apply for this caller.
type Visibility struct {
	// All is set when no employee restriction applies.
	All bool
	// EmployeeID limits rows to this employee.
	EmployeeID string
	// IncludeReports also admits rows of EmployeeID's direct reports.
	IncludeReports bool
}

func (a Actor) Visibility() Visibility {
	if a.Role.Can(CapActForAnyEmployee) {
		return Visibility{All: true}
	}
	return Visibility{
		EmployeeID:     a.EmployeeID,
		IncludeReports: a.Role.Can(CapViewDirectReports),
	}
}
