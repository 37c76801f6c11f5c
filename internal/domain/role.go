package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles a user account can hold.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleHR       Role = "HR"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

func AllRoles() []Role {
	return []Role{RoleAdmin, RoleHR, RoleManager, RoleEmployee}
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Parent is the role whose permissions r inherits. EMPLOYEE has none.
func (r Role) Parent() (Role, bool) {
	switch r {
	case RoleAdmin:
		return RoleHR, true
	case RoleHR:
		return RoleManager, true
	case RoleManager:
		return RoleEmployee, true
	case RoleEmployee:
		return "", false
	}
	return "", false
}

// Capability is a business-level authority that is not a plain
// resource/action pair, e.g. acting on someone else's leave.
type Capability int

const (
	// CapDecideLeave allows approving and rejecting pending requests.
	CapDecideLeave Capability = iota
	// CapCancelApprovedLeave allows APPROVED -> CANCELLED.
	CapCancelApprovedLeave
	// CapActForAnyEmployee lifts the own-records restriction entirely.
	CapActForAnyEmployee
	// CapViewDirectReports extends visibility to the caller's direct reports.
	CapViewDirectReports
)

func (r Role) Can(c Capability) bool {
	switch r {
	case RoleAdmin, RoleHR:
		return true
	case RoleManager:
		switch c {
		case CapDecideLeave, CapCancelApprovedLeave, CapViewDirectReports:
			return true
		case CapActForAnyEmployee:
			return false
		}
	case RoleEmployee:
		return false
	}
	return false
}
