package leave

import (
	"strings"

	"github.com/mrpavithran/Hrms-Backend/internal/domain"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Blocks reports whether a request in this status reserves its dates
// against other requests of the same employee.
func (s Status) Blocks() bool {
	return s == StatusPending || s == StatusApproved
}

// CanTransition is the complete lifecycle table. Anything not listed,
// including staying in the same status, is refused.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected || to == StatusCancelled
	case StatusApproved:
		return to == StatusCancelled
	case StatusRejected:
		return to == StatusPending
	case StatusCancelled:
		return false
	}
	return false
}

// authority says who may move a request from one status to another,
// before any reporting-line check.
type authority struct {
	owner      bool
	capability domain.Capability
	// holders of capability without CapActForAnyEmployee must manage the owner
	needsReportLine bool
	// the owner may never hold this authority over their own request
	notSelf bool
}

func transitionAuthority(from, to Status) authority {
	switch {
	case from == StatusPending && (to == StatusApproved || to == StatusRejected):
		return authority{capability: domain.CapDecideLeave, needsReportLine: true, notSelf: true}
	case from == StatusPending && to == StatusCancelled:
		return authority{owner: true, capability: domain.CapActForAnyEmployee}
	case from == StatusApproved && to == StatusCancelled:
		return authority{capability: domain.CapCancelApprovedLeave, needsReportLine: true}
	case from == StatusRejected && to == StatusPending:
		return authority{owner: true, capability: domain.CapActForAnyEmployee}
	}
	return authority{capability: domain.CapActForAnyEmployee}
}
