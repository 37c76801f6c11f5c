package events

import "time"

const (
	EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"

	EmployeeCreated    = "employee_created"
	EmployeeTerminated = "employee_terminated"
)

// EmployeeLifecycleEvent is keyed by EmployeeID on the lifecycle topic.
type EmployeeLifecycleEvent struct {
	EventType       string    `json:"event_type"`
	RequestID       string    `json:"request_id,omitempty"`
	EmployeeID      string    `json:"employee_id"`
	HireDate        string    `json:"hire_date"`
	TerminationDate string    `json:"termination_date,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
