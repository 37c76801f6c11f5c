package events

import "time"

const (
	LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

	LeaveRequestCreated       = "leave_request.created"
	LeaveRequestStatusChanged = "leave_request.status_changed"
	LeaveRequestDeleted       = "leave_request.deleted"
)

// LeaveRequestEvent is emitted in the same transaction as the change it describes.
type LeaveRequestEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	LeaveRequestID string    `json:"leave_request_id"`
	EmployeeID     string    `json:"employee_id"`
	PolicyID       string    `json:"policy_id"`
	FromStatus     string    `json:"from_status,omitempty"`
	ToStatus       string    `json:"to_status"`
	Days           int       `json:"days"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	ActorID        string    `json:"actor_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
