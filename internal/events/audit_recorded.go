package events

import "time"

const (
	AuditTopic    = "hr.audit.v1"
	AuditRecorded = "audit.recorded"
)

type AuditRecordedEvent struct {
	EventType    string    `json:"event_type"`
	AuditLogID   string    `json:"audit_log_id"`
	ActorID      string    `json:"actor_id,omitempty"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
