package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreate         = "CREATE"
	ActionUpdate         = "UPDATE"
	ActionDelete         = "DELETE"
	ActionLogin          = "LOGIN"
	ActionLogout         = "LOGOUT"
	ActionServerShutdown = "SERVER_SHUTDOWN"
)

// ResourceSystem tags process-level entries. Business resources use the
// domain.Resource* names.
const ResourceSystem = "system"

type AuditLog struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ActorID      string          `gorm:"column:actor_id"`
	Action       string          `gorm:"column:action"`
	ResourceType string          `gorm:"column:resource_type"`
	ResourceID   string          `gorm:"column:resource_id"`
	OldValues    json.RawMessage `gorm:"column:old_values;type:jsonb"`
	NewValues    json.RawMessage `gorm:"column:new_values;type:jsonb"`
	IPAddress    string          `gorm:"column:ip_address"`
	UserAgent    string          `gorm:"column:user_agent"`
	RequestID    string          `gorm:"column:request_id"`
	CreatedAt    time.Time
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
