package audit

import "encoding/json"

type ListAuditLogsRequest struct {
	ActorID      string `form:"actor_id"`
	Action       string `form:"action"`
	ResourceType string `form:"resource_type"`
	ResourceID   string `form:"resource_id"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

type AuditLogResponse struct {
	ID           string          `json:"id"`
	ActorID      string          `json:"actor_id,omitempty"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id,omitempty"`
	OldValues    json.RawMessage `json:"old_values,omitempty"`
	NewValues    json.RawMessage `json:"new_values,omitempty"`
	IPAddress    string          `json:"ip_address,omitempty"`
	UserAgent    string          `json:"user_agent,omitempty"`
	RequestID    string          `json:"request_id,omitempty"`
	CreatedAt    string          `json:"created_at"`
}
