package models

import "time"

type AuditEvent string

const (
	AuditInviteIssued   AuditEvent = "invite.issued"
	AuditInviteAccepted AuditEvent = "invite.accepted"
	AuditQuotaExceeded  AuditEvent = "invite.quota_exceeded"
	AuditAccessDenied   AuditEvent = "access.denied"
)

// AuditRecord is an append-only trail entry for invite and access events.
type AuditRecord struct {
	ID          string                 `json:"id"`
	WorkspaceID *string                `json:"workspace_id,omitempty"`
	Event       AuditEvent             `json:"event"`
	Message     string                 `json:"message"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
