package model

import "time"

// AuditAction is the kind of operation recorded in the audit trail
type AuditAction string

const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionUpdate  AuditAction = "UPDATE"
	AuditActionDelete  AuditAction = "DELETE"
	AuditActionUpload  AuditAction = "UPLOAD"
	AuditActionApprove AuditAction = "APPROVE"
	AuditActionClear   AuditAction = "CLEAR"
)

// Audit resources
const (
	AuditResourceRisk    = "risk"
	AuditResourceStaging = "staging"
)

// AuditLog is one entry of the audit trail
type AuditLog struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	Action     AuditAction    `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resourceId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
