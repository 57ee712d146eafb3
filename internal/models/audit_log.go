package models

import "time"

type AuditAction string

const (
	AuditActionCreate           AuditAction = "CREATE"
	AuditActionUpdate           AuditAction = "UPDATE"
	AuditActionDelete           AuditAction = "DELETE"
	AuditActionShiftAssigned    AuditAction = "SHIFT_ASSIGNED"
	AuditActionShiftUnassigned  AuditAction = "SHIFT_UNASSIGNED"
	AuditActionInviteSent       AuditAction = "INVITE_SENT"
	AuditActionInviteAccepted   AuditAction = "INVITE_ACCEPTED"
	AuditActionInviteDeclined   AuditAction = "INVITE_DECLINED"
	AuditActionHierarchyChanged AuditAction = "HIERARCHY_CHANGED"
	AuditActionTimeSubmitted    AuditAction = "TIME_SUBMITTED"
	AuditActionTimeReviewed     AuditAction = "TIME_REVIEWED"
)

// AuditLogEntry is append-only: rows are never updated or deleted.
type AuditLogEntry struct {
	ID             string      `gorm:"primarykey;type:varchar(36)" json:"id"`
	OrganizationID uint64      `gorm:"not null;index" json:"organization_id"`
	// ActorID is nil for system-initiated changes such as the invite-expiry sweep.
	ActorID   *uint64     `gorm:"index" json:"actor_id"`
	TableName string      `gorm:"type:varchar(64);not null" json:"table_name"`
	RecordID  uint64      `gorm:"not null;index" json:"record_id"`
	Action    AuditAction `gorm:"type:varchar(32);not null" json:"action"`
	OldData   JSON        `gorm:"type:text" json:"old_data"`
	NewData   JSON        `gorm:"type:text" json:"new_data"`
	Metadata  JSON        `gorm:"type:text" json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}
