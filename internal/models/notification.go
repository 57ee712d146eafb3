package models

import "time"

type NotificationCategory string

const (
	NotificationInviteSent       NotificationCategory = "invite_sent"
	NotificationInviteAccepted   NotificationCategory = "invite_accepted"
	NotificationShiftAssigned    NotificationCategory = "shift_assigned"
	NotificationHierarchyChanged NotificationCategory = "hierarchy_changed"
	NotificationTimeSubmitted    NotificationCategory = "time_submitted"
	NotificationTimeReviewed     NotificationCategory = "time_reviewed"
)

// Notification is the persisted trace of an outbound event handed to the
// dispatcher. Delivery is best-effort; the row records what was attempted.
type Notification struct {
	ID             uint64               `gorm:"primarykey" json:"id"`
	OrganizationID uint64               `gorm:"not null;index" json:"organization_id"`
	RecipientID    uint64               `gorm:"not null;index" json:"recipient_id"`
	Category       NotificationCategory `gorm:"type:varchar(32);not null" json:"category"`
	Title          string               `gorm:"type:varchar(255);not null" json:"title"`
	Body           string               `gorm:"type:text" json:"body"`
	Data           JSON                 `gorm:"type:text" json:"data"`
	CreatedAt      time.Time            `json:"created_at"`
}
