package models

import "time"

type ShiftStatus string

const (
	ShiftStatusDraft     ShiftStatus = "draft"
	ShiftStatusPublished ShiftStatus = "published"
	ShiftStatusCompleted ShiftStatus = "completed"
	ShiftStatusCancelled ShiftStatus = "cancelled"
)

type AllocationStatus string

const (
	AllocationStatusAllocated  AllocationStatus = "allocated"
	AllocationStatusConfirmed  AllocationStatus = "confirmed"
	AllocationStatusInProgress AllocationStatus = "in_progress"
	AllocationStatusCompleted  AllocationStatus = "completed"
	AllocationStatusNoShow     AllocationStatus = "no_show"
	AllocationStatusCancelled  AllocationStatus = "cancelled"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusExpired  InviteStatus = "expired"
)

type RotaShift struct {
	ID              uint64      `gorm:"primarykey" json:"id"`
	OrganizationID  uint64      `gorm:"not null;index" json:"organization_id"`
	VenueID         uint64      `gorm:"not null;index" json:"venue_id"`
	RoleID          uint64      `gorm:"not null;index" json:"role_id"`
	Date            time.Time   `gorm:"type:date;not null;index" json:"date"`
	StartTime       time.Time   `gorm:"not null" json:"start_time"`
	EndTime         time.Time   `gorm:"not null" json:"end_time"`
	HeadcountNeeded int         `gorm:"not null;default:1" json:"headcount_needed"`
	Status          ShiftStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// Relations
	Venue       Venue             `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	Role        Role              `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Allocations []ShiftAllocation `gorm:"foreignKey:ShiftID" json:"allocations,omitempty"`
	Invites     []ShiftInvite     `gorm:"foreignKey:ShiftID" json:"invites,omitempty"`
}

type ShiftAllocation struct {
	ID           uint64           `gorm:"primarykey" json:"id"`
	ShiftID      uint64           `gorm:"not null;index" json:"shift_id"`
	TeamMemberID uint64           `gorm:"not null;index" json:"team_member_id"`
	Status       AllocationStatus `gorm:"type:varchar(20);not null;default:'allocated'" json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// Relations
	Shift      RotaShift  `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`
	TeamMember TeamMember `gorm:"foreignKey:TeamMemberID" json:"team_member,omitempty"`
}

// Active reports whether the allocation still occupies a headcount slot.
func (a *ShiftAllocation) Active() bool {
	return a.Status != AllocationStatusCancelled
}

type ShiftInvite struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	ShiftID      uint64       `gorm:"not null;index" json:"shift_id"`
	TeamMemberID uint64       `gorm:"not null;index" json:"team_member_id"`
	Status       InviteStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	InvitedAt    time.Time    `gorm:"not null" json:"invited_at"`
	ExpiresAt    time.Time    `gorm:"not null;index" json:"expires_at"`
	RespondedAt  *time.Time   `json:"responded_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	Shift      RotaShift  `gorm:"foreignKey:ShiftID" json:"shift,omitempty"`
	TeamMember TeamMember `gorm:"foreignKey:TeamMemberID" json:"team_member,omitempty"`
}
