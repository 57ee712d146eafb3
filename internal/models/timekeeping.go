package models

import "time"

type TimekeepingStatus string

const (
	TimekeepingStatusPending  TimekeepingStatus = "pending"
	TimekeepingStatusApproved TimekeepingStatus = "approved"
	TimekeepingStatusRejected TimekeepingStatus = "rejected"
	TimekeepingStatusDisputed TimekeepingStatus = "disputed"
)

type TimesheetStatus string

const (
	TimesheetStatusDraft    TimesheetStatus = "draft"
	TimesheetStatusApproved TimesheetStatus = "approved"
)

type TimekeepingRecord struct {
	ID           uint64            `gorm:"primarykey" json:"id"`
	AllocationID uint64            `gorm:"not null;index" json:"allocation_id"`
	TeamMemberID uint64            `gorm:"not null;index" json:"team_member_id"`
	ClockInAt    time.Time         `gorm:"not null" json:"clock_in_at"`
	ClockOutAt   *time.Time        `json:"clock_out_at"`
	// Free-form location strings supplied by the client; not validated.
	ClockInLocation  string  `gorm:"type:varchar(255)" json:"clock_in_location"`
	ClockOutLocation string  `gorm:"type:varchar(255)" json:"clock_out_location"`
	BreakMinutes     int     `gorm:"not null;default:0" json:"break_minutes"`
	TotalHours       float64 `gorm:"not null;default:0" json:"total_hours"`
	RegularHours     float64 `gorm:"not null;default:0" json:"regular_hours"`
	OvertimeHours    float64 `gorm:"not null;default:0" json:"overtime_hours"`
	Status           TimekeepingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ReviewNotes      string            `gorm:"type:text" json:"review_notes"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	// Relations
	Allocation ShiftAllocation `gorm:"foreignKey:AllocationID" json:"allocation,omitempty"`
	TeamMember TeamMember      `gorm:"foreignKey:TeamMemberID" json:"team_member,omitempty"`
}

// Open reports whether the record has a clock-in but no clock-out yet.
func (r *TimekeepingRecord) Open() bool {
	return r.ClockOutAt == nil
}

// Timesheet is a frozen snapshot of timekeeping records over a period, not a live
// view. Regenerating the same period replaces the draft.
type Timesheet struct {
	ID            uint64          `gorm:"primarykey" json:"id"`
	TeamMemberID  uint64          `gorm:"not null;index" json:"team_member_id"`
	PeriodStart   time.Time       `gorm:"type:date;not null" json:"period_start"`
	PeriodEnd     time.Time       `gorm:"type:date;not null" json:"period_end"`
	TotalHours    float64         `gorm:"not null;default:0" json:"total_hours"`
	RegularHours  float64         `gorm:"not null;default:0" json:"regular_hours"`
	OvertimeHours float64         `gorm:"not null;default:0" json:"overtime_hours"`
	RecordCount   int             `gorm:"not null;default:0" json:"record_count"`
	Status        TimesheetStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	ApprovedByID  *uint64         `json:"approved_by_id"`
	ApprovedAt    *time.Time      `json:"approved_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relations
	TeamMember TeamMember `gorm:"foreignKey:TeamMemberID" json:"team_member,omitempty"`
}
