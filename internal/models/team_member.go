package models

import "time"

type HierarchyLevel string

const (
	LevelEmployer    HierarchyLevel = "employer"
	LevelGM          HierarchyLevel = "gm"
	LevelAGM         HierarchyLevel = "agm"
	LevelShiftLeader HierarchyLevel = "shift_leader"
	LevelWorker      HierarchyLevel = "worker"
)

type MemberStatus string

const (
	MemberStatusPending  MemberStatus = "pending"
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
	EmploymentCasual   EmploymentType = "casual"
)

type TeamMember struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	// UserID is nil while the member's invite is still pending.
	UserID         *uint64        `gorm:"index" json:"user_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Email          string         `gorm:"type:varchar(255);not null" json:"email"`
	Level          HierarchyLevel `gorm:"type:varchar(20);not null" json:"level"`
	EmploymentType EmploymentType `gorm:"type:varchar(20);not null;default:'full_time'" json:"employment_type"`
	Status         MemberStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	InviteToken    string         `gorm:"type:varchar(50);index" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Relations
	Organization Organization     `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Roles        []RoleAssignment `gorm:"foreignKey:TeamMemberID" json:"roles,omitempty"`
	VenueScope   []TeamMemberVenue `gorm:"foreignKey:TeamMemberID" json:"venue_scope,omitempty"`
}

// VenueScopeIDs returns the venue ids the member may act on. An empty result means
// the member is unrestricted.
func (m *TeamMember) VenueScopeIDs() []uint64 {
	ids := make([]uint64, 0, len(m.VenueScope))
	for _, v := range m.VenueScope {
		ids = append(ids, v.VenueID)
	}
	return ids
}

type RoleAssignment struct {
	TeamMemberID uint64    `gorm:"primarykey" json:"team_member_id"`
	RoleID       uint64    `gorm:"primarykey" json:"role_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	TeamMember TeamMember `gorm:"foreignKey:TeamMemberID" json:"team_member,omitempty"`
	Role       Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

type TeamMemberVenue struct {
	TeamMemberID uint64    `gorm:"primarykey" json:"team_member_id"`
	VenueID      uint64    `gorm:"primarykey" json:"venue_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Venue Venue `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
}

// ManagementChainEdge records who invited whom. It is a display/reporting-line
// structure only; authorization decisions use rank and venue scope, never the chain.
type ManagementChainEdge struct {
	ManagerID     uint64    `gorm:"primarykey;column:manager_id" json:"manager_id"`
	SubordinateID uint64    `gorm:"primarykey;column:subordinate_id" json:"subordinate_id"`
	CreatedAt     time.Time `json:"created_at"`

	// Relations
	Manager     TeamMember `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Subordinate TeamMember `gorm:"foreignKey:SubordinateID" json:"subordinate,omitempty"`
}
