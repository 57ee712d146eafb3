package models

import (
	"time"

	"gorm.io/gorm"
)

type Organization struct {
	ID                  uint64         `gorm:"primarykey" json:"id"`
	Name                string         `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID             uint64         `gorm:"not null" json:"owner_id"`
	OnboardingCompleted bool           `gorm:"not null;default:false" json:"onboarding_completed"`
	// RegularHoursThreshold is the daily hour count beyond which worked time counts
	// as overtime.
	RegularHoursThreshold float64        `gorm:"not null;default:8" json:"regular_hours_threshold"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner   User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Venues  []Venue      `gorm:"foreignKey:OrganizationID" json:"venues,omitempty"`
	Roles   []Role       `gorm:"foreignKey:OrganizationID" json:"roles,omitempty"`
	Members []TeamMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
}

type Venue struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Address        string         `gorm:"type:varchar(500)" json:"address"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

type Role struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Colour         string         `gorm:"type:varchar(20)" json:"colour"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}
