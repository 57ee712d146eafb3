package dto

import (
	"time"

	"github.com/rosterhq/rostering-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID                    uint64  `json:"id"`
	Name                  string  `json:"name"`
	OnboardingCompleted   bool    `json:"onboarding_completed"`
	RegularHoursThreshold float64 `json:"regular_hours_threshold"`
}

// VenueDTO represents a venue in API responses
type VenueDTO struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// RoleDTO represents a job role in API responses
type RoleDTO struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Colour string `json:"colour"`
}

// TeamMemberDTO represents a team member in API responses
type TeamMemberDTO struct {
	ID             uint64                `json:"id"`
	Name           string                `json:"name"`
	Email          string                `json:"email"`
	Level          models.HierarchyLevel `json:"level"`
	Status         models.MemberStatus   `json:"status"`
	EmploymentType models.EmploymentType `json:"employment_type"`
	Roles          []RoleDTO             `json:"roles,omitempty"`
	VenueIDs       []uint64              `json:"venue_ids,omitempty"`
}

// ShiftAllocationDTO represents an allocation in API responses
type ShiftAllocationDTO struct {
	ID           uint64                  `json:"id"`
	ShiftID      uint64                  `json:"shift_id"`
	TeamMemberID uint64                  `json:"team_member_id"`
	Status       models.AllocationStatus `json:"status"`
	TeamMember   *TeamMemberDTO          `json:"team_member,omitempty"`
}

// ShiftInviteDTO represents a shift invite in API responses
type ShiftInviteDTO struct {
	ID           uint64              `json:"id"`
	ShiftID      uint64              `json:"shift_id"`
	TeamMemberID uint64              `json:"team_member_id"`
	Status       models.InviteStatus `json:"status"`
	InvitedAt    time.Time           `json:"invited_at"`
	ExpiresAt    time.Time           `json:"expires_at"`
	RespondedAt  *time.Time          `json:"responded_at"`
	Shift        *ShiftDTO           `json:"shift,omitempty"`
}

// ShiftDTO represents a rota shift in API responses
type ShiftDTO struct {
	ID              uint64               `json:"id"`
	OrganizationID  uint64               `json:"organization_id"`
	VenueID         uint64               `json:"venue_id"`
	RoleID          uint64               `json:"role_id"`
	Date            string               `json:"date"`
	StartTime       time.Time            `json:"start_time"`
	EndTime         time.Time            `json:"end_time"`
	HeadcountNeeded int                  `json:"headcount_needed"`
	Status          models.ShiftStatus   `json:"status"`
	Venue           *VenueDTO            `json:"venue,omitempty"`
	Role            *RoleDTO             `json:"role,omitempty"`
	Allocations     []ShiftAllocationDTO `json:"allocations,omitempty"`
}

// TimekeepingRecordDTO represents a clock record in API responses
type TimekeepingRecordDTO struct {
	ID            uint64                   `json:"id"`
	AllocationID  uint64                   `json:"allocation_id"`
	ClockInAt     time.Time                `json:"clock_in_at"`
	ClockOutAt    *time.Time               `json:"clock_out_at"`
	BreakMinutes  int                      `json:"break_minutes"`
	TotalHours    float64                  `json:"total_hours"`
	RegularHours  float64                  `json:"regular_hours"`
	OvertimeHours float64                  `json:"overtime_hours"`
	Status        models.TimekeepingStatus `json:"status"`
	Notes         string                   `json:"notes,omitempty"`
}

// TimesheetDTO represents an aggregated timesheet in API responses
type TimesheetDTO struct {
	ID            uint64                 `json:"id"`
	TeamMemberID  uint64                 `json:"team_member_id"`
	PeriodStart   time.Time              `json:"period_start"`
	PeriodEnd     time.Time              `json:"period_end"`
	TotalHours    float64                `json:"total_hours"`
	RegularHours  float64                `json:"regular_hours"`
	OvertimeHours float64                `json:"overtime_hours"`
	Status        models.TimesheetStatus `json:"status"`
	ApprovedByID  *uint64                `json:"approved_by_id"`
	ApprovedAt    *time.Time             `json:"approved_at"`
}

// ToUserDTO converts a user to DTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

// ToOrganizationDTO converts an organization to DTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:                    org.ID,
		Name:                  org.Name,
		OnboardingCompleted:   org.OnboardingCompleted,
		RegularHoursThreshold: org.RegularHoursThreshold,
	}
}

// ToVenueDTO converts a venue to DTO
func ToVenueDTO(venue models.Venue) VenueDTO {
	return VenueDTO{
		ID:      venue.ID,
		Name:    venue.Name,
		Address: venue.Address,
	}
}

// ToRoleDTO converts a role to DTO
func ToRoleDTO(role models.Role) RoleDTO {
	return RoleDTO{
		ID:     role.ID,
		Name:   role.Name,
		Colour: role.Colour,
	}
}

// ToTeamMemberDTO converts a team member to DTO
func ToTeamMemberDTO(member models.TeamMember) TeamMemberDTO {
	roles := make([]RoleDTO, len(member.Roles))
	for i, assignment := range member.Roles {
		roles[i] = ToRoleDTO(assignment.Role)
	}
	return TeamMemberDTO{
		ID:             member.ID,
		Name:           member.Name,
		Email:          member.Email,
		Level:          member.Level,
		Status:         member.Status,
		EmploymentType: member.EmploymentType,
		Roles:          roles,
		VenueIDs:       member.VenueScopeIDs(),
	}
}

// ToShiftAllocationDTO converts an allocation to DTO
func ToShiftAllocationDTO(allocation models.ShiftAllocation) ShiftAllocationDTO {
	out := ShiftAllocationDTO{
		ID:           allocation.ID,
		ShiftID:      allocation.ShiftID,
		TeamMemberID: allocation.TeamMemberID,
		Status:       allocation.Status,
	}
	if allocation.TeamMember.ID != 0 {
		member := ToTeamMemberDTO(allocation.TeamMember)
		out.TeamMember = &member
	}
	return out
}

// ToShiftInviteDTO converts an invite to DTO
func ToShiftInviteDTO(invite models.ShiftInvite) ShiftInviteDTO {
	out := ShiftInviteDTO{
		ID:           invite.ID,
		ShiftID:      invite.ShiftID,
		TeamMemberID: invite.TeamMemberID,
		Status:       invite.Status,
		InvitedAt:    invite.InvitedAt,
		ExpiresAt:    invite.ExpiresAt,
		RespondedAt:  invite.RespondedAt,
	}
	if invite.Shift.ID != 0 {
		shift := ToShiftDTO(invite.Shift)
		out.Shift = &shift
	}
	return out
}

// ToShiftDTO converts a shift to DTO
func ToShiftDTO(shift models.RotaShift) ShiftDTO {
	out := ShiftDTO{
		ID:              shift.ID,
		OrganizationID:  shift.OrganizationID,
		VenueID:         shift.VenueID,
		RoleID:          shift.RoleID,
		Date:            shift.Date.Format("2006-01-02"),
		StartTime:       shift.StartTime,
		EndTime:         shift.EndTime,
		HeadcountNeeded: shift.HeadcountNeeded,
		Status:          shift.Status,
	}
	if shift.Venue.ID != 0 {
		venue := ToVenueDTO(shift.Venue)
		out.Venue = &venue
	}
	if shift.Role.ID != 0 {
		role := ToRoleDTO(shift.Role)
		out.Role = &role
	}
	if len(shift.Allocations) > 0 {
		out.Allocations = make([]ShiftAllocationDTO, len(shift.Allocations))
		for i, allocation := range shift.Allocations {
			out.Allocations[i] = ToShiftAllocationDTO(allocation)
		}
	}
	return out
}

// ToTimekeepingRecordDTO converts a clock record to DTO
func ToTimekeepingRecordDTO(record models.TimekeepingRecord) TimekeepingRecordDTO {
	return TimekeepingRecordDTO{
		ID:            record.ID,
		AllocationID:  record.AllocationID,
		ClockInAt:     record.ClockInAt,
		ClockOutAt:    record.ClockOutAt,
		BreakMinutes:  record.BreakMinutes,
		TotalHours:    record.TotalHours,
		RegularHours:  record.RegularHours,
		OvertimeHours: record.OvertimeHours,
		Status:        record.Status,
		Notes:         record.ReviewNotes,
	}
}

// ToTimesheetDTO converts a timesheet to DTO
func ToTimesheetDTO(sheet models.Timesheet) TimesheetDTO {
	return TimesheetDTO{
		ID:            sheet.ID,
		TeamMemberID:  sheet.TeamMemberID,
		PeriodStart:   sheet.PeriodStart,
		PeriodEnd:     sheet.PeriodEnd,
		TotalHours:    sheet.TotalHours,
		RegularHours:  sheet.RegularHours,
		OvertimeHours: sheet.OvertimeHours,
		Status:        sheet.Status,
		ApprovedByID:  sheet.ApprovedByID,
		ApprovedAt:    sheet.ApprovedAt,
	}
}
