package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rosterhq/rostering-api/internal/audit"
	"github.com/rosterhq/rostering-api/internal/constants"
	"github.com/rosterhq/rostering-api/internal/hierarchy"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/notifications"
	"github.com/rosterhq/rostering-api/internal/repository"
	"github.com/rosterhq/rostering-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidMemberName  = errors.New("member name cannot be empty")
	ErrInvalidMemberEmail = errors.New("member email cannot be empty")
	ErrInviteTokenInvalid = errors.New("invite token is invalid or already redeemed")
	ErrMemberAlreadyBound = errors.New("member is already linked to a user")
	ErrRoleNotInOrg       = errors.New("role belongs to a different organization")
	ErrVenueNotInOrg      = errors.New("venue belongs to a different organization")
	ErrMemberNotInactive  = errors.New("member is not inactive")
)

// TeamService manages the member lifecycle: invites, hierarchy-level edits, role
// assignment, venue scoping and deactivation. Every mutation is gated by the
// hierarchy policy and recorded in the audit trail.
type TeamService struct {
	memberRepo repository.TeamMemberRepository
	orgRepo    repository.OrganizationRepository
	recorder   *audit.Recorder
	dispatcher notifications.Dispatcher
}

func NewTeamService(
	memberRepo repository.TeamMemberRepository,
	orgRepo repository.OrganizationRepository,
	recorder *audit.Recorder,
	dispatcher notifications.Dispatcher,
) *TeamService {
	return &TeamService{
		memberRepo: memberRepo,
		orgRepo:    orgRepo,
		recorder:   recorder,
		dispatcher: dispatcher,
	}
}

// InviteMemberInput describes a new member invitation.
type InviteMemberInput struct {
	Actor          *models.TeamMember
	Name           string
	Email          string
	Level          models.HierarchyLevel
	EmploymentType models.EmploymentType
	VenueIDs       []uint64
}

// InviteMember creates a pending member at a level strictly below the actor's,
// records the management-chain edge, and hands out an invite token the invited
// user redeems to bind their account.
func (s *TeamService) InviteMember(input InviteMemberInput) (*models.TeamMember, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidMemberName
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, ErrInvalidMemberEmail
	}

	ok, err := hierarchy.CanInvite(input.Actor.Level, input.Level)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized
	}
	if len(input.VenueIDs) > 0 {
		if err := requireScope(input.Actor, input.VenueIDs); err != nil {
			return nil, err
		}
		for _, venueID := range input.VenueIDs {
			venue, err := s.orgRepo.FindVenueByID(venueID)
			if err != nil {
				return nil, fmt.Errorf("failed to find venue %d: %w", venueID, err)
			}
			if venue.OrganizationID != input.Actor.OrganizationID {
				return nil, ErrVenueNotInOrg
			}
		}
	}

	member := &models.TeamMember{
		OrganizationID: input.Actor.OrganizationID,
		Name:           strings.TrimSpace(input.Name),
		Email:          strings.TrimSpace(input.Email),
		Level:          input.Level,
		EmploymentType: input.EmploymentType,
		Status:         models.MemberStatusPending,
		InviteToken:    utils.NewInviteToken(),
	}
	if member.EmploymentType == "" {
		member.EmploymentType = models.EmploymentFullTime
	}

	if err := s.memberRepo.Create(member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	if len(input.VenueIDs) > 0 {
		if err := s.memberRepo.SetVenueScope(member.ID, input.VenueIDs); err != nil {
			return nil, fmt.Errorf("failed to set venue scope: %w", err)
		}
	}

	if err := s.memberRepo.AddChainEdge(input.Actor.ID, member.ID); err != nil {
		return nil, fmt.Errorf("failed to record management chain edge: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: member.OrganizationID,
		ActorID:        &input.Actor.ID,
		TableName:      "team_members",
		RecordID:       member.ID,
		Action:         models.AuditActionCreate,
		NewData: models.JSON{
			"name":   member.Name,
			"level":  string(member.Level),
			"status": string(member.Status),
		},
	})

	s.dispatcher.Dispatch(notifications.Event{
		OrganizationID: member.OrganizationID,
		RecipientID:    member.ID,
		Category:       models.NotificationInviteSent,
		Title:          "You have been invited to join a team",
		Body:           fmt.Sprintf("You were invited as %s. Redeem your invite to get started.", member.Level),
		Data:           models.JSON{"invite_token": member.InviteToken},
	})

	return member, nil
}

// RedeemInvite binds a user account to a pending member and activates them.
func (s *TeamService) RedeemInvite(token string, userID uint64) (*models.TeamMember, error) {
	member, err := s.memberRepo.FindByInviteToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteTokenInvalid
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}
	if member.Status != models.MemberStatusPending || member.UserID != nil {
		return nil, ErrMemberAlreadyBound
	}

	member.UserID = &userID
	member.Status = models.MemberStatusActive
	member.InviteToken = ""
	if err := s.memberRepo.Update(member); err != nil {
		return nil, fmt.Errorf("failed to activate member: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: member.OrganizationID,
		ActorID:        &member.ID,
		TableName:      "team_members",
		RecordID:       member.ID,
		Action:         models.AuditActionUpdate,
		OldData:        models.JSON{"status": string(models.MemberStatusPending)},
		NewData:        models.JSON{"status": string(models.MemberStatusActive)},
	})

	return member, nil
}

// UpdateHierarchyLevel changes a member's level. The actor must outrank the
// member's current level and the new level must be strictly below the actor's
// own: no actor can promote anyone to or above their own rank.
func (s *TeamService) UpdateHierarchyLevel(memberID uint64, newLevel models.HierarchyLevel, actor *models.TeamMember) (*models.TeamMember, error) {
	member, err := s.memberRepo.FindByID(memberID, "VenueScope")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if err := requireSameOrg(actor, member.OrganizationID, ErrMemberNotFound); err != nil {
		return nil, err
	}

	if err := requireOutranks(actor, member.Level, member.VenueScopeIDs()); err != nil {
		return nil, err
	}
	ok, err := hierarchy.CanAssignLevel(actor.Level, newLevel)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized
	}

	oldLevel := member.Level
	member.Level = newLevel
	if err := s.memberRepo.Update(member); err != nil {
		return nil, fmt.Errorf("failed to update hierarchy level: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: member.OrganizationID,
		ActorID:        &actor.ID,
		TableName:      "team_members",
		RecordID:       member.ID,
		Action:         models.AuditActionHierarchyChanged,
		OldData:        models.JSON{"level": string(oldLevel)},
		NewData:        models.JSON{"level": string(newLevel)},
	})

	s.dispatcher.Dispatch(notifications.HierarchyChangedEvent(member.OrganizationID, member.ID, newLevel))

	return member, nil
}

// AssignRole attaches an organization role to a member.
func (s *TeamService) AssignRole(memberID, roleID uint64, actor *models.TeamMember) error {
	member, err := s.memberRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}
	if err := requireSameOrg(actor, member.OrganizationID, ErrMemberNotFound); err != nil {
		return err
	}
	if err := requireOutranks(actor, member.Level, nil); err != nil {
		return err
	}

	role, err := s.orgRepo.FindRoleByID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotInOrg
		}
		return fmt.Errorf("failed to find role: %w", err)
	}
	if role.OrganizationID != member.OrganizationID {
		return ErrRoleNotInOrg
	}

	if err := s.memberRepo.AssignRole(memberID, roleID); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: member.OrganizationID,
		ActorID:        &actor.ID,
		TableName:      "role_assignments",
		RecordID:       member.ID,
		Action:         models.AuditActionCreate,
		NewData:        models.JSON{"role_id": roleID},
	})

	return nil
}

// UnassignRole detaches a role from a member.
func (s *TeamService) UnassignRole(memberID, roleID uint64, actor *models.TeamMember) error {
	member, err := s.memberRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}
	if err := requireSameOrg(actor, member.OrganizationID, ErrMemberNotFound); err != nil {
		return err
	}
	if err := requireOutranks(actor, member.Level, nil); err != nil {
		return err
	}

	if err := s.memberRepo.UnassignRole(memberID, roleID); err != nil {
		return fmt.Errorf("failed to unassign role: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: member.OrganizationID,
		ActorID:        &actor.ID,
		TableName:      "role_assignments",
		RecordID:       member.ID,
		Action:         models.AuditActionDelete,
		OldData:        models.JSON{"role_id": roleID},
	})

	return nil
}

// SetVenueScope replaces the member's venue scope. Empty means unrestricted.
func (s *TeamService) SetVenueScope(memberID uint64, venueIDs []uint64, actor *models.TeamMember) error {
	member, err := s.memberRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}
	if err := requireSameOrg(actor, member.OrganizationID, ErrMemberNotFound); err != nil {
		return err
	}
	if err := requireOutranks(actor, member.Level, nil); err != nil {
		return err
	}
	for _, venueID := range venueIDs {
		venue, err := s.orgRepo.FindVenueByID(venueID)
		if err != nil {
			return fmt.Errorf("failed to find venue %d: %w", venueID, err)
		}
		if venue.OrganizationID != member.OrganizationID {
			return ErrVenueNotInOrg
		}
	}

	if err := s.memberRepo.SetVenueScope(memberID, venueIDs); err != nil {
		return fmt.Errorf("failed to set venue scope: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: member.OrganizationID,
		ActorID:        &actor.ID,
		TableName:      "team_member_venues",
		RecordID:       member.ID,
		Action:         models.AuditActionUpdate,
		NewData:        models.JSON{"venue_ids": venueIDs},
	})

	return nil
}

// Deactivate moves an active member to inactive.
func (s *TeamService) Deactivate(memberID uint64, actor *models.TeamMember) error {
	return s.setStatus(memberID, models.MemberStatusActive, models.MemberStatusInactive, actor)
}

// Reactivate moves an inactive member back to active.
func (s *TeamService) Reactivate(memberID uint64, actor *models.TeamMember) error {
	return s.setStatus(memberID, models.MemberStatusInactive, models.MemberStatusActive, actor)
}

func (s *TeamService) setStatus(memberID uint64, from, to models.MemberStatus, actor *models.TeamMember) error {
	member, err := s.memberRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}
	if err := requireSameOrg(actor, member.OrganizationID, ErrMemberNotFound); err != nil {
		return err
	}
	if err := requireOutranks(actor, member.Level, nil); err != nil {
		return err
	}
	if member.Status != from {
		if to == models.MemberStatusActive {
			return ErrMemberNotInactive
		}
		return ErrMemberNotActive
	}

	member.Status = to
	if err := s.memberRepo.Update(member); err != nil {
		return fmt.Errorf("failed to update member status: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: member.OrganizationID,
		ActorID:        &actor.ID,
		TableName:      "team_members",
		RecordID:       member.ID,
		Action:         models.AuditActionUpdate,
		OldData:        models.JSON{"status": string(from)},
		NewData:        models.JSON{"status": string(to)},
	})

	return nil
}

// ListMembers returns all members of the organization with roles and scope.
func (s *TeamService) ListMembers(organizationID uint64) ([]models.TeamMember, error) {
	members, err := s.memberRepo.ListByOrganization(organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// ReportingLine resolves an organization member's chain of managers for display.
// The walk is depth-bounded; authorization never consults it. Members of other
// organizations read as not found.
func (s *TeamService) ReportingLine(memberID, organizationID uint64) ([]models.TeamMember, error) {
	member, err := s.memberRepo.FindByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member.OrganizationID != organizationID {
		return nil, ErrMemberNotFound
	}

	line, err := s.memberRepo.ReportingLine(memberID, constants.MaxReportingLineDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reporting line: %w", err)
	}
	return line, nil
}
