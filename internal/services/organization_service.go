package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rosterhq/rostering-api/internal/audit"
	"github.com/rosterhq/rostering-api/internal/constants"
	"github.com/rosterhq/rostering-api/internal/hierarchy"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidOrganizationName = errors.New("organization name cannot be empty")
	ErrInvalidVenueName        = errors.New("venue name cannot be empty")
	ErrInvalidRoleName         = errors.New("role name cannot be empty")
	ErrOrganizationNotFound    = errors.New("organization not found")
	ErrInvalidHoursThreshold   = errors.New("regular hours threshold must be positive")
)

// OrganizationService handles organization setup and reference data (venues,
// roles, timekeeping thresholds).
type OrganizationService struct {
	orgRepo    repository.OrganizationRepository
	memberRepo repository.TeamMemberRepository
	recorder   *audit.Recorder
}

func NewOrganizationService(
	orgRepo repository.OrganizationRepository,
	memberRepo repository.TeamMemberRepository,
	recorder *audit.Recorder,
) *OrganizationService {
	return &OrganizationService{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		recorder:   recorder,
	}
}

// CreateOrganization creates the organization together with its founding
// employer-level member for the given user.
func (s *OrganizationService) CreateOrganization(name string, user *models.User) (*models.Organization, *models.TeamMember, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, ErrInvalidOrganizationName
	}

	org := &models.Organization{
		Name:                  name,
		OwnerID:               user.ID,
		RegularHoursThreshold: constants.DefaultRegularHoursThreshold,
	}
	founder := &models.TeamMember{
		UserID: &user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Level:  models.LevelEmployer,
		Status: models.MemberStatusActive,
	}

	if err := s.orgRepo.CreateWithEmployer(org, founder); err != nil {
		return nil, nil, err
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: org.ID,
		ActorID:        &founder.ID,
		TableName:      "organizations",
		RecordID:       org.ID,
		Action:         models.AuditActionCreate,
		NewData:        models.JSON{"name": org.Name},
	})

	return org, founder, nil
}

// GetOrganization returns the organization by ID.
func (s *OrganizationService) GetOrganization(id uint64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

// CompleteOnboarding marks the organization's initial setup as done.
func (s *OrganizationService) CompleteOnboarding(organizationID uint64, actor *models.TeamMember) (*models.Organization, error) {
	if err := s.requireManagerRank(actor); err != nil {
		return nil, err
	}
	org, err := s.GetOrganization(organizationID)
	if err != nil {
		return nil, err
	}
	if org.OnboardingCompleted {
		return org, nil
	}

	org.OnboardingCompleted = true
	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to complete onboarding: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: org.ID,
		ActorID:        &actor.ID,
		TableName:      "organizations",
		RecordID:       org.ID,
		Action:         models.AuditActionUpdate,
		NewData:        models.JSON{"onboarding_completed": true},
	})

	return org, nil
}

// UpdateRegularHoursThreshold sets the daily regular-hours cap used when
// splitting clocked time into regular and overtime.
func (s *OrganizationService) UpdateRegularHoursThreshold(organizationID uint64, threshold float64, actor *models.TeamMember) (*models.Organization, error) {
	if actor.Level != models.LevelEmployer {
		return nil, ErrNotAuthorized
	}
	if threshold <= 0 {
		return nil, ErrInvalidHoursThreshold
	}

	org, err := s.GetOrganization(organizationID)
	if err != nil {
		return nil, err
	}

	old := org.RegularHoursThreshold
	org.RegularHoursThreshold = threshold
	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update hours threshold: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: org.ID,
		ActorID:        &actor.ID,
		TableName:      "organizations",
		RecordID:       org.ID,
		Action:         models.AuditActionUpdate,
		OldData:        models.JSON{"regular_hours_threshold": old},
		NewData:        models.JSON{"regular_hours_threshold": threshold},
	})

	return org, nil
}

// CreateVenue adds a venue to the organization.
func (s *OrganizationService) CreateVenue(organizationID uint64, name, address string, actor *models.TeamMember) (*models.Venue, error) {
	if err := s.requireManagerRank(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidVenueName
	}

	venue := &models.Venue{
		OrganizationID: organizationID,
		Name:           name,
		Address:        strings.TrimSpace(address),
	}
	if err := s.orgRepo.CreateVenue(venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: organizationID,
		ActorID:        &actor.ID,
		TableName:      "venues",
		RecordID:       venue.ID,
		Action:         models.AuditActionCreate,
		NewData:        models.JSON{"name": venue.Name},
	})

	return venue, nil
}

// ListVenues returns all venues of the organization.
func (s *OrganizationService) ListVenues(organizationID uint64) ([]models.Venue, error) {
	venues, err := s.orgRepo.ListVenues(organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	return venues, nil
}

// CreateRole adds a job role (e.g. bartender) to the organization.
func (s *OrganizationService) CreateRole(organizationID uint64, name, colour string, actor *models.TeamMember) (*models.Role, error) {
	if err := s.requireManagerRank(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidRoleName
	}

	role := &models.Role{
		OrganizationID: organizationID,
		Name:           name,
		Colour:         colour,
	}
	if err := s.orgRepo.CreateRole(role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: organizationID,
		ActorID:        &actor.ID,
		TableName:      "roles",
		RecordID:       role.ID,
		Action:         models.AuditActionCreate,
		NewData:        models.JSON{"name": role.Name},
	})

	return role, nil
}

// ListRoles returns all roles of the organization.
func (s *OrganizationService) ListRoles(organizationID uint64) ([]models.Role, error) {
	roles, err := s.orgRepo.ListRoles(organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// requireManagerRank gates reference-data edits to shift leaders and above.
func (s *OrganizationService) requireManagerRank(actor *models.TeamMember) error {
	rank, err := hierarchy.Rank(actor.Level)
	if err != nil {
		return err
	}
	workerRank, _ := hierarchy.Rank(models.LevelWorker)
	if rank <= workerRank {
		return ErrNotAuthorized
	}
	return nil
}
