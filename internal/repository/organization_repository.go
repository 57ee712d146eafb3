package repository

import (
	"errors"
	"fmt"

	"github.com/rosterhq/rostering-api/internal/models"
	"gorm.io/gorm"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateOrganization is returned when creating the organization fails
	// inside the founding transaction.
	ErrCreateOrganization = errors.New("organization repository: create organization failed")
	// ErrCreateFounder is returned when creating the employer member fails inside
	// the founding transaction.
	ErrCreateFounder = errors.New("organization repository: create founding member failed")
)

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// CreateWithEmployer creates the organization and its employer member atomically.
func (r *GormOrganizationRepository) CreateWithEmployer(org *models.Organization, founder *models.TeamMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
		}

		founder.OrganizationID = org.ID

		if err := tx.Create(founder).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateFounder, err)
		}

		return nil
	})
}

func (r *GormOrganizationRepository) FindByID(id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

func (r *GormOrganizationRepository) CreateVenue(venue *models.Venue) error {
	return r.db.Create(venue).Error
}

func (r *GormOrganizationRepository) FindVenueByID(id uint64) (*models.Venue, error) {
	var venue models.Venue
	if err := r.db.First(&venue, id).Error; err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *GormOrganizationRepository) ListVenues(organizationID uint64) ([]models.Venue, error) {
	var venues []models.Venue
	err := r.db.Where("organization_id = ?", organizationID).
		Order("name ASC").
		Find(&venues).Error
	if err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *GormOrganizationRepository) CreateRole(role *models.Role) error {
	return r.db.Create(role).Error
}

func (r *GormOrganizationRepository) FindRoleByID(id uint64) (*models.Role, error) {
	var role models.Role
	if err := r.db.First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *GormOrganizationRepository) ListRoles(organizationID uint64) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.Where("organization_id = ?", organizationID).
		Order("name ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}
