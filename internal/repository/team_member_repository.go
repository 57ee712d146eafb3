package repository

import (
	"github.com/rosterhq/rostering-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTeamMemberRepository is a GORM implementation of TeamMemberRepository
type GormTeamMemberRepository struct {
	db *gorm.DB
}

// NewTeamMemberRepository creates a new TeamMemberRepository
func NewTeamMemberRepository(db *gorm.DB) TeamMemberRepository {
	return &GormTeamMemberRepository{db: db}
}

func (r *GormTeamMemberRepository) Create(member *models.TeamMember) error {
	return r.db.Create(member).Error
}

func (r *GormTeamMemberRepository) FindByID(id uint64, preload ...string) (*models.TeamMember, error) {
	var member models.TeamMember
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GormTeamMemberRepository) FindByInviteToken(token string) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Where("invite_token = ?", token).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GormTeamMemberRepository) FindByUserAndOrganization(userID, organizationID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.Preload("VenueScope").
		Where("user_id = ? AND organization_id = ?", userID, organizationID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GormTeamMemberRepository) Update(member *models.TeamMember) error {
	return r.db.Save(member).Error
}

func (r *GormTeamMemberRepository) ListByOrganization(organizationID uint64) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.Preload("Roles.Role").Preload("VenueScope").
		Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *GormTeamMemberRepository) AssignRole(teamMemberID, roleID uint64) error {
	assignment := models.RoleAssignment{
		TeamMemberID: teamMemberID,
		RoleID:       roleID,
	}
	return r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&assignment).Error
}

func (r *GormTeamMemberRepository) UnassignRole(teamMemberID, roleID uint64) error {
	return r.db.Where("team_member_id = ? AND role_id = ?", teamMemberID, roleID).
		Delete(&models.RoleAssignment{}).Error
}

// SetVenueScope replaces the member's venue scope. An empty venueIDs clears the
// scope, which means unrestricted.
func (r *GormTeamMemberRepository) SetVenueScope(teamMemberID uint64, venueIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_member_id = ?", teamMemberID).
			Delete(&models.TeamMemberVenue{}).Error; err != nil {
			return err
		}
		if len(venueIDs) == 0 {
			return nil
		}
		rows := make([]models.TeamMemberVenue, len(venueIDs))
		for i, venueID := range venueIDs {
			rows[i] = models.TeamMemberVenue{
				TeamMemberID: teamMemberID,
				VenueID:      venueID,
			}
		}
		return tx.Create(&rows).Error
	})
}

func (r *GormTeamMemberRepository) AddChainEdge(managerID, subordinateID uint64) error {
	edge := models.ManagementChainEdge{
		ManagerID:     managerID,
		SubordinateID: subordinateID,
	}
	return r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
}

// ReportingLine walks upward from the member along chain edges. The walk is
// bounded and tracks visited ids, so a cyclic chain yields a truncated line
// instead of unbounded recursion. Where a member has several managers, the first
// edge by creation time wins.
func (r *GormTeamMemberRepository) ReportingLine(teamMemberID uint64, maxDepth int) ([]models.TeamMember, error) {
	line := make([]models.TeamMember, 0, maxDepth)
	visited := map[uint64]struct{}{teamMemberID: {}}
	current := teamMemberID

	for depth := 0; depth < maxDepth; depth++ {
		var edge models.ManagementChainEdge
		err := r.db.Where("subordinate_id = ?", current).
			Order("created_at ASC").
			First(&edge).Error
		if err != nil {
			if IsNotFound(err) {
				break
			}
			return nil, err
		}

		if _, seen := visited[edge.ManagerID]; seen {
			break
		}
		visited[edge.ManagerID] = struct{}{}

		var manager models.TeamMember
		if err := r.db.First(&manager, edge.ManagerID).Error; err != nil {
			if IsNotFound(err) {
				break
			}
			return nil, err
		}

		line = append(line, manager)
		current = edge.ManagerID
	}

	return line, nil
}
