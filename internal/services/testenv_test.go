package services

import (
	"testing"
	"time"

	"github.com/rosterhq/rostering-api/internal/audit"
	"github.com/rosterhq/rostering-api/internal/database"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/notifications"
	"github.com/rosterhq/rostering-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db *gorm.DB

	shiftRepo  repository.ShiftRepository
	memberRepo repository.TeamMemberRepository
	timeRepo   repository.TimekeepingRepository
	orgRepo    repository.OrganizationRepository

	auth        *AuthService
	orgs        *OrganizationService
	team        *TeamService
	shifts      *ShiftService
	allocations *AllocationService
	invites     *InvitationService
	timekeeping *TimekeepingService
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Venue{},
		&models.Role{},
		&models.TeamMember{},
		&models.RoleAssignment{},
		&models.TeamMemberVenue{},
		&models.ManagementChainEdge{},
		&models.RotaShift{},
		&models.ShiftAllocation{},
		&models.ShiftInvite{},
		&models.TimekeepingRecord{},
		&models.Timesheet{},
		&models.AuditLogEntry{},
		&models.Notification{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	memberRepo := repository.NewTeamMemberRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	timeRepo := repository.NewTimekeepingRepository(db)

	recorder := audit.NewRecorder(db)
	dispatcher := notifications.NopDispatcher{}

	allocations := NewAllocationService(shiftRepo, memberRepo, recorder, dispatcher)

	env := &serviceTestEnv{
		db:          db,
		shiftRepo:   shiftRepo,
		memberRepo:  memberRepo,
		timeRepo:    timeRepo,
		orgRepo:     orgRepo,
		auth:        NewAuthService(userRepo),
		orgs:        NewOrganizationService(orgRepo, memberRepo, recorder),
		team:        NewTeamService(memberRepo, orgRepo, recorder, dispatcher),
		shifts:      NewShiftService(shiftRepo, orgRepo, recorder),
		allocations: allocations,
		invites:     NewInvitationService(shiftRepo, memberRepo, allocations, recorder, dispatcher, 48*time.Hour),
		timekeeping: NewTimekeepingService(timeRepo, shiftRepo, memberRepo, orgRepo, recorder, dispatcher),
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return env
}

func (env *serviceTestEnv) seedOrganization(t *testing.T) (*models.Organization, *models.Venue, *models.Role) {
	t.Helper()

	org := &models.Organization{Name: "The Crown", OwnerID: 1, RegularHoursThreshold: 8}
	require.NoError(t, env.db.Create(org).Error)

	venue := &models.Venue{OrganizationID: org.ID, Name: "Main Bar"}
	require.NoError(t, env.db.Create(venue).Error)

	role := &models.Role{OrganizationID: org.ID, Name: "Bartender", Colour: "#22aa66"}
	require.NoError(t, env.db.Create(role).Error)

	return org, venue, role
}

func (env *serviceTestEnv) seedMember(t *testing.T, orgID uint64, name string, level models.HierarchyLevel) *models.TeamMember {
	t.Helper()

	member := &models.TeamMember{
		OrganizationID: orgID,
		Name:           name,
		Email:          name + "@example.com",
		Level:          level,
		EmploymentType: models.EmploymentFullTime,
		Status:         models.MemberStatusActive,
	}
	require.NoError(t, env.db.Create(member).Error)
	return member
}

func (env *serviceTestEnv) seedShift(t *testing.T, org *models.Organization, venue *models.Venue, role *models.Role, status models.ShiftStatus, headcount int) *models.RotaShift {
	t.Helper()

	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	shift := &models.RotaShift{
		OrganizationID:  org.ID,
		VenueID:         venue.ID,
		RoleID:          role.ID,
		Date:            date,
		StartTime:       date.Add(9 * time.Hour),
		EndTime:         date.Add(18 * time.Hour),
		HeadcountNeeded: headcount,
		Status:          status,
	}
	require.NoError(t, env.db.Create(shift).Error)
	return shift
}
