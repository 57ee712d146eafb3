package repository

import (
	"errors"
	"time"

	"github.com/rosterhq/rostering-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrShiftAtCapacity is returned when an insert would exceed the shift's
	// headcount. It is the structured race-outcome signal; callers must not
	// match on message text.
	ErrShiftAtCapacity = errors.New("shift repository: headcount already filled")
	// ErrDuplicateAllocation is returned when the member already holds an active
	// allocation on the shift.
	ErrDuplicateAllocation = errors.New("shift repository: member already allocated")
	// ErrOpenRecordExists is returned when the allocation already has a clock
	// record without a clock-out.
	ErrOpenRecordExists = errors.New("timekeeping repository: allocation already has an open record")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// CreateWithEmployer creates the organization and its employer-level founding
	// member in a single transaction.
	CreateWithEmployer(org *models.Organization, founder *models.TeamMember) error
	FindByID(id uint64) (*models.Organization, error)
	Update(org *models.Organization) error

	CreateVenue(venue *models.Venue) error
	FindVenueByID(id uint64) (*models.Venue, error)
	ListVenues(organizationID uint64) ([]models.Venue, error)

	CreateRole(role *models.Role) error
	FindRoleByID(id uint64) (*models.Role, error)
	ListRoles(organizationID uint64) ([]models.Role, error)
}

// TeamMemberRepository defines the interface for team member data access
type TeamMemberRepository interface {
	Create(member *models.TeamMember) error
	FindByID(id uint64, preload ...string) (*models.TeamMember, error)
	FindByInviteToken(token string) (*models.TeamMember, error)
	FindByUserAndOrganization(userID, organizationID uint64) (*models.TeamMember, error)
	Update(member *models.TeamMember) error
	ListByOrganization(organizationID uint64) ([]models.TeamMember, error)

	AssignRole(teamMemberID, roleID uint64) error
	UnassignRole(teamMemberID, roleID uint64) error
	SetVenueScope(teamMemberID uint64, venueIDs []uint64) error

	AddChainEdge(managerID, subordinateID uint64) error
	// ReportingLine walks manager edges upward from the member, bounded by
	// maxDepth so malformed (cyclic) chains terminate.
	ReportingLine(teamMemberID uint64, maxDepth int) ([]models.TeamMember, error)
}

// ShiftFilter holds filtering options for listing shifts
type ShiftFilter struct {
	OrganizationID uint64
	VenueID        *uint64
	Status         *models.ShiftStatus
	DateFrom       *time.Time
	DateTo         *time.Time
	Page           int
	PageSize       int
}

// ShiftRepository defines data access for shifts, allocations and invites.
type ShiftRepository interface {
	CreateShift(shift *models.RotaShift) error
	FindShiftByID(id uint64, preload ...string) (*models.RotaShift, error)
	UpdateShift(shift *models.RotaShift) error
	ListShifts(filter ShiftFilter) ([]models.RotaShift, int64, error)

	// CreateAllocation inserts an allocation under the shift's headcount and
	// uniqueness invariants. The count checks and the insert run in one
	// transaction with the shift row locked, so two concurrent calls cannot both
	// pass the headcount check. A non-nil then runs inside the transaction after
	// the insert so side rows commit with the allocation. Returns
	// ErrShiftAtCapacity or ErrDuplicateAllocation when an invariant would be
	// violated.
	CreateAllocation(shiftID, teamMemberID uint64, then func(tx *gorm.DB, allocation *models.ShiftAllocation) error) (*models.ShiftAllocation, error)
	FindAllocationByID(id uint64, preload ...string) (*models.ShiftAllocation, error)
	FindActiveAllocation(shiftID, teamMemberID uint64) (*models.ShiftAllocation, error)
	UpdateAllocationStatus(id uint64, status models.AllocationStatus) error
	CountActiveAllocations(shiftID uint64) (int64, error)

	CreateInvites(invites []models.ShiftInvite) error
	FindInviteByID(id uint64, preload ...string) (*models.ShiftInvite, error)
	ListInvitesForMember(teamMemberID uint64, status *models.InviteStatus) ([]models.ShiftInvite, error)
	// TransitionInvite moves an invite out of pending. The update is guarded by
	// `status = 'pending'`; it reports false when the invite was no longer
	// pending, which is how concurrent responders lose the race.
	TransitionInvite(id uint64, to models.InviteStatus, respondedAt *time.Time) (bool, error)
	// ExpireOtherPending retires every other pending invite on the shift after an
	// accept fills the last slot.
	ExpireOtherPending(shiftID, acceptedInviteID uint64) (int64, error)
	// ExpireStale retires pending invites past their expiry timestamp. Idempotent
	// and safe to run concurrently with accepts: it only ever moves pending rows.
	ExpireStale(now time.Time) (int64, error)
}

// TimekeepingRepository defines data access for clock records and timesheets.
type TimekeepingRepository interface {
	// OpenRecord inserts a clock-in record and marks its allocation in progress.
	// The no-open-record check and the insert run in one transaction with the
	// allocation row locked; a concurrent second clock-in gets
	// ErrOpenRecordExists.
	OpenRecord(record *models.TimekeepingRecord) error
	FindRecordByID(id uint64, preload ...string) (*models.TimekeepingRecord, error)
	UpdateRecord(record *models.TimekeepingRecord) error
	// ListRecordsInPeriod returns a member's records whose shift date falls in
	// [start, end], optionally filtered by status.
	ListRecordsInPeriod(teamMemberID uint64, start, end time.Time, statuses []models.TimekeepingStatus) ([]models.TimekeepingRecord, error)

	// ReplaceDraftTimesheet deletes any existing draft for the same member and
	// period and inserts the new snapshot in one transaction.
	ReplaceDraftTimesheet(sheet *models.Timesheet) error
	FindTimesheetByID(id uint64, preload ...string) (*models.Timesheet, error)
	UpdateTimesheet(sheet *models.Timesheet) error
	ListTimesheets(teamMemberID uint64) ([]models.Timesheet, error)
}
