package repository

import (
	"errors"
	"time"

	"github.com/rosterhq/rostering-api/internal/database"
	"github.com/rosterhq/rostering-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShiftRepository is a GORM implementation of ShiftRepository
type GormShiftRepository struct {
	db *gorm.DB
}

// NewShiftRepository creates a new ShiftRepository
func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &GormShiftRepository{db: db}
}

// lockForUpdate takes a row lock where the dialect supports one. sqlite (the test
// database) has no FOR UPDATE; its single-writer model serializes the transaction
// anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *GormShiftRepository) CreateShift(shift *models.RotaShift) error {
	return r.db.Create(shift).Error
}

func (r *GormShiftRepository) FindShiftByID(id uint64, preload ...string) (*models.RotaShift, error) {
	var shift models.RotaShift
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&shift, id).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *GormShiftRepository) UpdateShift(shift *models.RotaShift) error {
	return r.db.Save(shift).Error
}

// ListShifts retrieves shifts with filtering and pagination
func (r *GormShiftRepository) ListShifts(filter ShiftFilter) ([]models.RotaShift, int64, error) {
	var shifts []models.RotaShift

	query := r.db.Model(&models.RotaShift{}).
		Where("rota_shifts.organization_id = ?", filter.OrganizationID)

	if filter.VenueID != nil {
		query = query.Where("rota_shifts.venue_id = ?", *filter.VenueID)
	}
	if filter.Status != nil {
		query = query.Where("rota_shifts.status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("rota_shifts.date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("rota_shifts.date < ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order("rota_shifts.date ASC, rota_shifts.start_time ASC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Venue").Preload("Role").Find(&shifts).Error; err != nil {
		return nil, 0, err
	}

	return shifts, total, nil
}

// CreateAllocation inserts an allocation while holding the shift row lock. The
// headcount and per-member uniqueness checks happen in the same transaction as the
// insert, which is what makes a concurrent second caller fail instead of
// overfilling the shift. A non-nil then runs inside the transaction after the
// insert, so side rows (the audit entry) commit with the allocation.
func (r *GormShiftRepository) CreateAllocation(shiftID, teamMemberID uint64, then func(tx *gorm.DB, allocation *models.ShiftAllocation) error) (*models.ShiftAllocation, error) {
	var allocation *models.ShiftAllocation

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var shift models.RotaShift
		if err := lockForUpdate(tx).First(&shift, shiftID).Error; err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.ShiftAllocation{}).
			Where("shift_id = ? AND status <> ?", shiftID, models.AllocationStatusCancelled).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(shift.HeadcountNeeded) {
			return ErrShiftAtCapacity
		}

		var duplicates int64
		if err := tx.Model(&models.ShiftAllocation{}).
			Where("shift_id = ? AND team_member_id = ? AND status <> ?",
				shiftID, teamMemberID, models.AllocationStatusCancelled).
			Count(&duplicates).Error; err != nil {
			return err
		}
		if duplicates > 0 {
			return ErrDuplicateAllocation
		}

		allocation = &models.ShiftAllocation{
			ShiftID:      shiftID,
			TeamMemberID: teamMemberID,
			Status:       models.AllocationStatusAllocated,
		}
		if err := tx.Create(allocation).Error; err != nil {
			return err
		}
		if then != nil {
			return then(tx, allocation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return allocation, nil
}

func (r *GormShiftRepository) FindAllocationByID(id uint64, preload ...string) (*models.ShiftAllocation, error) {
	var allocation models.ShiftAllocation
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&allocation, id).Error; err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *GormShiftRepository) FindActiveAllocation(shiftID, teamMemberID uint64) (*models.ShiftAllocation, error) {
	var allocation models.ShiftAllocation
	err := r.db.
		Where("shift_id = ? AND team_member_id = ? AND status <> ?",
			shiftID, teamMemberID, models.AllocationStatusCancelled).
		First(&allocation).Error
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *GormShiftRepository) UpdateAllocationStatus(id uint64, status models.AllocationStatus) error {
	result := r.db.Model(&models.ShiftAllocation{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormShiftRepository) CountActiveAllocations(shiftID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.ShiftAllocation{}).
		Where("shift_id = ? AND status <> ?", shiftID, models.AllocationStatusCancelled).
		Count(&count).Error
	return count, err
}

func (r *GormShiftRepository) CreateInvites(invites []models.ShiftInvite) error {
	if len(invites) == 0 {
		return nil
	}
	return r.db.Create(&invites).Error
}

func (r *GormShiftRepository) FindInviteByID(id uint64, preload ...string) (*models.ShiftInvite, error) {
	var invite models.ShiftInvite
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&invite, id).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *GormShiftRepository) ListInvitesForMember(teamMemberID uint64, status *models.InviteStatus) ([]models.ShiftInvite, error) {
	var invites []models.ShiftInvite
	query := r.db.Preload("Shift").Where("team_member_id = ?", teamMemberID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Order("invited_at DESC").Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// TransitionInvite performs the conditional pending-only status move. RowsAffected
// zero means another actor (or the sweep) got there first.
func (r *GormShiftRepository) TransitionInvite(id uint64, to models.InviteStatus, respondedAt *time.Time) (bool, error) {
	result := r.db.Model(&models.ShiftInvite{}).
		Where("id = ? AND status = ?", id, models.InviteStatusPending).
		Updates(map[string]interface{}{
			"status":       to,
			"responded_at": respondedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormShiftRepository) ExpireOtherPending(shiftID, acceptedInviteID uint64) (int64, error) {
	result := r.db.Model(&models.ShiftInvite{}).
		Where("shift_id = ? AND id <> ? AND status = ?",
			shiftID, acceptedInviteID, models.InviteStatusPending).
		Update("status", models.InviteStatusExpired)
	return result.RowsAffected, result.Error
}

func (r *GormShiftRepository) ExpireStale(now time.Time) (int64, error) {
	result := r.db.Model(&models.ShiftInvite{}).
		Where("status = ? AND expires_at < ?", models.InviteStatusPending, now).
		Update("status", models.InviteStatusExpired)
	return result.RowsAffected, result.Error
}

// IsNotFound reports whether err is the record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
