package repository

import (
	"time"

	"github.com/rosterhq/rostering-api/internal/models"
	"gorm.io/gorm"
)

// GormTimekeepingRepository is a GORM implementation of TimekeepingRepository
type GormTimekeepingRepository struct {
	db *gorm.DB
}

// NewTimekeepingRepository creates a new TimekeepingRepository
func NewTimekeepingRepository(db *gorm.DB) TimekeepingRepository {
	return &GormTimekeepingRepository{db: db}
}

// OpenRecord inserts a clock-in record and marks its allocation in progress. The
// open-record check and the insert run in one transaction with the allocation row
// locked, so two concurrent clock-ins cannot both create an open record.
func (r *GormTimekeepingRepository) OpenRecord(record *models.TimekeepingRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var allocation models.ShiftAllocation
		if err := lockForUpdate(tx).First(&allocation, record.AllocationID).Error; err != nil {
			return err
		}

		var open int64
		if err := tx.Model(&models.TimekeepingRecord{}).
			Where("allocation_id = ? AND clock_out_at IS NULL", record.AllocationID).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrOpenRecordExists
		}

		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return tx.Model(&models.ShiftAllocation{}).
			Where("id = ?", record.AllocationID).
			Update("status", models.AllocationStatusInProgress).Error
	})
}

func (r *GormTimekeepingRepository) FindRecordByID(id uint64, preload ...string) (*models.TimekeepingRecord, error) {
	var record models.TimekeepingRecord
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormTimekeepingRepository) UpdateRecord(record *models.TimekeepingRecord) error {
	return r.db.Save(record).Error
}

// ListRecordsInPeriod filters on the owning shift's date, not the clock
// timestamps: an overnight shift belongs to the day it was rostered on.
func (r *GormTimekeepingRepository) ListRecordsInPeriod(teamMemberID uint64, start, end time.Time, statuses []models.TimekeepingStatus) ([]models.TimekeepingRecord, error) {
	var records []models.TimekeepingRecord
	query := r.db.
		Joins("JOIN shift_allocations ON shift_allocations.id = timekeeping_records.allocation_id").
		Joins("JOIN rota_shifts ON rota_shifts.id = shift_allocations.shift_id").
		Where("timekeeping_records.team_member_id = ?", teamMemberID).
		Where("rota_shifts.date >= ? AND rota_shifts.date <= ?", start, end)
	if len(statuses) > 0 {
		query = query.Where("timekeeping_records.status IN ?", statuses)
	}
	if err := query.Order("timekeeping_records.clock_in_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceDraftTimesheet swaps out the draft for the same member and period so
// regeneration is idempotent. Approved timesheets are never touched.
func (r *GormTimekeepingRepository) ReplaceDraftTimesheet(sheet *models.Timesheet) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(
			"team_member_id = ? AND period_start = ? AND period_end = ? AND status = ?",
			sheet.TeamMemberID, sheet.PeriodStart, sheet.PeriodEnd, models.TimesheetStatusDraft,
		).Delete(&models.Timesheet{}).Error
		if err != nil {
			return err
		}
		return tx.Create(sheet).Error
	})
}

func (r *GormTimekeepingRepository) FindTimesheetByID(id uint64, preload ...string) (*models.Timesheet, error) {
	var sheet models.Timesheet
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&sheet, id).Error; err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (r *GormTimekeepingRepository) UpdateTimesheet(sheet *models.Timesheet) error {
	return r.db.Save(sheet).Error
}

func (r *GormTimekeepingRepository) ListTimesheets(teamMemberID uint64) ([]models.Timesheet, error) {
	var sheets []models.Timesheet
	err := r.db.Where("team_member_id = ?", teamMemberID).
		Order("period_start DESC").
		Find(&sheets).Error
	if err != nil {
		return nil, err
	}
	return sheets, nil
}
