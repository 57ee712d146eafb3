package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rosterhq/rostering-api/internal/audit"
	"github.com/rosterhq/rostering-api/internal/constants"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/notifications"
	"github.com/rosterhq/rostering-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotAllocated       = errors.New("no active allocation for this shift and member")
	ErrShiftNotPublished  = errors.New("shift is not published")
	ErrAlreadyClockedIn   = errors.New("an open timekeeping record already exists")
	ErrRecordNotFound     = errors.New("timekeeping record not found")
	ErrRecordNotOpen      = errors.New("timekeeping record is already closed")
	ErrClockOutBeforeIn   = errors.New("clock-out must be after clock-in")
	ErrRecordNotReviewable = errors.New("record is not awaiting review")
	ErrInvalidReviewStatus = errors.New("review status must be approved or rejected")
	ErrTimesheetNotFound   = errors.New("timesheet not found")
	ErrTimesheetNotDraft   = errors.New("timesheet is not a draft")
	ErrInvalidPeriod       = errors.New("period end must not precede period start")
)

// TimekeepingService validates clock events, computes hours and runs the
// timesheet approval workflow.
type TimekeepingService struct {
	timeRepo   repository.TimekeepingRepository
	shiftRepo  repository.ShiftRepository
	memberRepo repository.TeamMemberRepository
	orgRepo    repository.OrganizationRepository
	recorder   *audit.Recorder
	dispatcher notifications.Dispatcher
}

func NewTimekeepingService(
	timeRepo repository.TimekeepingRepository,
	shiftRepo repository.ShiftRepository,
	memberRepo repository.TeamMemberRepository,
	orgRepo repository.OrganizationRepository,
	recorder *audit.Recorder,
	dispatcher notifications.Dispatcher,
) *TimekeepingService {
	return &TimekeepingService{
		timeRepo:   timeRepo,
		shiftRepo:  shiftRepo,
		memberRepo: memberRepo,
		orgRepo:    orgRepo,
		recorder:   recorder,
		dispatcher: dispatcher,
	}
}

// ClockInInput carries a clock-in attempt. Location is a free-form string the
// core stores without validating.
type ClockInInput struct {
	ShiftID      uint64
	TeamMemberID uint64
	Location     string
	At           time.Time
}

// ClockIn opens a timekeeping record for the member's allocation on the shift.
func (s *TimekeepingService) ClockIn(input ClockInInput) (*models.TimekeepingRecord, error) {
	allocation, err := s.shiftRepo.FindActiveAllocation(input.ShiftID, input.TeamMemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAllocated
		}
		return nil, fmt.Errorf("failed to find allocation: %w", err)
	}

	shift, err := s.shiftRepo.FindShiftByID(input.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to find shift: %w", err)
	}
	if shift.Status != models.ShiftStatusPublished {
		return nil, ErrShiftNotPublished
	}

	at := input.At
	if at.IsZero() {
		at = time.Now()
	}

	record := &models.TimekeepingRecord{
		AllocationID:    allocation.ID,
		TeamMemberID:    input.TeamMemberID,
		ClockInAt:       at,
		ClockInLocation: input.Location,
		Status:          models.TimekeepingStatusPending,
	}
	// The no-open-record check, the insert and the allocation status move are one
	// transaction, so concurrent clock-ins cannot both open a record.
	if err := s.timeRepo.OpenRecord(record); err != nil {
		if errors.Is(err, repository.ErrOpenRecordExists) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, fmt.Errorf("failed to create timekeeping record: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: shift.OrganizationID,
		ActorID:        &input.TeamMemberID,
		TableName:      "timekeeping_records",
		RecordID:       record.ID,
		Action:         models.AuditActionCreate,
		NewData: models.JSON{
			"allocation_id": record.AllocationID,
			"clock_in_at":   record.ClockInAt,
		},
	})

	return record, nil
}

// ClockOutInput carries a clock-out for an open record.
type ClockOutInput struct {
	RecordID     uint64
	TeamMemberID uint64
	Location     string
	BreakMinutes int
	At           time.Time
}

// ClockOut closes the record and computes total, regular and overtime hours
// against the organization's regular-hours threshold. The record stays pending
// for manager review.
func (s *TimekeepingService) ClockOut(input ClockOutInput) (*models.TimekeepingRecord, error) {
	record, err := s.timeRepo.FindRecordByID(input.RecordID, "Allocation", "Allocation.Shift")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}
	if record.TeamMemberID != input.TeamMemberID {
		return nil, ErrNotAuthorized
	}
	if !record.Open() {
		return nil, ErrRecordNotOpen
	}

	at := input.At
	if at.IsZero() {
		at = time.Now()
	}
	if !at.After(record.ClockInAt) {
		return nil, ErrClockOutBeforeIn
	}

	threshold := constants.DefaultRegularHoursThreshold
	org, err := s.orgRepo.FindByID(record.Allocation.Shift.OrganizationID)
	if err == nil && org.RegularHoursThreshold > 0 {
		threshold = org.RegularHoursThreshold
	}

	total := at.Sub(record.ClockInAt).Hours() - float64(input.BreakMinutes)/60
	if total < 0 {
		total = 0
	}
	total = roundHours(total)
	regular := math.Min(total, threshold)
	overtime := roundHours(total - regular)

	record.ClockOutAt = &at
	record.ClockOutLocation = input.Location
	record.BreakMinutes = input.BreakMinutes
	record.TotalHours = total
	record.RegularHours = roundHours(regular)
	record.OvertimeHours = overtime
	record.Status = models.TimekeepingStatusPending

	if err := s.timeRepo.UpdateRecord(record); err != nil {
		return nil, fmt.Errorf("failed to close record: %w", err)
	}

	if err := s.shiftRepo.UpdateAllocationStatus(record.AllocationID, models.AllocationStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete allocation: %w", err)
	}

	orgID := record.Allocation.Shift.OrganizationID
	s.recorder.Record(audit.Entry{
		OrganizationID: orgID,
		ActorID:        &record.TeamMemberID,
		TableName:      "timekeeping_records",
		RecordID:       record.ID,
		Action:         models.AuditActionTimeSubmitted,
		NewData: models.JSON{
			"total_hours":    record.TotalHours,
			"regular_hours":  record.RegularHours,
			"overtime_hours": record.OvertimeHours,
		},
	})
	s.dispatcher.Dispatch(notifications.TimeSubmittedEvent(orgID, record.TeamMemberID, record.ID))

	return record, nil
}

// ReviewRecord moves a pending or disputed record to approved or rejected.
func (s *TimekeepingService) ReviewRecord(recordID uint64, status models.TimekeepingStatus, notes string, actor *models.TeamMember) (*models.TimekeepingRecord, error) {
	if status != models.TimekeepingStatusApproved && status != models.TimekeepingStatusRejected {
		return nil, ErrInvalidReviewStatus
	}

	record, err := s.timeRepo.FindRecordByID(recordID, "Allocation", "Allocation.Shift", "TeamMember")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}
	if err := requireSameOrg(actor, record.Allocation.Shift.OrganizationID, ErrRecordNotFound); err != nil {
		return nil, err
	}
	if record.Status != models.TimekeepingStatusPending && record.Status != models.TimekeepingStatusDisputed {
		return nil, ErrRecordNotReviewable
	}

	if err := requireOutranks(actor, record.TeamMember.Level, []uint64{record.Allocation.Shift.VenueID}); err != nil {
		return nil, err
	}

	oldStatus := record.Status
	record.Status = status
	if notes != "" {
		record.ReviewNotes = notes
	}
	if err := s.timeRepo.UpdateRecord(record); err != nil {
		return nil, fmt.Errorf("failed to review record: %w", err)
	}

	orgID := record.Allocation.Shift.OrganizationID
	s.recorder.Record(audit.Entry{
		OrganizationID: orgID,
		ActorID:        actorID(actor),
		TableName:      "timekeeping_records",
		RecordID:       record.ID,
		Action:         models.AuditActionTimeReviewed,
		OldData:        models.JSON{"status": string(oldStatus)},
		NewData:        models.JSON{"status": string(status)},
	})
	s.dispatcher.Dispatch(notifications.TimeReviewedEvent(orgID, record.TeamMemberID, record.ID, status))

	return record, nil
}

// RequestEdit flags a record as disputed with the reviewer's notes, opening a
// second review cycle.
func (s *TimekeepingService) RequestEdit(recordID uint64, notes string, actor *models.TeamMember) (*models.TimekeepingRecord, error) {
	record, err := s.timeRepo.FindRecordByID(recordID, "Allocation", "Allocation.Shift", "TeamMember")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}
	if err := requireSameOrg(actor, record.Allocation.Shift.OrganizationID, ErrRecordNotFound); err != nil {
		return nil, err
	}
	if record.Status != models.TimekeepingStatusPending && record.Status != models.TimekeepingStatusDisputed {
		return nil, ErrRecordNotReviewable
	}

	if err := requireOutranks(actor, record.TeamMember.Level, []uint64{record.Allocation.Shift.VenueID}); err != nil {
		return nil, err
	}

	oldStatus := record.Status
	record.Status = models.TimekeepingStatusDisputed
	record.ReviewNotes = notes
	if err := s.timeRepo.UpdateRecord(record); err != nil {
		return nil, fmt.Errorf("failed to dispute record: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: record.Allocation.Shift.OrganizationID,
		ActorID:        actorID(actor),
		TableName:      "timekeeping_records",
		RecordID:       record.ID,
		Action:         models.AuditActionTimeReviewed,
		OldData:        models.JSON{"status": string(oldStatus)},
		NewData:        models.JSON{"status": string(models.TimekeepingStatusDisputed), "notes": notes},
	})

	return record, nil
}

// GenerateTimesheet aggregates the member's approved records whose shift date
// falls in [start, end] into a frozen draft snapshot. Regenerating the same
// period replaces the prior draft; totals are identical for identical inputs.
func (s *TimekeepingService) GenerateTimesheet(teamMemberID uint64, start, end time.Time, actor *models.TeamMember) (*models.Timesheet, error) {
	if end.Before(start) {
		return nil, ErrInvalidPeriod
	}

	member, err := s.memberRepo.FindByID(teamMemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if err := requireSameOrg(actor, member.OrganizationID, ErrMemberNotFound); err != nil {
		return nil, err
	}

	records, err := s.timeRepo.ListRecordsInPeriod(teamMemberID, start, end,
		[]models.TimekeepingStatus{models.TimekeepingStatusApproved})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	sheet := &models.Timesheet{
		TeamMemberID: teamMemberID,
		PeriodStart:  start,
		PeriodEnd:    end,
		RecordCount:  len(records),
		Status:       models.TimesheetStatusDraft,
	}
	for _, record := range records {
		sheet.TotalHours += record.TotalHours
		sheet.RegularHours += record.RegularHours
		sheet.OvertimeHours += record.OvertimeHours
	}
	sheet.TotalHours = roundHours(sheet.TotalHours)
	sheet.RegularHours = roundHours(sheet.RegularHours)
	sheet.OvertimeHours = roundHours(sheet.OvertimeHours)

	if err := s.timeRepo.ReplaceDraftTimesheet(sheet); err != nil {
		return nil, fmt.Errorf("failed to store timesheet: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: member.OrganizationID,
		ActorID:        actorID(actor),
		TableName:      "timesheets",
		RecordID:       sheet.ID,
		Action:         models.AuditActionCreate,
		NewData: models.JSON{
			"team_member_id": sheet.TeamMemberID,
			"total_hours":    sheet.TotalHours,
			"record_count":   sheet.RecordCount,
		},
	})

	return sheet, nil
}

// ApproveTimesheet finalizes a draft. Approval is terminal: an approved timesheet
// is immutable and corrections happen via new adjustment records, never by
// mutating history.
func (s *TimekeepingService) ApproveTimesheet(timesheetID uint64, actor *models.TeamMember) (*models.Timesheet, error) {
	sheet, err := s.timeRepo.FindTimesheetByID(timesheetID, "TeamMember")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("failed to find timesheet: %w", err)
	}
	if err := requireSameOrg(actor, sheet.TeamMember.OrganizationID, ErrTimesheetNotFound); err != nil {
		return nil, err
	}
	if sheet.Status != models.TimesheetStatusDraft {
		return nil, ErrTimesheetNotDraft
	}

	if err := requireOutranks(actor, sheet.TeamMember.Level, nil); err != nil {
		return nil, err
	}

	now := time.Now()
	sheet.Status = models.TimesheetStatusApproved
	sheet.ApprovedByID = &actor.ID
	sheet.ApprovedAt = &now
	if err := s.timeRepo.UpdateTimesheet(sheet); err != nil {
		return nil, fmt.Errorf("failed to approve timesheet: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: sheet.TeamMember.OrganizationID,
		ActorID:        actorID(actor),
		TableName:      "timesheets",
		RecordID:       sheet.ID,
		Action:         models.AuditActionUpdate,
		OldData:        models.JSON{"status": string(models.TimesheetStatusDraft)},
		NewData:        models.JSON{"status": string(models.TimesheetStatusApproved)},
	})

	return sheet, nil
}

// ListTimesheets returns an organization member's timesheets, newest period
// first. Members of other organizations read as not found.
func (s *TimekeepingService) ListTimesheets(teamMemberID, organizationID uint64) ([]models.Timesheet, error) {
	member, err := s.memberRepo.FindByID(teamMemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member.OrganizationID != organizationID {
		return nil, ErrMemberNotFound
	}

	sheets, err := s.timeRepo.ListTimesheets(teamMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	return sheets, nil
}

// roundHours keeps hour arithmetic stable at two decimal places.
func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
