package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/rosterhq/rostering-api/internal/audit"
	"github.com/rosterhq/rostering-api/internal/hierarchy"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidShiftTimes   = errors.New("shift end must be after start")
	ErrInvalidHeadcount    = errors.New("headcount must be at least 1")
	ErrShiftNotDraft       = errors.New("shift is not a draft")
	ErrShiftNotCancellable = errors.New("shift cannot be cancelled in its current state")
	ErrShiftNotCompletable = errors.New("only published shifts can be completed")
)

// ShiftService manages the rota shift lifecycle: draft, publish, cancel,
// complete. Allocation and invitation flows live in their own services.
type ShiftService struct {
	shiftRepo repository.ShiftRepository
	orgRepo   repository.OrganizationRepository
	recorder  *audit.Recorder
}

func NewShiftService(
	shiftRepo repository.ShiftRepository,
	orgRepo repository.OrganizationRepository,
	recorder *audit.Recorder,
) *ShiftService {
	return &ShiftService{
		shiftRepo: shiftRepo,
		orgRepo:   orgRepo,
		recorder:  recorder,
	}
}

// CreateShiftInput describes a new draft shift.
type CreateShiftInput struct {
	Actor           *models.TeamMember
	VenueID         uint64
	RoleID          uint64
	Date            time.Time
	StartTime       time.Time
	EndTime         time.Time
	HeadcountNeeded int
}

// CreateShift creates a draft shift at a venue within the actor's scope.
func (s *ShiftService) CreateShift(input CreateShiftInput) (*models.RotaShift, error) {
	if err := s.requireManagerAt(input.Actor, input.VenueID); err != nil {
		return nil, err
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, ErrInvalidShiftTimes
	}
	if input.HeadcountNeeded < 1 {
		return nil, ErrInvalidHeadcount
	}

	venue, err := s.orgRepo.FindVenueByID(input.VenueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotInOrg
		}
		return nil, fmt.Errorf("failed to find venue: %w", err)
	}
	if venue.OrganizationID != input.Actor.OrganizationID {
		return nil, ErrVenueNotInOrg
	}
	role, err := s.orgRepo.FindRoleByID(input.RoleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotInOrg
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	if role.OrganizationID != input.Actor.OrganizationID {
		return nil, ErrRoleNotInOrg
	}

	shift := &models.RotaShift{
		OrganizationID:  input.Actor.OrganizationID,
		VenueID:         input.VenueID,
		RoleID:          input.RoleID,
		Date:            input.Date,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		HeadcountNeeded: input.HeadcountNeeded,
		Status:          models.ShiftStatusDraft,
	}
	if err := s.shiftRepo.CreateShift(shift); err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: shift.OrganizationID,
		ActorID:        &input.Actor.ID,
		TableName:      "rota_shifts",
		RecordID:       shift.ID,
		Action:         models.AuditActionCreate,
		NewData: models.JSON{
			"venue_id":  shift.VenueID,
			"date":      shift.Date.Format("2006-01-02"),
			"headcount": shift.HeadcountNeeded,
		},
	})

	return shift, nil
}

// UpdateShiftInput carries the editable fields of a draft shift. Nil fields are
// left unchanged.
type UpdateShiftInput struct {
	RoleID          *uint64
	Date            *time.Time
	StartTime       *time.Time
	EndTime         *time.Time
	HeadcountNeeded *int
}

// UpdateShift edits a draft shift. Published shifts are immutable except for
// status transitions, so workers never see silently shifting times.
func (s *ShiftService) UpdateShift(shiftID uint64, input UpdateShiftInput, actor *models.TeamMember) (*models.RotaShift, error) {
	shift, err := s.getShift(shiftID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManagerAt(actor, shift.VenueID); err != nil {
		return nil, err
	}
	if shift.Status != models.ShiftStatusDraft {
		return nil, ErrShiftNotDraft
	}

	old := models.JSON{
		"start_time": shift.StartTime,
		"end_time":   shift.EndTime,
		"headcount":  shift.HeadcountNeeded,
	}
	if input.RoleID != nil {
		shift.RoleID = *input.RoleID
	}
	if input.Date != nil {
		shift.Date = *input.Date
	}
	if input.StartTime != nil {
		shift.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		shift.EndTime = *input.EndTime
	}
	if input.HeadcountNeeded != nil {
		if *input.HeadcountNeeded < 1 {
			return nil, ErrInvalidHeadcount
		}
		shift.HeadcountNeeded = *input.HeadcountNeeded
	}
	if !shift.EndTime.After(shift.StartTime) {
		return nil, ErrInvalidShiftTimes
	}

	if err := s.shiftRepo.UpdateShift(shift); err != nil {
		return nil, fmt.Errorf("failed to update shift: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: shift.OrganizationID,
		ActorID:        &actor.ID,
		TableName:      "rota_shifts",
		RecordID:       shift.ID,
		Action:         models.AuditActionUpdate,
		OldData:        old,
		NewData: models.JSON{
			"start_time": shift.StartTime,
			"end_time":   shift.EndTime,
			"headcount":  shift.HeadcountNeeded,
		},
	})

	return shift, nil
}

// PublishShift makes a draft shift visible for allocation and invites.
func (s *ShiftService) PublishShift(shiftID uint64, actor *models.TeamMember) (*models.RotaShift, error) {
	return s.transition(shiftID, actor, models.ShiftStatusPublished, func(shift *models.RotaShift) error {
		if shift.Status != models.ShiftStatusDraft {
			return ErrShiftNotDraft
		}
		return nil
	})
}

// CancelShift cancels a draft or published shift.
func (s *ShiftService) CancelShift(shiftID uint64, actor *models.TeamMember) (*models.RotaShift, error) {
	return s.transition(shiftID, actor, models.ShiftStatusCancelled, func(shift *models.RotaShift) error {
		if shift.Status != models.ShiftStatusDraft && shift.Status != models.ShiftStatusPublished {
			return ErrShiftNotCancellable
		}
		return nil
	})
}

// CompleteShift closes out a published shift after it has taken place.
func (s *ShiftService) CompleteShift(shiftID uint64, actor *models.TeamMember) (*models.RotaShift, error) {
	return s.transition(shiftID, actor, models.ShiftStatusCompleted, func(shift *models.RotaShift) error {
		if shift.Status != models.ShiftStatusPublished {
			return ErrShiftNotCompletable
		}
		return nil
	})
}

func (s *ShiftService) transition(shiftID uint64, actor *models.TeamMember, to models.ShiftStatus, check func(*models.RotaShift) error) (*models.RotaShift, error) {
	shift, err := s.getShift(shiftID, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManagerAt(actor, shift.VenueID); err != nil {
		return nil, err
	}
	if err := check(shift); err != nil {
		return nil, err
	}

	old := shift.Status
	shift.Status = to
	if err := s.shiftRepo.UpdateShift(shift); err != nil {
		return nil, fmt.Errorf("failed to update shift status: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: shift.OrganizationID,
		ActorID:        &actor.ID,
		TableName:      "rota_shifts",
		RecordID:       shift.ID,
		Action:         models.AuditActionUpdate,
		OldData:        models.JSON{"status": string(old)},
		NewData:        models.JSON{"status": string(to)},
	})

	return shift, nil
}

// GetShift returns an organization's shift with its allocations and invites.
// Shifts of other organizations read as not found.
func (s *ShiftService) GetShift(shiftID, organizationID uint64) (*models.RotaShift, error) {
	shift, err := s.shiftRepo.FindShiftByID(shiftID, "Venue", "Role", "Allocations", "Invites")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to find shift: %w", err)
	}
	if shift.OrganizationID != organizationID {
		return nil, ErrShiftNotFound
	}
	return shift, nil
}

// ListShifts returns shifts matching the filter, with the total row count for
// pagination.
func (s *ShiftService) ListShifts(filter repository.ShiftFilter) ([]models.RotaShift, int64, error) {
	shifts, total, err := s.shiftRepo.ListShifts(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, total, nil
}

func (s *ShiftService) getShift(shiftID, organizationID uint64) (*models.RotaShift, error) {
	shift, err := s.shiftRepo.FindShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to find shift: %w", err)
	}
	if shift.OrganizationID != organizationID {
		return nil, ErrShiftNotFound
	}
	return shift, nil
}

// requireManagerAt gates shift management to members above worker rank whose
// venue scope covers the venue.
func (s *ShiftService) requireManagerAt(actor *models.TeamMember, venueID uint64) error {
	rank, err := hierarchy.Rank(actor.Level)
	if err != nil {
		return err
	}
	workerRank, _ := hierarchy.Rank(models.LevelWorker)
	if rank <= workerRank {
		return ErrNotAuthorized
	}
	return requireScope(actor, []uint64{venueID})
}
