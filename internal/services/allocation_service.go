package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/rosterhq/rostering-api/internal/audit"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/notifications"
	"github.com/rosterhq/rostering-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrShiftNotFound  = errors.New("shift not found")
	ErrMemberNotFound = errors.New("team member not found")
	// ErrShiftFull means the headcount was already reached; for invite accepts
	// this is the "someone else got there first" outcome.
	ErrShiftFull          = errors.New("shift headcount already filled")
	ErrAlreadyAllocated   = errors.New("member already allocated to this shift")
	ErrAllocationNotFound = errors.New("allocation not found")
	ErrMemberNotActive    = errors.New("team member is not active")
	// ErrReallocationIncomplete signals that the old worker was removed but the
	// replacement allocation failed; the shift is left short-handed and the
	// caller must surface that, not silently roll back.
	ErrReallocationIncomplete = errors.New("reallocation incomplete: old allocation removed, new allocation failed")
)

// AllocationService is the single writer-side choke point for shift allocations.
// Nothing else inserts allocation rows.
type AllocationService struct {
	shiftRepo  repository.ShiftRepository
	memberRepo repository.TeamMemberRepository
	recorder   *audit.Recorder
	dispatcher notifications.Dispatcher
}

func NewAllocationService(
	shiftRepo repository.ShiftRepository,
	memberRepo repository.TeamMemberRepository,
	recorder *audit.Recorder,
	dispatcher notifications.Dispatcher,
) *AllocationService {
	return &AllocationService{
		shiftRepo:  shiftRepo,
		memberRepo: memberRepo,
		recorder:   recorder,
		dispatcher: dispatcher,
	}
}

// AllocateInput describes one allocation attempt. A nil Actor means the
// allocation is system-initiated (an invite accept); rank and scope checks are
// skipped because the invitee acts on their own record.
type AllocateInput struct {
	ShiftID      uint64
	TeamMemberID uint64
	Actor        *models.TeamMember
}

// Allocate assigns a member to a shift under the headcount and uniqueness
// invariants. The invariant checks and the insert are atomic (repository
// transaction), so two concurrent calls cannot both succeed past headcount.
func (s *AllocationService) Allocate(input AllocateInput) (*models.ShiftAllocation, error) {
	shift, err := s.shiftRepo.FindShiftByID(input.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to find shift: %w", err)
	}
	if err := requireSameOrg(input.Actor, shift.OrganizationID, ErrShiftNotFound); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.FindByID(input.TeamMemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find team member: %w", err)
	}
	if member.OrganizationID != shift.OrganizationID {
		return nil, ErrMemberNotFound
	}
	if member.Status != models.MemberStatusActive {
		return nil, ErrMemberNotActive
	}

	if input.Actor != nil {
		if err := requireOutranks(input.Actor, member.Level, []uint64{shift.VenueID}); err != nil {
			return nil, err
		}
	}

	// The audit entry commits with the insert; a committed allocation is never
	// un-audited. A failed append is still tolerated, per the recorder contract.
	allocation, err := s.shiftRepo.CreateAllocation(shift.ID, member.ID, func(tx *gorm.DB, allocation *models.ShiftAllocation) error {
		if err := s.recorder.RecordTx(tx, audit.Entry{
			OrganizationID: shift.OrganizationID,
			ActorID:        actorID(input.Actor),
			TableName:      "shift_allocations",
			RecordID:       allocation.ID,
			Action:         models.AuditActionShiftAssigned,
			NewData: models.JSON{
				"shift_id":       allocation.ShiftID,
				"team_member_id": allocation.TeamMemberID,
				"status":         string(allocation.Status),
			},
		}); err != nil {
			log.Printf("WARN audit: failed to record %s on shift_allocations/%d: %v",
				models.AuditActionShiftAssigned, allocation.ID, err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrShiftAtCapacity):
			return nil, ErrShiftFull
		case errors.Is(err, repository.ErrDuplicateAllocation):
			return nil, ErrAlreadyAllocated
		default:
			return nil, fmt.Errorf("failed to create allocation: %w", err)
		}
	}

	s.dispatcher.Dispatch(notifications.ShiftAssignedEvent(shift.OrganizationID, member.ID, shift.ID))

	return allocation, nil
}

// Remove cancels an allocation. The row is soft-cancelled, not deleted, so the
// audit trail keeps the full history; the entry captures the prior state.
func (s *AllocationService) Remove(allocationID uint64, actor *models.TeamMember) error {
	allocation, err := s.shiftRepo.FindAllocationByID(allocationID, "Shift", "TeamMember")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAllocationNotFound
		}
		return fmt.Errorf("failed to find allocation: %w", err)
	}
	if err := requireSameOrg(actor, allocation.Shift.OrganizationID, ErrAllocationNotFound); err != nil {
		return err
	}

	if actor != nil {
		if err := requireOutranks(actor, allocation.TeamMember.Level, []uint64{allocation.Shift.VenueID}); err != nil {
			return err
		}
	}

	oldStatus := allocation.Status
	if err := s.shiftRepo.UpdateAllocationStatus(allocation.ID, models.AllocationStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel allocation: %w", err)
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: allocation.Shift.OrganizationID,
		ActorID:        actorID(actor),
		TableName:      "shift_allocations",
		RecordID:       allocation.ID,
		Action:         models.AuditActionShiftUnassigned,
		OldData: models.JSON{
			"status":         string(oldStatus),
			"team_member_id": allocation.TeamMemberID,
		},
		NewData: models.JSON{"status": string(models.AllocationStatusCancelled)},
	})

	return nil
}

// Reallocate swaps one worker for another on a shift. It is remove-then-allocate;
// when the second step fails the removal stands and the failure is surfaced
// explicitly so the caller knows the shift is now short one worker.
func (s *AllocationService) Reallocate(shiftID, oldMemberID, newMemberID uint64, actor *models.TeamMember) (*models.ShiftAllocation, error) {
	existing, err := s.shiftRepo.FindActiveAllocation(shiftID, oldMemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAllocationNotFound
		}
		return nil, fmt.Errorf("failed to find current allocation: %w", err)
	}

	if err := s.Remove(existing.ID, actor); err != nil {
		return nil, err
	}

	allocation, err := s.Allocate(AllocateInput{
		ShiftID:      shiftID,
		TeamMemberID: newMemberID,
		Actor:        actor,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReallocationIncomplete, err)
	}

	return allocation, nil
}

func actorID(actor *models.TeamMember) *uint64 {
	if actor == nil {
		return nil
	}
	return &actor.ID
}
