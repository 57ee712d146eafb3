package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/rosterhq/rostering-api/internal/audit"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/notifications"
	"github.com/rosterhq/rostering-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInviteNotFound   = errors.New("invite not found")
	ErrInviteNotPending = errors.New("invite is no longer pending")
	ErrNotInvitee       = errors.New("invite belongs to another member")
	// ErrShiftNoLongerAvailable is the user-facing outcome of losing the accept
	// race: someone else accepted first and the shift filled up.
	ErrShiftNoLongerAvailable = errors.New("shift is no longer available")
	ErrShiftNotOpen           = errors.New("shift is not open for invites")
	ErrNoCandidates           = errors.New("at least one candidate is required")
)

// InvitationService orchestrates multi-candidate shift invites and resolves the
// first-accept-wins race over open slots.
type InvitationService struct {
	shiftRepo  repository.ShiftRepository
	memberRepo repository.TeamMemberRepository
	allocator  *AllocationService
	recorder   *audit.Recorder
	dispatcher notifications.Dispatcher
	inviteTTL  time.Duration
}

func NewInvitationService(
	shiftRepo repository.ShiftRepository,
	memberRepo repository.TeamMemberRepository,
	allocator *AllocationService,
	recorder *audit.Recorder,
	dispatcher notifications.Dispatcher,
	inviteTTL time.Duration,
) *InvitationService {
	return &InvitationService{
		shiftRepo:  shiftRepo,
		memberRepo: memberRepo,
		allocator:  allocator,
		recorder:   recorder,
		dispatcher: dispatcher,
		inviteTTL:  inviteTTL,
	}
}

// InviteToShift sends pending invites for a shift to several candidates at once.
// Any one of them may accept; the first successful accept wins the slot.
func (s *InvitationService) InviteToShift(shiftID uint64, candidateIDs []uint64, actor *models.TeamMember) ([]models.ShiftInvite, error) {
	if len(candidateIDs) == 0 {
		return nil, ErrNoCandidates
	}

	shift, err := s.shiftRepo.FindShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to find shift: %w", err)
	}
	if err := requireSameOrg(actor, shift.OrganizationID, ErrShiftNotFound); err != nil {
		return nil, err
	}
	if shift.Status == models.ShiftStatusCancelled || shift.Status == models.ShiftStatusCompleted {
		return nil, ErrShiftNotOpen
	}

	now := time.Now()
	invites := make([]models.ShiftInvite, 0, len(candidateIDs))
	for _, candidateID := range candidateIDs {
		member, err := s.memberRepo.FindByID(candidateID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, fmt.Errorf("failed to find candidate %d: %w", candidateID, err)
		}
		if member.OrganizationID != shift.OrganizationID {
			return nil, ErrMemberNotFound
		}
		if member.Status != models.MemberStatusActive {
			return nil, ErrMemberNotActive
		}
		if err := requireOutranks(actor, member.Level, []uint64{shift.VenueID}); err != nil {
			return nil, err
		}
		invites = append(invites, models.ShiftInvite{
			ShiftID:      shift.ID,
			TeamMemberID: member.ID,
			Status:       models.InviteStatusPending,
			InvitedAt:    now,
			ExpiresAt:    now.Add(s.inviteTTL),
		})
	}

	if err := s.shiftRepo.CreateInvites(invites); err != nil {
		return nil, fmt.Errorf("failed to create invites: %w", err)
	}

	for _, invite := range invites {
		s.recorder.Record(audit.Entry{
			OrganizationID: shift.OrganizationID,
			ActorID:        actorID(actor),
			TableName:      "shift_invites",
			RecordID:       invite.ID,
			Action:         models.AuditActionInviteSent,
			NewData: models.JSON{
				"shift_id":       invite.ShiftID,
				"team_member_id": invite.TeamMemberID,
				"expires_at":     invite.ExpiresAt,
			},
		})
		s.dispatcher.Dispatch(notifications.InviteSentEvent(shift.OrganizationID, invite.TeamMemberID, shift.ID))
	}

	return invites, nil
}

// AcceptInvite resolves one candidate's accept. The allocation insert is the
// compare-and-swap: when the shift already filled, the invite expires and the
// caller gets ErrShiftNoLongerAvailable. Exactly one concurrent accept can win.
func (s *InvitationService) AcceptInvite(inviteID, teamMemberID uint64) (*models.ShiftAllocation, error) {
	invite, err := s.shiftRepo.FindInviteByID(inviteID, "Shift")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}
	if invite.TeamMemberID != teamMemberID {
		return nil, ErrNotInvitee
	}
	if invite.Status != models.InviteStatusPending {
		return nil, ErrInviteNotPending
	}

	// System actor: the invitee always acts on their own record, so no rank or
	// scope check applies. The repository transaction is the race guard.
	allocation, err := s.allocator.Allocate(AllocateInput{
		ShiftID:      invite.ShiftID,
		TeamMemberID: teamMemberID,
	})
	if err != nil {
		if errors.Is(err, ErrShiftFull) {
			now := time.Now()
			if _, terr := s.shiftRepo.TransitionInvite(invite.ID, models.InviteStatusExpired, &now); terr != nil {
				return nil, fmt.Errorf("failed to expire invite after lost race: %w", terr)
			}
			return nil, ErrShiftNoLongerAvailable
		}
		return nil, err
	}

	now := time.Now()
	ok, err := s.shiftRepo.TransitionInvite(invite.ID, models.InviteStatusAccepted, &now)
	if err != nil {
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}
	if !ok {
		// The sweep expired this invite between the pending check and the
		// transition. Give the slot back; the member was never told they won.
		if cerr := s.shiftRepo.UpdateAllocationStatus(allocation.ID, models.AllocationStatusCancelled); cerr != nil {
			return nil, fmt.Errorf("failed to release allocation for expired invite: %w", cerr)
		}
		return nil, ErrInviteNotPending
	}

	// When this accept filled the last slot, retire every other pending invite
	// before anyone else can act on one.
	active, err := s.shiftRepo.CountActiveAllocations(invite.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to count allocations: %w", err)
	}
	if active >= int64(invite.Shift.HeadcountNeeded) {
		if _, err := s.shiftRepo.ExpireOtherPending(invite.ShiftID, invite.ID); err != nil {
			return nil, fmt.Errorf("failed to expire remaining invites: %w", err)
		}
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: invite.Shift.OrganizationID,
		ActorID:        &teamMemberID,
		TableName:      "shift_invites",
		RecordID:       invite.ID,
		Action:         models.AuditActionInviteAccepted,
		OldData:        models.JSON{"status": string(models.InviteStatusPending)},
		NewData: models.JSON{
			"status":        string(models.InviteStatusAccepted),
			"allocation_id": allocation.ID,
		},
	})

	s.dispatcher.Dispatch(notifications.InviteAcceptedEvent(invite.Shift.OrganizationID, teamMemberID, invite.ShiftID))

	return allocation, nil
}

// DeclineInvite lets the invitee pass on the shift. No allocation side effect.
func (s *InvitationService) DeclineInvite(inviteID, teamMemberID uint64) error {
	invite, err := s.shiftRepo.FindInviteByID(inviteID, "Shift")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to find invite: %w", err)
	}
	if invite.TeamMemberID != teamMemberID {
		return ErrNotInvitee
	}

	now := time.Now()
	ok, err := s.shiftRepo.TransitionInvite(invite.ID, models.InviteStatusDeclined, &now)
	if err != nil {
		return fmt.Errorf("failed to decline invite: %w", err)
	}
	if !ok {
		return ErrInviteNotPending
	}

	s.recorder.Record(audit.Entry{
		OrganizationID: invite.Shift.OrganizationID,
		ActorID:        &teamMemberID,
		TableName:      "shift_invites",
		RecordID:       invite.ID,
		Action:         models.AuditActionInviteDeclined,
		OldData:        models.JSON{"status": string(models.InviteStatusPending)},
		NewData:        models.JSON{"status": string(models.InviteStatusDeclined)},
	})

	return nil
}

// ListInvitesForMember returns a member's invites, optionally by status.
func (s *InvitationService) ListInvitesForMember(teamMemberID uint64, status *models.InviteStatus) ([]models.ShiftInvite, error) {
	invites, err := s.shiftRepo.ListInvitesForMember(teamMemberID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

// ExpireStale retires pending invites past their deadline. It is idempotent and
// safe to run concurrently with accepts: the underlying update only ever moves
// rows whose status is still pending.
func (s *InvitationService) ExpireStale(now time.Time) (int64, error) {
	expired, err := s.shiftRepo.ExpireStale(now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale invites: %w", err)
	}
	return expired, nil
}
