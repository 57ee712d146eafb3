package services

import (
	"testing"
	"time"

	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestInvitationService_InviteToShift(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, venue, role := env.seedOrganization(t)
	manager := env.seedMember(t, org.ID, "gm", models.LevelGM)
	first := env.seedMember(t, org.ID, "first", models.LevelWorker)
	second := env.seedMember(t, org.ID, "second", models.LevelWorker)
	shift := env.seedShift(t, org, venue, role, models.ShiftStatusPublished, 1)

	invites, err := env.invites.InviteToShift(shift.ID, []uint64{first.ID, second.ID}, manager)
	require.NoError(t, err)
	require.Len(t, invites, 2)
	for _, invite := range invites {
		require.Equal(t, models.InviteStatusPending, invite.Status)
		require.True(t, invite.ExpiresAt.After(invite.InvitedAt))
	}

	pending := models.InviteStatusPending
	mine, err := env.invites.ListInvitesForMember(first.ID, &pending)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestInvitationService_InviteToShift_WorkerCannotInvite(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, venue, role := env.seedOrganization(t)
	peer := env.seedMember(t, org.ID, "peer", models.LevelWorker)
	worker := env.seedMember(t, org.ID, "worker", models.LevelWorker)
	shift := env.seedShift(t, org, venue, role, models.ShiftStatusPublished, 1)

	_, err := env.invites.InviteToShift(shift.ID, []uint64{worker.ID}, peer)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestInvitationService_InviteToShift_ClosedShift(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, venue, role := env.seedOrganization(t)
	manager := env.seedMember(t, org.ID, "gm", models.LevelGM)
	worker := env.seedMember(t, org.ID, "worker", models.LevelWorker)
	shift := env.seedShift(t, org, venue, role, models.ShiftStatusCancelled, 1)

	_, err := env.invites.InviteToShift(shift.ID, []uint64{worker.ID}, manager)
	require.ErrorIs(t, err, ErrShiftNotOpen)
}

func TestInvitationService_AcceptInvite_FirstAcceptWins(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, venue, role := env.seedOrganization(t)
	manager := env.seedMember(t, org.ID, "gm", models.LevelGM)
	first := env.seedMember(t, org.ID, "first", models.LevelWorker)
	second := env.seedMember(t, org.ID, "second", models.LevelWorker)
	shift := env.seedShift(t, org, venue, role, models.ShiftStatusPublished, 1)

	invites, err := env.invites.InviteToShift(shift.ID, []uint64{first.ID, second.ID}, manager)
	require.NoError(t, err)

	allocation, err := env.invites.AcceptInvite(invites[0].ID, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, allocation.TeamMemberID)

	var accepted models.ShiftInvite
	require.NoError(t, env.db.First(&accepted, invites[0].ID).Error)
	require.Equal(t, models.InviteStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)

	// Filling the last slot retires the other pending invite.
	var other models.ShiftInvite
	require.NoError(t, env.db.First(&other, invites[1].ID).Error)
	require.Equal(t, models.InviteStatusExpired, other.Status)

	_, err = env.invites.AcceptInvite(invites[1].ID, second.ID)
	require.ErrorIs(t, err, ErrInviteNotPending)
}

func TestInvitationService_AcceptInvite_ShiftFilledElsewhere(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, venue, role := env.seedOrganization(t)
	manager := env.seedMember(t, org.ID, "gm", models.LevelGM)
	direct := env.seedMember(t, org.ID, "direct", models.LevelWorker)
	invited := env.seedMember(t, org.ID, "invited", models.LevelWorker)
	shift := env.seedShift(t, org, venue, role, models.ShiftStatusPublished, 1)

	invites, err := env.invites.InviteToShift(shift.ID, []uint64{invited.ID}, manager)
	require.NoError(t, err)

	// A direct allocation takes the only slot before the invitee responds.
	_, err = env.allocations.Allocate(AllocateInput{ShiftID: shift.ID, TeamMemberID: direct.ID, Actor: manager})
	require.NoError(t, err)

	_, err = env.invites.AcceptInvite(invites[0].ID, invited.ID)
	require.ErrorIs(t, err, ErrShiftNoLongerAvailable)

	var expired models.ShiftInvite
	require.NoError(t, env.db.First(&expired, invites[0].ID).Error)
	require.Equal(t, models.InviteStatusExpired, expired.Status)
}

func TestInvitationService_AcceptInvite_OnlyInvitee(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, venue, role := env.seedOrganization(t)
	manager := env.seedMember(t, org.ID, "gm", models.LevelGM)
	invited := env.seedMember(t, org.ID, "invited", models.LevelWorker)
	other := env.seedMember(t, org.ID, "other", models.LevelWorker)
	shift := env.seedShift(t, org, venue, role, models.ShiftStatusPublished, 1)

	invites, err := env.invites.InviteToShift(shift.ID, []uint64{invited.ID}, manager)
	require.NoError(t, err)

	_, err = env.invites.AcceptInvite(invites[0].ID, other.ID)
	require.ErrorIs(t, err, ErrNotInvitee)
}

func TestInvitationService_DeclineInvite(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, venue, role := env.seedOrganization(t)
	manager := env.seedMember(t, org.ID, "gm", models.LevelGM)
	invited := env.seedMember(t, org.ID, "invited", models.LevelWorker)
	shift := env.seedShift(t, org, venue, role, models.ShiftStatusPublished, 1)

	invites, err := env.invites.InviteToShift(shift.ID, []uint64{invited.ID}, manager)
	require.NoError(t, err)

	require.NoError(t, env.invites.DeclineInvite(invites[0].ID, invited.ID))

	var declined models.ShiftInvite
	require.NoError(t, env.db.First(&declined, invites[0].ID).Error)
	require.Equal(t, models.InviteStatusDeclined, declined.Status)

	// A decline is final.
	err = env.invites.DeclineInvite(invites[0].ID, invited.ID)
	require.ErrorIs(t, err, ErrInviteNotPending)
	_, err = env.invites.AcceptInvite(invites[0].ID, invited.ID)
	require.ErrorIs(t, err, ErrInviteNotPending)
}

func TestInvitationService_ExpireStale(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, venue, role := env.seedOrganization(t)
	manager := env.seedMember(t, org.ID, "gm", models.LevelGM)
	invited := env.seedMember(t, org.ID, "invited", models.LevelWorker)
	shift := env.seedShift(t, org, venue, role, models.ShiftStatusPublished, 1)

	invites, err := env.invites.InviteToShift(shift.ID, []uint64{invited.ID}, manager)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, env.db.Model(&models.ShiftInvite{}).
		Where("id = ?", invites[0].ID).
		Update("expires_at", past).Error)

	expired, err := env.invites.ExpireStale(time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, expired)

	// Sweeping again is a no-op.
	expired, err = env.invites.ExpireStale(time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 0, expired)

	_, err = env.invites.AcceptInvite(invites[0].ID, invited.ID)
	require.ErrorIs(t, err, ErrInviteNotPending)
}
