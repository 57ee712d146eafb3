package services

import (
	"testing"
	"time"

	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/stretchr/testify/require"
)

// Entities that belong to another organization must be indistinguishable from
// ones that do not exist, so every cross-org attempt gets the not-found
// sentinel rather than a permission error.

func TestShiftService_OtherOrganizationShiftHidden(t *testing.T) {
	env := setupServiceTestEnv(t)
	orgA, _, _ := env.seedOrganization(t)
	managerA := env.seedMember(t, orgA.ID, "gm-a", models.LevelGM)

	orgB, venueB, roleB := env.seedOrganization(t)
	shiftB := env.seedShift(t, orgB, venueB, roleB, models.ShiftStatusDraft, 1)

	_, err := env.shifts.PublishShift(shiftB.ID, managerA)
	require.ErrorIs(t, err, ErrShiftNotFound)

	_, err = env.shifts.CancelShift(shiftB.ID, managerA)
	require.ErrorIs(t, err, ErrShiftNotFound)

	_, err = env.shifts.UpdateShift(shiftB.ID, UpdateShiftInput{}, managerA)
	require.ErrorIs(t, err, ErrShiftNotFound)

	_, err = env.shifts.GetShift(shiftB.ID, orgA.ID)
	require.ErrorIs(t, err, ErrShiftNotFound)

	// The shift is untouched.
	var unchanged models.RotaShift
	require.NoError(t, env.db.First(&unchanged, shiftB.ID).Error)
	require.Equal(t, models.ShiftStatusDraft, unchanged.Status)
}

func TestAllocationService_OtherOrganizationHidden(t *testing.T) {
	env := setupServiceTestEnv(t)
	orgA, venueA, roleA := env.seedOrganization(t)
	managerA := env.seedMember(t, orgA.ID, "gm-a", models.LevelGM)
	workerA := env.seedMember(t, orgA.ID, "worker-a", models.LevelWorker)
	shiftA := env.seedShift(t, orgA, venueA, roleA, models.ShiftStatusPublished, 1)

	orgB, venueB, roleB := env.seedOrganization(t)
	workerB := env.seedMember(t, orgB.ID, "worker-b", models.LevelWorker)
	shiftB := env.seedShift(t, orgB, venueB, roleB, models.ShiftStatusPublished, 1)

	_, err := env.allocations.Allocate(AllocateInput{ShiftID: shiftB.ID, TeamMemberID: workerA.ID, Actor: managerA})
	require.ErrorIs(t, err, ErrShiftNotFound)

	_, err = env.allocations.Allocate(AllocateInput{ShiftID: shiftA.ID, TeamMemberID: workerB.ID, Actor: managerA})
	require.ErrorIs(t, err, ErrMemberNotFound)

	allocationB, err := env.allocations.Allocate(AllocateInput{ShiftID: shiftB.ID, TeamMemberID: workerB.ID})
	require.NoError(t, err)

	err = env.allocations.Remove(allocationB.ID, managerA)
	require.ErrorIs(t, err, ErrAllocationNotFound)
}

func TestInvitationService_OtherOrganizationHidden(t *testing.T) {
	env := setupServiceTestEnv(t)
	orgA, venueA, roleA := env.seedOrganization(t)
	managerA := env.seedMember(t, orgA.ID, "gm-a", models.LevelGM)
	workerA := env.seedMember(t, orgA.ID, "worker-a", models.LevelWorker)
	shiftA := env.seedShift(t, orgA, venueA, roleA, models.ShiftStatusPublished, 1)

	orgB, venueB, roleB := env.seedOrganization(t)
	workerB := env.seedMember(t, orgB.ID, "worker-b", models.LevelWorker)
	shiftB := env.seedShift(t, orgB, venueB, roleB, models.ShiftStatusPublished, 1)

	_, err := env.invites.InviteToShift(shiftB.ID, []uint64{workerA.ID}, managerA)
	require.ErrorIs(t, err, ErrShiftNotFound)

	_, err = env.invites.InviteToShift(shiftA.ID, []uint64{workerB.ID}, managerA)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestTimekeepingService_OtherOrganizationHidden(t *testing.T) {
	env := setupServiceTestEnv(t)
	orgA, _, _ := env.seedOrganization(t)
	managerA := env.seedMember(t, orgA.ID, "gm-a", models.LevelGM)

	orgB, venueB, roleB := env.seedOrganization(t)
	managerB := env.seedMember(t, orgB.ID, "gm-b", models.LevelGM)
	workerB := env.seedMember(t, orgB.ID, "worker-b", models.LevelWorker)
	shiftB := env.seedShift(t, orgB, venueB, roleB, models.ShiftStatusPublished, 1)
	env.allocateForClocking(t, shiftB.ID, workerB.ID)
	recordB := env.closedRecord(t, shiftB.ID, workerB, 8*time.Hour)

	_, err := env.timekeeping.ReviewRecord(recordB.ID, models.TimekeepingStatusApproved, "", managerA)
	require.ErrorIs(t, err, ErrRecordNotFound)

	_, err = env.timekeeping.RequestEdit(recordB.ID, "check this", managerA)
	require.ErrorIs(t, err, ErrRecordNotFound)

	start := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	_, err = env.timekeeping.GenerateTimesheet(workerB.ID, start, end, managerA)
	require.ErrorIs(t, err, ErrMemberNotFound)

	_, err = env.timekeeping.ReviewRecord(recordB.ID, models.TimekeepingStatusApproved, "", managerB)
	require.NoError(t, err)
	sheetB, err := env.timekeeping.GenerateTimesheet(workerB.ID, start, end, managerB)
	require.NoError(t, err)

	_, err = env.timekeeping.ApproveTimesheet(sheetB.ID, managerA)
	require.ErrorIs(t, err, ErrTimesheetNotFound)

	_, err = env.timekeeping.ListTimesheets(workerB.ID, orgA.ID)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestTeamService_OtherOrganizationHidden(t *testing.T) {
	env := setupServiceTestEnv(t)
	orgA, _, _ := env.seedOrganization(t)
	employerA := env.seedMember(t, orgA.ID, "owner-a", models.LevelEmployer)

	orgB, venueB, roleB := env.seedOrganization(t)
	workerB := env.seedMember(t, orgB.ID, "worker-b", models.LevelWorker)

	_, err := env.team.UpdateHierarchyLevel(workerB.ID, models.LevelShiftLeader, employerA)
	require.ErrorIs(t, err, ErrMemberNotFound)

	err = env.team.AssignRole(workerB.ID, roleB.ID, employerA)
	require.ErrorIs(t, err, ErrMemberNotFound)

	err = env.team.SetVenueScope(workerB.ID, []uint64{venueB.ID}, employerA)
	require.ErrorIs(t, err, ErrMemberNotFound)

	err = env.team.Deactivate(workerB.ID, employerA)
	require.ErrorIs(t, err, ErrMemberNotFound)

	_, err = env.team.ReportingLine(workerB.ID, orgA.ID)
	require.ErrorIs(t, err, ErrMemberNotFound)
}
