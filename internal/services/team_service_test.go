package services

import (
	"testing"

	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestTeamService_InviteMember(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, venue, _ := env.seedOrganization(t)
	employer := env.seedMember(t, org.ID, "boss", models.LevelEmployer)

	member, err := env.team.InviteMember(InviteMemberInput{
		Actor:    employer,
		Name:     "Alex",
		Email:    "alex@example.com",
		Level:    models.LevelGM,
		VenueIDs: []uint64{venue.ID},
	})
	require.NoError(t, err)
	require.Equal(t, models.MemberStatusPending, member.Status)
	require.Equal(t, models.LevelGM, member.Level)
	require.NotEmpty(t, member.InviteToken)
	require.Nil(t, member.UserID)

	// The invite records who brought the member in.
	var edge models.ManagementChainEdge
	require.NoError(t, env.db.Where("subordinate_id = ?", member.ID).First(&edge).Error)
	require.Equal(t, employer.ID, edge.ManagerID)
}

func TestTeamService_InviteMember_RankRules(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, _, _ := env.seedOrganization(t)
	gm := env.seedMember(t, org.ID, "gm", models.LevelGM)
	worker := env.seedMember(t, org.ID, "worker", models.LevelWorker)

	// A worker invites nobody.
	_, err := env.team.InviteMember(InviteMemberInput{Actor: worker, Name: "X", Email: "x@example.com", Level: models.LevelWorker})
	require.ErrorIs(t, err, ErrNotAuthorized)

	// Same rank is not strictly below.
	_, err = env.team.InviteMember(InviteMemberInput{Actor: gm, Name: "Y", Email: "y@example.com", Level: models.LevelGM})
	require.ErrorIs(t, err, ErrNotAuthorized)

	// Strictly below works.
	_, err = env.team.InviteMember(InviteMemberInput{Actor: gm, Name: "Z", Email: "z@example.com", Level: models.LevelShiftLeader})
	require.NoError(t, err)
}

func TestTeamService_RedeemInvite(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, _, _ := env.seedOrganization(t)
	employer := env.seedMember(t, org.ID, "boss", models.LevelEmployer)

	invited, err := env.team.InviteMember(InviteMemberInput{
		Actor: employer,
		Name:  "Alex",
		Email: "alex@example.com",
		Level: models.LevelWorker,
	})
	require.NoError(t, err)

	user, err := env.auth.Signup(SignupInput{Email: "alex@example.com", Name: "Alex", Password: "supersecret"})
	require.NoError(t, err)

	member, err := env.team.RedeemInvite(invited.InviteToken, user.ID)
	require.NoError(t, err)
	require.Equal(t, models.MemberStatusActive, member.Status)
	require.NotNil(t, member.UserID)
	require.Equal(t, user.ID, *member.UserID)

	// The token is single-use.
	_, err = env.team.RedeemInvite(invited.InviteToken, user.ID)
	require.ErrorIs(t, err, ErrInviteTokenInvalid)
}

func TestTeamService_UpdateHierarchyLevel(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, _, _ := env.seedOrganization(t)
	employer := env.seedMember(t, org.ID, "boss", models.LevelEmployer)
	gm := env.seedMember(t, org.ID, "gm", models.LevelGM)
	worker := env.seedMember(t, org.ID, "worker", models.LevelWorker)

	updated, err := env.team.UpdateHierarchyLevel(worker.ID, models.LevelShiftLeader, employer)
	require.NoError(t, err)
	require.Equal(t, models.LevelShiftLeader, updated.Level)

	// Nobody can assign a level at or above their own.
	_, err = env.team.UpdateHierarchyLevel(worker.ID, models.LevelEmployer, gm)
	require.ErrorIs(t, err, ErrNotAuthorized)
	_, err = env.team.UpdateHierarchyLevel(worker.ID, models.LevelGM, gm)
	require.ErrorIs(t, err, ErrNotAuthorized)

	// An equal-ranked actor cannot touch the target at all.
	_, err = env.team.UpdateHierarchyLevel(gm.ID, models.LevelWorker, gm)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestTeamService_RoleAssignment(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, _, role := env.seedOrganization(t)
	manager := env.seedMember(t, org.ID, "gm", models.LevelGM)
	worker := env.seedMember(t, org.ID, "worker", models.LevelWorker)

	require.NoError(t, env.team.AssignRole(worker.ID, role.ID, manager))

	members, err := env.team.ListMembers(org.ID)
	require.NoError(t, err)
	var found *models.TeamMember
	for i := range members {
		if members[i].ID == worker.ID {
			found = &members[i]
		}
	}
	require.NotNil(t, found)
	require.Len(t, found.Roles, 1)

	require.NoError(t, env.team.UnassignRole(worker.ID, role.ID, manager))
}

func TestTeamService_DeactivateReactivate(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, _, _ := env.seedOrganization(t)
	manager := env.seedMember(t, org.ID, "gm", models.LevelGM)
	worker := env.seedMember(t, org.ID, "worker", models.LevelWorker)

	require.NoError(t, env.team.Deactivate(worker.ID, manager))

	var updated models.TeamMember
	require.NoError(t, env.db.First(&updated, worker.ID).Error)
	require.Equal(t, models.MemberStatusInactive, updated.Status)

	require.ErrorIs(t, env.team.Deactivate(worker.ID, manager), ErrMemberNotActive)

	require.NoError(t, env.team.Reactivate(worker.ID, manager))
	require.ErrorIs(t, env.team.Reactivate(worker.ID, manager), ErrMemberNotInactive)
}

func TestTeamService_ReportingLine(t *testing.T) {
	env := setupServiceTestEnv(t)
	org, _, _ := env.seedOrganization(t)
	employer := env.seedMember(t, org.ID, "boss", models.LevelEmployer)

	gm, err := env.team.InviteMember(InviteMemberInput{Actor: employer, Name: "gm", Email: "gm@example.com", Level: models.LevelGM})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(gm).Update("status", models.MemberStatusActive).Error)

	worker, err := env.team.InviteMember(InviteMemberInput{Actor: gm, Name: "worker", Email: "worker@example.com", Level: models.LevelWorker})
	require.NoError(t, err)

	line, err := env.team.ReportingLine(worker.ID, org.ID)
	require.NoError(t, err)
	require.Len(t, line, 2)
	require.Equal(t, gm.ID, line[0].ID)
	require.Equal(t, employer.ID, line[1].ID)
}
