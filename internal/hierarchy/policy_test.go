package hierarchy

import (
	"testing"

	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/stretchr/testify/require"
)

var orderedLevels = []models.HierarchyLevel{
	models.LevelWorker,
	models.LevelShiftLeader,
	models.LevelAGM,
	models.LevelGM,
	models.LevelEmployer,
}

func TestCanInvite_StrictRankMatrix(t *testing.T) {
	for i, actor := range orderedLevels {
		for j, target := range orderedLevels {
			ok, err := CanInvite(actor, target)
			require.NoError(t, err)
			require.Equal(t, i > j, ok, "actor=%s target=%s", actor, target)
		}
	}
}

func TestCanInvite_SameRankAlwaysDenied(t *testing.T) {
	for _, level := range orderedLevels {
		ok, err := CanInvite(level, level)
		require.NoError(t, err)
		require.False(t, ok, "level=%s", level)
	}
}

func TestCanInvite_EmployerInvitesWorker(t *testing.T) {
	ok, err := CanInvite(models.LevelEmployer, models.LevelWorker)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = CanInvite(models.LevelWorker, models.LevelGM)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanEditTarget_MatchesInviteRule(t *testing.T) {
	for _, actor := range orderedLevels {
		for _, target := range orderedLevels {
			invite, err := CanInvite(actor, target)
			require.NoError(t, err)
			edit, err := CanEditTarget(actor, target)
			require.NoError(t, err)
			require.Equal(t, invite, edit)
		}
	}
}

func TestAllowedLevelsToAssign(t *testing.T) {
	allowed, err := AllowedLevelsToAssign(models.LevelGM)
	require.NoError(t, err)
	require.ElementsMatch(t, []models.HierarchyLevel{
		models.LevelAGM,
		models.LevelShiftLeader,
		models.LevelWorker,
	}, allowed)

	// A GM cannot promote anyone to employer, even transiently.
	ok, err := CanAssignLevel(models.LevelGM, models.LevelEmployer)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = CanAssignLevel(models.LevelGM, models.LevelGM)
	require.NoError(t, err)
	require.False(t, ok)

	allowed, err = AllowedLevelsToAssign(models.LevelWorker)
	require.NoError(t, err)
	require.Empty(t, allowed)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("shift_leader")
	require.NoError(t, err)
	require.Equal(t, models.LevelShiftLeader, level)

	_, err = ParseLevel("supervisor")
	require.ErrorIs(t, err, ErrInvalidLevel)
}

func TestRank_UnknownLevel(t *testing.T) {
	_, err := Rank(models.HierarchyLevel("ceo"))
	require.ErrorIs(t, err, ErrInvalidLevel)

	_, err = CanInvite(models.HierarchyLevel("ceo"), models.LevelWorker)
	require.ErrorIs(t, err, ErrInvalidLevel)
}

func TestWithinVenueScope(t *testing.T) {
	// Empty scope means unrestricted.
	require.True(t, WithinVenueScope(nil, []uint64{1, 2}))

	require.True(t, WithinVenueScope([]uint64{2, 3}, []uint64{1, 2}))
	require.False(t, WithinVenueScope([]uint64{4}, []uint64{1, 2}))
	require.False(t, WithinVenueScope([]uint64{4}, nil))
}
