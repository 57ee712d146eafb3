// Package hierarchy implements the rank and venue-scope rules that gate every
// manager-initiated mutation. It is pure: no I/O, no state.
package hierarchy

import (
	"errors"
	"fmt"

	"github.com/rosterhq/rostering-api/internal/models"
)

// ErrInvalidLevel is returned for a level string outside the known hierarchy.
// Correct callers never trigger it.
var ErrInvalidLevel = errors.New("unknown hierarchy level")

var ranks = map[models.HierarchyLevel]int{
	models.LevelEmployer:    4,
	models.LevelGM:          3,
	models.LevelAGM:         2,
	models.LevelShiftLeader: 1,
	models.LevelWorker:      0,
}

// Rank returns the numeric authority of a level, higher meaning more authority.
func Rank(level models.HierarchyLevel) (int, error) {
	r, ok := ranks[level]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
	return r, nil
}

// ParseLevel validates a raw level string.
func ParseLevel(raw string) (models.HierarchyLevel, error) {
	level := models.HierarchyLevel(raw)
	if _, ok := ranks[level]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, raw)
	}
	return level, nil
}

// CanInvite reports whether actor may invite a member at target level. The rule is
// strict: no level may invite its own level or above.
func CanInvite(actor, target models.HierarchyLevel) (bool, error) {
	actorRank, err := Rank(actor)
	if err != nil {
		return false, err
	}
	targetRank, err := Rank(target)
	if err != nil {
		return false, err
	}
	return actorRank > targetRank, nil
}

// CanEditTarget reports whether actor may edit a member at target level: role and
// status changes, hierarchy-level changes, role assignment, deactivation. Same
// strict-rank rule as CanInvite.
func CanEditTarget(actor, target models.HierarchyLevel) (bool, error) {
	return CanInvite(actor, target)
}

// AllowedLevelsToAssign returns every level strictly below the actor's rank. When
// changing someone's level, the new level must also be in this set: an actor cannot
// promote anyone to or above their own rank.
func AllowedLevelsToAssign(actor models.HierarchyLevel) ([]models.HierarchyLevel, error) {
	actorRank, err := Rank(actor)
	if err != nil {
		return nil, err
	}
	ordered := []models.HierarchyLevel{
		models.LevelEmployer,
		models.LevelGM,
		models.LevelAGM,
		models.LevelShiftLeader,
		models.LevelWorker,
	}
	allowed := make([]models.HierarchyLevel, 0, len(ordered))
	for _, level := range ordered {
		if ranks[level] < actorRank {
			allowed = append(allowed, level)
		}
	}
	return allowed, nil
}

// CanAssignLevel reports whether actor may set a member to newLevel.
func CanAssignLevel(actor, newLevel models.HierarchyLevel) (bool, error) {
	actorRank, err := Rank(actor)
	if err != nil {
		return false, err
	}
	newRank, err := Rank(newLevel)
	if err != nil {
		return false, err
	}
	return newRank < actorRank, nil
}

// WithinVenueScope reports whether an actor restricted to actorScope may act on the
// given target venues. An empty actor scope means unrestricted.
func WithinVenueScope(actorScope, targetVenueIDs []uint64) bool {
	if len(actorScope) == 0 {
		return true
	}
	scope := make(map[uint64]struct{}, len(actorScope))
	for _, id := range actorScope {
		scope[id] = struct{}{}
	}
	for _, id := range targetVenueIDs {
		if _, ok := scope[id]; ok {
			return true
		}
	}
	return false
}
