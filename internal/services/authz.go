package services

import (
	"errors"

	"github.com/rosterhq/rostering-api/internal/hierarchy"
	"github.com/rosterhq/rostering-api/internal/models"
)

var (
	// ErrNotAuthorized covers every rank or venue-scope check failure. It is
	// always surfaced to the caller and never retried.
	ErrNotAuthorized = errors.New("actor is not authorized for this action")
)

// requireOutranks rejects unless the actor's level strictly outranks the target's
// and, for venue-scoped actors, the target venues intersect the actor's scope.
// A nil targetVenueIDs skips the scope check (the action is not venue-bound).
func requireOutranks(actor *models.TeamMember, targetLevel models.HierarchyLevel, targetVenueIDs []uint64) error {
	ok, err := hierarchy.CanEditTarget(actor.Level, targetLevel)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	if targetVenueIDs != nil && !hierarchy.WithinVenueScope(actor.VenueScopeIDs(), targetVenueIDs) {
		return ErrNotAuthorized
	}
	return nil
}

// requireScope rejects a venue-scoped actor acting outside their venues.
func requireScope(actor *models.TeamMember, targetVenueIDs []uint64) error {
	if !hierarchy.WithinVenueScope(actor.VenueScopeIDs(), targetVenueIDs) {
		return ErrNotAuthorized
	}
	return nil
}

// requireSameOrg hides targets outside the actor's organization behind the
// caller-facing not-found sentinel, so cross-tenant probing cannot tell "does
// not exist" from "not yours". A nil actor is the system acting on its own
// records and skips the check.
func requireSameOrg(actor *models.TeamMember, targetOrgID uint64, notFound error) error {
	if actor != nil && actor.OrganizationID != targetOrgID {
		return notFound
	}
	return nil
}
