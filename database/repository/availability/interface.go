package availabilityRepo

import (
	"context"

	"slotbook/models"
)

// AvailabilityRepository reads a host's availability rules. Rules are
// created and edited by the host out-of-band and never mutated by booking
// activity.
type AvailabilityRepository interface {
	// FindByHost returns all rules for the host in a deterministic order
	// (ascending rule ID), so that tie-breaks among overlapping rules are
	// stable across calls.
	FindByHost(ctx context.Context, hostID string) ([]models.AvailabilityRule, error)
	EnsureIndexes() error
}
