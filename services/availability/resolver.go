package availability

import (
	"context"
	"errors"
	"time"

	"slotbook/models"
)

// ErrRuleNotFound means no availability rule governs the requested instant.
// Callers must treat the slot as not bookable, never default-price it.
var ErrRuleNotFound = errors.New("no availability rule covers the requested time")

// Resolve finds the single rule governing the given instant on the host's
// calendar. Specific-date rules are searched first and always win over
// recurring rules covering the same instant. Within each pass the repository
// returns rules ordered by ascending ID, so ties among overlapping rules
// break deterministically on the lowest rule ID.
func (s *DefaultAvailabilityService) Resolve(ctx context.Context, hostID string, at time.Time) (*models.AvailabilityRule, error) {
	host, err := s.Hosts.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	loc := hostLocation(host)

	rules, err := s.Rules.FindByHost(ctx, hostID)
	if err != nil {
		return nil, err
	}

	local := at.In(loc)
	dateStr := local.Format("2006-01-02")
	clock := local.Format("15:04")
	weekday := int(local.Weekday())

	for i := range rules {
		r := &rules[i]
		if !r.Recurring() && r.SpecificDate == dateStr && containsClock(r, clock) {
			return r, nil
		}
	}
	for i := range rules {
		r := &rules[i]
		if r.Recurring() && r.DayOfWeek == weekday && containsClock(r, clock) {
			return r, nil
		}
	}
	return nil, ErrRuleNotFound
}

// containsClock reports whether the rule's half-open clock window
// [startTime, endTime) contains the given "HH:MM" instant.
func containsClock(r *models.AvailabilityRule, clock string) bool {
	return r.StartTime <= clock && clock < r.EndTime
}

// hostLocation loads the host's configured zone, falling back to UTC when
// the name is missing or unknown.
func hostLocation(host *models.Host) *time.Location {
	if host.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(host.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
