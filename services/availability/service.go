package availability

import (
	"context"
	"sort"
	"time"

	availabilityRepo "slotbook/database/repository/availability"
	bookingRepo "slotbook/database/repository/booking"
	hostRepo "slotbook/database/repository/host"
	"slotbook/models"
	"slotbook/utils"

	"go.uber.org/zap"
)

// AvailabilityService resolves rules and lists bookable slots.
type AvailabilityService interface {
	Resolve(ctx context.Context, hostID string, at time.Time) (*models.AvailabilityRule, error)
	DaySlots(ctx context.Context, hostID string, date time.Time) ([]models.Slot, error)
}

// DefaultAvailabilityService is the production implementation.
type DefaultAvailabilityService struct {
	Rules    availabilityRepo.AvailabilityRepository
	Hosts    hostRepo.HostRepository
	Bookings bookingRepo.BookingRepository
	LockTTL  time.Duration
}

// DaySlots lists the still-bookable slots for the host on the given calendar
// date. Both recurring rules matching the weekday and specific-date rules for
// the exact date contribute slots; past slots and slots conflicting with an
// active booking are filtered out.
func (s *DefaultAvailabilityService) DaySlots(ctx context.Context, hostID string, date time.Time) ([]models.Slot, error) {
	logger := utils.GetLogger()

	host, err := s.Hosts.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	loc := hostLocation(host)

	rules, err := s.Rules.FindByHost(ctx, hostID)
	if err != nil {
		return nil, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	dateStr := day.Format("2006-01-02")
	weekday := int(day.Weekday())

	var candidates []models.Slot
	for _, rule := range rules {
		if rule.Recurring() {
			if rule.DayOfWeek != weekday {
				continue
			}
		} else if rule.SpecificDate != dateStr {
			continue
		}
		candidates = append(candidates, GenerateSlots(rule, day)...)
	}

	now := time.Now()
	var available []models.Slot
	for _, slot := range candidates {
		if !slot.Start.After(now) {
			continue
		}
		existing, err := s.Bookings.FindActiveOverlapping(ctx, hostID, slot.Start.UTC(), slot.End.UTC(), s.LockTTL)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			logger.Debug("slot blocked by active booking",
				zap.String("hostID", hostID),
				zap.Time("slotStart", slot.Start),
				zap.String("bookingID", existing.ID))
			continue
		}
		available = append(available, slot)
	}

	sort.Slice(available, func(i, j int) bool {
		return available[i].Start.Before(available[j].Start)
	})
	return available, nil
}
