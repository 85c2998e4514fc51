package availability

import (
	"strconv"
	"strings"
	"time"

	"slotbook/models"
)

// GenerateSlots expands a rule into the bookable intervals it yields on the
// given day. day must be midnight in the host's location; the result is a
// pure function of the inputs. The cursor starts at the rule's start clock
// time, emits intervals of the slot duration, and advances by duration plus
// buffer; a slot whose end would pass the window end is not emitted.
// Degenerate rules (bad clock strings, duration <= 0, end <= start) yield
// nil rather than an error or a runaway loop.
func GenerateSlots(rule models.AvailabilityRule, day time.Time) []models.Slot {
	startH, startM, ok := parseClock(rule.StartTime)
	if !ok {
		return nil
	}
	endH, endM, ok := parseClock(rule.EndTime)
	if !ok {
		return nil
	}
	if rule.SlotDuration <= 0 {
		return nil
	}

	cursor := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, day.Location())
	windowEnd := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, day.Location())
	if !cursor.Before(windowEnd) {
		return nil
	}

	duration := time.Duration(rule.SlotDuration) * time.Minute
	buffer := time.Duration(rule.BufferMinutes) * time.Minute
	if buffer < 0 {
		buffer = 0
	}

	var slots []models.Slot
	for cursor.Before(windowEnd) {
		slotEnd := cursor.Add(duration)
		if slotEnd.After(windowEnd) {
			break
		}
		slots = append(slots, models.Slot{
			Start:    cursor,
			End:      slotEnd,
			IsFree:   rule.IsFree,
			Price:    rule.Price,
			PriceUSD: rule.PriceUSD,
		})
		cursor = slotEnd.Add(buffer)
	}
	return slots
}

// parseClock parses "HH:MM". Zero-padded 24h clock strings also compare
// correctly as plain strings, which the resolver relies on.
func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
