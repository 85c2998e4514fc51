package models

import (
	"fmt"
	"time"
)

// lockBucket is the granularity of the slot-lock grid. Any two overlapping
// intervals share at least one bucket (the one containing a common instant),
// so unique inserts on bucket keys give at-most-one-winner acquisition even
// for intervals that overlap without being identical. Slot boundaries are
// minute-granular, so on a one-minute grid touching intervals never share a
// bucket and back-to-back bookings cannot collide.
const lockBucket = time.Minute

// SlotLock is a time-boxed claim on one grid bucket of a host's calendar.
// A booking attempt inserts one lock per bucket its interval covers; a
// duplicate key on any of them means another attempt already claims the time.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	HostID    string    `bson:"host_id" json:"hostId"`
	BookingID string    `bson:"booking_id" json:"bookingId"`
	StartTime time.Time `bson:"start_time" json:"startTime"`
	EndTime   time.Time `bson:"end_time" json:"endTime"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// SlotLockKeys canonicalizes the half-open interval [start, end) into the
// bucket keys it covers for the given host. Returns nil for degenerate
// intervals.
func SlotLockKeys(hostID string, start, end time.Time) []string {
	if !start.Before(end) {
		return nil
	}
	var keys []string
	first := start.Truncate(lockBucket)
	last := end.Add(-time.Nanosecond).Truncate(lockBucket)
	for b := first; !b.After(last); b = b.Add(lockBucket) {
		keys = append(keys, fmt.Sprintf("slot:%s:%d", hostID, b.Unix()))
	}
	return keys
}
