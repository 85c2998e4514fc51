package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AcquireSlot claims booking's interval with at-most-one-winner semantics.
//
// Step 1 inserts one lock document per grid bucket the interval covers; the
// unique _id makes this the atomic test-and-set, so two racing acquisitions
// for overlapping intervals collide here no matter how they interleave.
// Step 2 re-checks the TTL-aware overlap query and inserts the pending
// booking inside a transaction, catching intervals whose locks have already
// expired but whose bookings are still active (confirmed bookings outlive
// their locks). Any failure unwinds the locks, so losers leave no state.
func (r *MongoBookingRepo) AcquireSlot(ctx context.Context, booking *models.Booking, ttl time.Duration) error {
	now := time.Now().UTC()
	keys := models.SlotLockKeys(booking.HostID, booking.StartTime, booking.EndTime)
	if len(keys) == 0 {
		return fmt.Errorf("degenerate interval [%s, %s): %w", booking.StartTime, booking.EndTime, ErrSlotTaken)
	}

	locks := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		locks = append(locks, models.SlotLock{
			ID:        key,
			HostID:    booking.HostID,
			BookingID: booking.ID,
			StartTime: booking.StartTime,
			EndTime:   booking.EndTime,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		})
	}

	if _, err := r.lockColl.InsertMany(ctx, locks); err != nil {
		// Ordered insert stops at the first collision; earlier inserts from
		// this attempt must be unwound before reporting the loss.
		r.unwindLocks(booking.ID)
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to insert slot locks: %w", err)
	}

	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		r.unwindLocks(booking.ID)
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		existing, err := r.findActiveOverlapping(sc, booking.HostID, booking.StartTime, booking.EndTime, ttl)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrSlotTaken
		}
		if _, err := r.coll.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		r.unwindLocks(booking.ID)
		if errors.Is(err, ErrSlotTaken) {
			return ErrSlotTaken
		}
		return fmt.Errorf("slot acquisition failed: %w", err)
	}

	return nil
}

// ReleaseSlot drops all lock buckets held by the given booking.
func (r *MongoBookingRepo) ReleaseSlot(ctx context.Context, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.lockColl.DeleteMany(ctx, bson.M{"booking_id": bookingID}); err != nil {
		return fmt.Errorf("failed to release slot locks for booking %s: %w", bookingID, err)
	}
	return nil
}

// unwindLocks is best-effort cleanup after a failed acquisition. Leftover
// locks would self-destruct via the TTL index anyway.
func (r *MongoBookingRepo) unwindLocks(bookingID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = r.lockColl.DeleteMany(ctx, bson.M{"booking_id": bookingID})
}
