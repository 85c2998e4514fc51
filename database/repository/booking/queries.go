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

// activeOverlapFilter selects confirmed or live-pending bookings for the host
// whose interval intersects [start, end). Half-open semantics: [a,b) and
// [c,d) overlap iff a < d and c < b, so bookings that merely touch at a
// boundary do not conflict.
func activeOverlapFilter(hostID string, start, end time.Time, ttl time.Duration, now time.Time) bson.M {
	return bson.M{
		"host_id":    hostID,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
		"$or": []bson.M{
			{"status": models.StatusConfirmed},
			{"status": models.StatusPending, "created_at": bson.M{"$gt": now.Add(-ttl)}},
		},
	}
}

func (r *MongoBookingRepo) FindActiveOverlapping(ctx context.Context, hostID string, start, end time.Time, ttl time.Duration) (*models.Booking, error) {
	return r.findActiveOverlapping(ctx, hostID, start, end, ttl)
}

// findActiveOverlapping is shared with the acquisition transaction, which
// passes its session context so the re-check reads inside the transaction.
func (r *MongoBookingRepo) findActiveOverlapping(ctx context.Context, hostID string, start, end time.Time, ttl time.Duration) (*models.Booking, error) {
	filter := activeOverlapFilter(hostID, start, end, ttl, time.Now().UTC())

	var booking models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	return &booking, nil
}

// ExpireStale rewrites abandoned pending bookings to expired. The TTL-aware
// overlap filter already ignores them; this sweep keeps the records honest.
func (r *MongoBookingRepo) ExpireStale(ctx context.Context, ttl time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":     models.StatusPending,
		"created_at": bson.M{"$lte": time.Now().UTC().Add(-ttl)},
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": models.StatusExpired}})
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale bookings: %w", err)
	}
	return res.ModifiedCount, nil
}
