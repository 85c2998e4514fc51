package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbook/database"
	"slotbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo is the production BookingRepository.
type MongoBookingRepo struct {
	coll     *mongo.Collection
	lockColl *mongo.Collection
}

func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{
		coll:     database.Collection("bookings"),
		lockColl: database.Collection("slot_locks"),
	}
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoBookingRepo) GetByTxnID(ctx context.Context, txnID string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"txn_id": txnID})
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	return &booking, nil
}

// ConfirmFromPending is a compare-and-swap on the status field: the update
// only matches while the booking is still pending, so a late or duplicated
// callback can never overwrite a terminal state.
func (r *MongoBookingRepo) ConfirmFromPending(ctx context.Context, id, paymentID string) (*models.Booking, error) {
	set := bson.M{"status": models.StatusConfirmed}
	if paymentID != "" {
		set["payment_id"] = paymentID
	}
	return r.transitionFromPending(ctx, id, set)
}

// FailFromPending transitions pending → failed under the same guard.
func (r *MongoBookingRepo) FailFromPending(ctx context.Context, id string) (*models.Booking, error) {
	return r.transitionFromPending(ctx, id, bson.M{"status": models.StatusFailed})
}

// transitionFromPending guards on status alone: a callback arriving after
// the pending TTL can still settle the booking until the sweeper expires it.
func (r *MongoBookingRepo) transitionFromPending(ctx context.Context, id string, set bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusPending}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotPending
		}
		return nil, fmt.Errorf("failed to transition booking %s: %w", id, err)
	}
	return &updated, nil
}

func (r *MongoBookingRepo) SetEnrichment(ctx context.Context, id, meetingLink, reference string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{}
	if meetingLink != "" {
		set["meeting_link"] = meetingLink
	}
	if reference != "" {
		set["reference"] = reference
	}
	if len(set) == 0 {
		return nil
	}

	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "status": models.StatusConfirmed}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to set enrichment on booking %s: %w", id, err)
	}
	return nil
}
