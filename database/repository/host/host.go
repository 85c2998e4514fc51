package hostRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbook/database"
	"slotbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrHostNotFound is returned when no host matches the given ID.
var ErrHostNotFound = errors.New("host not found")

// HostRepository reads host profiles. Hosts are managed out-of-band; the
// booking core only ever reads them.
type HostRepository interface {
	GetByID(ctx context.Context, id string) (*models.Host, error)
}

// MongoHostRepo is the production HostRepository.
type MongoHostRepo struct {
	coll *mongo.Collection
}

func NewMongoHostRepo() *MongoHostRepo {
	return &MongoHostRepo{coll: database.Collection("hosts")}
}

func (r *MongoHostRepo) GetByID(ctx context.Context, id string) (*models.Host, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var host models.Host
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&host); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrHostNotFound
		}
		return nil, fmt.Errorf("failed to fetch host %s: %w", id, err)
	}
	return &host, nil
}
