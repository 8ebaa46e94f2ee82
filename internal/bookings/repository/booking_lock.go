package repository

import (
	"context"
	"fmt"
	"time"

	"lodgebook/pkg/config"
	"lodgebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository provides the advisory per-property locks that
// serialize admission. Create relies on the unique _id: the second writer
// gets a duplicate-key error and loses the race.
type BookingLockRepository interface {
	Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error)
	Delete(ctx context.Context, lockID, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoBookingLockRepository struct {
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Create returns the raw duplicate-key error when the lock is already held;
// the service translates it into a domain conflict.
func (r *mongoBookingLockRepository) Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	lock.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		return nil, err
	}

	return lock, nil
}

// Delete releases a lock only if the caller still owns it. A request that
// stalled past the TTL may find its lock reclaimed and re-acquired by a later
// admission; the token mismatch makes this release a no-op instead of
// deleting the new holder's lock.
func (r *mongoBookingLockRepository) Delete(ctx context.Context, lockID, token string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "token": token})
	return err
}

// DeleteExpired reclaims locks abandoned by crashed requests. Called by the
// sweep job.
func (r *mongoBookingLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired locks: %w", err)
	}
	return result.DeletedCount, nil
}
