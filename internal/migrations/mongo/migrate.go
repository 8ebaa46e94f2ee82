package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "lodgebook/internal/bookings/repository"
	"lodgebook/internal/migrations/mongo/validators"
	paymentsrepo "lodgebook/internal/payments/repository"
	propertiesrepo "lodgebook/internal/properties/repository"
	reviewsrepo "lodgebook/internal/reviews/repository"
	"lodgebook/pkg/logger"
)

// RunMigration ensures every collection exists with its schema validator.
// Index creation stays with the repositories' EnsureIndexes so index
// definitions have a single home.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	collections := map[string]bson.M{
		propertiesrepo.CollectionName:   validators.PropertyValidator,
		bookingsrepo.CollectionName:     validators.BookingValidator,
		bookingsrepo.LockCollectionName: validators.BookingLockValidator,
		reviewsrepo.CollectionName:      validators.ReviewValidator,
		paymentsrepo.CollectionName:     validators.PaymentValidator,
	}

	for name, validator := range collections {
		if err := ensureCollection(ctx, db, name, validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
	}

	log.Info("All migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}

	return nil
}
