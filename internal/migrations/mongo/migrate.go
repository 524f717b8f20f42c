package mongo

import (
	"context"
	"fmt"

	"servimarket/internal/migrations/mongo/validators"
	"servimarket/pkg/logger"
	"servimarket/pkg/query"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// idIndex enforces the row id the query client matches on.
func idIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
}

// activeSlotIndex allows one non-cancelled booking per service slot.
// $in inside a partial filter needs MongoDB 6.0 or later.
func activeSlotIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{
			{Key: "service_id", Value: 1},
			{Key: "booking_date", Value: 1},
			{Key: "booking_time", Value: 1},
		},
		Options: options.Index().
			SetName("active_slot_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"status": bson.M{"$in": []string{"pending", "confirmed", "completed"}},
			}),
	}
}

// Collections describes every collection the API reads, keyed by table name.
func Collections() map[string]collectionDef {
	return map[string]collectionDef{
		query.TableProfiles: {
			Indexes: []mongo.IndexModel{
				idIndex(),
				{Keys: bson.D{{Key: "role", Value: 1}}},
				{Keys: bson.D{{Key: "created_at", Value: -1}}},
			},
			Validator: validators.ProfileValidator,
		},
		query.TableProviderDetails: {
			Indexes: []mongo.IndexModel{idIndex()},
		},
		query.TableCategories: {
			Indexes: []mongo.IndexModel{idIndex()},
		},
		query.TableServices: {
			Indexes: []mongo.IndexModel{
				idIndex(),
				{Keys: bson.D{{Key: "category_id", Value: 1}, {Key: "created_at", Value: -1}}},
				{Keys: bson.D{{Key: "provider_id", Value: 1}}},
			},
			Validator: validators.ServiceValidator,
		},
		query.TableBookings: {
			Indexes: []mongo.IndexModel{
				idIndex(),
				{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "booking_date", Value: 1}}},
				{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "booking_date", Value: 1}}},
				activeSlotIndex(),
			},
			Validator: validators.BookingValidator,
		},
		query.TableReviews: {
			Indexes: []mongo.IndexModel{
				idIndex(),
				{Keys: bson.D{{Key: "service_id", Value: 1}, {Key: "created_at", Value: -1}}},
			},
			Validator: validators.ReviewValidator,
		},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
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

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
