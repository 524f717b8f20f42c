package main

import (
	"context"
	"time"

	mongoMigration "servimarket/internal/migrations/mongo"
	"servimarket/pkg/config"
	"servimarket/pkg/query"
)

const (
	JobName = "mongo-migration"
	timeout = 120 * time.Second
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown(context.Background())

	cfg.Log.Info("Starting Mongo migration job")
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	backend := query.NewMongoBackend(db, nil, cfg.MongoConnTimeout)
	if err := backend.Seed(ctx, query.Fixtures(cfg.MockUserID)); err != nil {
		cfg.Log.Fatal("Seeding failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
