package main

import (
	"context"
	_ "time/tzdata"

	accountshandler "servimarket/internal/accounts/handler"
	accountsrepository "servimarket/internal/accounts/repository"
	accountsservice "servimarket/internal/accounts/service"
	accountsvalidator "servimarket/internal/accounts/validator"
	"servimarket/internal/bookings/events"
	bookingshandler "servimarket/internal/bookings/handler"
	bookingsrepository "servimarket/internal/bookings/repository"
	bookingsservice "servimarket/internal/bookings/service"
	bookingsvalidator "servimarket/internal/bookings/validator"
	cataloghandler "servimarket/internal/catalog/handler"
	catalogrepository "servimarket/internal/catalog/repository"
	catalogservice "servimarket/internal/catalog/service"
	catalogvalidator "servimarket/internal/catalog/validator"
	dashboardhandler "servimarket/internal/dashboard/handler"
	dashboardrepository "servimarket/internal/dashboard/repository"
	dashboardservice "servimarket/internal/dashboard/service"
	"servimarket/internal/health"
	"servimarket/internal/session"
	"servimarket/pkg/app"
	"servimarket/pkg/auth"
	"servimarket/pkg/config"
	"servimarket/pkg/contracts"
	mongotx "servimarket/pkg/db/mongo"
	"servimarket/pkg/kafka"
	kafka_middleware "servimarket/pkg/kafka/middleware"
	"servimarket/pkg/metrics"
	"servimarket/pkg/middleware"
	"servimarket/pkg/query"
	"servimarket/pkg/tick"
)

const ServiceName = "servimarket-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting ServiMarket API")
	build(cfg).Run()
}

// build wires every component and returns the application ready to run.
func build(cfg *config.Config) *app.Application {
	serverApp := app.NewApplication(cfg)

	queue := tick.NewQueue(cfg.Log.Component("tick"))
	serverApp.OnShutdown("tick queue", func(context.Context) error {
		queue.Close()
		return nil
	})

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	client, pinger := initQueryClient(cfg, queue, tokens, serverApp)

	sessions := session.New(client, queue, cfg.Log)
	sessions.Start(context.Background())
	serverApp.OnShutdown("session store", func(context.Context) error {
		sessions.Close()
		return nil
	})

	publisher := initPublisher(cfg, serverApp)
	guard := middleware.RequireSession(sessions, tokens, cfg.Log)

	serverApp.SetApp(
		health.NewHealthHandler(pinger, cfg.Log),
		initHandlers(cfg, client, sessions, publisher, guard)...,
	)
	return serverApp
}

// initQueryClient builds the data client over the configured backend. The
// returned pinger is nil for the in-memory backend.
func initQueryClient(cfg *config.Config, queue *tick.Queue, tokens *auth.Manager, serverApp *app.Application) (*query.Client, health.Pinger) {
	opts := []query.Option{
		query.WithWriteMode(query.WriteMode(cfg.QueryWriteMode)),
		query.WithHook(metrics.QueryHook()),
		query.WithScheduler(queue),
		query.WithTokenIssuer(tokens),
		query.WithIdentity(cfg.MockUserID, cfg.MockUserEmail),
		query.WithLogger(cfg.Log),
	}

	var pinger health.Pinger
	if cfg.QueryBackend == config.BackendMongo {
		cfg.SetMongo()
		serverApp.OnShutdown("mongo", func(ctx context.Context) error {
			cfg.GracefulShutdown(ctx)
			return nil
		})

		backend := query.NewMongoBackend(
			cfg.Client.Mongo.Database(cfg.MongoDatabaseName),
			mongotx.NewTransactionManager(cfg.Client.Mongo),
			cfg.MongoConnTimeout,
		)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
		defer cancel()
		if err := backend.Seed(ctx, query.Fixtures(cfg.MockUserID)); err != nil {
			cfg.Log.Fatal("Failed to seed MongoDB", "error", err)
		}

		opts = append(opts, query.WithBackend(backend))
		pinger = backend
	}

	cfg.Log.Info("Query client initialized", "backend", cfg.QueryBackend, "write_mode", cfg.QueryWriteMode)
	return query.New(opts...), pinger
}

// initPublisher returns nil when no brokers are configured, in which case
// booking events are counted as skipped.
func initPublisher(cfg *config.Config, serverApp *app.Application) kafka.Publisher {
	if !cfg.KafkaEnabled() {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return nil
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaBookingsTopic,
		DLQTopic:    cfg.KafkaDLQTopic,
		MaxAttempts: cfg.KafkaProducerMaxAttempts,
		Compression: cfg.KafkaProducerCompression,
	}, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())

	serverApp.OnShutdown("kafka producer", func(context.Context) error {
		return producer.Close()
	})

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.KafkaBookingsTopic, "brokers", cfg.KafkaBrokers)
	return producer
}

func initHandlers(
	cfg *config.Config,
	client *query.Client,
	sessions *session.Store,
	publisher kafka.Publisher,
	guard middleware.Guard,
) []contracts.Handler {
	accountService := accountsservice.NewAccountService(
		client.Auth(),
		accountsrepository.NewProfileRepository(client),
		sessions,
		accountsvalidator.NewAccountValidator(cfg.Log),
		cfg.PhoneRegion,
		cfg.Log,
	)

	catalogService := catalogservice.NewCatalogService(
		catalogrepository.NewCatalogRepository(client),
		sessions,
		catalogvalidator.NewCatalogValidator(),
		cfg.Log,
	)

	bookingService := bookingsservice.NewBookingService(
		bookingsrepository.NewBookingRepository(client),
		sessions,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		events.NewPublisher(publisher, cfg.Log.Component("booking-events")),
		cfg.Location(),
		cfg.Log,
	)

	dashboardService := dashboardservice.NewDashboardService(
		dashboardrepository.NewDashboardRepository(client),
		sessions,
		cfg.Log,
	)

	cfg.Log.Info("Services initialized")
	return []contracts.Handler{
		accountshandler.NewAccountHandler(accountService, guard, cfg.Log),
		cataloghandler.NewCatalogHandler(catalogService, guard, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, guard, cfg.Log),
		dashboardhandler.NewDashboardHandler(dashboardService, guard, cfg.Log),
	}
}
