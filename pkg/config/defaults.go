package config

import "time"

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultQueryBackend   = BackendMemory
	DefaultQueryWriteMode = WriteModePersist

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "servimarket"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultKafkaBookingsTopic       = "bookings.events"
	DefaultKafkaProducerMaxAttempts = 3
	DefaultKafkaProducerCompression = "snappy"

	DefaultJWTSecret = "servimarket-dev-secret"
	DefaultJWTTTL    = 1 * time.Hour

	DefaultMockUserID    = "mock-user-id"
	DefaultMockUserEmail = "user@example.com"
	DefaultPhoneRegion   = "AO"
	DefaultTimeZone      = "Africa/Luanda"

	DefaultPaginationLimit = 100
)

const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"

	WriteModeEcho    = "echo"
	WriteModePersist = "persist"
)
