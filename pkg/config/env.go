package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvTrustedProxies    = "TRUSTED_PROXIES"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvQueryBackend   = "QUERY_BACKEND"
	EnvQueryWriteMode = "QUERY_WRITE_MODE"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvKafkaBrokers             = "KAFKA_BROKERS"
	EnvKafkaBookingsTopic       = "KAFKA_BOOKINGS_TOPIC"
	EnvKafkaDLQTopic            = "KAFKA_DLQ_TOPIC"
	EnvKafkaProducerMaxAttempts = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaProducerCompression = "KAFKA_PRODUCER_COMPRESSION"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTTTL    = "JWT_TTL"

	EnvMockUserID    = "MOCK_USER_ID"
	EnvMockUserEmail = "MOCK_USER_EMAIL"
	EnvPhoneRegion   = "PHONE_REGION"
	EnvTimeZone      = "TIME_ZONE"
)
