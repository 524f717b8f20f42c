package config

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"servimarket/pkg/client"
	"servimarket/pkg/logger"
)

type Config struct {
	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	TrustedProxies    []string

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	QueryBackend   string
	QueryWriteMode string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	KafkaBrokers             []string
	KafkaBookingsTopic       string
	KafkaDLQTopic            string
	KafkaProducerMaxAttempts int
	KafkaProducerCompression string

	JWTSecret string
	JWTTTL    time.Duration

	MockUserID    string
	MockUserEmail string
	PhoneRegion   string
	TimeZone      string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),
		TrustedProxies:    getEnvList(EnvTrustedProxies),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		QueryBackend:   getEnvStr(EnvQueryBackend, DefaultQueryBackend),
		QueryWriteMode: getEnvStr(EnvQueryWriteMode, DefaultQueryWriteMode),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		KafkaBrokers:             getEnvList(EnvKafkaBrokers),
		KafkaBookingsTopic:       getEnvStr(EnvKafkaBookingsTopic, DefaultKafkaBookingsTopic),
		KafkaDLQTopic:            getEnvStr(EnvKafkaDLQTopic, ""),
		KafkaProducerMaxAttempts: getEnvNum(EnvKafkaProducerMaxAttempts, DefaultKafkaProducerMaxAttempts),
		KafkaProducerCompression: getEnvStr(EnvKafkaProducerCompression, DefaultKafkaProducerCompression),

		JWTSecret: getEnvStr(EnvJWTSecret, DefaultJWTSecret),
		JWTTTL:    getEnvDuration(EnvJWTTTL, DefaultJWTTTL),

		MockUserID:    getEnvStr(EnvMockUserID, DefaultMockUserID),
		MockUserEmail: getEnvStr(EnvMockUserEmail, DefaultMockUserEmail),
		PhoneRegion:   getEnvStr(EnvPhoneRegion, DefaultPhoneRegion),
		TimeZone:      getEnvStr(EnvTimeZone, DefaultTimeZone),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// Location returns the zone booking dates and times are interpreted in.
// Validate has already checked the name.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TrustedProxyPrefixes returns the proxies whose X-Forwarded-For header is
// honoured. Entries Validate rejected are skipped.
func (cfg *Config) TrustedProxyPrefixes() []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(cfg.TrustedProxies))
	for _, entry := range cfg.TrustedProxies {
		if prefix, err := parseProxy(entry); err == nil {
			prefixes = append(prefixes, prefix)
		}
	}
	return prefixes
}

// parseProxy accepts a bare address or a CIDR.
func parseProxy(entry string) (netip.Prefix, error) {
	if strings.Contains(entry, "/") {
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, err
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func (cfg *Config) KafkaEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.QueryBackend != BackendMemory && cfg.QueryBackend != BackendMongo {
		errors = append(errors, fmt.Sprintf("QueryBackend must be one of [%s, %s], got: %s", BackendMemory, BackendMongo, cfg.QueryBackend))
	}
	if cfg.QueryWriteMode != WriteModeEcho && cfg.QueryWriteMode != WriteModePersist {
		errors = append(errors, fmt.Sprintf("QueryWriteMode must be one of [%s, %s], got: %s", WriteModeEcho, WriteModePersist, cfg.QueryWriteMode))
	}

	if cfg.QueryBackend == BackendMongo {
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	}

	for i, broker := range cfg.KafkaBrokers {
		if broker == "" {
			errors = append(errors, fmt.Sprintf("Kafka broker %d cannot be empty", i))
		}
	}
	if cfg.KafkaEnabled() {
		if cfg.KafkaBookingsTopic == "" {
			errors = append(errors, "KafkaBookingsTopic cannot be empty when brokers are set")
		}
		if cfg.KafkaProducerMaxAttempts <= 0 {
			errors = append(errors, fmt.Sprintf("KafkaProducerMaxAttempts must be positive, got: %d", cfg.KafkaProducerMaxAttempts))
		}
		validCompressions := map[string]bool{"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true}
		if !validCompressions[cfg.KafkaProducerCompression] {
			errors = append(errors, fmt.Sprintf("KafkaProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.KafkaProducerCompression))
		}
	}

	if len(cfg.JWTSecret) < 16 {
		errors = append(errors, "JWTSecret must be at least 16 characters")
	}
	if cfg.JWTTTL <= 0 {
		errors = append(errors, fmt.Sprintf("JWTTTL must be positive, got: %s", cfg.JWTTTL))
	}

	if cfg.MockUserID == "" {
		errors = append(errors, "MockUserID cannot be empty")
	}
	if !strings.Contains(cfg.MockUserEmail, "@") {
		errors = append(errors, fmt.Sprintf("MockUserEmail must be an email address, got: %s", cfg.MockUserEmail))
	}
	if len(cfg.PhoneRegion) != 2 {
		errors = append(errors, fmt.Sprintf("PhoneRegion must be an ISO 3166-1 alpha-2 code, got: %s", cfg.PhoneRegion))
	}

	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("TimeZone must be an IANA time zone name, got: %s", cfg.TimeZone))
	}

	for _, entry := range cfg.TrustedProxies {
		if _, err := parseProxy(entry); err != nil {
			errors = append(errors, fmt.Sprintf("TrustedProxies entry must be an IP address or CIDR, got: %q", entry))
		}
	}

	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"trusted_proxies", cfg.TrustedProxies,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"query_backend", cfg.QueryBackend,
		"query_write_mode", cfg.QueryWriteMode,
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_bookings_topic", cfg.KafkaBookingsTopic,
		"kafka_dlq_topic", cfg.KafkaDLQTopic,
		"jwt_secret_set", cfg.JWTSecret != DefaultJWTSecret,
		"jwt_ttl", cfg.JWTTTL,
		"mock_user_id", cfg.MockUserID,
		"phone_region", cfg.PhoneRegion,
		"time_zone", cfg.TimeZone,
	)
}

func (cfg *Config) GracefulShutdown(ctx context.Context) {
	cfg.Client.GracefulShutdown(ctx, cfg.Log)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int) int {
	return max(0, offset)
}
