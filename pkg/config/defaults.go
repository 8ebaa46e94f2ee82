package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "lodgebook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaBrokers          = "localhost:9092"
	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultNotifierGroupID       = "notifier"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultPaymentAPIBaseURL = "https://api.chapa.co/v1"

	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultIdempotencyTTL    = 24 * time.Hour

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingLockTTL    = 10 * time.Second
	DefaultLockSweepSchedule = "@every 1m"

	DefaultDefaultCurrency = "USD"

	DefaultAggregatesCacheTTL = 5 * time.Minute

	DefaultPaginationLimit = 100
)
