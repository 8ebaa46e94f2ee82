package main

import (
	"context"

	aggregateshandler "lodgebook/internal/aggregates/handler"
	aggregatescache "lodgebook/internal/aggregates/cache"
	aggregatesservice "lodgebook/internal/aggregates/service"
	bookingshandler "lodgebook/internal/bookings/handler"
	"lodgebook/internal/bookings/janitor"
	bookingsrepository "lodgebook/internal/bookings/repository"
	bookingsservice "lodgebook/internal/bookings/service"
	bookingsvalidator "lodgebook/internal/bookings/validator"
	paymentsgateway "lodgebook/internal/payments/gateway"
	paymentshandler "lodgebook/internal/payments/handler"
	paymentsrepository "lodgebook/internal/payments/repository"
	paymentsservice "lodgebook/internal/payments/service"
	propertieshandler "lodgebook/internal/properties/handler"
	propertiesrepository "lodgebook/internal/properties/repository"
	propertiesservice "lodgebook/internal/properties/service"
	propertiesvalidator "lodgebook/internal/properties/validator"
	reviewshandler "lodgebook/internal/reviews/handler"
	reviewsrepository "lodgebook/internal/reviews/repository"
	reviewsservice "lodgebook/internal/reviews/service"
	reviewsvalidator "lodgebook/internal/reviews/validator"
	"lodgebook/pkg/app"
	"lodgebook/pkg/config"
	"lodgebook/pkg/contracts"
	"lodgebook/pkg/events"
)

const ServiceName = "listings"

func main() {
	cfg := config.Load(ServiceName)

	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Listings service")

	handlers, janitorWorker, publisher := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)

	if err := janitorWorker.Start(); err != nil {
		cfg.Log.Fatal("Failed to start lock janitor", "error", err)
	}
	serverApp.OnShutdown(janitorWorker.Stop)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.OnShutdown(cfg.Client.GracefulShutdown)

	serverApp.Run()
}

func initServices(cfg *config.Config) ([]contracts.Handler, *janitor.LockJanitor, events.Publisher) {
	ctx := context.Background()

	bookingRepo := bookingsrepository.NewMongoBookingRepository(cfg)
	lockRepo := bookingsrepository.NewBookingLockRepository(cfg)
	propertyRepo := propertiesrepository.NewMongoPropertyRepository(cfg)
	reviewRepo := reviewsrepository.NewMongoReviewRepository(cfg)
	paymentRepo := paymentsrepository.NewMongoPaymentRepository(cfg)

	ensureIndexes(ctx, cfg,
		bookingRepo.EnsureIndexes,
		propertyRepo.EnsureIndexes,
		reviewRepo.EnsureIndexes,
		paymentRepo.EnsureIndexes,
	)

	publisher := newPublisher(cfg)

	cache := aggregatescache.NewRedisAggregatesCache(cfg)
	aggregatesService := aggregatesservice.NewAggregatesService(reviewRepo, bookingRepo, propertyRepo, cache, cfg)

	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		lockRepo,
		propertyRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		aggregatesService,
		cfg,
	)

	propertyService := propertiesservice.NewPropertyService(
		propertyRepo,
		propertiesvalidator.NewPropertyValidator(cfg.Log),
		bookingService,
		[]propertiesservice.DependentCleaner{bookingRepo, reviewRepo},
		aggregatesService,
		cfg,
	)

	reviewService := reviewsservice.NewReviewService(
		reviewRepo,
		bookingRepo,
		propertyRepo,
		reviewsvalidator.NewReviewValidator(cfg.Log),
		aggregatesService,
		cfg,
	)

	paymentService := paymentsservice.NewPaymentService(
		paymentRepo,
		paymentsgateway.New(cfg),
		bookingService,
		cfg,
	)

	janitorWorker := janitor.NewLockJanitor(lockRepo, cfg)

	cfg.Log.Info("Listings service initialized", "database", cfg.MongoDatabaseName)

	handlers := []contracts.Handler{
		propertieshandler.NewPropertyHandler(propertyService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		reviewshandler.NewReviewHandler(reviewService, cfg.Log),
		aggregateshandler.NewAggregatesHandler(aggregatesService, cfg.Log),
		paymentshandler.NewPaymentHandler(paymentService, cfg.PaymentWebhookSecret, cfg.Log),
	}

	return handlers, janitorWorker, publisher
}

func newPublisher(cfg *config.Config) events.Publisher {
	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.BookingEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}
	return publisher
}

func ensureIndexes(ctx context.Context, cfg *config.Config, ensurers ...func(context.Context) error) {
	for _, ensure := range ensurers {
		if err := ensure(ctx); err != nil {
			cfg.Log.Fatal("Failed to create indexes", "error", err)
		}
	}
}
