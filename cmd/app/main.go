package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/journeyverse/backend/config"
	"github.com/journeyverse/backend/internal/auth"
	"github.com/journeyverse/backend/internal/bootstrap"
	"github.com/journeyverse/backend/internal/cache"
	"github.com/journeyverse/backend/internal/gateway/cashfree"
	"github.com/journeyverse/backend/internal/kafka"
	"github.com/journeyverse/backend/internal/provider/amadeus"
	"github.com/journeyverse/backend/internal/repository"
	"github.com/journeyverse/backend/internal/service/booking"
	"github.com/journeyverse/backend/internal/service/payment"
	"github.com/journeyverse/backend/internal/service/search"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	gateway := cashfree.NewClient(cfg.Cashfree)
	provider := amadeus.NewClient(cfg.Amadeus, redisCache)

	bookingService := booking.NewBookingService(
		bookingRepo,
		paymentRepo,
		logger,
		booking.WithNotifications(producer, cfg.Kafka.NotificationsTopic),
	)
	paymentService := payment.NewPaymentService(
		bookingRepo,
		paymentRepo,
		gateway,
		cfg.Booking.DefaultCurrency,
		logger,
		payment.WithNotifications(producer, cfg.Kafka.NotificationsTopic),
		payment.WithLocker(redisCache, time.Duration(cfg.Booking.PaymentLockSeconds)*time.Second),
	)
	searchService := search.NewSearchService(provider, redisCache, logger)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	if err := bootstrap.Run(ctx, cfg, bootstrap.Services{
		Bookings: bookingService,
		Payments: paymentService,
		Search:   searchService,
		Verifier: verifier,
		Logger:   logger,
	}); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
