package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/journeyverse/backend/api"
	"github.com/journeyverse/backend/config"
	"github.com/journeyverse/backend/internal/auth"
	"github.com/journeyverse/backend/internal/service/booking"
	"github.com/journeyverse/backend/internal/service/payment"
	"github.com/journeyverse/backend/internal/service/search"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Services bundles everything the HTTP layer is built from.
type Services struct {
	Bookings booking.BookingUseCase
	Payments payment.PaymentUseCase
	Search   search.SearchUseCase
	Verifier *auth.Verifier
	Logger   *zap.Logger
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, svc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, svc Services) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLogger(svc.Logger))

	bookingHandler := api.NewBookingHandler(svc.Bookings)
	paymentHandler := api.NewPaymentHandler(
		svc.Payments,
		cfg.Cashfree.WebhookSecret,
		time.Duration(cfg.Booking.WebhookMaxSkewSeconds)*time.Second,
		svc.Logger,
	)
	searchHandler := api.NewSearchHandler(svc.Search)

	v1 := router.Group("/api/v1")

	authed := v1.Group("", api.AuthRequired(svc.Verifier))
	bookingHandler.Register(authed.Group("/bookings"))
	paymentHandler.Register(authed.Group("/payments"))

	// The gateway posts webhooks and clients search inventory without a
	// user session.
	paymentHandler.RegisterWebhook(v1.Group("/payments"))
	searchHandler.Register(v1.Group("/search"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFile("/swagger/openapi.json", filepath.Join(cfg.HTTP.SwaggerDir, "openapi.json"))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.json"),
		)))
	}

	return router
}
