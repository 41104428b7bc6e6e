package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/Domenick1991/flightbooking/internal/service/users"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, tokens *auth.TokenManager,
	userSvc users.UserUseCase, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) error {

	router := newRouter(cfg, tokens, userSvc, flightSvc, bookingSvc)
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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

func newRouter(cfg *config.Config, tokens *auth.TokenManager,
	userSvc users.UserUseCase, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) *gin.Engine {

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), api.RequestID())

	root := router.Group("/api")
	api.NewUserHandler(userSvc, tokens).Register(root.Group("/users"))
	api.NewFlightHandler(flightSvc, tokens).Register(root.Group("/flights"))
	api.NewBookingHandler(bookingSvc, tokens).Register(root.Group("/bookings"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.json"),
		)))
	}

	return router
}
