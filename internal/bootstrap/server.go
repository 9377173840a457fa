package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/KevinTan25/flightsApp/api"
	"github.com/KevinTan25/flightsApp/config"
	"github.com/KevinTan25/flightsApp/internal/metrics"
	"github.com/KevinTan25/flightsApp/internal/service/cart"
	"github.com/KevinTan25/flightsApp/internal/service/catalog"
	"github.com/KevinTan25/flightsApp/internal/service/checkout"
	"github.com/KevinTan25/flightsApp/internal/service/importer"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	catalogSvc catalog.CatalogUseCase,
	importerSvc importer.ImporterUseCase,
	cartSvc cart.CartUseCase,
	checkoutSvc checkout.CheckoutUseCase,
) error {
	srv := newServer(cfg, catalogSvc, importerSvc, cartSvc, checkoutSvc)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServer(
	cfg *config.Config,
	catalogSvc catalog.CatalogUseCase,
	importerSvc importer.ImporterUseCase,
	cartSvc cart.CartUseCase,
	checkoutSvc checkout.CheckoutUseCase,
) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	m := metrics.NewServerMetrics("api")
	router.Use(gin.Recovery(), requestMetrics(m))

	api.NewFlightHandler(catalogSvc, importerSvc).Register(router.Group("/flights"))
	api.NewAirportHandler(catalogSvc).Register(router.Group("/airports"))
	api.NewCartHandler(cartSvc, checkoutSvc).Register(router.Group("/cart"))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}
}

func requestMetrics(m *metrics.ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}
