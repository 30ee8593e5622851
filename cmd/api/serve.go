package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/01moynul/farinez-golang/internal/auth"
	"github.com/01moynul/farinez-golang/internal/checkout"
	"github.com/01moynul/farinez-golang/internal/database"
	"github.com/01moynul/farinez-golang/internal/geocode"
	"github.com/01moynul/farinez-golang/internal/handlers"
	"github.com/01moynul/farinez-golang/internal/payment"
	"github.com/01moynul/farinez-golang/internal/routes"
	"github.com/01moynul/farinez-golang/internal/session"
	"github.com/01moynul/farinez-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// outboundClient is the HTTP client for the payment gateway and the geocoder.
func outboundClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// openSessions picks Redis when REDIS_ADDR is set and falls back to process
// memory otherwise.
func openSessions(ctx context.Context) (session.Store, func(), error) {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set: cart sessions are kept in memory and lost on restart")
		return session.NewMemoryStore(cfg.CheckoutGeocoding), func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
	s, err := session.NewRedisStore(ctx, rdb, cfg.CheckoutGeocoding)
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}
	log.WithField("addr", cfg.RedisAddr).Info("Redis session store connected")
	return s, func() { rdb.Close() }, nil
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.LogFormat == "json" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. --- Database ---
	db, err := database.OpenDB(cfg.DSN, log)
	if err != nil {
		return err
	}
	defer db.Close()

	// 2. --- Session Store ---
	sessions, closeSessions, err := openSessions(ctx)
	if err != nil {
		return err
	}
	defer closeSessions()

	// 3. --- Outbound Clients ---
	hc := outboundClient(cfg.HTTPTimeout)
	webhookURL := cfg.APIBaseURL + "/api/webhooks/mercadopago"
	payments := payment.NewClient(cfg.MPAPIURL, cfg.MPAccessToken, cfg.PublicURL, webhookURL, hc)

	var geocoder handlers.Geocoder
	if cfg.CheckoutGeocoding {
		geocoder = geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.Shipping.CountryCode, hc)
	}

	// --- Application Setup ---
	stores := store.NewMySQL(db)
	app := &handlers.Handlers{
		Products: stores.Products,
		Recipes:  stores.Recipes,
		Users:    stores.Users,
		Paquetes: stores.Paquetes,
		Sessions: sessions,
		Guard:    checkout.NewSubmitGuard(),
		Auth:     auth.NewIssuer(cfg.JWTSecret),
		Geocoder: geocoder,
		Payments: payments,
		Config:   cfg,
		Log:      log,
	}

	// --- Router Setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).WithField("geocoding", cfg.CheckoutGeocoding).Info("Starting Farinez API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
