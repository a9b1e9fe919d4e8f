// Package app assembles the add-on service runtime from its domain,
// gateway, and storage pieces.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cartside/addons/internal/platform/events"
	"github.com/cartside/addons/internal/platform/metrics"
	"github.com/cartside/addons/internal/platform/timeouts"
	"github.com/cartside/addons/internal/services/addon/api/httpapi"
	"github.com/cartside/addons/internal/services/addon/cart"
	"github.com/cartside/addons/internal/services/addon/domain"
	"github.com/cartside/addons/internal/services/addon/notice"
	addonstorage "github.com/cartside/addons/internal/services/addon/storage"
	addonsqlite "github.com/cartside/addons/internal/services/addon/storage/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls addon service startup and controller behavior.
type RuntimeConfig struct {
	HTTPAddr           string
	HealthPort         int
	StorefrontURL      string
	DBPath             string
	SettleDelay        time.Duration
	DedupeRetention    time.Duration
	RefreshMinInterval time.Duration
	NoticeDuration     time.Duration
	Locale             string
}

const (
	defaultAddonHTTPAddr   = ":8091"
	defaultAddonHealthPort = 8092
	defaultAddonDB         = "data/addon.db"
)

// Run starts the addon runtime: the sqlite attempt store, the in-process
// event bus, the controller subscriptions, the HTTP gateway, and a gRPC
// health server. It blocks until the context ends or a server fails.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.StorefrontURL) == "" {
		return fmt.Errorf("storefront URL is required")
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		cfg.HTTPAddr = defaultAddonHTTPAddr
	}
	if cfg.HealthPort <= 0 {
		cfg.HealthPort = defaultAddonHealthPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultAddonDB
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create addon storage dir: %w", err)
		}
	}

	attemptStore, err := addonsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open addon sqlite store: %w", err)
	}
	defer func() {
		if closeErr := attemptStore.Close(); closeErr != nil {
			log.Printf("close addon sqlite store: %v", closeErr)
		}
	}()

	cartClient, err := cart.NewClient(cfg.StorefrontURL, &http.Client{Timeout: timeouts.CartRequest})
	if err != nil {
		return fmt.Errorf("build cart client: %w", err)
	}

	registry := prometheus.NewRegistry()
	addonMetrics := metrics.MustNew(registry)

	bus := events.NewBus()
	presenter := notice.NewPresenter(cfg.NoticeDuration, notice.NewLocalizer(cfg.Locale), nil, nil, nil)

	gateway, err := httpapi.NewServer(bus, presenter, attemptStore, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err != nil {
		return fmt.Errorf("build gateway: %w", err)
	}

	controller := domain.NewController(domain.Dependencies{
		Cart:       cartClient,
		Selections: gateway,
		Publisher:  bus,
		Notices:    presenter,
		Displays:   []domain.CountDisplay{gateway},
		Attempts:   newAttemptStoreRecorder(attemptStore),
		Metrics:    addonMetrics,
	}, domain.Config{
		SettleDelay:        cfg.SettleDelay,
		DedupeRetention:    cfg.DedupeRetention,
		RefreshMinInterval: cfg.RefreshMinInterval,
	})

	bus.Subscribe(domain.TopicFormSubmit, func(_ context.Context, evt events.Event) {
		submission, ok := evt.Data.(domain.FormSubmission)
		if !ok {
			return
		}
		controller.CaptureSubmit(submission)
	})
	bus.Subscribe(domain.TopicCartUpdate, func(handlerCtx context.Context, evt events.Event) {
		update, ok := evt.Data.(domain.CartUpdate)
		if !ok {
			return
		}
		if _, err := controller.HandleCartUpdate(handlerCtx, update); err != nil {
			log.Printf("handle cart update %s: %v", update.EventID, err)
		}
	})

	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HealthPort))
	if err != nil {
		return fmt.Errorf("listen on health port %d: %w", cfg.HealthPort, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("addon.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	grpcErr := make(chan error, 1)
	go func() {
		grpcErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-grpcErr
	}()

	httpErr := make(chan error, 1)
	log.Printf("addon gateway listening on %s", cfg.HTTPAddr)
	go func() {
		httpErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-httpErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-grpcErr:
		grpcErr <- err
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

type attemptStoreRecorder struct {
	store addonstorage.AttemptStore
}

func newAttemptStoreRecorder(store addonstorage.AttemptStore) *attemptStoreRecorder {
	return &attemptStoreRecorder{store: store}
}

func (r *attemptStoreRecorder) RecordAttempt(ctx context.Context, attempt domain.Attempt) error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.RecordAttempt(ctx, addonstorage.AttemptRecord{
		EventID:    attempt.EventID,
		ProductID:  attempt.ProductID,
		VariantIDs: attempt.VariantIDs,
		Outcome:    string(attempt.Outcome),
		LastError:  attempt.Error,
		CreatedAt:  attempt.CreatedAt,
	})
}
