package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"github.com/TomasB/denylist/internal/config"
	"github.com/TomasB/denylist/internal/data"
	"github.com/TomasB/denylist/internal/handler/denylist"
	grpchandler "github.com/TomasB/denylist/internal/handler/grpc"
	"github.com/TomasB/denylist/internal/handler/health"
	"github.com/TomasB/denylist/internal/handler/middleware"
	"github.com/TomasB/denylist/internal/handler/page"
	"github.com/TomasB/denylist/internal/logging"
	"github.com/TomasB/denylist/internal/secret"
)

const lookupPath = "/api/denylist"

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logLevel := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(os.Stdout, logLevel)
	slog.SetDefault(logger)

	slog.Info("service starting", "log_level", logLevel.String())

	// Set Gin mode based on log level
	if logLevel == slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	keys, closeKeys, err := newKeySource(cfg.Mandrill, logger)
	if err != nil {
		slog.Error("failed to load Mandrill API key", "path", cfg.Mandrill.APIKeyFile, "error", err)
		os.Exit(1)
	}
	defer closeKeys()

	httpClient := data.NewHTTPClient(cfg.Mandrill.BaseURL, cfg.Mandrill.Timeout, logger, logLevel == slog.LevelDebug)
	lookup := data.NewMandrillClient(httpClient, keys, logger)
	if err := lookup.Ready(); err != nil {
		slog.Warn("Mandrill API key missing; lookups will fail until it is provided", "error", err)
	}

	router, err := newRouter(logger, lookup)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var grpcSrv *grpc.Server
	if cfg.GRPCPort != "" {
		grpcSrv, err = startGRPC(ctx, cfg.GRPCPort, lookup.Ready)
		if err != nil {
			slog.Error("failed to start gRPC health server", "port", cfg.GRPCPort, "error", err)
			os.Exit(1)
		}
	}

	// Start server in a goroutine
	go func() {
		slog.Info("service started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("service shutting down")
	stop()

	// Graceful shutdown with 30s timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("service stopped")
}

// newKeySource returns the file watcher when a key file is configured and the
// environment value otherwise.
func newKeySource(cfg config.MandrillConfig, logger *slog.Logger) (secret.Source, func(), error) {
	if cfg.APIKeyFile == "" {
		return secret.Static(cfg.APIKey), func() {}, nil
	}
	w, err := secret.NewFileWatcher(cfg.APIKeyFile, logger)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("watching Mandrill API key file", "path", cfg.APIKeyFile)
	return w, func() { w.Close() }, nil
}

func newRouter(logger *slog.Logger, lookup data.RejectLookup) (*gin.Engine, error) {
	tmpl, err := page.Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(tmpl)

	ready := func() error { return nil }
	if r, ok := lookup.(interface{ Ready() error }); ok {
		ready = r.Ready
	}

	// Register health endpoints
	healthHandler := health.NewHandler(health.Check{Name: "mandrill", Fn: ready})
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Register page and API endpoints
	pageHandler := page.NewHandler(lookup, lookupPath)
	router.GET("/", pageHandler.Index)
	router.StaticFS("/static", page.Static())

	lookupHandler := denylist.NewHandler(lookup)
	router.GET(lookupPath, lookupHandler.Lookup)

	return router, nil
}

func startGRPC(ctx context.Context, port string, readyFn func() error) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, err
	}

	healthHandler := grpchandler.NewHandler(readyFn)
	srv := grpc.NewServer()
	healthHandler.Register(srv)
	go healthHandler.Run(ctx, 15*time.Second)

	go func() {
		slog.Info("gRPC health server started", "port", port)
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			slog.Error("gRPC server failed", "error", err)
		}
	}()
	return srv, nil
}
