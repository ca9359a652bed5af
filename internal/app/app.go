package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	nethttp "net/http"
	"os"
	"time"

	"skirmish/server/internal/game"
	servernet "skirmish/server/internal/net"
	"skirmish/server/internal/net/ws"
	"skirmish/server/internal/telemetry"
	"skirmish/server/logging"
	loggingsinks "skirmish/server/logging/sinks"
)

// Config carries process-level options; env vars fill the rest.
type Config struct {
	Logger telemetry.Logger
}

// Run wires the engine together and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	clientDir := os.Getenv("CLIENT_DIR")
	if clientDir == "" {
		clientDir = "public"
	}

	logConfig := logging.DefaultConfig()
	if raw := os.Getenv("LOG_MIN_SEVERITY"); raw != "" {
		logConfig.MinimumSeverity = logging.ParseSeverity(raw)
	}
	sinks := []logging.NamedSink{
		{Name: "console", Sink: loggingsinks.NewConsole(os.Stdout)},
	}
	var jsonFile *os.File
	if path := os.Getenv("LOG_JSON_PATH"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open json log: %w", err)
		}
		jsonFile = f
		sinks = append(sinks, logging.NamedSink{
			Name: "json",
			Sink: loggingsinks.NewJSON(f, logConfig.JSON.FlushInterval),
		})
	}

	router := logging.NewRouter(logConfig, logging.SystemClock{}, sinks)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := router.Close(closeCtx); err != nil {
			logger.Printf("failed to close logging router: %v", err)
		}
		if jsonFile != nil {
			jsonFile.Close()
		}
	}()

	registry := game.NewRegistry(game.DefaultConfig(), router)
	gateway := ws.NewGateway(registry, ws.GatewayConfig{
		Logger:    logger,
		Publisher: router,
	})

	handler := servernet.NewHTTPHandler(gateway, registry, servernet.HTTPHandlerConfig{
		ClientDir: clientDir,
		Logger:    logger,
	})

	srv := &nethttp.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on :%s", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}
	gateway.Close()
	registry.Shutdown()
	return nil
}
