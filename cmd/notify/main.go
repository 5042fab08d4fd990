package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"github.com/PY0226H/aicomm/auth"
	"github.com/PY0226H/aicomm/observability"
	"github.com/PY0226H/aicomm/runtime"
	"github.com/PY0226H/aicomm/runtime/workers"
	"github.com/PY0226H/aicomm/sse"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so that every defer executes before exit.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Verification key, loaded once for the process lifetime
	dk, err := auth.LoadDecodingKey(config.PublicKeyFile)
	if err != nil {
		return err
	}

	// 3. Fan-out core
	metrics := observability.NewMetrics()
	registry := runtime.NewRegistry(config.ChannelCapacity)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Ancillary workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	telemetry := workers.NewTelemetryWorker(log, registry, metrics, config.MetricInterval)
	go sup.Add(telemetry).Run(ctx)

	// 6. Change ingester. It runs outside the supervisor on purpose:
	// losing the notification feed must take the process down so an
	// external supervisor restarts it with a clean slate.
	errChan := make(chan error, 2)
	ingester := workers.NewPgListener(log, config.DatabaseURL, registry, metrics)
	go func() {
		if err := ingester.Run(ctx); err != nil {
			errChan <- fmt.Errorf("ingester error: %w", err)
		}
	}()

	// 7. HTTP server. BaseContext ties every stream's request context to
	// the signal context so open connections observe shutdown.
	server := sse.NewServer(log, dk, registry, metrics, config.KeepaliveInterval)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &http.Server{
		Addr:        address,
		Handler:     server.Router(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		log.Info("Starting notify server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
