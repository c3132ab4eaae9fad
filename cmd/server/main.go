package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"realtime-lab/dispatch"
	"realtime-lab/internal"
	"realtime-lab/ledger"
	"realtime-lab/observability"
	"realtime-lab/repositories"
	"realtime-lab/runtime"
	"realtime-lab/runtime/workers"
	"realtime-lab/services"
	"realtime-lab/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the gate and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories (the durable side of the system)
	notificationRepo := repositories.NewNotificationRepository(db, log)
	membershipRepo := repositories.NewMembershipRepository(db, log)
	unreadRepo := repositories.NewUnreadRepository(db, log)
	userRepo := repositories.NewUserRepository(db, log)

	// 4. Realtime core
	metrics := observability.NewMetrics()
	registry := runtime.NewRegistry(log)
	router := runtime.NewRouter(registry)
	transport := ws.NewTransport()
	dispatcher := dispatch.NewDispatcher(log, router, transport, metrics)
	unreadLedger := ledger.NewLedger(log)
	tracker := workers.NewPresenceTracker(log, registry, dispatcher, metrics, config.PresenceDebounce)

	sup := workers.NewSupervisor(log)
	orchestrator := runtime.NewOrchestrator(log, sup, registry, unreadLedger,
		tracker, unreadRepo, config.SnapshotInterval)

	// 5. Services (caller-side policy over the core)
	notificationService := services.NewNotificationService(log, notificationRepo, userRepo, unreadLedger, dispatcher)
	chatService := services.NewChatService(log, registry, membershipRepo, unreadLedger, dispatcher)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Start the Engine
	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}

	internal.StartDebugServer(log, db, config.DebugPort, metrics.Stats)

	// 8. Websocket gate
	gate := ws.NewGate(log, transport, registry, tracker,
		notificationService, chatService, metrics,
		[]byte(config.TokenSecret), config.ConnectionBufferSize)

	mux := http.NewServeMux()
	mux.Handle("/ws", gate)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket gate", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("gate error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
