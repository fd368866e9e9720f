package main

import (
	"chat-broadcaster/auth"
	grpcserver "chat-broadcaster/infrastructure/grpc/server"
	httpserver "chat-broadcaster/infrastructure/http/server"
	"chat-broadcaster/observability"
	"chat-broadcaster/repositories"
	"chat-broadcaster/runtime"
	"chat-broadcaster/runtime/workers"
	"chat-broadcaster/services"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Every defer (database, sequences) runs before the process exits.
func run() error {
	// 1. Configuration & Logger
	// A missing .env is fine: the environment may be set by the container
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	clock := clockwork.NewRealClock()

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	messageRepository, err := repositories.NewMessageRepository(db, clock, log)
	if err != nil {
		return err
	}
	defer func() { _ = messageRepository.Close() }()

	userRepository, err := repositories.NewUserRepository(db)
	if err != nil {
		return err
	}
	defer func() { _ = userRepository.Close() }()

	// 3. Setup Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(log, sup, messageRepository, clock, runtime.Config{
		CommandBufferSize: config.CommandBufferSize,
		SinkTimeout:       config.SinkTimeout,
		StoreTimeout:      config.StoreTimeout,
		HeartbeatInterval: config.HeartbeatInterval,
	})

	monitoring, err := observability.NewMonitoringManager(log, orchestrator, clock, config.HealthTimeout)
	if err != nil {
		return err
	}
	healthServer := grpcserver.NewHealthServer(log)
	registry := observability.NewRegistry()
	registry.MustRegister(observability.NewRuntimeCollector(log, orchestrator, config.HealthTimeout))

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the Engine
	// Not bound to ctx: it must outlive the HTTP shutdown and is stopped last
	if err = orchestrator.Start(context.Background()); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}
	healthWorker := workers.NewHealthMonitoringWorker(log, clock, monitoring, healthServer, config.HealthInterval)
	healthSupervisor := workers.NewSupervisor(log, config.RestartInterval).Add(healthWorker)
	go healthSupervisor.Run(ctx)

	// 6. Servers
	issuer := auth.NewIssuer(config.SessionSecret, config.SessionTTL, clock)
	chatService := services.NewChatService(orchestrator.Coordinator(), messageRepository, config.MaxMessageLength)
	authService := services.NewAuthService(log, userRepository, issuer)
	api := httpserver.NewServer(log, chatService, authService, issuer, monitoring, httpserver.Config{
		SinkCapacity:     config.SinkCapacity,
		MaxMessageLength: config.MaxMessageLength,
		AllowedOrigin:    config.AllowedOrigin,
		Metrics:          observability.Handler(registry),
	})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpSrv := &http.Server{
		Addr:              address,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams stay open until the client leaves or the server stops
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	listener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	grpcSrv := grpc.NewServer()
	healthServer.Register(grpcSrv)

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 2)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		log.Info("Starting gRPC health server", "address", grpcAddress)
		if err := grpcSrv.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		log.Error("Server failed, shutting down", "error", err)
		orchestrator.Stop()
		return err
	}

	// 8. Final Cleanup
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	grpcSrv.GracefulStop()
	// Drains the coordinator mailbox before the store is closed by the defers above
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
