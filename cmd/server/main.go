package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alumnet/domain/event"
	httpapi "alumnet/infrastructure/http"
	"alumnet/internal"
	"alumnet/moderation"
	"alumnet/observability"
	"alumnet/repositories"
	"alumnet/services"
	"alumnet/workers"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper. Its only responsibility is
	// to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Databases (Badger store + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Moderation gate
	lexicon := moderation.DefaultLexicon()
	if config.LexiconFilepath != "" {
		lexicon, err = moderation.LoadLexiconFile(config.LexiconFilepath)
		if err != nil {
			return exitConfig, fmt.Errorf("lexicon load failed: %w", err)
		}
	}
	classifier, err := moderation.NewLexiconClassifier(lexicon)
	if err != nil {
		return exitConfig, fmt.Errorf("classifier build failed: %w", err)
	}
	gate := moderation.NewGate(classifier, config.ModerationTimeout, logger)

	// 4. Repositories & services
	connectionRepository := repositories.NewConnectionRepository(db, logger)
	messageRepository := repositories.NewMessageRepository(db, logger)
	notificationRepository := repositories.NewNotificationRepository(db, logger)
	messageIndex := repositories.NewMessageIndex(blugeWriter, logger)

	events := make(chan event.DomainEvent, config.BufferSize)

	notificationService := services.NewNotificationService(notificationRepository, logger)
	graphService := services.NewSocialGraphService(connectionRepository, notificationService, events, logger)
	messageService := services.NewMessageService(messageRepository, graphService, gate,
		notificationService, messageIndex, events, logger)

	// 5. Context & signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Supervision: fan-out worker + process monitor
	fanout := workers.NewEventFanout(logger, events).Add(
		workers.NewIndexerSink(messageIndex, logger),
		workers.NewTelemetrySink(logger, config.LatencyThreshold),
	)
	monitor, err := observability.NewMonitor(logger, config.MetricInterval)
	if err != nil {
		return exitRuntime, fmt.Errorf("monitor init failed: %w", err)
	}
	supervisor := workers.NewSupervisor(logger)
	supervisor.Add(fanout, monitor)
	go supervisor.Run(ctx)

	// 7. HTTP server
	router := httpapi.NewRouter(graphService, messageService, notificationService,
		gate, []byte(config.JWTSecret), logger)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, fmt.Errorf("http server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("shutdown failed: %w", err)
	}
	supervisor.Stop()
	return exitOK, nil
}
