package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tutorhub/internal/app"
	"tutorhub/internal/config"
	"tutorhub/internal/notify"
	"tutorhub/internal/repository"
	"tutorhub/internal/server"
	"tutorhub/internal/service"
	"tutorhub/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting tutorhub server",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	blobs, err := storage.NewMinioStore(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioPublicURL,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Fatal("Failed to connect to object storage", zap.Error(err))
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pool, logger)
	bookingRepo := repository.NewBookingRepository(pool, logger)
	chatRepo := repository.NewChatRepository(pool, logger)
	messageRepo := repository.NewMessageRepository(pool, logger)

	// Сервисы
	userService := service.NewUserService(userRepo, blobs, cfg.JWTSecret, logger)
	directoryService := service.NewDirectoryService(userRepo, logger)
	bookingService := service.NewBookingService(bookingRepo, userRepo, logger)
	chatService := service.NewChatService(chatRepo, messageRepo, userRepo, logger)

	// Живые обновления: LISTEN/NOTIFY -> хаб -> websocket-фиды
	hub := notify.NewHub(logger)
	listener := notify.NewListener(cfg.GetDBDSN(), hub, logger)
	go listener.Run(ctx)

	// Фоновое завершение заявок с истёкшим периодом занятий
	completer := app.NewCompleter(bookingService, logger)
	completer.Start(ctx)

	srv := server.New(userService, directoryService, bookingService, chatService, hub, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	case sig := <-sigChan:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	completer.Stop()
	cancel()
	hub.Close()

	logger.Info("Server stopped")
}
