package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tutorhub/internal/service"
)

// Completer управляет фоновыми задачами
type Completer struct {
	bookingService *service.BookingService
	logger         *zap.Logger
	stopChan       chan struct{}
}

// NewCompleter создаёт новый планировщик фоновых задач
func NewCompleter(bookingService *service.BookingService, logger *zap.Logger) *Completer {
	return &Completer{
		bookingService: bookingService,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (c *Completer) Start(ctx context.Context) {
	c.logger.Info("Starting background completer")

	go c.runCompletionTask(ctx)
}

// Stop останавливает фоновые задачи
func (c *Completer) Stop() {
	c.logger.Info("Stopping background completer")
	close(c.stopChan)
}

// runCompletionTask периодически завершает заявки с истёкшим периодом занятий
func (c *Completer) runCompletionTask(ctx context.Context) {
	// Первый запуск сразу при старте
	c.completeExpired(ctx)

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.completeExpired(ctx)
		case <-c.stopChan:
			c.logger.Info("Completion task stopped")
			return
		case <-ctx.Done():
			c.logger.Info("Completion task cancelled")
			return
		}
	}
}

func (c *Completer) completeExpired(ctx context.Context) {
	if _, err := c.bookingService.CompleteExpired(ctx); err != nil {
		c.logger.Error("Failed to complete expired bookings", zap.Error(err))
	}
}
