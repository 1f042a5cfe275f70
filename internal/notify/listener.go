package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Channel is the Postgres NOTIFY channel the schema triggers publish to.
const Channel = "tutorhub_changes"

const reconnectDelay = 3 * time.Second

// Listener держит выделенное соединение с Postgres, слушает NOTIFY и
// транслирует события в хаб. При обрыве соединения переподключается.
type Listener struct {
	dsn    string
	hub    *Hub
	logger *zap.Logger
}

func NewListener(dsn string, hub *Hub, logger *zap.Logger) *Listener {
	return &Listener{
		dsn:    dsn,
		hub:    hub,
		logger: logger,
	}
}

// Run блокируется до отмены контекста
func (l *Listener) Run(ctx context.Context) {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				l.logger.Info("Change listener stopped")
				return
			}
			l.logger.Error("Change listener connection lost", zap.Error(err))
		}

		select {
		case <-time.After(reconnectDelay):
		case <-ctx.Done():
			l.logger.Info("Change listener stopped")
			return
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return err
	}

	l.logger.Info("Listening for database changes", zap.String("channel", Channel))

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var ev Event
		if err := json.Unmarshal([]byte(notification.Payload), &ev); err != nil {
			// Одно кривое уведомление не должно останавливать поток
			l.logger.Warn("Skipping malformed notification", zap.String("payload", notification.Payload))
			continue
		}

		l.hub.Publish(ev)
	}
}
