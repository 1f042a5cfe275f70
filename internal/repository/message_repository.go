package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tutorhub/internal/model"
)

type MessageRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewMessageRepository(pool *pgxpool.Pool, logger *zap.Logger) *MessageRepository {
	return &MessageRepository{pool: pool, logger: logger}
}

// Create сохраняет новое сообщение. Сообщения неизменяемы после создания.
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	query := `
		INSERT INTO messages (id, chat_id, sender_id, sender_name, receiver_id, receiver_name, text, sent_at, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(
		ctx, query,
		message.ID,
		message.ChatID,
		message.SenderID,
		message.SenderName,
		message.ReceiverID,
		message.ReceiverName,
		message.Text,
		message.Timestamp,
		message.IsRead,
	)

	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

// GetByChatID получает все сообщения чата по возрастанию времени
func (r *MessageRepository) GetByChatID(ctx context.Context, chatID string) ([]*model.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, sender_name, receiver_id, receiver_name, text, sent_at, is_read
		FROM messages
		WHERE chat_id = $1
		ORDER BY sent_at ASC
	`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("get messages by chat: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var message model.Message
		err := rows.Scan(
			&message.ID,
			&message.ChatID,
			&message.SenderID,
			&message.SenderName,
			&message.ReceiverID,
			&message.ReceiverName,
			&message.Text,
			&message.Timestamp,
			&message.IsRead,
		)
		if err != nil {
			r.logger.Warn("Skipping malformed message row", zap.Error(err))
			continue
		}
		messages = append(messages, &message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
