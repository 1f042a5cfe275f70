package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tutorhub/internal/model"
	"tutorhub/internal/repository/base"
)

const chatColumns = `id, pair_key, participant_ids, participant_names, participant_kinds,
		last_message, last_message_time, unread_count`

type ChatRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewChatRepository(pool *pgxpool.Pool, logger *zap.Logger) *ChatRepository {
	return &ChatRepository{pool: pool, logger: logger}
}

// Create создаёт чат для пары участников. Уникальный индекс по pair_key
// делает создание идемпотентным: при гонке выигрывает первая вставка.
// Возвращает false, если чат для этой пары уже существует.
func (r *ChatRepository) Create(ctx context.Context, chat *model.Chat) (bool, error) {
	query := `
		INSERT INTO chats (id, pair_key, participant_ids, participant_names, participant_kinds,
			last_message, last_message_time, unread_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pair_key) DO NOTHING
	`

	result, err := r.pool.Exec(
		ctx, query,
		chat.ID,
		chat.PairKey,
		chat.ParticipantIDs,
		chat.ParticipantNames,
		chat.ParticipantKinds,
		chat.LastMessage,
		chat.LastMessageTime,
		chat.UnreadCount,
	)

	if err != nil {
		return false, fmt.Errorf("create chat: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByID получает чат по ID
func (r *ChatRepository) GetByID(ctx context.Context, id string) (*model.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id = $1`

	chat, err := scanChat(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat by id: %w", err)
	}

	return chat, nil
}

// GetByPairKey получает чат по каноническому ключу пары участников
func (r *ChatRepository) GetByPairKey(ctx context.Context, pairKey string) (*model.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE pair_key = $1`

	chat, err := scanChat(r.pool.QueryRow(ctx, query, pairKey))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat by pair key: %w", err)
	}

	return chat, nil
}

// GetByParticipant получает все чаты пользователя, свежие сверху
func (r *ChatRepository) GetByParticipant(ctx context.Context, userID string) ([]*model.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE $1 = ANY(participant_ids) ORDER BY last_message_time DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get chats by participant: %w", err)
	}
	defer rows.Close()

	var chats []*model.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			r.logger.Warn("Skipping malformed chat row", zap.Error(err))
			continue
		}
		chats = append(chats, chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}

	return chats, nil
}

// RecordMessage обновляет сводку последнего сообщения и атомарно
// инкрементирует счётчик непрочитанного у получателя. Инкремент выполняется
// на стороне БД, чтобы параллельные отправки не теряли обновления.
func (r *ChatRepository) RecordMessage(ctx context.Context, chatID, text string, at time.Time, recipientID string) error {
	query := `
		UPDATE chats
		SET last_message = $2,
			last_message_time = $3,
			unread_count = jsonb_set(unread_count, ARRAY[$4::text],
				to_jsonb(COALESCE((unread_count ->> $4)::bigint, 0) + 1))
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, chatID, text, at, recipientID)
	if err != nil {
		return fmt.Errorf("record message: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat not found")
	}

	return nil
}

// ResetUnread обнуляет счётчик непрочитанного для участника
func (r *ChatRepository) ResetUnread(ctx context.Context, chatID, userID string) error {
	query := `
		UPDATE chats
		SET unread_count = jsonb_set(unread_count, ARRAY[$2::text], to_jsonb(0))
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, chatID, userID)
	if err != nil {
		return fmt.Errorf("reset unread: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat not found")
	}

	return nil
}

func scanChat(row pgx.Row) (*model.Chat, error) {
	var chat model.Chat
	err := row.Scan(
		&chat.ID,
		&chat.PairKey,
		&chat.ParticipantIDs,
		&chat.ParticipantNames,
		&chat.ParticipantKinds,
		&chat.LastMessage,
		&chat.LastMessageTime,
		&chat.UnreadCount,
	)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}
