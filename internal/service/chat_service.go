package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorhub/internal/model"
)

// ChatStore persists conversations. Implemented by repository.ChatRepository.
type ChatStore interface {
	Create(ctx context.Context, chat *model.Chat) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Chat, error)
	GetByPairKey(ctx context.Context, pairKey string) (*model.Chat, error)
	GetByParticipant(ctx context.Context, userID string) ([]*model.Chat, error)
	RecordMessage(ctx context.Context, chatID, text string, at time.Time, recipientID string) error
	ResetUnread(ctx context.Context, chatID, userID string) error
}

// MessageStore persists chat messages. Implemented by repository.MessageRepository.
type MessageStore interface {
	Create(ctx context.Context, message *model.Message) error
	GetByChatID(ctx context.Context, chatID string) ([]*model.Message, error)
}

type ChatService struct {
	chats    ChatStore
	messages MessageStore
	users    UserGetter
	logger   *zap.Logger
	now      func() time.Time
}

func NewChatService(chats ChatStore, messages MessageStore, users UserGetter, logger *zap.Logger) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

// FindOrCreate находит чат между двумя пользователями или создаёт новый.
// Чаты ключуются каноническим pair key, поэтому результат не зависит от
// порядка аргументов, а повторный вызов идемпотентен.
func (s *ChatService) FindOrCreate(ctx context.Context, userID, otherID string) (*model.Chat, error) {
	if otherID == "" || otherID == userID {
		return nil, fmt.Errorf("%w: chat requires two distinct participants", ErrValidation)
	}

	pairKey := model.ChatPairKey(userID, otherID)

	existing, err := s.chats.GetByPairKey(ctx, pairKey)
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}

	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if other == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, otherID)
	}

	chat := &model.Chat{
		ID:             uuid.NewString(),
		PairKey:        pairKey,
		ParticipantIDs: []string{user.ID, other.ID},
		ParticipantNames: map[string]string{
			user.ID:  user.Name,
			other.ID: other.Name,
		},
		ParticipantKinds: map[string]model.AccountKind{
			user.ID:  user.AccountKind,
			other.ID: other.AccountKind,
		},
		LastMessageTime: s.now(),
		UnreadCount: map[string]int64{
			user.ID:  0,
			other.ID: 0,
		},
	}

	created, err := s.chats.Create(ctx, chat)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	if created {
		s.logger.Info("Chat created",
			zap.String("chat_id", chat.ID),
			zap.String("pair_key", pairKey),
		)
		return chat, nil
	}

	// Вторая сторона создала чат параллельно — берём её версию
	chat, err = s.chats.GetByPairKey(ctx, pairKey)
	if err != nil {
		return nil, fmt.Errorf("find chat after conflict: %w", err)
	}
	if chat == nil {
		return nil, fmt.Errorf("%w: chat for pair %s", ErrNotFound, pairKey)
	}

	return chat, nil
}

// SendMessage добавляет сообщение в чат, обновляет сводку последнего
// сообщения и инкрементирует счётчик непрочитанного у второго участника.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: please enter a message", ErrValidation)
	}

	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return nil, fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
	}
	if !chat.HasParticipant(senderID) {
		return nil, fmt.Errorf("%w: not a participant of this chat", ErrForbidden)
	}

	receiverID := chat.OtherParticipantID(senderID)

	message := &model.Message{
		ID:           uuid.NewString(),
		ChatID:       chat.ID,
		SenderID:     senderID,
		SenderName:   chat.ParticipantNames[senderID],
		ReceiverID:   receiverID,
		ReceiverName: chat.ParticipantNames[receiverID],
		Text:         text,
		Timestamp:    s.now(),
	}

	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if err := s.chats.RecordMessage(ctx, chat.ID, text, message.Timestamp, receiverID); err != nil {
		return nil, fmt.Errorf("record message on chat: %w", err)
	}

	s.logger.Info("Message sent",
		zap.String("chat_id", chat.ID),
		zap.String("sender_id", senderID),
	)

	return message, nil
}

// MarkRead обнуляет счётчик непрочитанного для открывшего чат участника
func (s *ChatService) MarkRead(ctx context.Context, chatID, viewerID string) error {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
	}
	if !chat.HasParticipant(viewerID) {
		return fmt.Errorf("%w: not a participant of this chat", ErrForbidden)
	}

	if err := s.chats.ResetUnread(ctx, chatID, viewerID); err != nil {
		return fmt.Errorf("reset unread: %w", err)
	}

	return nil
}

// ListForUser получает все чаты пользователя, свежие сверху
func (s *ChatService) ListForUser(ctx context.Context, userID string) ([]*model.Chat, error) {
	return s.chats.GetByParticipant(ctx, userID)
}

// Messages получает историю чата для его участника
func (s *ChatService) Messages(ctx context.Context, chatID, viewerID string) ([]*model.Message, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return nil, fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
	}
	if !chat.HasParticipant(viewerID) {
		return nil, fmt.Errorf("%w: not a participant of this chat", ErrForbidden)
	}

	return s.messages.GetByChatID(ctx, chatID)
}
