package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"tutorhub/internal/model"
)

type fakeChatStore struct {
	chats map[string]*model.Chat // по pair_key
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{chats: make(map[string]*model.Chat)}
}

func (f *fakeChatStore) Create(_ context.Context, chat *model.Chat) (bool, error) {
	if _, ok := f.chats[chat.PairKey]; ok {
		return false, nil
	}
	copied := *chat
	f.chats[chat.PairKey] = &copied
	return true, nil
}

func (f *fakeChatStore) GetByID(_ context.Context, id string) (*model.Chat, error) {
	for _, chat := range f.chats {
		if chat.ID == id {
			copied := *chat
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeChatStore) GetByPairKey(_ context.Context, pairKey string) (*model.Chat, error) {
	chat, ok := f.chats[pairKey]
	if !ok {
		return nil, nil
	}
	copied := *chat
	return &copied, nil
}

func (f *fakeChatStore) GetByParticipant(_ context.Context, userID string) ([]*model.Chat, error) {
	var out []*model.Chat
	for _, chat := range f.chats {
		if chat.HasParticipant(userID) {
			copied := *chat
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeChatStore) RecordMessage(_ context.Context, chatID, text string, at time.Time, recipientID string) error {
	for _, chat := range f.chats {
		if chat.ID == chatID {
			chat.LastMessage = text
			chat.LastMessageTime = at
			chat.UnreadCount[recipientID]++
			return nil
		}
	}
	return errors.New("chat not found")
}

func (f *fakeChatStore) ResetUnread(_ context.Context, chatID, userID string) error {
	for _, chat := range f.chats {
		if chat.ID == chatID {
			chat.UnreadCount[userID] = 0
			return nil
		}
	}
	return errors.New("chat not found")
}

type fakeMessageStore struct {
	messages []*model.Message
}

func (f *fakeMessageStore) Create(_ context.Context, message *model.Message) error {
	copied := *message
	f.messages = append(f.messages, &copied)
	return nil
}

func (f *fakeMessageStore) GetByChatID(_ context.Context, chatID string) ([]*model.Message, error) {
	var out []*model.Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newChatFixture() (*ChatService, *fakeChatStore, *fakeMessageStore) {
	chats := newFakeChatStore()
	messages := &fakeMessageStore{}
	users := &fakeUserStore{users: map[string]*model.User{
		"s1": {ID: "s1", Name: "Alice", AccountKind: model.AccountKindStudent},
		"t1": {ID: "t1", Name: "Bob", AccountKind: model.AccountKindTutor},
	}}
	return NewChatService(chats, messages, users, zap.NewNop()), chats, messages
}

func TestFindOrCreateIdempotentAndSymmetric(t *testing.T) {
	svc, _, _ := newChatFixture()

	first, err := svc.FindOrCreate(context.Background(), "s1", "t1")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}

	// Повторный вызов и вызов с другой стороны возвращают тот же чат
	second, err := svc.FindOrCreate(context.Background(), "s1", "t1")
	if err != nil {
		t.Fatalf("FindOrCreate again: %v", err)
	}
	mirrored, err := svc.FindOrCreate(context.Background(), "t1", "s1")
	if err != nil {
		t.Fatalf("FindOrCreate mirrored: %v", err)
	}

	if first.ID != second.ID || first.ID != mirrored.ID {
		t.Errorf("expected one chat, got ids %q, %q, %q", first.ID, second.ID, mirrored.ID)
	}

	if first.UnreadCount["s1"] != 0 || first.UnreadCount["t1"] != 0 {
		t.Errorf("new chat must start with zero unread: %v", first.UnreadCount)
	}
	if first.ParticipantNames["s1"] != "Alice" || first.ParticipantNames["t1"] != "Bob" {
		t.Errorf("participant names wrong: %v", first.ParticipantNames)
	}
	if first.ParticipantKinds["t1"] != model.AccountKindTutor {
		t.Errorf("participant kinds wrong: %v", first.ParticipantKinds)
	}
}

func TestFindOrCreateRejectsSelfChat(t *testing.T) {
	svc, _, _ := newChatFixture()

	if _, err := svc.FindOrCreate(context.Background(), "s1", "s1"); !errors.Is(err, ErrValidation) {
		t.Errorf("self chat: err = %v, want ErrValidation", err)
	}
	if _, err := svc.FindOrCreate(context.Background(), "s1", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty other: err = %v, want ErrValidation", err)
	}
	if _, err := svc.FindOrCreate(context.Background(), "s1", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown other: err = %v, want ErrNotFound", err)
	}
}

func TestSendMessageUpdatesChatSummary(t *testing.T) {
	svc, chats, messages := newChatFixture()
	sent := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return sent }

	chat, err := svc.FindOrCreate(context.Background(), "s1", "t1")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}

	message, err := svc.SendMessage(context.Background(), chat.ID, "s1", "  Hello!  ")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if message.Text != "Hello!" {
		t.Errorf("Text = %q, want trimmed %q", message.Text, "Hello!")
	}
	if message.SenderName != "Alice" || message.ReceiverName != "Bob" {
		t.Errorf("names: sender %q, receiver %q", message.SenderName, message.ReceiverName)
	}
	if len(messages.messages) != 1 {
		t.Fatalf("stored %d messages, want 1", len(messages.messages))
	}

	stored := chats.chats[model.ChatPairKey("s1", "t1")]
	if stored.LastMessage != "Hello!" {
		t.Errorf("LastMessage = %q", stored.LastMessage)
	}
	if !stored.LastMessageTime.Equal(sent) {
		t.Errorf("LastMessageTime = %v, want %v", stored.LastMessageTime, sent)
	}

	// Непрочитанное растёт только у получателя
	if stored.UnreadCount["t1"] != 1 {
		t.Errorf("receiver unread = %d, want 1", stored.UnreadCount["t1"])
	}
	if stored.UnreadCount["s1"] != 0 {
		t.Errorf("sender unread = %d, want 0", stored.UnreadCount["s1"])
	}
}

func TestSendMessageValidation(t *testing.T) {
	svc, _, _ := newChatFixture()

	chat, err := svc.FindOrCreate(context.Background(), "s1", "t1")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}

	if _, err := svc.SendMessage(context.Background(), chat.ID, "s1", "   "); !errors.Is(err, ErrValidation) {
		t.Errorf("blank text: err = %v, want ErrValidation", err)
	}
	if _, err := svc.SendMessage(context.Background(), chat.ID, "stranger", "hi"); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-participant: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.SendMessage(context.Background(), "missing", "s1", "hi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing chat: err = %v, want ErrNotFound", err)
	}
}

func TestMarkReadResetsOnlyViewer(t *testing.T) {
	svc, chats, _ := newChatFixture()

	chat, err := svc.FindOrCreate(context.Background(), "s1", "t1")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.SendMessage(context.Background(), chat.ID, "s1", "ping"); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}

	if err := svc.MarkRead(context.Background(), chat.ID, "t1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	stored := chats.chats[model.ChatPairKey("s1", "t1")]
	if stored.UnreadCount["t1"] != 0 {
		t.Errorf("viewer unread = %d, want 0", stored.UnreadCount["t1"])
	}

	// Повторное открытие уже прочитанного чата безвредно
	if err := svc.MarkRead(context.Background(), chat.ID, "t1"); err != nil {
		t.Fatalf("MarkRead twice: %v", err)
	}
	if stored.UnreadCount["t1"] != 0 {
		t.Errorf("unread went negative or changed: %d", stored.UnreadCount["t1"])
	}

	if err := svc.MarkRead(context.Background(), chat.ID, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger: err = %v, want ErrForbidden", err)
	}
}

func TestMessagesRestrictedToParticipants(t *testing.T) {
	svc, _, _ := newChatFixture()

	chat, err := svc.FindOrCreate(context.Background(), "s1", "t1")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), chat.ID, "s1", "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	history, err := svc.Messages(context.Background(), chat.ID, "t1")
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(history) != 1 || history[0].Text != "hello" {
		t.Errorf("unexpected history: %+v", history)
	}

	if _, err := svc.Messages(context.Background(), chat.ID, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger: err = %v, want ErrForbidden", err)
	}
}
