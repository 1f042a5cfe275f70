package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tutorhub/internal/model"
)

// snapshot is one pushed, complete result set for a live query. Each push
// supersedes the previous one; clients re-render the whole list.
type snapshot struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// handleFeed pushes booking and chat snapshots to the authenticated user
// whenever the database reports a relevant change.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := s.websocketUserID(r)
	if err != nil {
		respondError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go watchClose(conn, cancel)

	pushBookings := func() bool {
		bookings, err := s.bookings.ListForUser(ctx, user)
		if err != nil {
			s.logger.Error("Failed to build bookings snapshot", zap.Error(err))
			return true // транзиентная ошибка, следующее событие пересоберёт
		}
		return conn.WriteJSON(snapshot{Type: "bookings", Data: bookings}) == nil
	}
	pushChats := func() bool {
		chats, err := s.chats.ListForUser(ctx, user.ID)
		if err != nil {
			s.logger.Error("Failed to build chats snapshot", zap.Error(err))
			return true
		}
		return conn.WriteJSON(snapshot{Type: "chats", Data: chats}) == nil
	}

	// Начальные снапшоты сразу после подключения
	if !pushBookings() || !pushChats() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			switch ev.Table {
			case "bookings":
				if !pushBookings() {
					return
				}
			case "chats", "messages":
				if !pushChats() {
					return
				}
			}
		}
	}
}

// handleChatFeed pushes message snapshots for one conversation.
func (s *Server) handleChatFeed(w http.ResponseWriter, r *http.Request) {
	userID, err := s.websocketUserID(r)
	if err != nil {
		respondError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	chatID := chi.URLParam(r, "chatID")

	// Проверка участия до апгрейда соединения
	messages, err := s.chats.Messages(r.Context(), chatID, userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go watchClose(conn, cancel)

	push := func(messages []*model.Message) bool {
		return conn.WriteJSON(snapshot{Type: "messages", Data: messages}) == nil
	}

	if !push(messages) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if ev.Table != "messages" || ev.Ref != chatID {
				continue
			}
			messages, err := s.chats.Messages(ctx, chatID, userID)
			if err != nil {
				s.logger.Error("Failed to build messages snapshot", zap.Error(err))
				continue
			}
			if !push(messages) {
				return
			}
		}
	}
}

// watchClose cancels the feed context as soon as the peer goes away.
func watchClose(conn *websocket.Conn, cancel context.CancelFunc) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			cancel()
			return
		}
	}
}
