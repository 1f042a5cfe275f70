package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type findOrCreateChatRequest struct {
	OtherUserID string `json:"otherUserId"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.chats.ListForUser(r.Context(), requestUserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, chats)
}

func (s *Server) handleFindOrCreateChat(w http.ResponseWriter, r *http.Request) {
	var req findOrCreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	chat, err := s.chats.FindOrCreate(r.Context(), requestUserID(r.Context()), req.OtherUserID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, chat)
}

func (s *Server) handleMarkChatRead(w http.ResponseWriter, r *http.Request) {
	err := s.chats.MarkRead(r.Context(), chi.URLParam(r, "chatID"), requestUserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.chats.Messages(r.Context(), chi.URLParam(r, "chatID"), requestUserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	message, err := s.chats.SendMessage(r.Context(), chi.URLParam(r, "chatID"), requestUserID(r.Context()), req.Text)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, message)
}
