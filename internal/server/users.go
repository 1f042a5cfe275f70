package server

import (
	"encoding/json"
	"net/http"

	"tutorhub/internal/service"
)

const maxAvatarSize = 10 << 20 // 10 MiB

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), requestUserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req service.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), requestUserID(r.Context()), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		respondError(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := s.users.UploadAvatar(
		r.Context(),
		requestUserID(r.Context()),
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"profileImageUrl": url})
}
