package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListTutors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var subjects []string
	if raw := r.URL.Query().Get("subjects"); raw != "" {
		for _, subject := range strings.Split(raw, ",") {
			if subject = strings.TrimSpace(subject); subject != "" {
				subjects = append(subjects, subject)
			}
		}
	}

	tutors, err := s.directory.Search(r.Context(), query, subjects)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tutors)
}

func (s *Server) handleGetTutor(w http.ResponseWriter, r *http.Request) {
	tutor, err := s.directory.GetTutor(r.Context(), chi.URLParam(r, "tutorID"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tutor)
}
