package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tutorhub/internal/model"
	"tutorhub/internal/service"
)

type bookingReasonRequest struct {
	Reason string `json:"reason"`
}

type bookingOfferRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookingInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	booking, err := s.bookings.Create(r.Context(), requestUserID(r.Context()), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), requestUserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	bookings, err := s.bookings.ListForUser(r.Context(), user)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := s.bookings.GetByID(r.Context(), chi.URLParam(r, "bookingID"), requestUserID(r.Context()))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

func (s *Server) handleBookingAccept(w http.ResponseWriter, r *http.Request) {
	s.respondTransition(w)(
		s.bookings.TutorAccept(r.Context(), chi.URLParam(r, "bookingID"), requestUserID(r.Context())))
}

func (s *Server) handleBookingOffer(w http.ResponseWriter, r *http.Request) {
	var req bookingOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.respondTransition(w)(
		s.bookings.TutorMakeOffer(r.Context(), chi.URLParam(r, "bookingID"), requestUserID(r.Context()), req.Notes))
}

func (s *Server) handleBookingReject(w http.ResponseWriter, r *http.Request) {
	req := decodeReason(r)
	s.respondTransition(w)(
		s.bookings.TutorReject(r.Context(), chi.URLParam(r, "bookingID"), requestUserID(r.Context()), req.Reason))
}

func (s *Server) handleBookingAcceptOffer(w http.ResponseWriter, r *http.Request) {
	s.respondTransition(w)(
		s.bookings.StudentAcceptOffer(r.Context(), chi.URLParam(r, "bookingID"), requestUserID(r.Context())))
}

func (s *Server) handleBookingDeclineOffer(w http.ResponseWriter, r *http.Request) {
	req := decodeReason(r)
	s.respondTransition(w)(
		s.bookings.StudentDeclineOffer(r.Context(), chi.URLParam(r, "bookingID"), requestUserID(r.Context()), req.Reason))
}

func (s *Server) handleBookingCancel(w http.ResponseWriter, r *http.Request) {
	s.respondTransition(w)(
		s.bookings.Cancel(r.Context(), chi.URLParam(r, "bookingID"), requestUserID(r.Context())))
}

func (s *Server) handleBookingComplete(w http.ResponseWriter, r *http.Request) {
	s.respondTransition(w)(
		s.bookings.Complete(r.Context(), chi.URLParam(r, "bookingID"), requestUserID(r.Context())))
}

// decodeReason reads an optional {"reason": ...} body. Rejections allow an
// empty reason, so a missing or empty body is fine.
func decodeReason(r *http.Request) bookingReasonRequest {
	var req bookingReasonRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	return req
}

func (s *Server) respondTransition(w http.ResponseWriter) func(*model.Booking, error) {
	return func(booking *model.Booking, err error) {
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, booking)
	}
}
