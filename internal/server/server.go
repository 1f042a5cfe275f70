package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tutorhub/internal/notify"
	"tutorhub/internal/service"
)

type Server struct {
	router    chi.Router
	logger    *zap.Logger
	users     *service.UserService
	directory *service.DirectoryService
	bookings  *service.BookingService
	chats     *service.ChatService
	hub       *notify.Hub
	upgrader  websocket.Upgrader
}

func New(
	users *service.UserService,
	directory *service.DirectoryService,
	bookings *service.BookingService,
	chats *service.ChatService,
	hub *notify.Hub,
	logger *zap.Logger,
) *Server {
	s := &Server{
		logger:    logger,
		users:     users,
		directory: directory,
		bookings:  bookings,
		chats:     chats,
		hub:       hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Мобильные клиенты приходят без Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/me", s.handleGetMe)
			r.Put("/me", s.handleUpdateMe)
			r.Post("/me/avatar", s.handleUploadAvatar)

			r.Get("/tutors", s.handleListTutors)
			r.Get("/tutors/{tutorID}", s.handleGetTutor)

			r.Post("/bookings", s.handleCreateBooking)
			r.Get("/bookings", s.handleListBookings)
			r.Get("/bookings/{bookingID}", s.handleGetBooking)
			r.Post("/bookings/{bookingID}/accept", s.handleBookingAccept)
			r.Post("/bookings/{bookingID}/offer", s.handleBookingOffer)
			r.Post("/bookings/{bookingID}/reject", s.handleBookingReject)
			r.Post("/bookings/{bookingID}/accept-offer", s.handleBookingAcceptOffer)
			r.Post("/bookings/{bookingID}/decline-offer", s.handleBookingDeclineOffer)
			r.Post("/bookings/{bookingID}/cancel", s.handleBookingCancel)
			r.Post("/bookings/{bookingID}/complete", s.handleBookingComplete)

			r.Get("/chats", s.handleListChats)
			r.Post("/chats", s.handleFindOrCreateChat)
			r.Post("/chats/{chatID}/read", s.handleMarkChatRead)
			r.Get("/chats/{chatID}/messages", s.handleListMessages)
			r.Post("/chats/{chatID}/messages", s.handleSendMessage)
		})
	})

	r.Get("/ws/feed", s.handleFeed)
	r.Get("/ws/chats/{chatID}", s.handleChatFeed)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
