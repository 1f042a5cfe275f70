package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorhub/internal/model"
)

// BookingStore persists bookings. Implemented by repository.BookingRepository.
type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByStudentID(ctx context.Context, studentID string) ([]*model.Booking, error)
	GetByTutorID(ctx context.Context, tutorID string) ([]*model.Booking, error)
	ApplyStatusChange(ctx context.Context, id string, from model.BookingStatus, change model.StatusChange) (bool, error)
	CompleteExpired(ctx context.Context, asOf time.Time) (int64, error)
}

// UserGetter is the slice of the user store the booking service needs.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type BookingService struct {
	bookings BookingStore
	users    UserGetter
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingService(bookings BookingStore, users UserGetter, logger *zap.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		logger:   logger,
		now:      time.Now,
	}
}

type CreateBookingInput struct {
	TutorID         string   `json:"tutorId"`
	Subject         string   `json:"subject"`
	EducationLevel  string   `json:"educationLevel"`
	PreferredDays   []string `json:"preferredDays"`
	PreferredTime   string   `json:"preferredTime"`
	SessionsPerWeek int      `json:"sessionsPerWeek"`
	HoursPerSession float64  `json:"hoursPerSession"`
	StudentNotes    string   `json:"studentNotes"`
}

// Create создаёт заявку студента на занятия с репетитором. Считает объём
// часов и цену за месяц из расписания и ставки репетитора.
func (s *BookingService) Create(ctx context.Context, studentID string, in CreateBookingInput) (*model.Booking, error) {
	switch {
	case in.Subject == "":
		return nil, fmt.Errorf("%w: please select a subject", ErrValidation)
	case in.EducationLevel == "":
		return nil, fmt.Errorf("%w: please select education level", ErrValidation)
	case len(in.PreferredDays) == 0:
		return nil, fmt.Errorf("%w: please select at least one day", ErrValidation)
	case in.PreferredTime == "":
		return nil, fmt.Errorf("%w: please select preferred time", ErrValidation)
	case in.SessionsPerWeek <= 0:
		return nil, fmt.Errorf("%w: sessions per week must be positive", ErrValidation)
	case in.HoursPerSession <= 0:
		return nil, fmt.Errorf("%w: hours per session must be positive", ErrValidation)
	}

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("%w: student %s", ErrNotFound, studentID)
	}

	tutor, err := s.users.GetByID(ctx, in.TutorID)
	if err != nil {
		return nil, fmt.Errorf("get tutor: %w", err)
	}
	if tutor == nil || !tutor.IsTutor() {
		return nil, fmt.Errorf("%w: tutor %s", ErrNotFound, in.TutorID)
	}
	if tutor.HourlyRate <= 0 {
		return nil, fmt.Errorf("%w: tutor has no hourly rate set", ErrValidation)
	}

	// Расчёт на 4 недели (1 месяц)
	totalHours := int(math.Round(float64(in.SessionsPerWeek) * in.HoursPerSession * 4))
	totalPrice := float64(totalHours) * tutor.HourlyRate

	booking := &model.Booking{
		ID:                 uuid.NewString(),
		StudentID:          student.ID,
		StudentName:        student.Name,
		TutorID:            tutor.ID,
		TutorName:          tutor.Name,
		Subject:            in.Subject,
		EducationLevel:     in.EducationLevel,
		PreferredDays:      in.PreferredDays,
		PreferredTime:      in.PreferredTime,
		SessionsPerWeek:    in.SessionsPerWeek,
		HoursPerSession:    in.HoursPerSession,
		TotalHoursPerMonth: totalHours,
		HourlyRate:         tutor.HourlyRate,
		TotalMonthlyPrice:  totalPrice,
		Status:             model.BookingStatusPending,
		StudentNotes:       in.StudentNotes,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info("Booking request created",
		zap.String("booking_id", booking.ID),
		zap.String("student_id", student.ID),
		zap.String("tutor_id", tutor.ID),
		zap.String("subject", booking.Subject),
		zap.Float64("total_monthly_price", booking.TotalMonthlyPrice),
	)

	return booking, nil
}

// TutorAccept принимает заявку как есть: занятия стартуют сразу и идут 30 дней
func (s *BookingService) TutorAccept(ctx context.Context, bookingID, tutorID string) (*model.Booking, error) {
	now := s.now()
	end := now.Add(model.EngagementDuration)

	booking, err := s.transition(ctx, bookingID, model.BookingStatusPending,
		func(b *model.Booking) error {
			if b.TutorID != tutorID {
				return fmt.Errorf("%w: no permission to accept this booking", ErrForbidden)
			}
			return nil
		},
		model.StatusChange{
			To:         model.BookingStatusAccepted,
			UpdatedAt:  now,
			AcceptedAt: &now,
			StartDate:  &now,
			EndDate:    &end,
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking accepted",
		zap.String("booking_id", bookingID),
		zap.String("tutor_id", tutorID),
	)

	return booking, nil
}

// TutorMakeOffer отправляет студенту встречное предложение с комментарием
func (s *BookingService) TutorMakeOffer(ctx context.Context, bookingID, tutorID, notes string) (*model.Booking, error) {
	now := s.now()

	booking, err := s.transition(ctx, bookingID, model.BookingStatusPending,
		func(b *model.Booking) error {
			if b.TutorID != tutorID {
				return fmt.Errorf("%w: no permission to make an offer on this booking", ErrForbidden)
			}
			return nil
		},
		model.StatusChange{
			To:          model.BookingStatusOfferMade,
			UpdatedAt:   now,
			TutorNotes:  &notes,
			OfferMadeAt: &now,
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking offer made",
		zap.String("booking_id", bookingID),
		zap.String("tutor_id", tutorID),
	)

	return booking, nil
}

// TutorReject отклоняет заявку студента. Причина может быть пустой.
func (s *BookingService) TutorReject(ctx context.Context, bookingID, tutorID, reason string) (*model.Booking, error) {
	booking, err := s.transition(ctx, bookingID, model.BookingStatusPending,
		func(b *model.Booking) error {
			if b.TutorID != tutorID {
				return fmt.Errorf("%w: no permission to reject this booking", ErrForbidden)
			}
			return nil
		},
		model.StatusChange{
			To:              model.BookingStatusRejected,
			UpdatedAt:       s.now(),
			RejectionReason: &reason,
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking rejected",
		zap.String("booking_id", bookingID),
		zap.String("tutor_id", tutorID),
	)

	return booking, nil
}

// StudentAcceptOffer принимает встречное предложение репетитора
func (s *BookingService) StudentAcceptOffer(ctx context.Context, bookingID, studentID string) (*model.Booking, error) {
	now := s.now()
	end := now.Add(model.EngagementDuration)

	booking, err := s.transition(ctx, bookingID, model.BookingStatusOfferMade,
		func(b *model.Booking) error {
			if b.StudentID != studentID {
				return fmt.Errorf("%w: no permission to accept this offer", ErrForbidden)
			}
			return nil
		},
		model.StatusChange{
			To:         model.BookingStatusAccepted,
			UpdatedAt:  now,
			AcceptedAt: &now,
			StartDate:  &now,
			EndDate:    &end,
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking offer accepted",
		zap.String("booking_id", bookingID),
		zap.String("student_id", studentID),
	)

	return booking, nil
}

// StudentDeclineOffer отклоняет встречное предложение репетитора
func (s *BookingService) StudentDeclineOffer(ctx context.Context, bookingID, studentID, reason string) (*model.Booking, error) {
	booking, err := s.transition(ctx, bookingID, model.BookingStatusOfferMade,
		func(b *model.Booking) error {
			if b.StudentID != studentID {
				return fmt.Errorf("%w: no permission to decline this offer", ErrForbidden)
			}
			return nil
		},
		model.StatusChange{
			To:              model.BookingStatusRejected,
			UpdatedAt:       s.now(),
			RejectionReason: &reason,
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking offer declined",
		zap.String("booking_id", bookingID),
		zap.String("student_id", studentID),
	)

	return booking, nil
}

// Cancel отменяет принятую заявку. Доступно обеим сторонам.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	booking, err := s.transition(ctx, bookingID, model.BookingStatusAccepted,
		func(b *model.Booking) error {
			if b.StudentID != actorID && b.TutorID != actorID {
				return fmt.Errorf("%w: no permission to cancel this booking", ErrForbidden)
			}
			return nil
		},
		model.StatusChange{
			To:        model.BookingStatusCancelled,
			UpdatedAt: s.now(),
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("actor_id", actorID),
	)

	return booking, nil
}

// Complete завершает принятую заявку
func (s *BookingService) Complete(ctx context.Context, bookingID, actorID string) (*model.Booking, error) {
	booking, err := s.transition(ctx, bookingID, model.BookingStatusAccepted,
		func(b *model.Booking) error {
			if b.StudentID != actorID && b.TutorID != actorID {
				return fmt.Errorf("%w: no permission to complete this booking", ErrForbidden)
			}
			return nil
		},
		model.StatusChange{
			To:        model.BookingStatusCompleted,
			UpdatedAt: s.now(),
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking completed",
		zap.String("booking_id", bookingID),
		zap.String("actor_id", actorID),
	)

	return booking, nil
}

// CompleteExpired завершает все принятые заявки с истёкшим периодом занятий
func (s *BookingService) CompleteExpired(ctx context.Context) (int64, error) {
	count, err := s.bookings.CompleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.logger.Info("Expired bookings completed", zap.Int64("count", count))
	}

	return count, nil
}

// GetByID получает заявку с проверкой, что запрашивает её участник
func (s *BookingService) GetByID(ctx context.Context, bookingID, userID string) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}
	if booking.StudentID != userID && booking.TutorID != userID {
		return nil, fmt.Errorf("%w: not a participant of this booking", ErrForbidden)
	}
	return booking, nil
}

// ListForUser получает заявки пользователя с его стороны сделки
func (s *BookingService) ListForUser(ctx context.Context, user *model.User) ([]*model.Booking, error) {
	if user.IsTutor() {
		return s.bookings.GetByTutorID(ctx, user.ID)
	}
	return s.bookings.GetByStudentID(ctx, user.ID)
}

// transition выполняет условный переход статуса: сначала проверяет права и
// текущий статус, затем применяет compare-and-swap в хранилище. Если CAS
// проиграл гонку другой стороне, операция не меняет ничего и возвращает
// ErrIllegalTransition.
func (s *BookingService) transition(
	ctx context.Context,
	bookingID string,
	from model.BookingStatus,
	check func(*model.Booking) error,
	change model.StatusChange,
) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}

	if err := check(booking); err != nil {
		return nil, err
	}

	if booking.Status != from {
		return nil, fmt.Errorf("%w: booking is %s, expected %s", ErrIllegalTransition, booking.Status, from)
	}

	applied, err := s.bookings.ApplyStatusChange(ctx, bookingID, from, change)
	if err != nil {
		return nil, fmt.Errorf("apply status change: %w", err)
	}

	if !applied {
		// Другая сторона успела изменить статус между чтением и записью
		current, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, fmt.Errorf("get booking: %w", err)
		}
		if current == nil {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("%w: booking is %s, expected %s", ErrIllegalTransition, current.Status, from)
	}

	updated, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}

	return updated, nil
}
