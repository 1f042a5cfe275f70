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

const bookingColumns = `id, student_id, student_name, tutor_id, tutor_name, subject, education_level,
		preferred_days, preferred_time, sessions_per_week, hours_per_session, total_hours_per_month,
		hourly_rate, total_monthly_price, status, student_notes, tutor_notes, rejection_reason,
		created_at, updated_at, offer_made_at, accepted_at, start_date, end_date`

type BookingRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewBookingRepository(pool *pgxpool.Pool, logger *zap.Logger) *BookingRepository {
	return &BookingRepository{pool: pool, logger: logger}
}

// Create создаёт новую заявку на занятия
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (id, student_id, student_name, tutor_id, tutor_name, subject, education_level,
			preferred_days, preferred_time, sessions_per_week, hours_per_session, total_hours_per_month,
			hourly_rate, total_monthly_price, status, student_notes, tutor_notes, rejection_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		booking.ID,
		booking.StudentID,
		booking.StudentName,
		booking.TutorID,
		booking.TutorName,
		booking.Subject,
		booking.EducationLevel,
		booking.PreferredDays,
		booking.PreferredTime,
		booking.SessionsPerWeek,
		booking.HoursPerSession,
		booking.TotalHoursPerMonth,
		booking.HourlyRate,
		booking.TotalMonthlyPrice,
		booking.Status,
		booking.StudentNotes,
		booking.TutorNotes,
		booking.RejectionReason,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// GetByStudentID получает все заявки студента
func (r *BookingRepository) GetByStudentID(ctx context.Context, studentID string) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE student_id = $1 ORDER BY updated_at DESC`
	return r.list(ctx, query, studentID)
}

// GetByTutorID получает все заявки репетитора
func (r *BookingRepository) GetByTutorID(ctx context.Context, tutorID string) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tutor_id = $1 ORDER BY updated_at DESC`
	return r.list(ctx, query, tutorID)
}

// ApplyStatusChange применяет переход статуса только если текущий статус
// совпадает с ожидаемым (compare-and-swap). Возвращает false, если заявка
// не в ожидаемом статусе или не существует.
func (r *BookingRepository) ApplyStatusChange(ctx context.Context, id string, from model.BookingStatus, change model.StatusChange) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $3,
			updated_at = $4,
			rejection_reason = COALESCE($5, rejection_reason),
			tutor_notes = COALESCE($6, tutor_notes),
			offer_made_at = COALESCE($7, offer_made_at),
			accepted_at = COALESCE($8, accepted_at),
			start_date = COALESCE($9, start_date),
			end_date = COALESCE($10, end_date)
		WHERE id = $1 AND status = $2
	`

	result, err := r.pool.Exec(
		ctx, query,
		id,
		from,
		change.To,
		change.UpdatedAt,
		change.RejectionReason,
		change.TutorNotes,
		change.OfferMadeAt,
		change.AcceptedAt,
		change.StartDate,
		change.EndDate,
	)

	if err != nil {
		return false, fmt.Errorf("apply status change: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// CompleteExpired переводит в COMPLETED все принятые заявки, у которых
// закончился период занятий
func (r *BookingRepository) CompleteExpired(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE status = $3 AND end_date IS NOT NULL AND end_date < $2
	`

	result, err := r.pool.Exec(ctx, query, model.BookingStatusCompleted, asOf, model.BookingStatusAccepted)
	if err != nil {
		return 0, fmt.Errorf("complete expired bookings: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.logger.Warn("Skipping malformed booking row", zap.Error(err))
			continue
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.StudentName,
		&booking.TutorID,
		&booking.TutorName,
		&booking.Subject,
		&booking.EducationLevel,
		&booking.PreferredDays,
		&booking.PreferredTime,
		&booking.SessionsPerWeek,
		&booking.HoursPerSession,
		&booking.TotalHoursPerMonth,
		&booking.HourlyRate,
		&booking.TotalMonthlyPrice,
		&booking.Status,
		&booking.StudentNotes,
		&booking.TutorNotes,
		&booking.RejectionReason,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.OfferMadeAt,
		&booking.AcceptedAt,
		&booking.StartDate,
		&booking.EndDate,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
