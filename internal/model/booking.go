package model

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"    // Ожидает ответа репетитора
	BookingStatusOfferMade BookingStatus = "OFFER_MADE" // Репетитор сделал встречное предложение
	BookingStatusAccepted  BookingStatus = "ACCEPTED"   // Подтверждено обеими сторонами
	BookingStatusRejected  BookingStatus = "REJECTED"   // Отклонено
	BookingStatusCompleted BookingStatus = "COMPLETED"  // Завершено
	BookingStatusCancelled BookingStatus = "CANCELLED"  // Отменено
)

// EngagementDuration is how long an accepted booking runs for.
const EngagementDuration = 30 * 24 * time.Hour

// IsTerminal reports whether no further transition is defined from the status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCompleted || s == BookingStatusCancelled
}

type Booking struct {
	ID          string `json:"bookingId"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	TutorID     string `json:"tutorId"`
	TutorName   string `json:"tutorName"`

	Subject        string `json:"subject"`
	EducationLevel string `json:"educationLevel"`

	// Schedule details
	PreferredDays      []string `json:"preferredDays"` // e.g. ["Monday", "Wednesday"]
	PreferredTime      string   `json:"preferredTime"` // e.g. "15:00 - 17:00"
	SessionsPerWeek    int      `json:"sessionsPerWeek"`
	HoursPerSession    float64  `json:"hoursPerSession"`
	TotalHoursPerMonth int      `json:"totalHoursPerMonth"`

	// Pricing
	HourlyRate        float64 `json:"hourlyRate"`
	TotalMonthlyPrice float64 `json:"totalMonthlyPrice"` // TotalHoursPerMonth * HourlyRate

	Status          BookingStatus `json:"status"`
	StudentNotes    string        `json:"studentNotes"`
	TutorNotes      string        `json:"tutorNotes"`
	RejectionReason string        `json:"rejectionReason"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	OfferMadeAt *time.Time `json:"offerMadeAt,omitempty"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

// OtherPartyName returns the display name of the opposite participant.
func (b *Booking) OtherPartyName(userID string) string {
	if userID == b.TutorID {
		return b.StudentName
	}
	return b.TutorName
}

// StatusDisplay returns the human-readable status label.
func (b *Booking) StatusDisplay() string {
	switch b.Status {
	case BookingStatusPending:
		return "Pending Tutor Response"
	case BookingStatusOfferMade:
		return "Offer Received"
	case BookingStatusAccepted:
		return "Active"
	case BookingStatusRejected:
		return "Rejected"
	case BookingStatusCompleted:
		return "Completed"
	case BookingStatusCancelled:
		return "Cancelled"
	default:
		return string(b.Status)
	}
}

// ScheduleSummary formats the preferred days and time window for display.
func (b *Booking) ScheduleSummary() string {
	return fmt.Sprintf("%s at %s", strings.Join(b.PreferredDays, ", "), b.PreferredTime)
}

// PriceDisplay formats the monthly price, e.g. "RM 600.00/month".
func (b *Booking) PriceDisplay() string {
	return fmt.Sprintf("RM %.2f/month", b.TotalMonthlyPrice)
}

// StatusChange describes a conditional single-status transition. Nil pointer
// fields are left untouched by the store.
type StatusChange struct {
	To        BookingStatus
	UpdatedAt time.Time

	RejectionReason *string
	TutorNotes      *string
	OfferMadeAt     *time.Time
	AcceptedAt      *time.Time
	StartDate       *time.Time
	EndDate         *time.Time
}
