package model

import (
	"fmt"
	"strings"
)

// Tutor is a read projection of a tutor account for directory display.
// Derived from User, not independently owned.
type Tutor struct {
	UserID                 string   `json:"userId"`
	Name                   string   `json:"name"`
	Email                  string   `json:"email"`
	PhoneNumber            string   `json:"phoneNumber"`
	ProfileImageURL        string   `json:"profileImageUrl"`
	SubjectsToTeach        []string `json:"subjectsToTeach"`
	EducationLevelsToTeach []string `json:"educationLevelsToTeach"`
	HourlyRate             float64  `json:"hourlyRate"`
	Bio                    string   `json:"bio"`
	Rating                 float64  `json:"rating"`
	TotalReviews           int      `json:"totalReviews"`
}

// Initials returns up to two uppercase letters for the avatar placeholder.
func (t *Tutor) Initials() string {
	parts := strings.Fields(strings.TrimSpace(t.Name))
	switch {
	case len(parts) >= 2:
		return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[1]))
	case len(parts) == 1:
		r := []rune(parts[0])
		if len(r) > 2 {
			r = r[:2]
		}
		return strings.ToUpper(string(r))
	default:
		return "?"
	}
}

// SubjectsLine returns a compact comma-separated subject summary,
// e.g. "Mathematics, Physics +2".
func (t *Tutor) SubjectsLine() string {
	switch {
	case len(t.SubjectsToTeach) == 0:
		return "No subjects listed"
	case len(t.SubjectsToTeach) <= 2:
		return strings.Join(t.SubjectsToTeach, ", ")
	default:
		return fmt.Sprintf("%s +%d", strings.Join(t.SubjectsToTeach[:2], ", "), len(t.SubjectsToTeach)-2)
	}
}

// RateDisplay formats the hourly rate, e.g. "RM 50/hour".
func (t *Tutor) RateDisplay() string {
	return fmt.Sprintf("RM %.0f/hour", t.HourlyRate)
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
