package model

import "time"

type AccountKind string

const (
	AccountKindStudent AccountKind = "student"
	AccountKindTutor   AccountKind = "tutor"
)

// Valid reports whether the kind is one of the two known account kinds.
func (k AccountKind) Valid() bool {
	return k == AccountKindStudent || k == AccountKindTutor
}

// User is an account document. AccountKind is fixed at registration; the
// student- and tutor-specific fields are only meaningful for the matching
// kind and stay empty otherwise.
type User struct {
	ID              string      `json:"userId"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	PasswordHash    string      `json:"-"`
	AccountKind     AccountKind `json:"userType"`
	PhoneNumber     string      `json:"phoneNumber"`
	ProfileImageURL string      `json:"profileImageUrl"`

	// Student fields
	EducationLevel     string   `json:"educationLevel"`
	SubjectsOfInterest []string `json:"subjectsOfInterest"`

	// Tutor fields
	SubjectsToTeach        []string `json:"subjectsToTeach"`
	EducationLevelsToTeach []string `json:"educationLevelsToTeach"`
	HourlyRate             float64  `json:"hourlyRate"`
	Bio                    string   `json:"bio"`
	Rating                 float64  `json:"rating"`
	TotalReviews           int      `json:"totalReviews"`

	CreatedAt time.Time `json:"createdAt"`
}

// IsTutor checks if the account belongs to a tutor
func (u *User) IsTutor() bool {
	return u.AccountKind == AccountKindTutor
}

// TutorProfile builds the directory projection of a tutor account.
func (u *User) TutorProfile() *Tutor {
	return &Tutor{
		UserID:                 u.ID,
		Name:                   u.Name,
		Email:                  u.Email,
		PhoneNumber:            u.PhoneNumber,
		ProfileImageURL:        u.ProfileImageURL,
		SubjectsToTeach:        u.SubjectsToTeach,
		EducationLevelsToTeach: u.EducationLevelsToTeach,
		HourlyRate:             u.HourlyRate,
		Bio:                    u.Bio,
		Rating:                 u.Rating,
		TotalReviews:           u.TotalReviews,
	}
}
