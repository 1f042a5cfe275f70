package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tutorhub/internal/model"
)

// TutorLister is the slice of the user store the directory needs.
type TutorLister interface {
	GetTutors(ctx context.Context) ([]*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// DirectoryService serves the tutor directory: a one-shot fetch of tutor
// accounts filtered in memory by search text and subject selection.
type DirectoryService struct {
	users  TutorLister
	logger *zap.Logger
}

func NewDirectoryService(users TutorLister, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{users: users, logger: logger}
}

// Search получает каталог репетиторов и применяет фильтры
func (s *DirectoryService) Search(ctx context.Context, query string, selectedSubjects []string) ([]*model.Tutor, error) {
	users, err := s.users.GetTutors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tutors: %w", err)
	}

	tutors := make([]*model.Tutor, 0, len(users))
	for _, u := range users {
		tutors = append(tutors, u.TutorProfile())
	}

	return FilterTutors(tutors, query, selectedSubjects), nil
}

// GetTutor получает профиль репетитора для карточки
func (s *DirectoryService) GetTutor(ctx context.Context, tutorID string) (*model.Tutor, error) {
	user, err := s.users.GetByID(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get tutor: %w", err)
	}
	if user == nil || !user.IsTutor() {
		return nil, fmt.Errorf("%w: tutor %s", ErrNotFound, tutorID)
	}
	return user.TutorProfile(), nil
}

// FilterTutors is a pure filter over an in-memory tutor list. A tutor
// matches when the search text is empty or appears (case-insensitively) in
// the name or any taught subject, and additionally teaches at least one
// selected subject unless the selection is empty or contains "All".
func FilterTutors(tutors []*model.Tutor, query string, selectedSubjects []string) []*model.Tutor {
	query = strings.ToLower(strings.TrimSpace(query))

	allSelected := len(selectedSubjects) == 0
	selected := make(map[string]bool, len(selectedSubjects))
	for _, s := range selectedSubjects {
		if s == model.SubjectAll {
			allSelected = true
			continue
		}
		selected[s] = true
	}
	if len(selected) == 0 {
		allSelected = true
	}

	filtered := make([]*model.Tutor, 0, len(tutors))
	for _, tutor := range tutors {
		if !matchesQuery(tutor, query) {
			continue
		}
		if !allSelected && !teachesAny(tutor, selected) {
			continue
		}
		filtered = append(filtered, tutor)
	}

	return filtered
}

func matchesQuery(tutor *model.Tutor, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(tutor.Name), query) {
		return true
	}
	for _, subject := range tutor.SubjectsToTeach {
		if strings.Contains(strings.ToLower(subject), query) {
			return true
		}
	}
	return false
}

func teachesAny(tutor *model.Tutor, selected map[string]bool) bool {
	for _, subject := range tutor.SubjectsToTeach {
		if selected[subject] {
			return true
		}
	}
	return false
}

// SubjectSelection is the chip-selection state of the subject filter. "All"
// is exclusive with specific subjects: picking All clears the rest, picking
// a subject clears All, and emptying the set re-selects All.
type SubjectSelection struct {
	subjects map[string]bool
	all      bool
}

func NewSubjectSelection() *SubjectSelection {
	return &SubjectSelection{
		subjects: make(map[string]bool),
		all:      true,
	}
}

// Select adds a subject to the selection (or switches to "All").
func (s *SubjectSelection) Select(subject string) {
	if subject == model.SubjectAll {
		s.all = true
		s.subjects = make(map[string]bool)
		return
	}
	s.all = false
	s.subjects[subject] = true
}

// Deselect removes a subject; an emptied selection falls back to "All".
func (s *SubjectSelection) Deselect(subject string) {
	if subject == model.SubjectAll {
		return
	}
	delete(s.subjects, subject)
	if len(s.subjects) == 0 {
		s.all = true
	}
}

// AllSelected reports whether the exclusive "All" chip is active.
func (s *SubjectSelection) AllSelected() bool {
	return s.all
}

// Selected returns the specific subjects currently selected.
func (s *SubjectSelection) Selected() []string {
	if s.all {
		return nil
	}
	subjects := make([]string, 0, len(s.subjects))
	for subject := range s.subjects {
		subjects = append(subjects, subject)
	}
	return subjects
}
