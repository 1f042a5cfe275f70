package service

import (
	"sort"
	"testing"

	"tutorhub/internal/model"
)

func directoryFixture() []*model.Tutor {
	return []*model.Tutor{
		{UserID: "t1", Name: "Ann", SubjectsToTeach: []string{"Mathematics"}},
		{UserID: "t2", Name: "Bo", SubjectsToTeach: []string{"English"}},
		{UserID: "t3", Name: "Sarah Johnson", SubjectsToTeach: []string{"Mathematics", "Physics"}},
	}
}

func tutorNames(tutors []*model.Tutor) []string {
	names := make([]string, 0, len(tutors))
	for _, t := range tutors {
		names = append(names, t.Name)
	}
	return names
}

func TestFilterTutorsBySubject(t *testing.T) {
	got := FilterTutors(directoryFixture(), "", []string{"Mathematics"})

	if len(got) != 2 {
		t.Fatalf("got %v, want Ann and Sarah Johnson", tutorNames(got))
	}
	for _, tutor := range got {
		if tutor.Name == "Bo" {
			t.Error("Bo teaches English only and must be filtered out")
		}
	}
}

func TestFilterTutorsByQuery(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Ann", "Bo", "Sarah Johnson"}},
		{"ann", []string{"Ann"}},
		{"  SARAH ", []string{"Sarah Johnson"}},
		{"physics", []string{"Sarah Johnson"}}, // совпадение по предмету
		{"chemistry", nil},
	}

	for _, tt := range tests {
		got := tutorNames(FilterTutors(directoryFixture(), tt.query, nil))
		sort.Strings(got)
		want := append([]string(nil), tt.want...)
		sort.Strings(want)

		if len(got) != len(want) {
			t.Errorf("query %q: got %v, want %v", tt.query, got, want)
			continue
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("query %q: got %v, want %v", tt.query, got, want)
				break
			}
		}
	}
}

func TestFilterTutorsAllSelection(t *testing.T) {
	// Пустой выбор и явный "All" ведут себя одинаково
	if got := FilterTutors(directoryFixture(), "", nil); len(got) != 3 {
		t.Errorf("empty selection: got %d tutors, want 3", len(got))
	}
	if got := FilterTutors(directoryFixture(), "", []string{model.SubjectAll}); len(got) != 3 {
		t.Errorf("explicit All: got %d tutors, want 3", len(got))
	}
}

func TestFilterTutorsCombinesQueryAndSubject(t *testing.T) {
	got := FilterTutors(directoryFixture(), "sarah", []string{"Mathematics"})
	if len(got) != 1 || got[0].Name != "Sarah Johnson" {
		t.Errorf("got %v, want only Sarah Johnson", tutorNames(got))
	}

	// Запрос совпадает, но предмет не выбран
	got = FilterTutors(directoryFixture(), "bo", []string{"Mathematics"})
	if len(got) != 0 {
		t.Errorf("got %v, want empty", tutorNames(got))
	}
}

func TestSubjectSelectionExclusiveAll(t *testing.T) {
	sel := NewSubjectSelection()

	if !sel.AllSelected() {
		t.Fatal("new selection must start with All")
	}

	sel.Select("Mathematics")
	if sel.AllSelected() {
		t.Error("picking a subject must clear All")
	}
	sel.Select("Physics")
	if got := sel.Selected(); len(got) != 2 {
		t.Errorf("Selected() = %v, want two subjects", got)
	}

	sel.Select(model.SubjectAll)
	if !sel.AllSelected() {
		t.Error("picking All must re-activate it")
	}
	if got := sel.Selected(); got != nil {
		t.Errorf("All selection must report no specific subjects, got %v", got)
	}
}

func TestSubjectSelectionEmptiedFallsBackToAll(t *testing.T) {
	sel := NewSubjectSelection()

	sel.Select("Mathematics")
	sel.Deselect("Mathematics")

	if !sel.AllSelected() {
		t.Error("deselecting the last subject must fall back to All")
	}

	// Deselect самого "All" игнорируется
	sel.Deselect(model.SubjectAll)
	if !sel.AllSelected() {
		t.Error("All cannot be deselected directly")
	}
}
