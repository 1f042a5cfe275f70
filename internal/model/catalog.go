package model

// Subject and education-level catalogs offered across the app. The tutor
// directory additionally exposes SubjectAll as an exclusive filter chip.
const SubjectAll = "All"

var Subjects = []string{
	"Mathematics", "English", "Physics", "Chemistry",
	"Biology", "History", "Geography", "Economics", "Accounting",
	"Computer Science", "Malay Language", "Chinese Language",
}

var EducationLevels = []string{
	"Primary School", "Secondary School", "A-Level/STPM",
	"Foundation", "Diploma", "Undergraduate", "Postgraduate",
}
