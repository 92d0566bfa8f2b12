package models

// Category is the closed set of resource kinds. Values outside the set can
// still come back from the database; they render with the default style.
type Category string

const (
	CategoryTextbooks     Category = "textbooks"
	CategoryNotes         Category = "notes"
	CategoryPresentations Category = "presentations"
	CategoryProjects      Category = "projects"
)

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryTextbooks,
	CategoryNotes,
	CategoryPresentations,
	CategoryProjects,
}

const (
	defaultBadgeColor = "bg-gray-100 text-gray-800"
	defaultIcon       = "book"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTextbooks, CategoryNotes, CategoryPresentations, CategoryProjects:
		return true
	default:
		return false
	}
}

// Title is the capitalized name used on badges and category cards.
func (c Category) Title() string {
	switch c {
	case CategoryTextbooks:
		return "Textbooks"
	case CategoryNotes:
		return "Notes"
	case CategoryPresentations:
		return "Presentations"
	case CategoryProjects:
		return "Projects"
	}
	if c == "" {
		return ""
	}
	s := string(c)
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// Label is the wording used by the upload form.
func (c Category) Label() string {
	switch c {
	case CategoryNotes:
		return "Study Notes"
	case CategoryProjects:
		return "Project Files"
	default:
		return c.Title()
	}
}

func (c Category) Description() string {
	switch c {
	case CategoryTextbooks:
		return "Academic textbooks and reference materials"
	case CategoryNotes:
		return "Study notes and course materials"
	case CategoryPresentations:
		return "PowerPoint slides and lecture presentations"
	case CategoryProjects:
		return "Project files and assignments"
	default:
		return ""
	}
}

func (c Category) Icon() string {
	switch c {
	case CategoryTextbooks:
		return "book"
	case CategoryNotes:
		return "file-text"
	case CategoryPresentations:
		return "presentation"
	case CategoryProjects:
		return "folder-open"
	default:
		return defaultIcon
	}
}

func (c Category) BadgeColor() string {
	switch c {
	case CategoryTextbooks:
		return "bg-blue-100 text-blue-800"
	case CategoryNotes:
		return "bg-green-100 text-green-800"
	case CategoryPresentations:
		return "bg-purple-100 text-purple-800"
	case CategoryProjects:
		return "bg-orange-100 text-orange-800"
	default:
		return defaultBadgeColor
	}
}
