package entity

import "time"

// DefaultSectionNames is the canonical set materialized on an empty board.
var DefaultSectionNames = []string{"Todo", "In Progress", "Completed"}

type Section struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	Order     int       `json:"order" validate:"min=0"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SectionRequest struct {
	Name string `json:"name"`
}

// SectionNames returns the set of names in sections.
func SectionNames(sections []Section) map[string]struct{} {
	names := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		names[s.Name] = struct{}{}
	}
	return names
}

// FallbackSection returns the default section with the lowest order, skipping
// the section with id exclude. sections must be sorted by order.
func FallbackSection(sections []Section, exclude string) (Section, bool) {
	for _, s := range sections {
		if s.IsDefault && s.ID != exclude {
			return s, true
		}
	}
	return Section{}, false
}
