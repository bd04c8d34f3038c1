package model

import "strings"

// Category classifies an expense. Values are stored in Spanish, matching
// existing data files.
type Category string

const (
	CategoryFood      Category = "Comida"
	CategoryTransport Category = "Transporte"
	CategoryEducation Category = "Educación"
	CategoryLeisure   Category = "Ocio"
	CategoryHealth    Category = "Salud"
	CategoryServices  Category = "Servicios"
	CategoryOther     Category = "Otros"
)

// Categories returns the closed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryEducation,
		CategoryLeisure,
		CategoryHealth,
		CategoryServices,
		CategoryOther,
	}
}

var categoryNames = map[Category]string{
	CategoryFood:      "Food",
	CategoryTransport: "Transport",
	CategoryEducation: "Education",
	CategoryLeisure:   "Leisure",
	CategoryHealth:    "Health",
	CategoryServices:  "Services",
	CategoryOther:     "Other",
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// DisplayName returns the English label, or the raw value for unknown categories.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// ParseCategory accepts either vocabulary ("Food" or "Comida"),
// case-insensitively, and returns the stored form.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for c, name := range categoryNames {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, name) {
			return c, true
		}
	}
	// Accept the stored form without its accent.
	if strings.EqualFold(s, "Educacion") {
		return CategoryEducation, true
	}
	return "", false
}
