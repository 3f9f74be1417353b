// Package recipe implements the structured JSON recipe format. It is a
// parallel representation to the markup dialect in internal/cooklang:
// the two are consumed by different code paths and are deliberately not
// interchangeable.
package recipe

import (
	"encoding/json"
	"strings"
)

// Ingredient is a named ingredient with an amount expressed as a
// [value, unit] pair, or empty when unspecified.
type Ingredient struct {
	Name   string   `json:"name"`
	Amount []string `json:"amount"`
}

// String renders the ingredient for display, e.g. "flour (400 g)".
func (i Ingredient) String() string {
	if len(i.Amount) > 0 {
		return i.Name + " (" + strings.Join(i.Amount, " ") + ")"
	}
	return i.Name
}

// Phase is a single preparation phase. Ingredients holds indices into
// the owning ingredient list; Time is a [value, unit] pair or nil.
type Phase struct {
	Description string   `json:"description"`
	Ingredients []int    `json:"ingredients,omitempty"`
	Time        []string `json:"time,omitempty"`
}

// Section groups ingredients and phases under a title for multi-part
// recipes.
type Section struct {
	Title       string       `json:"title"`
	Ingredients []Ingredient `json:"ingredients"`
	Phases      []Phase      `json:"phases"`
}

// Recipe is a structured recipe document: a title plus either top-level
// Ingredients/Phases or a list of Sections of the same shape.
type Recipe struct {
	Slug        string       `json:"-"`
	Title       string       `json:"title"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Phases      []Phase      `json:"phases,omitempty"`
	Sections    []Section    `json:"sections,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface for Recipe. A
// sectioned recipe serializes as title plus sections only; a flat
// recipe as title plus ingredients and phases.
func (r Recipe) MarshalJSON() ([]byte, error) {
	if len(r.Sections) > 0 {
		return json.Marshal(struct {
			Title    string    `json:"title"`
			Sections []Section `json:"sections"`
		}{Title: r.Title, Sections: r.Sections})
	}
	return json.Marshal(struct {
		Title       string       `json:"title"`
		Ingredients []Ingredient `json:"ingredients"`
		Phases      []Phase      `json:"phases"`
	}{Title: r.Title, Ingredients: r.Ingredients, Phases: r.Phases})
}

// AllIngredients returns a flat list of every ingredient across all
// sections, or the top-level list for flat recipes.
func (r *Recipe) AllIngredients() []Ingredient {
	if len(r.Sections) == 0 {
		return r.Ingredients
	}
	var all []Ingredient
	for _, s := range r.Sections {
		all = append(all, s.Ingredients...)
	}
	return all
}

// FormatAmount renders an amount pair as a display string:
// ["400", "g"] becomes "400 g", an empty amount becomes "".
func FormatAmount(amount []string) string {
	return strings.Join(amount, " ")
}
