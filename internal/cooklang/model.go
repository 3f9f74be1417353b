package cooklang

// Ingredient is a single ingredient reference extracted from a recipe.
// Amount is an opaque display string; callers must not assume numeric
// semantics.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// String renders the ingredient for display, e.g. "flour (200 g)".
func (i Ingredient) String() string {
	if i.Amount != "" {
		return i.Name + " (" + i.Amount + ")"
	}
	return i.Name
}

// Section is a named, ordered group of instruction steps.
type Section struct {
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

// Recipe is a parsed markup recipe. Sections preserve document order,
// Ingredients preserve first-appearance order, and RawContent keeps the
// original source text verbatim for editing round-trips.
type Recipe struct {
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	Sections    []Section    `json:"sections"`
	Ingredients []Ingredient `json:"ingredients"`
	RawContent  string       `json:"raw_content"`
}
