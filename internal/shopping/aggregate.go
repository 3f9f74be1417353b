// Package shopping builds shopping lists by merging ingredients across
// the recipes of unmade planned meals.
package shopping

import (
	"sort"
	"strings"

	"ruokalista/internal/cooklang"
	"ruokalista/internal/planner"
)

// Entry is one merged shopping-list line. Name keeps the casing of the
// first recipe that mentioned the ingredient; Amount is a comma-joined
// concatenation of the contributing amounts, with no unit arithmetic.
type Entry struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Meal is a planned meal that contributed to the list.
type Meal struct {
	Day    string           `json:"day"`
	Recipe *cooklang.Recipe `json:"recipe"`
}

// Aggregate merges the ingredient lists of the given meals' recipes
// into a single deduplicated list sorted by name, together with the
// contributing (day, recipe) pairs. Ingredients merge case-insensitively
// by name. Meals whose slug is missing from the collection are skipped.
func Aggregate(meals []planner.WeekMeal, recipes map[string]*cooklang.Recipe) ([]Entry, []Meal) {
	merged := make(map[string]*Entry)
	var order []string
	var contributing []Meal

	for _, meal := range meals {
		recipe, ok := recipes[meal.RecipeSlug]
		if !ok {
			continue
		}
		contributing = append(contributing, Meal{
			Day:    planner.DayNames[meal.Day],
			Recipe: recipe,
		})

		for _, ing := range recipe.Ingredients {
			key := strings.ToLower(ing.Name)
			entry, exists := merged[key]
			if !exists {
				merged[key] = &Entry{Name: ing.Name, Amount: ing.Amount}
				order = append(order, key)
				continue
			}
			switch {
			case ing.Amount != "" && entry.Amount != "":
				entry.Amount += ", " + ing.Amount
			case ing.Amount != "":
				entry.Amount = ing.Amount
			}
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, key := range order {
		entries = append(entries, *merged[key])
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, contributing
}
