package planner

import "time"

// DefaultMealType is used when a meal slot does not specify one.
const DefaultMealType = "dinner"

// DayNames are the Finnish weekday names, indexed by plan day
// (0 = Monday, 6 = Sunday).
var DayNames = [7]string{
	"Maanantai", "Tiistai", "Keskiviikko", "Torstai", "Perjantai", "Lauantai", "Sunnuntai",
}

// Template is a reusable weekly meal plan.
type Template struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TemplateMeal is one meal slot within a template.
type TemplateMeal struct {
	ID         int64  `db:"id" json:"id"`
	TemplateID int64  `db:"template_id" json:"template_id"`
	Day        int    `db:"day" json:"day"`
	RecipeSlug string `db:"recipe_slug" json:"recipe_slug"`
	MealType   string `db:"meal_type" json:"meal_type"`
}

// Week is the active plan for one calendar week, identified by the
// Monday it starts on.
type Week struct {
	ID         int64     `db:"id" json:"id"`
	WeekStart  time.Time `db:"week_start" json:"week_start"`
	TemplateID *int64    `db:"template_id" json:"template_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// WeekMeal is one planned meal in an active week. IsDone marks the
// meal as cooked, which removes its ingredients from the shopping
// list.
type WeekMeal struct {
	ID         int64  `db:"id" json:"id"`
	WeekID     int64  `db:"week_id" json:"week_id"`
	Day        int    `db:"day" json:"day"`
	RecipeSlug string `db:"recipe_slug" json:"recipe_slug"`
	MealType   string `db:"meal_type" json:"meal_type"`
	IsDone     bool   `db:"is_done" json:"is_done"`
}

// WeekStart returns the Monday of the week containing t, truncated to
// midnight in t's location.
func WeekStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	t = t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
