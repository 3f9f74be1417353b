package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store defines the interface for meal-plan data operations.
type Store interface {
	Migrate(ctx context.Context) error
	Templates(ctx context.Context) ([]Template, error)
	Template(ctx context.Context, id int64) (*Template, error)
	CreateTemplate(ctx context.Context, name string) (int64, error)
	DeleteTemplate(ctx context.Context, id int64) error
	TemplateMeals(ctx context.Context, templateID int64) ([]TemplateMeal, error)
	SetTemplateMeal(ctx context.Context, templateID int64, day int, recipeSlug, mealType string) error
	RemoveTemplateMeal(ctx context.Context, templateID int64, day int, mealType string) error
	OrCreateWeek(ctx context.Context, weekStart time.Time) (*Week, error)
	ApplyTemplate(ctx context.Context, templateID int64, weekStart time.Time) error
	WeekMeals(ctx context.Context, weekStart time.Time) ([]WeekMeal, error)
	SetWeekMeal(ctx context.Context, day int, recipeSlug, mealType string, weekStart time.Time) error
	RemoveWeekMeal(ctx context.Context, day int, mealType string, weekStart time.Time) error
	ToggleMealDone(ctx context.Context, mealID int64) (bool, error)
	UndoneMeals(ctx context.Context, weekStart time.Time) ([]WeekMeal, error)
}

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore. The schema is not
// created here; the hosting process must call Migrate once before
// serving requests.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Migrate creates the meal-plan schema. It is idempotent and safe to
// run on every startup.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS templates (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS template_meals (
		id SERIAL PRIMARY KEY,
		template_id INTEGER NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		day INTEGER NOT NULL CHECK (day >= 0 AND day <= 6),
		recipe_slug TEXT NOT NULL,
		meal_type TEXT NOT NULL DEFAULT 'dinner',
		UNIQUE (template_id, day, meal_type)
	);

	CREATE TABLE IF NOT EXISTS active_week (
		id SERIAL PRIMARY KEY,
		week_start DATE NOT NULL UNIQUE,
		template_id INTEGER REFERENCES templates(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS week_meals (
		id SERIAL PRIMARY KEY,
		week_id INTEGER NOT NULL REFERENCES active_week(id) ON DELETE CASCADE,
		day INTEGER NOT NULL CHECK (day >= 0 AND day <= 6),
		recipe_slug TEXT NOT NULL,
		meal_type TEXT NOT NULL DEFAULT 'dinner',
		is_done BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (week_id, day, meal_type)
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Templates returns all templates ordered by name.
func (s *PostgresStore) Templates(ctx context.Context) ([]Template, error) {
	var templates []Template
	err := s.db.SelectContext(ctx, &templates, "SELECT * FROM templates ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to get templates: %w", err)
	}
	return templates, nil
}

// Template retrieves a single template by ID, or nil when not found.
func (s *PostgresStore) Template(ctx context.Context, id int64) (*Template, error) {
	var t Template
	err := s.db.GetContext(ctx, &t, "SELECT * FROM templates WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &t, nil
}

// CreateTemplate creates a new template and returns its ID.
func (s *PostgresStore) CreateTemplate(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "INSERT INTO templates (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create template: %w", err)
	}
	return id, nil
}

// DeleteTemplate deletes a template; its meals cascade.
func (s *PostgresStore) DeleteTemplate(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// TemplateMeals returns the meals of a template ordered by day.
func (s *PostgresStore) TemplateMeals(ctx context.Context, templateID int64) ([]TemplateMeal, error) {
	var meals []TemplateMeal
	err := s.db.SelectContext(ctx, &meals,
		"SELECT * FROM template_meals WHERE template_id = $1 ORDER BY day", templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template meals: %w", err)
	}
	return meals, nil
}

// SetTemplateMeal sets or replaces the meal for a (day, meal type)
// slot in a template.
func (s *PostgresStore) SetTemplateMeal(ctx context.Context, templateID int64, day int, recipeSlug, mealType string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO template_meals (template_id, day, recipe_slug, meal_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (template_id, day, meal_type) DO UPDATE SET recipe_slug = EXCLUDED.recipe_slug`,
		templateID, day, recipeSlug, mealType)
	if err != nil {
		return fmt.Errorf("failed to set template meal: %w", err)
	}
	return nil
}

// RemoveTemplateMeal clears a (day, meal type) slot in a template.
func (s *PostgresStore) RemoveTemplateMeal(ctx context.Context, templateID int64, day int, mealType string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM template_meals WHERE template_id = $1 AND day = $2 AND meal_type = $3",
		templateID, day, mealType)
	if err != nil {
		return fmt.Errorf("failed to remove template meal: %w", err)
	}
	return nil
}

// OrCreateWeek returns the active-week row for weekStart, creating it
// if it does not exist yet.
func (s *PostgresStore) OrCreateWeek(ctx context.Context, weekStart time.Time) (*Week, error) {
	date := weekStart.Format("2006-01-02")

	var w Week
	err := s.db.GetContext(ctx, &w, "SELECT * FROM active_week WHERE week_start = $1", date)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get active week: %w", err)
	}

	err = s.db.GetContext(ctx, &w,
		"INSERT INTO active_week (week_start) VALUES ($1) RETURNING *", date)
	if err != nil {
		return nil, fmt.Errorf("failed to create active week: %w", err)
	}
	return &w, nil
}

// ApplyTemplate replaces the week's meals with a copy of the
// template's meals and records which template was applied.
func (s *PostgresStore) ApplyTemplate(ctx context.Context, templateID int64, weekStart time.Time) error {
	week, err := s.OrCreateWeek(ctx, weekStart)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM week_meals WHERE week_id = $1", week.ID); err != nil {
		return fmt.Errorf("failed to clear week meals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO week_meals (week_id, day, recipe_slug, meal_type, is_done)
		SELECT $1, day, recipe_slug, meal_type, FALSE
		FROM template_meals WHERE template_id = $2`,
		week.ID, templateID)
	if err != nil {
		return fmt.Errorf("failed to copy template meals: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE active_week SET template_id = $1 WHERE id = $2", templateID, week.ID); err != nil {
		return fmt.Errorf("failed to update week template: %w", err)
	}
	return nil
}

// WeekMeals returns all meals of the week ordered by day.
func (s *PostgresStore) WeekMeals(ctx context.Context, weekStart time.Time) ([]WeekMeal, error) {
	week, err := s.OrCreateWeek(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	var meals []WeekMeal
	err = s.db.SelectContext(ctx, &meals,
		"SELECT * FROM week_meals WHERE week_id = $1 ORDER BY day", week.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get week meals: %w", err)
	}
	return meals, nil
}

// SetWeekMeal sets or replaces the meal for a (day, meal type) slot in
// the active week. Replacing a slot keeps its done flag.
func (s *PostgresStore) SetWeekMeal(ctx context.Context, day int, recipeSlug, mealType string, weekStart time.Time) error {
	week, err := s.OrCreateWeek(ctx, weekStart)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO week_meals (week_id, day, recipe_slug, meal_type, is_done)
		VALUES ($1, $2, $3, $4, FALSE)
		ON CONFLICT (week_id, day, meal_type) DO UPDATE SET recipe_slug = EXCLUDED.recipe_slug`,
		week.ID, day, recipeSlug, mealType)
	if err != nil {
		return fmt.Errorf("failed to set week meal: %w", err)
	}
	return nil
}

// RemoveWeekMeal clears a (day, meal type) slot in the active week.
func (s *PostgresStore) RemoveWeekMeal(ctx context.Context, day int, mealType string, weekStart time.Time) error {
	week, err := s.OrCreateWeek(ctx, weekStart)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"DELETE FROM week_meals WHERE week_id = $1 AND day = $2 AND meal_type = $3",
		week.ID, day, mealType)
	if err != nil {
		return fmt.Errorf("failed to remove week meal: %w", err)
	}
	return nil
}

// ToggleMealDone flips the done flag of a meal and returns the new
// state. A missing meal reports false.
func (s *PostgresStore) ToggleMealDone(ctx context.Context, mealID int64) (bool, error) {
	var isDone bool
	err := s.db.QueryRowContext(ctx,
		"UPDATE week_meals SET is_done = NOT is_done WHERE id = $1 RETURNING is_done", mealID).Scan(&isDone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to toggle meal: %w", err)
	}
	return isDone, nil
}

// UndoneMeals returns the week's not-yet-cooked meals ordered by day.
// This is the input set for the shopping list.
func (s *PostgresStore) UndoneMeals(ctx context.Context, weekStart time.Time) ([]WeekMeal, error) {
	week, err := s.OrCreateWeek(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	var meals []WeekMeal
	err = s.db.SelectContext(ctx, &meals,
		"SELECT * FROM week_meals WHERE week_id = $1 AND is_done = FALSE ORDER BY day", week.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get undone meals: %w", err)
	}
	return meals, nil
}
