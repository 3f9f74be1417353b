package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ruokalista/internal/cooklang"
	"ruokalista/internal/planner"
	"ruokalista/internal/platform/gitsync"
	"ruokalista/internal/shopping"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// PlannerStore defines the interface for meal-plan data operations.
type PlannerStore interface {
	Templates(ctx context.Context) ([]planner.Template, error)
	Template(ctx context.Context, id int64) (*planner.Template, error)
	CreateTemplate(ctx context.Context, name string) (int64, error)
	DeleteTemplate(ctx context.Context, id int64) error
	TemplateMeals(ctx context.Context, templateID int64) ([]planner.TemplateMeal, error)
	SetTemplateMeal(ctx context.Context, templateID int64, day int, recipeSlug, mealType string) error
	RemoveTemplateMeal(ctx context.Context, templateID int64, day int, mealType string) error
	ApplyTemplate(ctx context.Context, templateID int64, weekStart time.Time) error
	WeekMeals(ctx context.Context, weekStart time.Time) ([]planner.WeekMeal, error)
	SetWeekMeal(ctx context.Context, day int, recipeSlug, mealType string, weekStart time.Time) error
	RemoveWeekMeal(ctx context.Context, day int, mealType string, weekStart time.Time) error
	ToggleMealDone(ctx context.Context, mealID int64) (bool, error)
	UndoneMeals(ctx context.Context, weekStart time.Time) ([]planner.WeekMeal, error)
}

// RecipeLibrary defines the interface for the markup recipe
// collection.
type RecipeLibrary interface {
	All() ([]*cooklang.Recipe, error)
	BySlug() (map[string]*cooklang.Recipe, error)
	Get(slug string) (*cooklang.Recipe, error)
	Exists(slug string) (bool, error)
	Save(slug, content string) error
}

// Syncer defines the interface for the git sync collaborator.
type Syncer interface {
	Status() *gitsync.Status
	Sync() *gitsync.Result
}

// Handler handles HTTP requests.
type Handler struct {
	Store   PlannerStore
	Library RecipeLibrary
	Syncer  Syncer
	Logger  *zap.Logger

	now func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(store PlannerStore, library RecipeLibrary, syncer Syncer, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Library: library, Syncer: syncer, Logger: logger, now: time.Now}
}

// Register attaches all routes to the router.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/week", h.GetWeek)
	r.POST("/week/meals", h.SetWeekMeal)
	r.POST("/week/apply-template", h.ApplyTemplate)
	r.POST("/meals/:id/toggle", h.ToggleMeal)

	r.GET("/recipes", h.GetRecipes)
	r.POST("/recipes", h.CreateRecipe)
	r.GET("/recipes/:slug", h.GetRecipe)
	r.PUT("/recipes/:slug", h.UpdateRecipe)

	r.GET("/templates", h.GetTemplates)
	r.POST("/templates", h.CreateTemplate)
	r.GET("/templates/:id", h.GetTemplate)
	r.DELETE("/templates/:id", h.DeleteTemplate)
	r.POST("/templates/:id/meals", h.SetTemplateMeal)

	r.GET("/shopping", h.GetShopping)

	r.GET("/sync/status", h.SyncStatus)
	r.POST("/sync", h.DoSync)
}

type setMealRequest struct {
	Day        int    `json:"day"`
	RecipeSlug string `json:"recipe_slug"`
	MealType   string `json:"meal_type"`
}

type applyTemplateRequest struct {
	TemplateID int64 `json:"template_id"`
}

type createTemplateRequest struct {
	Name string `json:"name"`
}

type createRecipeRequest struct {
	Slug    string `json:"slug"`
	Content string `json:"content"`
}

type updateRecipeRequest struct {
	Content string `json:"content"`
}

// GetWeek returns the current week's meals grouped by day, with
// recipes resolved against the collection. A meal whose recipe no
// longer exists is returned with a null recipe, not an error.
func (h *Handler) GetWeek(c *gin.Context) {
	weekStart := planner.WeekStart(h.now())

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	meals, err := h.Store.WeekMeals(ctx, weekStart)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}

	recipes, err := h.Library.BySlug()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to load recipes: %s", err.Error()))
		return
	}

	days := make([]gin.H, 7)
	for day := range days {
		days[day] = gin.H{
			"day":   day,
			"name":  planner.DayNames[day],
			"meals": []gin.H{},
		}
	}
	for _, meal := range meals {
		var recipe *cooklang.Recipe
		if r, ok := recipes[meal.RecipeSlug]; ok {
			recipe = r
		}
		dayMeals := days[meal.Day]["meals"].([]gin.H)
		days[meal.Day]["meals"] = append(dayMeals, gin.H{
			"id":        meal.ID,
			"slug":      meal.RecipeSlug,
			"meal_type": meal.MealType,
			"is_done":   meal.IsDone,
			"recipe":    recipe,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"week_start": weekStart.Format("2006-01-02"),
		"week_end":   weekStart.AddDate(0, 0, 6).Format("2006-01-02"),
		"days":       days,
	})
}

// SetWeekMeal sets or clears a meal slot in the current week. An empty
// recipe slug clears the slot.
func (h *Handler) SetWeekMeal(c *gin.Context) {
	var req setMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}
	if req.Day < 0 || req.Day > 6 {
		c.String(http.StatusBadRequest, "day must be between 0 and 6")
		return
	}
	if req.MealType == "" {
		req.MealType = planner.DefaultMealType
	}

	weekStart := planner.WeekStart(h.now())

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	var err error
	if req.RecipeSlug == "" {
		err = h.Store.RemoveWeekMeal(ctx, req.Day, req.MealType, weekStart)
	} else {
		err = h.Store.SetWeekMeal(ctx, req.Day, req.RecipeSlug, req.MealType, weekStart)
	}
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}

	c.Status(http.StatusNoContent)
}

// ApplyTemplate replaces the current week's meals with a template's.
func (h *Handler) ApplyTemplate(c *gin.Context) {
	var req applyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}
	if req.TemplateID == 0 {
		c.String(http.StatusBadRequest, "template_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.Store.ApplyTemplate(ctx, req.TemplateID, planner.WeekStart(h.now())); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleMeal flips a meal's done flag and returns the new state.
func (h *Handler) ToggleMeal(c *gin.Context) {
	mealID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid meal id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	isDone, err := h.Store.ToggleMealDone(ctx, mealID)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_done": isDone})
}

// GetRecipes lists every recipe in the collection, sorted by title.
func (h *Handler) GetRecipes(c *gin.Context) {
	recipes, err := h.Library.All()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to load recipes: %s", err.Error()))
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe returns a single recipe by slug.
func (h *Handler) GetRecipe(c *gin.Context) {
	recipe, err := h.Library.Get(c.Param("slug"))
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to load recipe: %s", err.Error()))
		return
	}
	if recipe == nil {
		c.String(http.StatusNotFound, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe creates a new recipe file from raw markup text. The
// slug is sanitized and must not collide with an existing recipe.
func (h *Handler) CreateRecipe(c *gin.Context) {
	var req createRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}

	slug := cooklang.SanitizeSlug(req.Slug)
	if slug == "" {
		c.String(http.StatusBadRequest, "slug is required")
		return
	}

	exists, err := h.Library.Exists(slug)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to check recipe: %s", err.Error()))
		return
	}
	if exists {
		c.String(http.StatusConflict, "A recipe with this slug already exists")
		return
	}

	if err := h.Library.Save(slug, req.Content); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to save recipe: %s", err.Error()))
		return
	}

	h.Logger.Info("recipe created", zap.String("slug", slug))
	c.JSON(http.StatusCreated, gin.H{"slug": slug})
}

// UpdateRecipe overwrites a recipe's raw text in full. There is no
// partial edit: the body replaces the whole backing file.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	var req updateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}

	slug := c.Param("slug")
	if err := h.Library.Save(slug, req.Content); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to save recipe: %s", err.Error()))
		return
	}

	h.Logger.Info("recipe saved", zap.String("slug", slug))
	c.JSON(http.StatusOK, gin.H{"slug": slug})
}

// GetTemplates lists all meal-plan templates.
func (h *Handler) GetTemplates(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	templates, err := h.Store.Templates(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}
	c.JSON(http.StatusOK, templates)
}

// CreateTemplate creates a new named template.
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}
	if req.Name == "" {
		c.String(http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	id, err := h.Store.CreateTemplate(ctx, req.Name)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "name": req.Name})
}

// GetTemplate returns a template with its meals grouped by day and
// recipes resolved against the collection.
func (h *Handler) GetTemplate(c *gin.Context) {
	templateID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid template id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	template, err := h.Store.Template(ctx, templateID)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}
	if template == nil {
		c.String(http.StatusNotFound, "Template not found")
		return
	}

	meals, err := h.Store.TemplateMeals(ctx, templateID)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}

	recipes, err := h.Library.BySlug()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to load recipes: %s", err.Error()))
		return
	}

	days := make([]gin.H, 7)
	for day := range days {
		days[day] = gin.H{
			"day":  day,
			"name": planner.DayNames[day],
			"meal": nil,
		}
	}
	for _, meal := range meals {
		var recipe *cooklang.Recipe
		if r, ok := recipes[meal.RecipeSlug]; ok {
			recipe = r
		}
		days[meal.Day]["meal"] = gin.H{
			"slug":      meal.RecipeSlug,
			"meal_type": meal.MealType,
			"recipe":    recipe,
		}
	}

	c.JSON(http.StatusOK, gin.H{"template": template, "days": days})
}

// DeleteTemplate deletes a template and its meals.
func (h *Handler) DeleteTemplate(c *gin.Context) {
	templateID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid template id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.Store.DeleteTemplate(ctx, templateID); err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}

	c.Status(http.StatusNoContent)
}

// SetTemplateMeal sets or clears a meal slot in a template. An empty
// recipe slug clears the slot.
func (h *Handler) SetTemplateMeal(c *gin.Context) {
	templateID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid template id")
		return
	}

	var req setMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}
	if req.Day < 0 || req.Day > 6 {
		c.String(http.StatusBadRequest, "day must be between 0 and 6")
		return
	}
	if req.MealType == "" {
		req.MealType = planner.DefaultMealType
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if req.RecipeSlug == "" {
		err = h.Store.RemoveTemplateMeal(ctx, templateID, req.Day, req.MealType)
	} else {
		err = h.Store.SetTemplateMeal(ctx, templateID, req.Day, req.RecipeSlug, req.MealType)
	}
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}

	c.Status(http.StatusNoContent)
}

// GetShopping aggregates the ingredients of the current week's unmade
// meals into a single shopping list.
func (h *Handler) GetShopping(c *gin.Context) {
	weekStart := planner.WeekStart(h.now())

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	undone, err := h.Store.UndoneMeals(ctx, weekStart)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}

	recipes, err := h.Library.BySlug()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to load recipes: %s", err.Error()))
		return
	}

	entries, meals := shopping.Aggregate(undone, recipes)
	if entries == nil {
		entries = []shopping.Entry{}
	}
	if meals == nil {
		meals = []shopping.Meal{}
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": entries, "meals": meals})
}

// SyncStatus reports the git status of the recipe directory.
func (h *Handler) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Syncer.Status())
}

// DoSync runs a full git sync. The result is always 200 with a
// structured body; sync failures are data, not HTTP errors.
func (h *Handler) DoSync(c *gin.Context) {
	result := h.Syncer.Sync()
	if !result.Success {
		h.Logger.Warn("recipe sync failed", zap.String("message", result.Message))
	}
	c.JSON(http.StatusOK, result)
}
