package cooklang

import (
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// newRecipeDir is the subdirectory under the library root where newly
// created recipes are stored.
const newRecipeDir = "arkiruuat"

// Library is a handle to a directory tree of markup recipes. It holds
// no cache: every call re-reads the tree from disk, which keeps edits
// and git syncs visible without invalidation logic.
type Library struct {
	root   string
	logger *zap.Logger
}

// NewLibrary creates a Library rooted at dir.
func NewLibrary(dir string, logger *zap.Logger) *Library {
	return &Library{root: dir, logger: logger}
}

// All returns every recipe in the library, sorted by title.
func (l *Library) All() ([]*Recipe, error) {
	return LoadAll(l.root, l.logger)
}

// BySlug returns the library keyed by slug. If two files share a slug
// the later one in walk order wins.
func (l *Library) BySlug() (map[string]*Recipe, error) {
	recipes, err := l.All()
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]*Recipe, len(recipes))
	for _, r := range recipes {
		bySlug[r.Slug] = r
	}
	return bySlug, nil
}

// Get returns the recipe with the given slug, or nil if no file with
// that slug exists.
func (l *Library) Get(slug string) (*Recipe, error) {
	path, err := l.findPath(slug)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}
	return Load(path)
}

// Exists reports whether a recipe file with the given slug exists.
func (l *Library) Exists(slug string) (bool, error) {
	path, err := l.findPath(slug)
	if err != nil {
		return false, err
	}
	return path != "", nil
}

// Save overwrites the recipe with the given slug, or creates it under
// the new-recipe subdirectory if no backing file exists yet.
func (l *Library) Save(slug, content string) error {
	path, err := l.findPath(slug)
	if err != nil {
		return err
	}
	if path == "" {
		path = filepath.Join(l.root, newRecipeDir, slug+Extension)
	}
	return Save(path, content)
}

// findPath walks the tree looking for a *.cook file whose stem matches
// the slug. Returns "" when not found.
func (l *Library) findPath(slug string) (string, error) {
	var found string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != Extension {
			return nil
		}
		if strings.TrimSuffix(filepath.Base(path), Extension) == slug {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return found, nil
}

// SanitizeSlug normalizes a user-entered recipe name into a slug:
// lowercase, spaces to hyphens, Finnish accented vowels flattened.
func SanitizeSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "-", "ä", "a", "ö", "o", "å", "a").Replace(slug)
}
