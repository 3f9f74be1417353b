package cooklang

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Extension is the file extension for markup recipes.
const Extension = ".cook"

// Load reads and parses a single recipe file. The slug is the file name
// without its extension.
func Load(path string) (*Recipe, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}
	slug := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(string(content), slug), nil
}

// LoadAll walks root recursively and parses every *.cook file it finds.
// A file that cannot be read is logged and skipped so one bad recipe
// never blocks the rest of the collection. The result is sorted by
// title.
func LoadAll(root string, logger *zap.Logger) ([]*Recipe, error) {
	var recipes []*Recipe

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != Extension {
			return nil
		}
		recipe, loadErr := Load(path)
		if loadErr != nil {
			logger.Warn("skipping unreadable recipe",
				zap.String("path", path),
				zap.Error(loadErr),
			)
			return nil
		}
		recipes = append(recipes, recipe)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk recipes directory: %w", err)
	}

	sort.Slice(recipes, func(i, j int) bool {
		return recipes[i].Title < recipes[j].Title
	})
	return recipes, nil
}

// Save writes raw recipe text to path, creating parent directories as
// needed. Editing a recipe is always a full-content overwrite.
func Save(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create recipe directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write recipe file: %w", err)
	}
	return nil
}
