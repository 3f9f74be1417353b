package recipe

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Extension is the file extension for structured recipes.
const Extension = ".json"

// Load reads and parses a single structured recipe file. The slug is
// the file name without its extension.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}
	var r Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse recipe file: %w", err)
	}
	r.Slug = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &r, nil
}

// LoadAll walks root recursively and parses every *.json file it
// finds. Files that fail to read or parse are logged and skipped. The
// result is sorted by title.
func LoadAll(root string, logger *zap.Logger) ([]*Recipe, error) {
	var recipes []*Recipe

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != Extension {
			return nil
		}
		r, loadErr := Load(path)
		if loadErr != nil {
			logger.Warn("skipping invalid recipe",
				zap.String("path", path),
				zap.Error(loadErr),
			)
			return nil
		}
		recipes = append(recipes, r)
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

// Save writes a recipe as indented JSON, creating parent directories
// as needed.
func Save(path string, r *Recipe) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create recipe directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write recipe file: %w", err)
	}
	return nil
}
