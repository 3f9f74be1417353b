package cooklang

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeRecipe(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDerivesSlugFromFileName(t *testing.T) {
	dir := t.TempDir()
	path := writeRecipe(t, dir, "hernekeitto.cook", ">> Hernekeitto\nKeitä @herneet{500 g}.\n")

	recipe, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "hernekeitto", recipe.Slug)
	assert.Equal(t, "Hernekeitto", recipe.Title)
}

func TestLoadAllSortsByTitleAndRecursesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "zucchini.cook", ">> Zucchini Pasta\nStep.\n")
	writeRecipe(t, dir, filepath.Join("arkiruuat", "aamupuuro.cook"), ">> Aamupuuro\nStep.\n")
	writeRecipe(t, dir, "keitto.cook", ">> Keitto\nStep.\n")

	recipes, err := LoadAll(dir, zap.NewNop())

	require.NoError(t, err)
	require.Len(t, recipes, 3)
	assert.Equal(t, "Aamupuuro", recipes[0].Title)
	assert.Equal(t, "Keitto", recipes[1].Title)
	assert.Equal(t, "Zucchini Pasta", recipes[2].Title)
}

func TestLoadAllSkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "good-one.cook", ">> Good One\nStep.\n")
	writeRecipe(t, dir, "good-two.cook", ">> Good Two\nStep.\n")
	// A dangling symlink fails to read but must not block the rest.
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing.cook"), filepath.Join(dir, "broken.cook")))

	recipes, err := LoadAll(dir, zap.NewNop())

	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Good One", recipes[0].Title)
	assert.Equal(t, "Good Two", recipes[1].Title)
}

func TestLoadAllIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "notes.txt", "not a recipe")
	writeRecipe(t, dir, "soup.cook", ">> Soup\nStep.\n")

	recipes, err := LoadAll(dir, zap.NewNop())

	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Soup", recipes[0].Title)
}

func TestSaveRoundTripsRawContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uusi", "resepti.cook")
	content := ">> Resepti\n\nLisää @raaka-aine{määrä}.\n"

	require.NoError(t, Save(path, content))

	recipe, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, content, recipe.RawContent)
}

func TestLibraryGetAndExists(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, filepath.Join("nested", "kalakeitto.cook"), ">> Kalakeitto\nStep.\n")
	lib := NewLibrary(dir, zap.NewNop())

	recipe, err := lib.Get("kalakeitto")
	require.NoError(t, err)
	require.NotNil(t, recipe)
	assert.Equal(t, "Kalakeitto", recipe.Title)

	missing, err := lib.Get("ei-ole")
	require.NoError(t, err)
	assert.Nil(t, missing)

	exists, err := lib.Exists("kalakeitto")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLibrarySaveNewRecipeGoesToNewRecipeDir(t *testing.T) {
	dir := t.TempDir()
	lib := NewLibrary(dir, zap.NewNop())

	require.NoError(t, lib.Save("uusi-resepti", ">> Uusi Resepti\nStep.\n"))

	_, err := os.Stat(filepath.Join(dir, "arkiruuat", "uusi-resepti.cook"))
	assert.NoError(t, err)
}

func TestLibrarySaveOverwritesExistingInPlace(t *testing.T) {
	dir := t.TempDir()
	path := writeRecipe(t, dir, filepath.Join("nested", "keitto.cook"), ">> Vanha\nStep.\n")
	lib := NewLibrary(dir, zap.NewNop())

	require.NoError(t, lib.Save("keitto", ">> Uusi\nStep.\n"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ">> Uusi\nStep.\n", string(content))
	_, err = os.Stat(filepath.Join(dir, "arkiruuat", "keitto.cook"))
	assert.True(t, os.IsNotExist(err))
}

func TestLibraryBySlug(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "a.cook", ">> A\nStep.\n")
	writeRecipe(t, dir, "b.cook", ">> B\nStep.\n")
	lib := NewLibrary(dir, zap.NewNop())

	bySlug, err := lib.BySlug()

	require.NoError(t, err)
	assert.Len(t, bySlug, 2)
	assert.Equal(t, "A", bySlug["a"].Title)
}

func TestSanitizeSlug(t *testing.T) {
	assert.Equal(t, "makaronilaatikko", SanitizeSlug("Makaronilaatikko"))
	assert.Equal(t, "taytetyt-paprikat", SanitizeSlug("Täytetyt Paprikat"))
	assert.Equal(t, "smorgastarta", SanitizeSlug("Smörgåstårta"))
}
