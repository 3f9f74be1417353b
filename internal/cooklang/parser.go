package cooklang

import (
	"regexp"
	"strings"
)

// DefaultSection is the section name used for steps that appear before
// any explicit header.
const DefaultSection = "Ohjeet"

// Name characters cover ASCII letters, the Finnish accented vowels,
// underscore and hyphen. Amounts run to the first closing brace; nested
// braces are not supported.
var (
	ingredientPattern     = regexp.MustCompile(`@([a-zA-ZäöåÄÖÅ_-]+)\{([^}]*)\}`)
	bareIngredientPattern = regexp.MustCompile(`^@([a-zA-ZäöåÄÖÅ_-]+)`)
	ingredientAtStart     = regexp.MustCompile(`^@([a-zA-ZäöåÄÖÅ_-]+)\{([^}]*)\}`)
	toolPattern           = regexp.MustCompile(`#([a-zA-ZäöåÄÖÅ_-]+)\{[^}]*\}`)
	timerPattern          = regexp.MustCompile(`~\{([^}]*)\}`)
)

func displayName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// ParseIngredient parses a single annotation fragment. It tries the
// braced form @name{amount} first, then a bare @name. Anything else is
// returned as-is in the Name field rather than failing.
func ParseIngredient(fragment string) Ingredient {
	if m := ingredientAtStart.FindStringSubmatch(fragment); m != nil {
		return Ingredient{Name: displayName(m[1]), Amount: m[2]}
	}
	if m := bareIngredientPattern.FindStringSubmatch(fragment); m != nil {
		return Ingredient{Name: displayName(m[1])}
	}
	return Ingredient{Name: fragment}
}

// readableStep strips annotation markup from a step line, leaving plain
// prose: @name{amount} and #tool{..} collapse to their names, ~{value}
// to its value.
func readableStep(line string) string {
	line = ingredientPattern.ReplaceAllStringFunc(line, func(match string) string {
		m := ingredientPattern.FindStringSubmatch(match)
		return displayName(m[1])
	})
	line = toolPattern.ReplaceAllStringFunc(line, func(match string) string {
		m := toolPattern.FindStringSubmatch(match)
		return displayName(m[1])
	})
	line = timerPattern.ReplaceAllString(line, "$1")
	return line
}

// titleFromSlug derives a fallback title: hyphens become spaces and
// each word is capitalized.
func titleFromSlug(slug string) string {
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}

// Parse turns raw markup text into a Recipe.
//
// Lines starting with ">>" set the title (the last one wins), a single
// "#" opens a new section ("##" does not), and every other non-blank
// line is a step. The ingredient list is collected in a separate scan
// over the whole document: braced annotations only, first-seen order,
// with duplicate names dropped (the first occurrence keeps its amount).
func Parse(content, slug string) *Recipe {
	title := titleFromSlug(slug)

	var ingredients []Ingredient
	seen := make(map[string]bool)
	for _, m := range ingredientPattern.FindAllStringSubmatch(content, -1) {
		name := displayName(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		ingredients = append(ingredients, Ingredient{Name: name, Amount: m[2]})
	}

	var sections []Section
	currentSection := DefaultSection
	var currentSteps []string

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ">>") {
			title = strings.TrimSpace(line[2:])
			continue
		}

		if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "##") {
			if len(currentSteps) > 0 {
				sections = append(sections, Section{Name: currentSection, Steps: currentSteps})
			}
			currentSection = strings.TrimSpace(line[1:])
			currentSteps = nil
			continue
		}

		if step := strings.TrimSpace(readableStep(line)); step != "" {
			currentSteps = append(currentSteps, step)
		}
	}

	if len(currentSteps) > 0 {
		sections = append(sections, Section{Name: currentSection, Steps: currentSteps})
	}

	return &Recipe{
		Slug:        slug,
		Title:       title,
		Sections:    sections,
		Ingredients: ingredients,
		RawContent:  content,
	}
}
