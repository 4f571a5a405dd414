// Package proposal picks a proposal category for a listing and drafts the application text.
package proposal

import "strings"

const (
	CategoryResearch    = "research"
	CategoryDevelopment = "development"
	CategoryContent     = "content"

	// DefaultCategory is used when no category keyword appears in the title.
	DefaultCategory = CategoryContent
)

// Category maps a label to the title keywords that select it.
type Category struct {
	Label    string   `mapstructure:"label" yaml:"label"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
}

// DefaultCategories returns the built-in categories in dispatch order.
func DefaultCategories() []Category {
	return []Category{
		{Label: CategoryResearch, Keywords: []string{"research", "paper", "academic"}},
		{Label: CategoryDevelopment, Keywords: []string{"developer", "architect", "engineer"}},
	}
}

// Classify returns the label of the first category with a keyword contained in title,
// ignoring case, or def when none matches.
func Classify(title string, categories []Category, def string) string {
	title = strings.ToLower(title)
	for _, c := range categories {
		for _, k := range c.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" && strings.Contains(title, k) {
				return c.Label
			}
		}
	}
	return def
}
