package proposal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/spigell/gig-ranker/internal/listing"
	"github.com/spigell/gig-ranker/internal/ranking"
	"github.com/spigell/gig-ranker/internal/scoring"
)

// StatusReady marks an application whose proposal is drafted but not yet sent.
const StatusReady = "Ready to Submit"

// Application is a drafted response to one selected listing.
type Application struct {
	ID        uuid.UUID
	ListingID string
	JobTitle  string
	Platform  string
	Score     int
	Priority  scoring.Priority
	Category  string
	Proposal  string
	Status    string
}

// Options control how listings are classified.
type Options struct {
	Categories []Category
	Default    string
}

// Prepare drafts an application for every selected listing, keeping the selection order.
func Prepare(ctx context.Context, w Writer, top []ranking.Scored[*listing.Listing, int], table *scoring.Table) ([]Application, error) {
	return PrepareWithOptions(ctx, w, top, table, Options{})
}

// PrepareWithOptions is Prepare with custom categories.
func PrepareWithOptions(ctx context.Context, w Writer, top []ranking.Scored[*listing.Listing, int], table *scoring.Table, opts Options) ([]Application, error) {
	if w == nil {
		return nil, fmt.Errorf("proposal writer is required")
	}
	if table == nil {
		return nil, fmt.Errorf("scoring table is required")
	}

	categories := opts.Categories
	if len(categories) == 0 {
		categories = DefaultCategories()
	}
	def := opts.Default
	if def == "" {
		def = DefaultCategory
	}

	applications := make([]Application, 0, len(top))
	for _, s := range top {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		l := s.Item
		category := Classify(l.Title, categories, def)
		text, err := w.Write(ctx, l, category)
		if err != nil {
			return nil, fmt.Errorf("draft proposal for %q: %w", l.Title, err)
		}

		applications = append(applications, Application{
			ID:        uuid.New(),
			ListingID: l.ID,
			JobTitle:  l.Title,
			Platform:  l.Platform,
			Score:     s.Score,
			Priority:  table.Priority(s.Score),
			Category:  category,
			Proposal:  text,
			Status:    StatusReady,
		})
	}

	return applications, nil
}
