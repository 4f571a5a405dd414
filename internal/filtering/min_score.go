package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/gig-ranker/internal/listing"
)

type minScoreFilter struct {
	min int
}

// NewMinScore creates a filter that removes listings scoring below the configured minimum.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(string) {}

func (f *minScoreFilter) IsEnabled() bool { return true }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.min = 0
	if cfg != nil {
		f.min = cfg.MinScore
	}
	if f.min < 0 {
		return fmt.Errorf("minimum score must not be negative, got %d", f.min)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, v *listing.Listings) (*listing.Listings, Step, error) {
	initial := v.Len()
	if f.min == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}
	if deps.Rules == nil {
		return v, Step{}, fmt.Errorf("scoring rules are required")
	}

	removed := v.Keep(func(l *listing.Listing) bool {
		return deps.Rules.Score(l) >= f.min
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding listings below minimum score",
			zap.Int("min_score", f.min),
			zap.Strings("excluded_listings", removed),
			zap.Int("listings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{"min_score": strconv.Itoa(f.min)}}
}
