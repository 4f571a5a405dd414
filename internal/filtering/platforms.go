package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/gig-ranker/internal/listing"
)

type platformsFilter struct {
	platforms []string
}

// NewPlatforms creates a filter that removes listings from platforms excluded in the config.
func NewPlatforms() Filter {
	return &platformsFilter{}
}

func (f *platformsFilter) Name() string { return "platforms" }

func (f *platformsFilter) Disable(string) {}

func (f *platformsFilter) IsEnabled() bool { return true }

func (f *platformsFilter) Validate(cfg *Config) error {
	f.platforms = nil
	if cfg == nil {
		return nil
	}
	for _, p := range cfg.ExcludedPlatforms {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			f.platforms = append(f.platforms, p)
		}
	}
	return nil
}

func (f *platformsFilter) Apply(_ context.Context, deps Deps, v *listing.Listings) (*listing.Listings, Step, error) {
	initial := v.Len()
	if len(f.platforms) == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded := v.Keep(func(l *listing.Listing) bool {
		platform := strings.ToLower(l.Platform)
		for _, p := range f.platforms {
			if strings.Contains(platform, p) {
				return false
			}
		}
		return true
	})
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding listings by platforms",
			zap.Strings("excluded_platforms", f.platforms),
			zap.Strings("excluded_listings", excluded),
			zap.Int("listings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *platformsFilter) Status() Status {
	details := map[string]string{}
	if len(f.platforms) > 0 {
		details["platforms"] = strings.Join(f.platforms, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
