package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/gig-ranker/internal/listing"
)

// DefaultImmediateKeywords mark a pay speed as immediate.
var DefaultImmediateKeywords = []string{
	"immediate", "today", "urgent", "asap", "quick pay",
	"hourly", "daily pay", "paypal", "instant", "same day",
}

type immediatePayFilter struct {
	disabled bool
	reason   string
	keywords []string
}

// NewImmediatePay creates a filter that keeps listings paying immediately.
func NewImmediatePay() Filter {
	return &immediatePayFilter{}
}

func (f *immediatePayFilter) Name() string { return "immediate_pay" }

func (f *immediatePayFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *immediatePayFilter) IsEnabled() bool { return !f.disabled }

func (f *immediatePayFilter) Validate(cfg *Config) error {
	f.keywords = nil
	source := DefaultImmediateKeywords
	if cfg != nil && len(cfg.ImmediateKeywords) > 0 {
		source = cfg.ImmediateKeywords
	}
	for _, k := range source {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			f.keywords = append(f.keywords, k)
		}
	}
	return nil
}

func (f *immediatePayFilter) Apply(_ context.Context, deps Deps, v *listing.Listings) (*listing.Listings, Step, error) {
	initial := v.Len()
	removed := v.Keep(f.pays)
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding listings without immediate payment",
			zap.Strings("excluded_listings", removed),
			zap.Int("listings_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}

func (f *immediatePayFilter) pays(l *listing.Listing) bool {
	if l.ImmediatePay {
		return true
	}
	speed := strings.ToLower(l.PaySpeed)
	for _, k := range f.keywords {
		if strings.Contains(speed, k) {
			return true
		}
	}
	return false
}

func (f *immediatePayFilter) Status() Status {
	details := map[string]string{}
	if len(f.keywords) > 0 {
		details["keywords"] = strings.Join(f.keywords, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
