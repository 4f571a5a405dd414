package scoring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spigell/gig-ranker/internal/listing"
)

// Listing attributes a rule can match against.
const (
	FieldImmediatePay = "immediate-pay"
	FieldTitle        = "title"
	FieldBudget       = "budget"
	FieldPlatform     = "platform"
	FieldPosted       = "posted"
	FieldSkills       = "skills"
	FieldPaySpeed     = "pay-speed"
	FieldLocation     = "location"
	FieldDescription  = "description"
	FieldHours        = "hours"
)

// Matcher decides whether a rule applies to a listing.
type Matcher interface {
	Match(l *listing.Listing) bool
	String() string
}

type flagMatcher struct {
	field string
}

func (m flagMatcher) Match(l *listing.Listing) bool {
	return l.ImmediatePay
}

func (m flagMatcher) String() string {
	return m.field + " is set"
}

type keywordMatcher struct {
	field    string
	keywords []string
}

func newKeywordMatcher(field string, keywords []string) (keywordMatcher, error) {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		lowered = append(lowered, k)
	}
	if len(lowered) == 0 {
		return keywordMatcher{}, fmt.Errorf("field %q needs at least one keyword", field)
	}
	return keywordMatcher{field: field, keywords: lowered}, nil
}

func (m keywordMatcher) Match(l *listing.Listing) bool {
	if m.field == FieldSkills {
		return slices.ContainsFunc(l.Skills, m.contains)
	}
	return m.contains(textField(l, m.field))
}

func (m keywordMatcher) contains(s string) bool {
	s = strings.ToLower(s)
	for _, k := range m.keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func (m keywordMatcher) String() string {
	return fmt.Sprintf("%s contains any of %q", m.field, m.keywords)
}

func textField(l *listing.Listing, field string) string {
	switch field {
	case FieldTitle:
		return l.Title
	case FieldBudget:
		return l.Budget
	case FieldPlatform:
		return l.Platform
	case FieldPosted:
		return l.Posted
	case FieldPaySpeed:
		return l.PaySpeed
	case FieldLocation:
		return l.Location
	case FieldDescription:
		return l.Description
	case FieldHours:
		return l.HoursPerWeek
	default:
		return ""
	}
}

func isTextField(field string) bool {
	switch field {
	case FieldTitle, FieldBudget, FieldPlatform, FieldPosted, FieldSkills,
		FieldPaySpeed, FieldLocation, FieldDescription, FieldHours:
		return true
	default:
		return false
	}
}
