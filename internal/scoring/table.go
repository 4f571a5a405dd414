// Package scoring assigns rule-based desirability scores to listings.
//
// A Table is an ordered list of rules. Every rule carries a category, a matcher and a
// non-negative bonus; the score of a listing is the sum of the bonuses of all matching
// rules. Rules sharing a group are mutually exclusive and the first match in table
// order wins, which is how pay tiers are expressed.
package scoring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spigell/gig-ranker/internal/listing"
)

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
)

// Rule is a compiled scoring rule.
type Rule struct {
	Category string
	Group    string
	Bonus    int
	Matcher  Matcher
}

// Hit is a rule that contributed to a score.
type Hit struct {
	Category string
	Bonus    int
}

type Table struct {
	rules             []Rule
	highPriorityAbove int
}

// Default returns the table compiled from DefaultConfig.
func Default() *Table {
	t, err := Compile(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("default scoring rules: %v", err))
	}
	return t
}

// Compile validates cfg and builds a Table from it. Skill entries are appended after
// the explicit rules in config order; a skill name may appear only once.
func Compile(cfg Config) (*Table, error) {
	t := &Table{highPriorityAbove: defaultHighPriorityAbove}
	if cfg.HighPriorityAbove != nil {
		t.highPriorityAbove = *cfg.HighPriorityAbove
	}

	for idx, rc := range cfg.Rules {
		rule, err := compileRule(rc)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", idx, rc.Category, err)
		}
		t.rules = append(t.rules, rule)
	}

	seen := make(map[string]bool, len(cfg.Skills))
	for idx, sc := range cfg.Skills {
		name := strings.ToLower(strings.TrimSpace(sc.Name))
		if name == "" {
			return nil, fmt.Errorf("skill %d: name is required", idx)
		}
		if seen[name] {
			return nil, fmt.Errorf("skill %q: duplicate entry", sc.Name)
		}
		seen[name] = true

		rule, err := compileRule(RuleConfig{
			Category: "skill:" + name,
			Field:    FieldSkills,
			Keywords: []string{name},
			Bonus:    sc.Bonus,
		})
		if err != nil {
			return nil, fmt.Errorf("skill %q: %w", sc.Name, err)
		}
		t.rules = append(t.rules, rule)
	}

	if err := validateGroups(t.rules); err != nil {
		return nil, err
	}

	return t, nil
}

func compileRule(rc RuleConfig) (Rule, error) {
	field := strings.ToLower(strings.TrimSpace(rc.Field))
	source := strings.TrimSpace(rc.Expr)

	if rc.Bonus < 0 {
		return Rule{}, fmt.Errorf("bonus must not be negative, got %d", rc.Bonus)
	}

	category := strings.TrimSpace(rc.Category)
	if category == "" {
		category = field
	}

	rule := Rule{
		Category: category,
		Group:    strings.TrimSpace(rc.Group),
		Bonus:    rc.Bonus,
	}

	switch {
	case field != "" && source != "":
		return Rule{}, fmt.Errorf("field and expr are mutually exclusive")
	case source != "":
		m, err := newExprMatcher(source)
		if err != nil {
			return Rule{}, err
		}
		if rule.Category == "" {
			rule.Category = "expr"
		}
		rule.Matcher = m
	case field == FieldImmediatePay:
		rule.Matcher = flagMatcher{field: field}
	case isTextField(field):
		m, err := newKeywordMatcher(field, rc.Keywords)
		if err != nil {
			return Rule{}, err
		}
		rule.Matcher = m
	case field == "":
		return Rule{}, fmt.Errorf("either field or expr is required")
	default:
		return Rule{}, fmt.Errorf("unknown field %q", rc.Field)
	}

	return rule, nil
}

// validateGroups makes sure bonuses never grow along a group so that an additional
// matching keyword can not lower a score.
func validateGroups(rules []Rule) error {
	last := make(map[string]Rule)
	for _, r := range rules {
		if r.Group == "" {
			continue
		}
		if prev, ok := last[r.Group]; ok && r.Bonus > prev.Bonus {
			return fmt.Errorf("group %q: rule %s (bonus %d) follows %s (bonus %d); bonuses in a group must not increase",
				r.Group, r.Category, r.Bonus, prev.Category, prev.Bonus)
		}
		last[r.Group] = r
	}
	return nil
}

// Rules returns a copy of the compiled rules in evaluation order.
func (t *Table) Rules() []Rule {
	return slices.Clone(t.rules)
}

// Explain returns the rules contributing to the score of l in table order.
func (t *Table) Explain(l *listing.Listing) []Hit {
	var hits []Hit
	taken := make(map[string]bool)
	for _, r := range t.rules {
		if r.Group != "" && taken[r.Group] {
			continue
		}
		if !r.Matcher.Match(l) {
			continue
		}
		if r.Group != "" {
			taken[r.Group] = true
		}
		hits = append(hits, Hit{Category: r.Category, Bonus: r.Bonus})
	}
	return hits
}

// Score returns the sum of all matching rule bonuses.
func (t *Table) Score(l *listing.Listing) int {
	total := 0
	for _, h := range t.Explain(l) {
		total += h.Bonus
	}
	return total
}

func (t *Table) HighPriorityAbove() int {
	return t.highPriorityAbove
}

func (t *Table) Priority(score int) Priority {
	if score > t.highPriorityAbove {
		return PriorityHigh
	}
	return PriorityMedium
}
