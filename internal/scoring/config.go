package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultHighPriorityAbove = 25

// Config is the serialisable form of a rule table.
type Config struct {
	Rules []RuleConfig `mapstructure:"rules" yaml:"rules"`
	// Skills is the demand-weighted skill lookup. Every entry becomes a rule matching
	// listings with a skill containing the name.
	Skills []SkillConfig `mapstructure:"skills" yaml:"skills"`
	// HighPriorityAbove is the score a listing must exceed to be labelled HIGH.
	HighPriorityAbove *int `mapstructure:"high-priority-above" yaml:"high-priority-above"`
}

// SkillConfig is one entry of the skill demand table. Names are matched
// case-insensitively and may contain dots (node.js, asp.net).
type SkillConfig struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Bonus int    `mapstructure:"bonus" yaml:"bonus"`
}

// RuleConfig describes one scoring rule. Exactly one of Field or Expr must be set.
type RuleConfig struct {
	Category string   `mapstructure:"category" yaml:"category"`
	Field    string   `mapstructure:"field" yaml:"field"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
	Expr     string   `mapstructure:"expr" yaml:"expr"`
	Bonus    int      `mapstructure:"bonus" yaml:"bonus"`
	// Group makes rules mutually exclusive: only the first matching rule of a group counts.
	Group string `mapstructure:"group" yaml:"group"`
}

// DefaultConfig returns the canonical rule set.
func DefaultConfig() Config {
	high := defaultHighPriorityAbove
	return Config{
		Rules: []RuleConfig{
			{Category: "immediate-pay", Field: FieldImmediatePay, Bonus: 10},
			{Category: "recency", Field: FieldPosted, Keywords: []string{"today", "recent", "minutes", "hours"}, Bonus: 8},
			{Category: "pay-tier-high", Field: FieldBudget, Keywords: []string{"$50", "$100", "$150"}, Bonus: 6, Group: "pay-tier"},
			{Category: "pay-tier-mid", Field: FieldBudget, Keywords: []string{"$20", "$30"}, Bonus: 4, Group: "pay-tier"},
			{Category: "trusted-platform", Field: FieldPlatform, Keywords: []string{"freelancer", "upwork"}, Bonus: 5},
		},
		Skills: []SkillConfig{
			{Name: "ai", Bonus: 3},
			{Name: "full-stack", Bonus: 3},
			{Name: "machine learning", Bonus: 3},
			{Name: "nlp", Bonus: 3},
			{Name: "python", Bonus: 3},
		},
		HighPriorityAbove: &high,
	}
}

// IsZero reports whether the config defines no rules at all.
func (c Config) IsZero() bool {
	return len(c.Rules) == 0 && len(c.Skills) == 0
}

// LoadFile reads a rule table from a YAML file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read rules file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse rules file %q: %w", path, err)
	}

	return cfg, nil
}
