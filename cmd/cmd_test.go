package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/gig-ranker/internal/listing"
	"github.com/spigell/gig-ranker/internal/proposal"
	"github.com/spigell/gig-ranker/internal/ranking"
	"github.com/spigell/gig-ranker/internal/scoring"
)

func intPtr(v int) *int { return &v }

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	c := &Config{}
	c.setDefaults()

	if c.Tools.Source != toolsSourceGitHub || c.Tools.Search.Query != "automation" || c.Tools.Search.PerPage != 8 {
		t.Fatalf("unexpected tools defaults %+v %+v", c.Tools, c.Tools.Search)
	}
	if c.Jobs.Top != 5 || c.Jobs.Applications != 3 {
		t.Fatalf("unexpected jobs defaults %+v", c.Jobs)
	}
	if c.Jobs.Export == "" || c.Jobs.ApplicationsFile == "" {
		t.Fatalf("expected default export paths")
	}
}

func TestBuildTable(t *testing.T) {
	t.Parallel()

	rulesFile := filepath.Join(t.TempDir(), "rules.yaml")
	content := "rules:\n  - category: remote\n    field: location\n    keywords: [remote]\n    bonus: 7\n"
	if err := os.WriteFile(rulesFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := &listing.Listing{Location: "Remote", ImmediatePay: true}

	tests := []struct {
		name      string
		config    *Config
		wantScore int
		wantHigh  int
	}{
		{name: "built-in", config: &Config{Jobs: &JobsConfig{}}, wantScore: 10, wantHigh: 25},
		{name: "threshold only", config: &Config{Jobs: &JobsConfig{}, Scoring: &scoring.Config{HighPriorityAbove: intPtr(5)}}, wantScore: 10, wantHigh: 5},
		{
			name: "inline rules",
			config: &Config{Jobs: &JobsConfig{}, Scoring: &scoring.Config{Rules: []scoring.RuleConfig{
				{Category: "immediate", Field: scoring.FieldImmediatePay, Bonus: 1},
			}}},
			wantScore: 1,
			wantHigh:  25,
		},
		{name: "rules file wins", config: &Config{Jobs: &JobsConfig{RulesFile: rulesFile}, Scoring: &scoring.Config{Skills: []scoring.SkillConfig{{Name: "go", Bonus: 1}}}}, wantScore: 7, wantHigh: 25},
		{
			name:      "skills keep built-in rules",
			config:    &Config{Jobs: &JobsConfig{}, Scoring: &scoring.Config{Skills: []scoring.SkillConfig{{Name: "remote", Bonus: 2}}}},
			wantScore: 10,
			wantHigh:  25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, err := buildTable(tt.config)
			if err != nil {
				t.Fatalf("build table: %v", err)
			}
			if got := table.Score(l); got != tt.wantScore {
				t.Fatalf("expected score %d, got %d", tt.wantScore, got)
			}
			if table.HighPriorityAbove() != tt.wantHigh {
				t.Fatalf("expected threshold %d, got %d", tt.wantHigh, table.HighPriorityAbove())
			}
		})
	}
}

func TestBuildTableErrors(t *testing.T) {
	t.Parallel()

	if _, err := buildTable(&Config{Jobs: &JobsConfig{RulesFile: filepath.Join(t.TempDir(), "missing.yaml")}}); err == nil {
		t.Fatalf("expected error for missing rules file")
	}

	bad := &Config{Jobs: &JobsConfig{}, Scoring: &scoring.Config{Rules: []scoring.RuleConfig{{Field: "salary", Keywords: []string{"x"}, Bonus: 1}}}}
	if _, err := buildTable(bad); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestPrintRules(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := printRules(&buf, scoring.Default()); err != nil {
		t.Fatalf("print: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"CATEGORY", "immediate-pay", "pay-tier-mid", "skill:python", "HIGH priority above 25"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestNewProposalWriterWithoutAI(t *testing.T) {
	t.Parallel()

	w, err := newProposalWriter(context.Background(), &AIConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	if _, ok := w.(*proposal.TemplateWriter); !ok {
		t.Fatalf("expected template writer, got %T", w)
	}

	if _, err := newProposalWriter(context.Background(), &AIConfig{Enabled: true, Provider: "openai"}, zap.NewNop()); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}

func newTestSession(t *testing.T, dir string) (*session, *bytes.Buffer, *observer.ObservedLogs) {
	t.Helper()

	config := &Config{Jobs: &JobsConfig{
		ExcludeFile:      filepath.Join(dir, "exclude.json"),
		Export:           filepath.Join(dir, "listings.csv"),
		ApplicationsFile: filepath.Join(dir, "applications.csv"),
	}}
	config.setDefaults()
	config.Jobs.Top = 2
	config.Jobs.Applications = 1

	writer, err := proposal.NewTemplateWriter()
	if err != nil {
		t.Fatalf("writer: %v", err)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	var out bytes.Buffer
	s := &session{
		config:   config,
		logger:   zap.New(core),
		table:    scoring.Default(),
		writer:   writer,
		out:      &out,
		listings: &listing.Listings{Items: []*listing.Listing{
			{ID: "1", Title: "AI Content Writer", Platform: "Indeed"},
			{ID: "2", Title: "AI Solutions Architect", Platform: "Freelancer.com", ImmediatePay: true, Posted: "today"},
			{ID: "3", Title: "ML Research Paper Writer", Platform: "Upwork", Budget: "$30/hour"},
		}},
	}
	s.rank()
	return s, &out, logs
}

func TestSessionApply(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, out, _ := newTestSession(t, dir)

	if len(s.top) != 2 || s.top[0].Item.ID != "2" || s.top[1].Item.ID != "3" {
		t.Fatalf("unexpected selection %v", s.top)
	}

	if err := s.handleAction(context.Background(), PromptYes); !errors.Is(err, errExit) {
		t.Fatalf("expected exit after applying, got %v", err)
	}

	listings, err := os.ReadFile(filepath.Join(dir, "listings.csv"))
	if err != nil {
		t.Fatalf("read listings export: %v", err)
	}
	if got := strings.Count(string(listings), "\n"); got != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines", got)
	}

	apps, err := os.ReadFile(filepath.Join(dir, "applications.csv"))
	if err != nil {
		t.Fatalf("read applications export: %v", err)
	}
	if !strings.Contains(string(apps), "AI Solutions Architect,Freelancer.com,23,MEDIUM,development,Ready to Submit") {
		t.Fatalf("unexpected applications export:\n%s", apps)
	}
	if !strings.Contains(out.String(), "Subject: Senior AI Developer - AI Solutions Architect") {
		t.Fatalf("expected proposal in output:\n%s", out.String())
	}
}

func TestSessionAppendToExcludeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, _, _ := newTestSession(t, dir)

	if !strings.Contains(strings.Join(s.menu(), "|"), PromptAppendToExcludeFile) {
		t.Fatalf("expected exclude option in menu %v", s.menu())
	}

	if err := s.handleAction(context.Background(), PromptAppendToExcludeFile); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(s.top) != 1 || s.top[0].Item.ID != "1" {
		t.Fatalf("expected the remaining listing to be selected, got %v", s.top)
	}

	excluded, err := listing.GetExcludedFromFile(filepath.Join(dir, "exclude.json"))
	if err != nil {
		t.Fatalf("read exclude file: %v", err)
	}
	if strings.Join(excluded.IDs(), ",") != "2,3" {
		t.Fatalf("unexpected excluded ids %v", excluded.IDs())
	}

	if err := s.handleAction(context.Background(), PromptAppendToExcludeFile); !errors.Is(err, errExit) {
		t.Fatalf("expected exit when nothing is left, got %v", err)
	}
}

func TestSessionActions(t *testing.T) {
	t.Parallel()

	s, _, logs := newTestSession(t, t.TempDir())

	if err := s.handleAction(context.Background(), PromptReportByPlatforms); err != nil {
		t.Fatalf("report: %v", err)
	}
	if err := s.handleAction(context.Background(), PromptNo); !errors.Is(err, errExit) {
		t.Fatalf("expected exit, got %v", err)
	}
	if err := s.handleAction(context.Background(), "unknown"); err == nil {
		t.Fatalf("expected invalid action error")
	}
	if logs.FilterField(zap.String("reason", "got no from prompt")).Len() != 1 {
		t.Fatalf("expected exit reason to be logged")
	}
}

func TestFilterConfig(t *testing.T) {
	t.Parallel()

	cfg := filterConfig(&JobsConfig{ExcludeFile: "x.json", MinScore: 4, ExcludePlatforms: []string{"indeed"}})
	if cfg.ExcludeFile != "x.json" || cfg.MinScore != 4 || cfg.ExcludedPlatforms[0] != "indeed" {
		t.Fatalf("unexpected filter config %+v", cfg)
	}
}

func TestDecodeExampleConfig(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.SetConfigFile(filepath.Join("..", "gig-ranker.example.yaml"))
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if config.Tools.Search.Query != "automation" || config.Tools.Search.PerPage != 8 {
		t.Fatalf("unexpected search params %+v", config.Tools.Search)
	}
	if !slices.Equal(config.Tools.ProfileWeights["enterprise"], []float64{0.2, 0.2, 0.3, 0.3}) {
		t.Fatalf("unexpected profile weights %v", config.Tools.ProfileWeights)
	}
	if config.Jobs.ImmediateOnly == nil || !*config.Jobs.ImmediateOnly {
		t.Fatalf("expected immediate-only to be decoded")
	}
	if config.Scoring == nil || config.Scoring.HighPriorityAbove == nil || *config.Scoring.HighPriorityAbove != 25 {
		t.Fatalf("unexpected scoring section %+v", config.Scoring)
	}
	if config.AI.Enabled || config.AI.Gemini.MaxRetries != 3 {
		t.Fatalf("unexpected ai section %+v", config.AI)
	}
}

func TestDecodeScoringSection(t *testing.T) {
	t.Parallel()

	content := `
scoring:
  high-priority-above: 20
  skills:
    - name: Node.js
      bonus: 7
    - name: python
      bonus: 3
`
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		t.Fatalf("read config: %v", err)
	}

	config, err := decodeConfig(v)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(config.Scoring.Skills) != 2 || config.Scoring.Skills[0].Name != "Node.js" {
		t.Fatalf("unexpected skills %+v", config.Scoring.Skills)
	}

	table, err := buildTable(config)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	if table.HighPriorityAbove() != 20 {
		t.Fatalf("expected threshold 20, got %d", table.HighPriorityAbove())
	}

	// built-in immediate-pay and recency rules stay next to the configured skills
	l := &listing.Listing{ImmediatePay: true, Posted: "Today", Skills: []string{"Node.js backend"}}
	if got := table.Score(l); got != 10+8+7 {
		t.Fatalf("expected score 25, got %d", got)
	}
	if table.Priority(table.Score(l)) != scoring.PriorityHigh {
		t.Fatalf("expected HIGH priority")
	}
}

func TestExampleListingsAndRules(t *testing.T) {
	t.Parallel()

	listings, err := listing.LoadFile(filepath.Join("..", "examples", "listings.yaml"))
	if err != nil {
		t.Fatalf("load listings: %v", err)
	}

	config := &Config{Jobs: &JobsConfig{RulesFile: filepath.Join("..", "examples", "rules.yaml")}}
	table, err := buildTable(config)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}

	scored := ranking.Order(listings.Items, table.Score)
	if len(scored) != listings.Len() || listings.Len() != 5 {
		t.Fatalf("expected 5 scored listings, got %d", len(scored))
	}
	if scored[0].Item.Title != "Hebrew Language Image Collection (iPhone)" {
		t.Fatalf("unexpected best listing %q (%d)", scored[0].Item.Title, scored[0].Score)
	}
}
