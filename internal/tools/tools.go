// Package tools holds the entities ranked by the linear ranker: repositories or other
// tools described by a fixed metric vector.
package tools

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/gig-ranker/internal/github"
	"github.com/spigell/gig-ranker/internal/ranking"
)

// DefaultFlagTopics are turned into 0/1 metrics after stars and forks.
var DefaultFlagTopics = []string{"actions", "ai"}

// DefaultWeights weigh stars, forks and the default flag topics.
var DefaultWeights = ranking.Weights{0.4, 0.3, 0.2, 0.1}

// Tool is immutable once constructed.
type Tool struct {
	name    string
	url     string
	stars   int
	forks   int
	topics  []string
	metrics []float64
}

type Tools struct {
	Items []*Tool
}

// New builds a tool whose metric vector is stars, forks and one 0/1 flag per flag topic.
func New(name, url string, stars, forks int, topics, flagTopics []string) *Tool {
	metrics := make([]float64, 0, 2+len(flagTopics))
	metrics = append(metrics, float64(stars), float64(forks))
	for _, flag := range flagTopics {
		metrics = append(metrics, boolMetric(hasTopic(topics, flag)))
	}

	return &Tool{
		name:    name,
		url:     url,
		stars:   stars,
		forks:   forks,
		topics:  slices.Clone(topics),
		metrics: metrics,
	}
}

// NewWithMetrics builds a tool from an explicit metric vector.
func NewWithMetrics(name, url string, metrics []float64) *Tool {
	return &Tool{name: name, url: url, metrics: slices.Clone(metrics)}
}

func (t *Tool) Name() string     { return t.name }
func (t *Tool) URL() string      { return t.url }
func (t *Tool) Stars() int       { return t.stars }
func (t *Tool) Forks() int       { return t.forks }
func (t *Tool) Topics() []string { return slices.Clone(t.topics) }

// Metrics returns a copy of the metric vector.
func (t *Tool) Metrics() []float64 { return slices.Clone(t.metrics) }

func (t *Tools) Len() int {
	return len(t.Items)
}

type record struct {
	Name    string    `yaml:"name"`
	URL     string    `yaml:"url"`
	Stars   int       `yaml:"stars"`
	Forks   int       `yaml:"forks"`
	Topics  []string  `yaml:"topics"`
	Metrics []float64 `yaml:"metrics"`
}

// LoadFile reads tools from a YAML (or JSON) file. Entries with an explicit metrics list
// keep it as is; the others derive their vector from stars, forks and topics.
func LoadFile(path string, flagTopics []string) (*Tools, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tools file: %w", err)
	}

	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		var doc struct {
			Tools []record `yaml:"tools"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse tools file %q: %w", path, err)
		}
		records = doc.Tools
	}

	tools := &Tools{}
	for idx, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("tool %d in %q has no name", idx, path)
		}
		if len(r.Metrics) > 0 {
			tools.Items = append(tools.Items, NewWithMetrics(r.Name, r.URL, r.Metrics))
			continue
		}
		tools.Items = append(tools.Items, New(r.Name, r.URL, r.Stars, r.Forks, r.Topics, flagTopics))
	}

	return tools, nil
}

// Searcher finds repositories.
type Searcher interface {
	SearchRepositories(params *github.SearchParams) (*github.Repositories, error)
}

// FromGitHub converts a repository search into tools. Any failure is logged and yields
// an empty collection so callers end up with an empty ranking instead of an error.
func FromGitHub(searcher Searcher, params *github.SearchParams, flagTopics []string, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}

	repos, err := searcher.SearchRepositories(params)
	if err != nil {
		logger.Warn("fetching tools from github failed, continuing with no tools", zap.Error(err))
		return &Tools{}
	}

	tools := &Tools{Items: make([]*Tool, 0, repos.Len())}
	for _, repo := range repos.Items {
		if repo == nil {
			continue
		}
		tools.Items = append(tools.Items, New(repo.FullName, repo.HTMLURL, repo.StargazersCount, repo.ForksCount, repo.Topics, flagTopics))
	}

	logger.Info("fetched tools from github", zap.Int("count", tools.Len()))
	return tools
}

func hasTopic(topics []string, topic string) bool {
	return slices.ContainsFunc(topics, func(t string) bool {
		return strings.EqualFold(t, topic)
	})
}

func boolMetric(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
