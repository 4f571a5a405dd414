// Package metrics records ranking run statistics as Prometheus metrics and writes them in
// the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricEntitiesTotal = "gig_ranker_entities_total"
	MetricScores        = "gig_ranker_scores"
	MetricTopScore      = "gig_ranker_top_score"
)

// Entity kinds.
const (
	KindTools    = "tools"
	KindListings = "listings"
)

// Pipeline stages an entity count is recorded at.
const (
	StageLoaded   = "loaded"
	StageFiltered = "filtered"
	StageRanked   = "ranked"
	StageSelected = "selected"
)

// Recorder holds the collectors of one run. A nil Recorder records nothing.
type Recorder struct {
	entities *prometheus.CounterVec
	scores   *prometheus.HistogramVec
	top      *prometheus.GaugeVec
}

// NewRecorder creates the collectors without registering them.
func NewRecorder() *Recorder {
	return &Recorder{
		entities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricEntitiesTotal,
				Help: "Number of entities seen by kind and pipeline stage",
			},
			[]string{"kind", "stage"},
		),
		scores: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricScores,
				Help:    "Distribution of computed entity scores by kind",
				Buckets: []float64{0, 5, 10, 15, 20, 25, 30, 40, 50, 100, 1000, 10000, 100000},
			},
			[]string{"kind"},
		),
		top: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricTopScore,
				Help: "Highest score of the last ranking by kind",
			},
			[]string{"kind"},
		),
	}
}

// Register registers all collectors with reg.
func (r *Recorder) Register(reg prometheus.Registerer) error {
	for _, c := range r.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.entities, r.scores, r.top}
}

func (r *Recorder) CountStage(kind, stage string, n int) {
	if r == nil || n < 0 {
		return
	}
	r.entities.WithLabelValues(kind, stage).Add(float64(n))
}

// ObserveScores records every score and sets the top score gauge to the first one.
// scores must be sorted descending.
func (r *Recorder) ObserveScores(kind string, scores []float64) {
	if r == nil {
		return
	}
	for _, s := range scores {
		r.scores.WithLabelValues(kind).Observe(s)
	}
	if len(scores) > 0 {
		r.top.WithLabelValues(kind).Set(scores[0])
	}
}

// WriteTextfile writes the recorded metrics to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}

	reg := prometheus.NewRegistry()
	if err := r.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile %q: %w", path, err)
	}
	return nil
}
