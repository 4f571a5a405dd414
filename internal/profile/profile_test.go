package profile

import (
	"slices"
	"testing"

	"github.com/spigell/gig-ranker/internal/ranking"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestPick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vars map[string]string
		want Profile
	}{
		{name: "enterprise", vars: map[string]string{"ENTERPRISE": "true"}, want: Enterprise},
		{name: "enterprise wins", vars: map[string]string{"ENTERPRISE": "true", "OPEN_SOURCE": "true"}, want: Enterprise},
		{name: "open source", vars: map[string]string{"OPEN_SOURCE": "true"}, want: OpenSource},
		{name: "only literal true", vars: map[string]string{"ENTERPRISE": "1", "OPEN_SOURCE": "TRUE"}, want: Default},
		{name: "nothing set", vars: nil, want: Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Pick(env(tt.vars)); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}

	if Enterprise.Workflow != "ai_enterprise.yml" || OpenSource.Workflow != "os_workflow.yml" || Default.Workflow != "default_workflow.yml" {
		t.Fatalf("unexpected workflow names")
	}
}

func TestWeights(t *testing.T) {
	t.Parallel()

	base := ranking.Weights{0.4, 0.3, 0.2, 0.1}
	overrides := map[string][]float64{
		NameEnterprise: {0.1, 0.1, 0.4, 0.4},
		NameOpenSource: {},
	}

	if got := Enterprise.Weights(base, overrides); !slices.Equal(got, ranking.Weights{0.1, 0.1, 0.4, 0.4}) {
		t.Fatalf("unexpected enterprise weights %v", got)
	}
	if got := OpenSource.Weights(base, overrides); !slices.Equal(got, base) {
		t.Fatalf("empty override must fall back to base, got %v", got)
	}

	got := Default.Weights(base, nil)
	got[0] = 9
	if base[0] != 0.4 {
		t.Fatalf("base weights must not be mutated")
	}
}
