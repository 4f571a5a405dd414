// Package profile selects the workflow profile a run belongs to from environment flags.
package profile

import (
	"os"
	"slices"

	"github.com/spigell/gig-ranker/internal/ranking"
)

const (
	EnvEnterprise = "ENTERPRISE"
	EnvOpenSource = "OPEN_SOURCE"
)

const (
	NameEnterprise = "enterprise"
	NameOpenSource = "open-source"
	NameDefault    = "default"
)

type Profile struct {
	Name     string
	Workflow string
}

var (
	Enterprise = Profile{Name: NameEnterprise, Workflow: "ai_enterprise.yml"}
	OpenSource = Profile{Name: NameOpenSource, Workflow: "os_workflow.yml"}
	Default    = Profile{Name: NameDefault, Workflow: "default_workflow.yml"}
)

// Pick returns the enterprise profile when ENTERPRISE is "true", otherwise the
// open-source profile when OPEN_SOURCE is "true", otherwise the default one.
func Pick(lookup func(string) (string, bool)) Profile {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, _ := lookup(EnvEnterprise); v == "true" {
		return Enterprise
	}
	if v, _ := lookup(EnvOpenSource); v == "true" {
		return OpenSource
	}
	return Default
}

// Weights returns the profile's override from overrides, or base when there is none.
func (p Profile) Weights(base ranking.Weights, overrides map[string][]float64) ranking.Weights {
	if w, ok := overrides[p.Name]; ok && len(w) > 0 {
		return ranking.Weights(slices.Clone(w))
	}
	return slices.Clone(base)
}
