package listing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	IDField       = "ID"
	PlatformField = "Platform"
)

// namespace for ids derived from listing content.
var idNamespace = uuid.MustParse("5a0c3a52-2b8e-4c61-9d0f-6f1f3c1f2a11")

type Listings struct {
	Items []*Listing
}

type Listing struct {
	ID             string   `json:"id,omitempty" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	Budget         string   `json:"budget,omitempty" yaml:"budget"`
	Platform       string   `json:"platform,omitempty" yaml:"platform"`
	Posted         string   `json:"posted,omitempty" yaml:"posted"`
	Skills         []string `json:"skills,omitempty" yaml:"skills"`
	PaySpeed       string   `json:"pay_speed,omitempty" yaml:"pay_speed"`
	Location       string   `json:"location,omitempty" yaml:"location"`
	Description    string   `json:"description,omitempty" yaml:"description"`
	ImmediatePay   bool     `json:"immediate_pay" yaml:"immediate_pay"`
	HoursPerWeek   string   `json:"hours_per_week,omitempty" yaml:"hours_per_week"`
	ApplicationURL string   `json:"application_url,omitempty" yaml:"application_url"`
}

type file struct {
	Listings []*Listing `json:"listings" yaml:"listings"`
}

// LoadFile reads listings from a YAML or JSON file. The file holds either a plain list
// or a document with a top-level "listings" key.
func LoadFile(path string) (*Listings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read listings file: %w", err)
	}

	items, err := decode(data, strings.ToLower(filepath.Ext(path)) == ".json")
	if err != nil {
		return nil, fmt.Errorf("parse listings file %q: %w", path, err)
	}

	listings := &Listings{}
	for idx, l := range items {
		if l == nil {
			continue
		}
		if strings.TrimSpace(l.Title) == "" {
			return nil, fmt.Errorf("listing %d in %q has no title", idx, path)
		}
		l.EnsureID()
		listings.Items = append(listings.Items, l)
	}

	return listings, nil
}

func decode(data []byte, isJSON bool) ([]*Listing, error) {
	if isJSON {
		var items []*Listing
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
		var doc file
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Listings, nil
	}

	var items []*Listing
	if err := yaml.Unmarshal(data, &items); err == nil {
		return items, nil
	}
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Listings, nil
}

// EnsureID assigns a stable id derived from the title and platform when none is set.
func (l *Listing) EnsureID() {
	if strings.TrimSpace(l.ID) != "" {
		return
	}
	key := strings.ToLower(strings.TrimSpace(l.Title) + "|" + strings.TrimSpace(l.Platform))
	l.ID = uuid.NewSHA1(idNamespace, []byte(key)).String()
}

func (l *Listing) GetStringField(name string) string {
	switch name {
	case IDField:
		return l.ID
	case PlatformField:
		return l.Platform
	default:
		return ""
	}
}

func (v *Listings) Len() int {
	return len(v.Items)
}

func (v *Listings) FindByID(id string) *Listing {
	for _, l := range v.Items {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (v *Listings) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, l := range v.Items {
		ids = append(ids, l.ID)
	}
	return ids
}

// Exclude removes listings whose field equals one of targets and returns the removed ids.
// The order of the remaining listings is preserved.
func (v *Listings) Exclude(name string, targets []string) []string {
	var excluded []string
	v.Items = slices.DeleteFunc(v.Items, func(l *Listing) bool {
		if slices.Contains(targets, l.GetStringField(name)) {
			excluded = append(excluded, l.ID)
			return true
		}
		return false
	})
	return excluded
}

// Keep retains listings for which keep returns true and returns the removed ids.
func (v *Listings) Keep(keep func(*Listing) bool) []string {
	var removed []string
	v.Items = slices.DeleteFunc(v.Items, func(l *Listing) bool {
		if keep(l) {
			return false
		}
		removed = append(removed, l.ID)
		return true
	})
	return removed
}

func (v *Listings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "listings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByPlatform groups a short description of every listing by platform.
func (v *Listings) ReportByPlatform() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, l := range v.Items {
		key := l.Platform
		if key == "" {
			key = "unknown"
		}
		report[key] = append(report[key], map[string]string{
			"title":  l.Title,
			"budget": l.Budget,
			"posted": l.Posted,
			"skills": strings.Join(l.Skills, ", "),
			"apply":  l.ApplicationURL,
		})
	}
	return report
}
