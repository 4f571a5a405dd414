package proposal

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/spigell/gig-ranker/internal/listing"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	maxDraftSkills    = 3
	fallbackLeadSkill = "AI"
)

// Writer drafts the proposal text for a listing in the given category.
type Writer interface {
	Write(ctx context.Context, l *listing.Listing, category string) (string, error)
}

// TemplateWriter renders the embedded per-category templates.
type TemplateWriter struct {
	templates *template.Template
}

type draft struct {
	Title      string
	TitleLower string
	Skills     string
	LeadSkill  string
	Platform   string
	Budget     string
}

// NewTemplateWriter parses the embedded templates.
func NewTemplateWriter() (*TemplateWriter, error) {
	tmpl, err := template.New("proposals").Option("missingkey=error").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse proposal templates: %w", err)
	}
	return &TemplateWriter{templates: tmpl}, nil
}

// Write renders the template for category, falling back to the default category
// template when category has none.
func (w *TemplateWriter) Write(_ context.Context, l *listing.Listing, category string) (string, error) {
	if l == nil {
		return "", fmt.Errorf("listing is required")
	}

	tmpl := w.templates.Lookup(category + ".tmpl")
	if tmpl == nil {
		tmpl = w.templates.Lookup(DefaultCategory + ".tmpl")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDraft(l)); err != nil {
		return "", fmt.Errorf("render %s proposal for %q: %w", category, l.Title, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func newDraft(l *listing.Listing) draft {
	skills := l.Skills
	if len(skills) > maxDraftSkills {
		skills = skills[:maxDraftSkills]
	}

	lead := fallbackLeadSkill
	if len(skills) > 0 {
		lead = skills[0]
	}

	joined := strings.Join(skills, ", ")
	if joined == "" {
		joined = fallbackLeadSkill
	}

	return draft{
		Title:      l.Title,
		TitleLower: strings.ToLower(l.Title),
		Skills:     joined,
		LeadSkill:  lead,
		Platform:   l.Platform,
		Budget:     l.Budget,
	}
}
