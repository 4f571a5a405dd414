package proposal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/spigell/gig-ranker/internal/listing"
	"github.com/spigell/gig-ranker/internal/ranking"
	"github.com/spigell/gig-ranker/internal/scoring"
)

type recordingWriter struct {
	categories []string
	err        error
}

func (w *recordingWriter) Write(_ context.Context, l *listing.Listing, category string) (string, error) {
	w.categories = append(w.categories, category)
	if w.err != nil {
		return "", w.err
	}
	return category + ": " + l.Title, nil
}

func selected() []ranking.Scored[*listing.Listing, int] {
	return []ranking.Scored[*listing.Listing, int]{
		{Item: &listing.Listing{ID: "1", Title: "AI Solutions Architect", Platform: "Freelancer.com"}, Score: 29},
		{Item: &listing.Listing{ID: "2", Title: "ML Research Paper Writer", Platform: "Upwork"}, Score: 25},
		{Item: &listing.Listing{ID: "3", Title: "AI Content Writer", Platform: "Indeed"}, Score: 22},
	}
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{}
	apps, err := Prepare(context.Background(), w, selected(), scoring.Default())
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	if len(apps) != 3 {
		t.Fatalf("expected 3 applications, got %d", len(apps))
	}

	want := []struct {
		title    string
		category string
		priority scoring.Priority
	}{
		{"AI Solutions Architect", CategoryDevelopment, scoring.PriorityHigh},
		{"ML Research Paper Writer", CategoryResearch, scoring.PriorityMedium},
		{"AI Content Writer", CategoryContent, scoring.PriorityMedium},
	}
	for i, exp := range want {
		app := apps[i]
		if app.JobTitle != exp.title || app.Category != exp.category || app.Priority != exp.priority {
			t.Fatalf("application %d: unexpected %+v", i, app)
		}
		if app.Status != StatusReady {
			t.Fatalf("application %d: unexpected status %q", i, app.Status)
		}
		if app.ID == uuid.Nil {
			t.Fatalf("application %d: missing id", i)
		}
		if app.Proposal != exp.category+": "+exp.title {
			t.Fatalf("application %d: unexpected proposal %q", i, app.Proposal)
		}
	}
	if apps[0].ID == apps[1].ID {
		t.Fatalf("application ids must be unique")
	}
}

func TestPrepareEmpty(t *testing.T) {
	t.Parallel()

	apps, err := Prepare(context.Background(), &recordingWriter{}, nil, scoring.Default())
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if apps == nil || len(apps) != 0 {
		t.Fatalf("expected empty non-nil applications, got %v", apps)
	}
}

func TestPrepareErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	if _, err := Prepare(context.Background(), &recordingWriter{err: boom}, selected(), scoring.Default()); !errors.Is(err, boom) {
		t.Fatalf("expected writer error, got %v", err)
	}
	if _, err := Prepare(context.Background(), nil, selected(), scoring.Default()); err == nil {
		t.Fatalf("expected error without writer")
	}
	if _, err := Prepare(context.Background(), &recordingWriter{}, selected(), nil); err == nil {
		t.Fatalf("expected error without table")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Prepare(ctx, &recordingWriter{}, selected(), scoring.Default()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestPrepareWithOptions(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{}
	opts := Options{Categories: []Category{{Label: "writing", Keywords: []string{"writer"}}}, Default: "misc"}
	if _, err := PrepareWithOptions(context.Background(), w, selected(), scoring.Default(), opts); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if strings.Join(w.categories, ",") != "misc,writing,writing" {
		t.Fatalf("unexpected categories %v", w.categories)
	}
}

func TestTemplateWriter(t *testing.T) {
	t.Parallel()

	w, err := NewTemplateWriter()
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	l := &listing.Listing{
		Title:  "ML Research Paper Writer",
		Skills: []string{"Academic writing", "Machine Learning", "Research", "LaTeX"},
	}

	tests := []struct {
		category string
		subject  string
	}{
		{CategoryResearch, "Subject: AI Research Expert - ML Research Paper Writer"},
		{CategoryDevelopment, "Subject: Senior AI Developer - ML Research Paper Writer"},
		{CategoryContent, "Subject: AI Content Specialist - ML Research Paper Writer"},
		{"unknown", "Subject: AI Content Specialist - ML Research Paper Writer"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			t.Parallel()

			text, err := w.Write(context.Background(), l, tt.category)
			if err != nil {
				t.Fatalf("write: %v", err)
			}
			if !strings.HasPrefix(text, tt.subject) {
				t.Fatalf("unexpected subject in %q", text)
			}
			if !strings.Contains(text, "Academic writing, Machine Learning, Research") {
				t.Fatalf("expected first three skills in %q", text)
			}
			if strings.Contains(text, "LaTeX") {
				t.Fatalf("only three skills expected in %q", text)
			}
			if !strings.Contains(text, "ml research paper writer") {
				t.Fatalf("expected lowercase title in %q", text)
			}
		})
	}
}

func TestTemplateWriterWithoutSkills(t *testing.T) {
	t.Parallel()

	w, err := NewTemplateWriter()
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	text, err := w.Write(context.Background(), &listing.Listing{Title: "Developer"}, CategoryDevelopment)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(text, "Production-ready AI solutions") {
		t.Fatalf("expected fallback skill in %q", text)
	}

	if _, err := w.Write(context.Background(), nil, CategoryContent); err == nil {
		t.Fatalf("expected error for nil listing")
	}
}
