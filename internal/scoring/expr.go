package scoring

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"github.com/spigell/gig-ranker/internal/listing"
)

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func env() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("listing", cel.MapType(cel.StringType, cel.DynType)),
			ext.Strings(),
		)
	})
	return celEnv, celEnvErr
}

// exprMatcher evaluates a CEL expression such as
// `listing.hours_per_week.contains("40") && listing.immediate_pay`.
type exprMatcher struct {
	source string
	prg    cel.Program
}

func newExprMatcher(source string) (*exprMatcher, error) {
	e, err := env()
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}

	ast, issues := e.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression %q must return bool, got %s", source, out)
	}

	prg, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program for expression %q: %w", source, err)
	}

	return &exprMatcher{source: source, prg: prg}, nil
}

// Match treats evaluation errors and non-boolean results as no match.
func (m *exprMatcher) Match(l *listing.Listing) bool {
	out, _, err := m.prg.Eval(map[string]any{"listing": activation(l)})
	if err != nil {
		return false
	}
	matched, ok := out.Value().(bool)
	return ok && matched
}

func (m *exprMatcher) String() string {
	return "expr " + m.source
}

func activation(l *listing.Listing) map[string]any {
	skills := l.Skills
	if skills == nil {
		skills = []string{}
	}
	return map[string]any{
		"id":              l.ID,
		"title":           l.Title,
		"budget":          l.Budget,
		"platform":        l.Platform,
		"posted":          l.Posted,
		"skills":          skills,
		"pay_speed":       l.PaySpeed,
		"location":        l.Location,
		"description":     l.Description,
		"immediate_pay":   l.ImmediatePay,
		"hours_per_week":  l.HoursPerWeek,
		"application_url": l.ApplicationURL,
	}
}
