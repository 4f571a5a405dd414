package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/gig-ranker/internal/listing"
	"github.com/spigell/gig-ranker/internal/logger"
	"github.com/spigell/gig-ranker/internal/proposal"
	"github.com/spigell/gig-ranker/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// ProposalWriter polishes template drafts with Gemini. Any generation failure
// falls back to the draft itself.
type ProposalWriter struct {
	generator contentGenerator
	fallback  proposal.Writer
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewProposalWriter(generator contentGenerator, fallback proposal.Writer, log *zap.Logger, maxLogLength int) *ProposalWriter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	model := ""
	if generator != nil {
		model = generator.Model()
	}

	return &ProposalWriter{
		generator: generator,
		fallback:  fallback,
		logger:    logger.WithCommonFields(log, providerName, model),
		maxLogLen: maxLogLength,
	}
}

func (w *ProposalWriter) Write(ctx context.Context, l *listing.Listing, category string) (string, error) {
	if w.fallback == nil {
		return "", fmt.Errorf("fallback proposal writer is required")
	}

	draft, err := w.fallback.Write(ctx, l, category)
	if err != nil {
		return "", err
	}
	if w.generator == nil {
		return draft, nil
	}

	listingJSON, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal listing payload: %w", err)
	}

	prompt := buildPrompt(category, string(listingJSON), draft)

	w.logger.Debug("gemini generate content request",
		zap.String("listing_id", l.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, w.maxLogLen)),
	)

	raw, err := w.generator.GenerateContent(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		w.logger.Warn("gemini proposal failed, using template draft",
			zap.String("listing_id", l.ID),
			zap.Error(err),
		)
		return draft, nil
	}

	w.logger.Debug("gemini generate content response",
		zap.String("listing_id", l.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, w.maxLogLen)),
	)

	text := stripFences(raw)
	if text == "" {
		w.logger.Warn("gemini returned empty proposal, using template draft", zap.String("listing_id", l.ID))
		return draft, nil
	}
	return text, nil
}

func buildPrompt(category, listingJSON, draft string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Category: {{CATEGORY}}\n\nListing:\n{{LISTING_JSON}}\n\nDraft:\n{{DRAFT}}"
	}
	prompt := strings.ReplaceAll(template, "{{CATEGORY}}", category)
	prompt = strings.ReplaceAll(prompt, "{{LISTING_JSON}}", listingJSON)
	prompt = strings.ReplaceAll(prompt, "{{DRAFT}}", draft)
	return prompt
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```markdown")
		raw = strings.TrimPrefix(raw, "```text")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}
