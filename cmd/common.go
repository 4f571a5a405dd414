package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/gig-ranker/internal/ai/gemini"
	"github.com/spigell/gig-ranker/internal/logger"
	"github.com/spigell/gig-ranker/internal/metrics"
	"github.com/spigell/gig-ranker/internal/proposal"
	"github.com/spigell/gig-ranker/internal/scoring"
	"github.com/spigell/gig-ranker/internal/secrets"
)

// setup builds the logger and the decoded config shared by all commands.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the gig-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

func newRecorder() *metrics.Recorder {
	if viper.GetString("metrics-file") == "" {
		return nil
	}
	return metrics.NewRecorder()
}

func writeMetrics(rec *metrics.Recorder, logger *zap.Logger) {
	path := viper.GetString("metrics-file")
	if rec == nil || path == "" {
		return
	}
	if err := rec.WriteTextfile(path); err != nil {
		logger.Error("writing metrics", zap.Error(err))
		return
	}
	logger.Info("metrics written", zap.String("filename", path))
}

// buildTable compiles the active rule table. A rules file wins over the scoring section.
// A scoring section with rules replaces the built-in table; without rules it keeps the
// built-in rules and swaps in its own skills and threshold when those are set.
func buildTable(config *Config) (*scoring.Table, error) {
	cfg := scoring.DefaultConfig()

	switch {
	case config.Jobs != nil && config.Jobs.RulesFile != "":
		loaded, err := scoring.LoadFile(config.Jobs.RulesFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.Scoring != nil && len(config.Scoring.Rules) > 0:
		cfg = *config.Scoring
	case config.Scoring != nil:
		if len(config.Scoring.Skills) > 0 {
			cfg.Skills = config.Scoring.Skills
		}
		if config.Scoring.HighPriorityAbove != nil {
			cfg.HighPriorityAbove = config.Scoring.HighPriorityAbove
		}
	}

	table, err := scoring.Compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("compiling scoring rules: %w", err)
	}
	return table, nil
}

// newProposalWriter returns the template writer, wrapped by Gemini when ai is enabled.
func newProposalWriter(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (proposal.Writer, error) {
	templates, err := proposal.NewTemplateWriter()
	if err != nil {
		return nil, err
	}

	if cfg == nil || !cfg.Enabled {
		return templates, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:    cfg.Gemini.Model,
		Attempts: cfg.Gemini.MaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}

	return gemini.NewProposalWriter(generator, templates, logger, cfg.Gemini.MaxLogLength), nil
}
