package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/gig-ranker/internal/export"
	"github.com/spigell/gig-ranker/internal/github"
	"github.com/spigell/gig-ranker/internal/logger"
	"github.com/spigell/gig-ranker/internal/metrics"
	"github.com/spigell/gig-ranker/internal/profile"
	"github.com/spigell/gig-ranker/internal/ranking"
	"github.com/spigell/gig-ranker/internal/secrets"
	"github.com/spigell/gig-ranker/internal/tools"
)

const (
	toolsSourceGitHub = "github"
	toolsSourceFile   = "file"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Rank GitHub automation tools by weighted metrics",
	Run: func(cmd *cobra.Command, _ []string) {
		runTools(cmd)
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)

	toolsCmd.Flags().StringP("source", "s", "", "where to take tools from: github or file")
	toolsCmd.Flags().StringP("file", "f", "", "yaml or json file with tools")
	toolsCmd.Flags().StringP("query", "q", "", "github repository search query")
	toolsCmd.Flags().IntP("top", "n", 0, "show only the best n tools (0 shows all)")
	toolsCmd.Flags().StringP("export", "o", "", "write the ranking to this csv file")

	viper.BindPFlag("tools.source", toolsCmd.Flags().Lookup("source"))
	viper.BindPFlag("tools.file", toolsCmd.Flags().Lookup("file"))
	viper.BindPFlag("tools.search.query", toolsCmd.Flags().Lookup("query"))
	viper.BindPFlag("tools.top", toolsCmd.Flags().Lookup("top"))
	viper.BindPFlag("tools.export", toolsCmd.Flags().Lookup("export"))
}

func runTools(cmd *cobra.Command) {
	ctx := context.Background()

	log, config := setup()
	prof := profile.Pick(os.LookupEnv)
	log = logger.ForRun(log, metrics.KindTools, prof.Name)
	rec := newRecorder()

	flagTopics := config.Tools.FlagTopics
	if len(flagTopics) == 0 {
		flagTopics = tools.DefaultFlagTopics
	}

	items, err := loadTools(ctx, config, flagTopics, log)
	if err != nil {
		log.Fatal("loading tools", zap.Error(err))
	}
	rec.CountStage(metrics.KindTools, metrics.StageLoaded, items.Len())

	base := tools.DefaultWeights
	if len(config.Tools.Weights) > 0 {
		base = config.Tools.Weights
	}
	weights := prof.Weights(base, config.Tools.ProfileWeights)

	ranked, err := ranking.Rank(items.Items, weights)
	if err != nil {
		log.Fatal("ranking tools", zap.Error(err), zap.Float64s("weights", weights))
	}
	rec.CountStage(metrics.KindTools, metrics.StageRanked, len(ranked))
	rec.ObserveScores(metrics.KindTools, toolScores(ranked))

	n := config.Tools.Top
	if n <= 0 {
		n = len(ranked)
	}
	top := ranking.SelectTopN(ranked, n)
	rec.CountStage(metrics.KindTools, metrics.StageSelected, len(top))

	if len(top) == 0 {
		log.Info("no tools to rank")
	}
	printTools(cmd.OutOrStdout(), top)

	if path := config.Tools.Export; path != "" {
		err := export.ToFile(path, func(w io.Writer) error {
			return export.Tools(w, top, flagTopics)
		})
		if err != nil {
			log.Fatal("exporting tools", zap.Error(err))
		}
		log.Info("tools exported", zap.String("filename", path), zap.Int("count", len(top)))
	}

	log.Info("deploying workflow", zap.String("workflow", prof.Workflow))
	writeMetrics(rec, log)
}

func loadTools(ctx context.Context, config *Config, flagTopics []string, log *zap.Logger) (*tools.Tools, error) {
	switch config.Tools.Source {
	case toolsSourceFile:
		if config.Tools.File == "" {
			return nil, fmt.Errorf("tools.file is required for the file source")
		}
		return tools.LoadFile(config.Tools.File, flagTopics)
	case toolsSourceGitHub:
		token, err := secrets.Optional(secrets.Source{
			Name:  "github token",
			Value: config.GitHub.Token,
			File:  config.GitHub.TokenFile,
		})
		if err != nil {
			return nil, err
		}
		if token == "" {
			log.Debug("no github token configured, using anonymous requests")
		}

		gh := github.New(ctx, log, token)
		if config.GitHub.UserAgent != "" {
			gh.UserAgent = config.GitHub.UserAgent
		}
		if config.GitHub.APIURL != "" {
			gh.APIURL = config.GitHub.APIURL
		}

		log.Info("starting the search", zap.String("query", config.Tools.Search.Query))
		return tools.FromGitHub(gh, config.Tools.Search, flagTopics, log), nil
	default:
		return nil, fmt.Errorf("unknown tools source %q", config.Tools.Source)
	}
}

func toolScores(ranked []ranking.Scored[*tools.Tool, float64]) []float64 {
	scores := make([]float64, 0, len(ranked))
	for _, s := range ranked {
		scores = append(scores, s.Score)
	}
	return scores
}

func printTools(w io.Writer, top []ranking.Scored[*tools.Tool, float64]) {
	fmt.Fprintln(w, "Top GitHub automation tools:")
	for i, s := range top {
		fmt.Fprintf(w, "%d. %s (%s) - score: %.2f\n", i+1, s.Item.Name(), s.Item.URL(), s.Score)
	}
}
