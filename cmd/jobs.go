package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/gig-ranker/internal/export"
	"github.com/spigell/gig-ranker/internal/filtering"
	"github.com/spigell/gig-ranker/internal/listing"
	"github.com/spigell/gig-ranker/internal/logger"
	"github.com/spigell/gig-ranker/internal/metrics"
	"github.com/spigell/gig-ranker/internal/profile"
	"github.com/spigell/gig-ranker/internal/proposal"
	"github.com/spigell/gig-ranker/internal/ranking"
	"github.com/spigell/gig-ranker/internal/scoring"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptReportByPlatforms   = "Report by platforms"
	PromptListingsToFile      = "Dump listings to file"
	PromptAppendToExcludeFile = "Append all listings to exclude file"
)

var errExit = errors.New("exit requested")

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Score freelance listings and draft proposals for the best ones",
	Run: func(cmd *cobra.Command, _ []string) {
		runJobs(cmd)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().StringP("file", "f", "", "yaml or json file with listings")
	jobsCmd.Flags().StringP("exclude-file", "e", "", "special file with listings to exclude. Default is unset.")
	jobsCmd.Flags().StringP("rules-file", "r", "", "yaml file with scoring rules")
	jobsCmd.Flags().IntP("top", "n", 0, "how many listings to select")
	jobsCmd.Flags().Int("min-score", 0, "drop listings scoring below this value")
	jobsCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation if found suitable listings")

	viper.BindPFlag("jobs.file", jobsCmd.Flags().Lookup("file"))
	viper.BindPFlag("jobs.exclude-file", jobsCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("jobs.rules-file", jobsCmd.Flags().Lookup("rules-file"))
	viper.BindPFlag("jobs.top", jobsCmd.Flags().Lookup("top"))
	viper.BindPFlag("jobs.min-score", jobsCmd.Flags().Lookup("min-score"))
}

// session is the state one jobs run works on.
type session struct {
	config   *Config
	logger   *zap.Logger
	table    *scoring.Table
	writer   proposal.Writer
	rec      *metrics.Recorder
	scored   []ranking.Scored[*listing.Listing, int]
	top      []ranking.Scored[*listing.Listing, int]
	out      io.Writer
	listings *listing.Listings
}

func runJobs(cmd *cobra.Command) {
	ctx := context.Background()

	log, config := setup()
	prof := profile.Pick(os.LookupEnv)
	log = logger.ForRun(log, metrics.KindListings, prof.Name)

	if config.Jobs.File == "" {
		log.Fatal("listings file is required", zap.String("hint", "set jobs.file in the config or pass --file"))
	}

	table, err := buildTable(config)
	if err != nil {
		log.Fatal("building scoring rules", zap.Error(err))
	}

	writer, err := newProposalWriter(ctx, config.AI, log)
	if err != nil {
		log.Fatal("building proposal writer", zap.Error(err))
	}

	listings, err := listing.LoadFile(config.Jobs.File)
	if err != nil {
		log.Fatal("loading listings", zap.Error(err))
	}

	s := &session{
		config:   config,
		logger:   log,
		table:    table,
		writer:   writer,
		rec:      newRecorder(),
		out:      cmd.OutOrStdout(),
		listings: listings,
	}
	defer writeMetrics(s.rec, log)

	log.Info("getting listings", zap.Int("count", listings.Len()))
	s.rec.CountStage(metrics.KindListings, metrics.StageLoaded, listings.Len())

	if listings.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no listings found"))
		return
	}

	steps := filtering.Default()
	if config.Jobs.ImmediateOnly != nil && !*config.Jobs.ImmediateOnly {
		filtering.DisableByName(steps, "immediate_pay", "jobs.immediate-only is false")
	}

	filtered, err := filtering.Run(ctx, filterConfig(config.Jobs), filtering.Deps{Logger: log, Rules: table}, steps, listings)
	if err != nil {
		log.Fatal("filtering failed", zap.Error(err))
	}
	for _, st := range filtering.Describe(steps) {
		log.Debug("filter status", zap.String("name", st.Name), zap.Bool("enabled", st.Enabled), zap.Any("details", st.Details))
	}
	s.listings = filtered
	s.rec.CountStage(metrics.KindListings, metrics.StageFiltered, filtered.Len())

	if filtered.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no listings left after filters"))
		return
	}

	s.rank()

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	for {
		action := PromptYes
		if !autoApprove {
			prompt := promptui.Select{
				Label: "Proceed?",
				Items: s.menu(),
			}
			if _, action, err = prompt.Run(); err != nil {
				log.Fatal("exiting", zap.Error(err))
			}
		}

		log.Info("current list of listings", zap.Int("count", len(s.top)))

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func filterConfig(jobs *JobsConfig) *filtering.Config {
	return &filtering.Config{
		ImmediateKeywords: jobs.ImmediateKeywords,
		ExcludedPlatforms: jobs.ExcludePlatforms,
		ExcludeFile:       jobs.ExcludeFile,
		MinScore:          jobs.MinScore,
	}
}

// rank scores the current listings and selects the top ones.
func (s *session) rank() {
	s.scored = ranking.Order(s.listings.Items, s.table.Score)
	s.top = ranking.SelectTopN(s.scored, s.config.Jobs.Top)

	scores := make([]float64, 0, len(s.scored))
	for _, sc := range s.scored {
		scores = append(scores, float64(sc.Score))
	}
	s.rec.CountStage(metrics.KindListings, metrics.StageRanked, len(s.scored))
	s.rec.ObserveScores(metrics.KindListings, scores)
	s.rec.CountStage(metrics.KindListings, metrics.StageSelected, len(s.top))

	printListings(s.out, s.top, s.table)
}

func (s *session) menu() []string {
	items := []string{PromptYes, PromptNo, PromptReportByPlatforms, PromptListingsToFile}
	if s.config.Jobs.ExcludeFile != "" && len(s.top) != 0 {
		items = append(items, PromptAppendToExcludeFile)
	}
	return items
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptYes:
		if err := s.apply(ctx); err != nil {
			return err
		}
		return errExit
	case PromptNo:
		s.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByPlatforms:
		selected := &listing.Listings{Items: ranking.Items(s.top)}
		pretty, _ := json.MarshalIndent(selected.ReportByPlatform(), "", "  ")
		s.logger.Info(string(pretty), zap.Int("listings count", selected.Len()))
		return nil
	case PromptListingsToFile:
		filename, err := s.listings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return s.appendToExcludeFile()
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// appendToExcludeFile records the selected listings and selects the next best ones.
func (s *session) appendToExcludeFile() error {
	excludeFile := s.config.Jobs.ExcludeFile

	excluded, err := listing.GetExcludedFromFile(excludeFile)
	if err != nil {
		return err
	}

	selected := &listing.Listings{Items: ranking.Items(s.top)}
	excluded.Append(selected.ToExcluded())

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	s.logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", selected.Len()))

	s.listings.Exclude(listing.IDField, excluded.IDs())
	if s.listings.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no listings left"))
		return errExit
	}

	s.rank()
	return nil
}

// apply exports every scored listing and drafts applications for the best ones.
func (s *session) apply(ctx context.Context) error {
	jobs := s.config.Jobs

	err := export.ToFile(jobs.Export, func(w io.Writer) error {
		return export.Listings(w, s.scored, s.table)
	})
	if err != nil {
		return fmt.Errorf("export listings: %w", err)
	}
	s.logger.Info("listings exported", zap.String("filename", jobs.Export), zap.Int("count", len(s.scored)))

	selected := ranking.SelectTopN(s.top, jobs.Applications)
	apps, err := proposal.PrepareWithOptions(ctx, s.writer, selected, s.table, proposal.Options{
		Categories: jobs.Categories,
		Default:    jobs.DefaultCategory,
	})
	if err != nil {
		return err
	}

	for i, app := range apps {
		fmt.Fprintf(s.out, "\nApplication #%d\nJob: %s\nScore: %d\nPriority: %s\nPlatform: %s\nCategory: %s\n\n%s\n",
			i+1, app.JobTitle, app.Score, app.Priority, app.Platform, app.Category, app.Proposal)
	}

	err = export.ToFile(jobs.ApplicationsFile, func(w io.Writer) error {
		return export.Applications(w, apps)
	})
	if err != nil {
		return fmt.Errorf("export applications: %w", err)
	}

	s.logger.Info("applications ready", zap.String("filename", jobs.ApplicationsFile), zap.Int("count", len(apps)))
	return nil
}

func printListings(w io.Writer, top []ranking.Scored[*listing.Listing, int], table *scoring.Table) {
	fmt.Fprintln(w, "Top listings by priority score:")
	for _, s := range top {
		l := s.Item
		hits := make([]string, 0)
		for _, h := range table.Explain(l) {
			hits = append(hits, fmt.Sprintf("%s+%d", h.Category, h.Bonus))
		}
		fmt.Fprintf(w, "\n[%d %s] %s\n  budget: %s\n  platform: %s\n  rules: %s\n",
			s.Score, table.Priority(s.Score), l.Title, l.Budget, l.Platform, strings.Join(hits, ", "))
	}
}
