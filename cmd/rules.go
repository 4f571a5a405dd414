package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/gig-ranker/internal/scoring"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective scoring rules",
	Run: func(cmd *cobra.Command, _ []string) {
		log, config := setup()
		if path, _ := cmd.Flags().GetString("rules-file"); path != "" {
			config.Jobs.RulesFile = path
		}

		table, err := buildTable(config)
		if err != nil {
			log.Fatal("building scoring rules", zap.Error(err))
		}

		if err := printRules(cmd.OutOrStdout(), table); err != nil {
			log.Fatal("printing rules", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringP("rules-file", "r", "", "yaml file with scoring rules")
}

func printRules(w io.Writer, table *scoring.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tGROUP\tBONUS\tMATCH")
	for _, r := range table.Rules() {
		group := r.Group
		if group == "" {
			group = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Category, group, r.Bonus, r.Matcher)
	}
	fmt.Fprintf(tw, "\nHIGH priority above %d\n", table.HighPriorityAbove())
	return tw.Flush()
}
