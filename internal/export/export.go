// Package export writes ranking results as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spigell/gig-ranker/internal/listing"
	"github.com/spigell/gig-ranker/internal/proposal"
	"github.com/spigell/gig-ranker/internal/ranking"
	"github.com/spigell/gig-ranker/internal/scoring"
	"github.com/spigell/gig-ranker/internal/tools"
)

// ToFile creates path and passes it to write.
func ToFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Tools writes ranked tools. flagTopics names the 0/1 metric columns that follow stars and forks.
func Tools(w io.Writer, ranked []ranking.Scored[*tools.Tool, float64], flagTopics []string) error {
	header := []string{"rank", "name", "url", "stars", "forks"}
	for _, topic := range flagTopics {
		header = append(header, "topic_"+topic)
	}
	header = append(header, "score")

	rows := make([][]string, 0, len(ranked))
	for i, s := range ranked {
		t := s.Item
		row := []string{
			strconv.Itoa(i + 1),
			t.Name(),
			t.URL(),
			strconv.Itoa(t.Stars()),
			strconv.Itoa(t.Forks()),
		}

		metrics := t.Metrics()
		for j := range flagTopics {
			value := ""
			if k := 2 + j; k < len(metrics) {
				value = formatFloat(metrics[k])
			}
			row = append(row, value)
		}
		rows = append(rows, append(row, formatFloat(s.Score)))
	}

	return writeAll(w, header, rows)
}

// Listings writes scored listings with every attribute plus the score and its priority label.
func Listings(w io.Writer, scored []ranking.Scored[*listing.Listing, int], table *scoring.Table) error {
	if table == nil {
		return fmt.Errorf("scoring table is required")
	}

	header := []string{
		"id", "title", "platform", "budget", "posted", "skills", "pay_speed", "location",
		"immediate_pay", "hours_per_week", "application_url", "priority_score", "priority",
	}

	rows := make([][]string, 0, len(scored))
	for _, s := range scored {
		l := s.Item
		rows = append(rows, []string{
			l.ID,
			l.Title,
			l.Platform,
			l.Budget,
			l.Posted,
			strings.Join(l.Skills, "; "),
			l.PaySpeed,
			l.Location,
			strconv.FormatBool(l.ImmediatePay),
			l.HoursPerWeek,
			l.ApplicationURL,
			strconv.Itoa(s.Score),
			string(table.Priority(s.Score)),
		})
	}

	return writeAll(w, header, rows)
}

// Applications writes the drafted applications without the proposal text.
func Applications(w io.Writer, apps []proposal.Application) error {
	header := []string{"id", "job_title", "platform", "opportunity_score", "priority", "category", "status"}

	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{
			a.ID.String(),
			a.JobTitle,
			a.Platform,
			strconv.Itoa(a.Score),
			string(a.Priority),
			a.Category,
			a.Status,
		})
	}

	return writeAll(w, header, rows)
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
