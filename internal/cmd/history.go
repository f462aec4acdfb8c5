package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	adapterstorage "tomat/internal/adapters/storage"
	"tomat/internal/domain"
	"tomat/internal/theme"
)

// HistoryCmd summarises recorded phases per day
type HistoryCmd struct {
	Days int `help:"Number of days to show, including today" default:"7"`
}

// Run executes the history command
func (h *HistoryCmd) Run(cli *CLI) error {
	if h.Days < 1 {
		return errors.New("--days must be at least 1")
	}

	settings := cli.Settings()
	if !settings.HistoryEnabled() {
		return errors.New("history is disabled ([history] enabled = false)")
	}

	repo, err := adapterstorage.NewSQLiteRepository(settings.HistoryPath())
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer repo.Close()

	summaries, err := repo.DailySummaries(context.Background(), historySince(time.Now(), h.Days))
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	renderHistory(os.Stdout, h.Days, summaries)
	return nil
}

// historySince returns local midnight of the first day in the window
func historySince(now time.Time, days int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-(days-1), 0, 0, 0, 0, now.Location())
}

// renderHistory displays one row per day with totals
func renderHistory(w io.Writer, days int, summaries []domain.DaySummary) {
	fmt.Fprintln(w, theme.HeaderStyle.Render(fmt.Sprintf("Pomodoro history - last %d days", days)))
	fmt.Fprintln(w)

	if len(summaries) == 0 {
		fmt.Fprintln(w, "No sessions recorded yet.")
		return
	}

	fmt.Fprintln(w, "Day         Sessions  Focus     Breaks    Skipped  Stopped")
	fmt.Fprintln(w, strings.Repeat("─", 58))

	var total domain.DaySummary
	for _, s := range summaries {
		fmt.Fprintf(w, "%-11s %-9d %-9s %-9s %-8d %d\n",
			s.Day.Format("2006-01-02"),
			s.CompletedWork,
			formatMinutes(s.FocusTime),
			formatMinutes(s.BreakTime),
			s.SkippedPhases,
			s.StoppedPhases)

		total.CompletedWork += s.CompletedWork
		total.FocusTime += s.FocusTime
		total.BreakTime += s.BreakTime
		total.SkippedPhases += s.SkippedPhases
		total.StoppedPhases += s.StoppedPhases
	}

	fmt.Fprintln(w, strings.Repeat("─", 58))
	fmt.Fprintf(w, "%-11s %-9d %-9s %-9s %-8d %d\n",
		"Total",
		total.CompletedWork,
		formatMinutes(total.FocusTime),
		formatMinutes(total.BreakTime),
		total.SkippedPhases,
		total.StoppedPhases)
}

// formatMinutes renders a duration as "1h05m" or "25m"
func formatMinutes(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}
