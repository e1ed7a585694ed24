package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/stats"
)

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginTop(1)
	styleBar     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleTotals  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

const barWidth = 30

func statsCmd() *cobra.Command {
	var user string
	var top int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <exportKey|file>",
		Short: "Show message statistics for an export",
		Long: `Compute totals, timelines, activity maps, the hour heatmap, busiest
senders, common words and emoji for one export. The argument is either
an indexed export key or a path to an export file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(args[0])
			if err != nil {
				return err
			}

			report := stats.Build(records, user, top)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report, stats.Senders(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", stats.Overall, "Sender to analyze (Overall = everyone)")
	cmd.Flags().IntVar(&top, "top", 0, "Length of busy-user and word lists (0 = defaults)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

// loadRecords parses arg directly when it names a file, otherwise loads the
// indexed export with that key.
func loadRecords(arg string) ([]parse.MessageRecord, error) {
	cfg, p, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		records, err := p.ParseBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		return records, nil
	}

	db, err := openIndex(cfg, p, false)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	export, err := db.GetExportByKey(arg)
	if err != nil {
		return nil, err
	}
	if export == nil {
		return nil, fmt.Errorf("export not found: %s (run 'chatx index' or pass a file)", arg)
	}
	return db.LoadRecords(arg)
}

func printReport(w io.Writer, r stats.Report, senders []string) {
	totals := fmt.Sprintf("%s\nmessages %d   words %d   media %d   links %d   unresolved %d",
		lipgloss.NewStyle().Bold(true).Render("Top statistics: "+r.User),
		r.Totals.Messages, r.Totals.Words, r.Totals.Media, r.Totals.Links, r.Unresolved)
	fmt.Fprintln(w, styleTotals.Render(totals))
	if r.User == stats.Overall && len(senders) > 0 {
		fmt.Fprintf(w, "senders: %s\n", strings.Join(senders, ", "))
	}

	printPoints(w, "Monthly timeline", r.Monthly)
	printPoints(w, "Daily timeline", r.Daily)
	printPoints(w, "Most busy day", r.WeekActivity)
	printPoints(w, "Most busy month", r.MonthActivity)

	if len(r.BusyUsers) > 0 {
		fmt.Fprintln(w, styleHeading.Render("Most busy users"))
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("sender", "messages", "percent")
		for _, s := range r.BusyUsers {
			t.Row(s.Sender, strconv.Itoa(s.Count), strconv.FormatFloat(s.Percent, 'f', 2, 64))
		}
		fmt.Fprintln(w, t.Render())
	}

	printHeatmap(w, r.Heatmap)
	printPoints(w, "Most common words", r.CommonWords)
	printPoints(w, "Emoji", r.Emoji)
}

func printPoints(w io.Writer, title string, points []stats.Point) {
	fmt.Fprintln(w, styleHeading.Render(title))
	if len(points) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	peak := 0
	for _, p := range points {
		peak = max(peak, p.Count)
	}
	t := table.New().Border(lipgloss.HiddenBorder())
	for _, p := range points {
		bar := strings.Repeat("█", max(1, p.Count*barWidth/peak))
		t.Row(p.Label, strconv.Itoa(p.Count), styleBar.Render(bar))
	}
	fmt.Fprintln(w, t.Render())
}

func printHeatmap(w io.Writer, g stats.HeatmapGrid) {
	fmt.Fprintln(w, styleHeading.Render("Weekly activity map"))
	peak := 0
	for _, row := range g.Counts {
		for _, n := range row {
			peak = max(peak, n)
		}
	}
	shades := []string{"·", "░", "▒", "▓", "█"}

	headers := []string{""}
	for h := range g.Periods {
		headers = append(headers, fmt.Sprintf("%02d", h))
	}
	t := table.New().Border(lipgloss.HiddenBorder()).Headers(headers...)
	for i, day := range g.Days {
		row := []string{day[:3]}
		for _, n := range g.Counts[i] {
			shade := shades[0]
			if peak > 0 && n > 0 {
				shade = shades[1+(n*(len(shades)-2))/peak]
			}
			row = append(row, shade)
		}
		t.Row(row...)
	}
	fmt.Fprintln(w, t.Render())
}
