// session-report renders a post-ride HTML summary of recent escalation
// sessions from a crashguard journal database: triggering vs peak probability
// per session as a bar chart, coloured labels for how each session resolved.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	_ "modernc.org/sqlite"

	"github.com/ridepulse-app/crashguard/internal/journal"
)

var (
	dbFile = flag.String("db", "crashguard.db", "Session journal database path")
	out    = flag.String("out", "session-report.html", "Output HTML file")
	limit  = flag.Int("limit", 50, "Maximum sessions to include")
)

func main() {
	flag.Parse()

	jnl, err := journal.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open journal: %v", err)
	}
	defer jnl.Close()

	records, err := jnl.RecentSessions(*limit)
	if err != nil {
		log.Fatalf("failed to read sessions: %v", err)
	}
	if len(records) == 0 {
		log.Fatal("no sessions in journal")
	}

	labels := make([]string, 0, len(records))
	trigger := make([]opts.BarData, 0, len(records))
	peak := make([]opts.BarData, 0, len(records))
	// RecentSessions is newest-first; reverse so the chart reads left to right
	// in ride order.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		resolution := r.Resolution
		if resolution == "" {
			resolution = r.State
		}
		labels = append(labels, fmt.Sprintf("%s\n%s (%s)",
			r.CandidateAt.Format("Jan 2 15:04:05"), r.Kind, resolution))
		trigger = append(trigger, opts.BarData{Value: r.Probability})
		peak = append(peak, opts.BarData{Value: r.PeakProbability})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Escalation Sessions", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Escalation Sessions",
			Subtitle: fmt.Sprintf("db=%s sessions=%d", *dbFile, len(records)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "probability"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("triggering", trigger).
		AddSeries("peak", peak)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("failed to create output file: %v", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		log.Fatalf("failed to render chart: %v", err)
	}
	log.Printf("wrote %s (%d sessions)", *out, len(records))
}
