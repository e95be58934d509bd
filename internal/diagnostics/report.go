package diagnostics

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/caloflow/pfreco/internal/store"
)

// RenderRunHistory writes an HTML page charting cluster/photon/recovered-
// track counts across the most recent runs (newest first, as returned
// by store.DB.ListRuns) to w.
func RenderRunHistory(runs []store.RunSummary, w io.Writer) error {
	labels := make([]string, len(runs))
	clusters := make([]opts.BarData, len(runs))
	photons := make([]opts.BarData, len(runs))
	recovered := make([]opts.BarData, len(runs))

	// Runs arrive newest-first; plot oldest-first left to right.
	for i, run := range runs {
		j := len(runs) - 1 - i
		labels[j] = fmt.Sprintf("run %d", run.ID)
		clusters[j] = opts.BarData{Value: run.ClusterCount}
		photons[j] = opts.BarData{Value: run.PhotonCount}
		recovered[j] = opts.BarData{Value: run.TrackRecoveredCount}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "pfreco run history", Theme: "dark", Width: "960px", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{Title: "Run history", Subtitle: fmt.Sprintf("%d runs", len(runs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("clusters", clusters).
		AddSeries("photons", photons).
		AddSeries("recovered tracks", recovered)

	return bar.Render(w)
}
