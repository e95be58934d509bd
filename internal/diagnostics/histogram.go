// Package diagnostics renders optional visual output from accumulated
// run state: a per-discriminant PDF histogram PNG dump via gonum/plot,
// and an HTML batch report of run history via go-echarts. Neither is
// on the hot path; both are off unless a caller explicitly asks for
// them, since rendering a plot is pure overhead for a production
// reconstruction pass.
package diagnostics

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/caloflow/pfreco/internal/photonid"
)

var (
	signalColor     = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	backgroundColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// PlotDiscriminant renders signal-vs-background histogram lines for one
// (energyBin, discriminant) pair of tbl to a PNG at path.
func PlotDiscriminant(tbl *photonid.Table, energyBin, discriminant int, path string) error {
	if energyBin < 0 || energyBin >= len(tbl.Signal) {
		return fmt.Errorf("energy bin %d out of range [0,%d)", energyBin, len(tbl.Signal))
	}
	if discriminant < 0 || discriminant >= len(photonid.DiscriminantNames) {
		return fmt.Errorf("discriminant %d out of range [0,%d)", discriminant, len(photonid.DiscriminantNames))
	}

	sig := tbl.Signal[energyBin][discriminant]
	bkg := tbl.Background[energyBin][discriminant]

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s, energy bin %d", photonid.DiscriminantNames[discriminant], energyBin)
	p.X.Label.Text = "value"
	p.Y.Label.Text = "density"

	sigLine, err := plotter.NewLine(histogramPoints(sig))
	if err != nil {
		return fmt.Errorf("signal line: %w", err)
	}
	sigLine.Color = signalColor
	sigLine.Width = vg.Points(1.5)
	p.Add(sigLine)
	p.Legend.Add("signal", sigLine)

	bkgLine, err := plotter.NewLine(histogramPoints(bkg))
	if err != nil {
		return fmt.Errorf("background line: %w", err)
	}
	bkgLine.Color = backgroundColor
	bkgLine.Width = vg.Points(1.5)
	p.Add(bkgLine)
	p.Legend.Add("background", bkgLine)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// histogramPoints converts a Histogram's bin counts to bin-center/count
// points, treating a nil histogram (an untrained bin) as all zero.
func histogramPoints(h *photonid.Histogram) plotter.XYs {
	if h == nil {
		return plotter.XYs{}
	}
	pts := make(plotter.XYs, len(h.Counts))
	width := (h.High - h.Low) / float64(len(h.Counts))
	for i, count := range h.Counts {
		pts[i] = plotter.XY{X: h.Low + (float64(i)+0.5)*width, Y: count}
	}
	return pts
}
