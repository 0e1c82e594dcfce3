package analyzer

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotSpectrum saves frames as line plots over frequency. The output format is taken from
// the file extension.
func PlotSpectrum(path string, sampleRate float64, frames map[string]Frame) error {
	p := plot.New()
	p.Title.Text = "Spectrum"
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "Magnitude"
	p.Y.Min, p.Y.Max = 0, 255

	var vs []any
	for name, f := range frames {
		vs = append(vs, name, newPlotter(f, sampleRate))
	}
	if err := plotutil.AddLines(p, vs...); err != nil {
		return fmt.Errorf("error adding lines: %w", err)
	}

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("error saving plot: %w", err)
	}
	return nil
}

func newPlotter(f Frame, sampleRate float64) plotter.XYs {
	pts := make(plotter.XYs, len(f))
	hz := sampleRate / float64(2*len(f))
	for i := range pts {
		pts[i].X = float64(i) * hz
		pts[i].Y = float64(f[i])
	}
	return pts
}
