package artifacts

import (
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"walkforward/src/datamodels"
)

// EquityChart renders the chained equity curve to a static image file.
type EquityChart struct {
	title    string
	filename string
	points   []datamodels.EquityPoint
}

func NewEquityChart() *EquityChart {
	return &EquityChart{title: "Equity"}
}

func (c *EquityChart) WithTitle(title string) *EquityChart {
	c.title = title
	return c
}

func (c *EquityChart) WithPoints(points []datamodels.EquityPoint) *EquityChart {
	c.points = points
	return c
}

func (c *EquityChart) WithFileOutput(filename string) *EquityChart {
	c.filename = filename
	return c
}

func (c *EquityChart) Save() error {
	if c.filename == "" {
		slog.Warn("EquityChart has no output file set, skipping")
		return nil
	}
	if len(c.points) == 0 {
		slog.Warn("EquityChart has no points to plot, skipping")
		return nil
	}

	p := plot.New()
	p.Title.Text = c.title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Equity"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	pts := make(plotter.XYs, len(c.points))
	for i, point := range c.points {
		pts[i].X = float64(point.Date.Unix())
		pts[i].Y = point.Value
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(plotter.NewGrid())
	p.Add(line)

	if err := os.MkdirAll(filepath.Dir(c.filename), 0755); err != nil {
		return err
	}
	return p.Save(10*vg.Inch, 6*vg.Inch, c.filename)
}
