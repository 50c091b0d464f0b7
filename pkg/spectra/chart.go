package spectra

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartOptions control the rendered spectra chart.
type ChartOptions struct {
	Title  string
	Width  string
	Height string
}

// RenderChart writes the collection as a self-contained interactive HTML
// line chart: one series per picked spectrum, the measurement-axis labels
// on the X axis. Missing samples break the line rather than plotting as
// zero.
func (c *Collection) RenderChart(w io.Writer, o ChartOptions) error {
	if c.Len() == 0 {
		return fmt.Errorf("no spectra to chart")
	}
	if o.Title == "" {
		o.Title = "Picked Spectra"
	}
	if o.Width == "" {
		o.Width = "1000px"
	}
	if o.Height == "" {
		o.Height = "600px"
	}

	xName := "Band"
	if c.unit != "" {
		xName = fmt.Sprintf("Wavelength (%s)", c.unit)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Value"}),
	)

	xs := make([]string, len(c.labels))
	for i, l := range c.labels {
		xs[i] = fmt.Sprintf("%g", l)
	}
	line.SetXAxis(xs)

	for _, s := range c.singles {
		line.AddSeries(s.Name, lineData(s.Values))
	}
	for _, m := range c.means {
		line.AddSeries(m.Name, lineData(m.Mean))
	}

	return line.Render(w)
}

// SaveChart renders the chart into a file.
func (c *Collection) SaveChart(path string, o ChartOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()

	return c.RenderChart(f, o)
}

func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			// nil values render as gaps in echarts.
			out[i] = opts.LineData{Value: nil}
			continue
		}
		out[i] = opts.LineData{Value: v}
	}
	return out
}
