package display

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/RMahshie/vibrascope/internal/spectrum"
	"github.com/RMahshie/vibrascope/pkg/models"
)

const (
	FrequencyAxisTitle = "Frequency [Hz]"
	MagnitudeAxisTitle = "Magnitude [mm/s*s]"

	// frequencyTicks is the number of labelled ticks on the frequency axis
	frequencyTicks = 13
)

// Chart renders a spectrum as a standalone HTML line chart
type Chart struct {
	Title        string
	SampleRateHz float64
}

// Render writes the chart page for points to w. The frequency axis always
// spans 0 to the Nyquist frequency of the sample rate.
func (c Chart) Render(w io.Writer, points []models.FrequencyPoint) error {
	if c.SampleRateHz <= 0 {
		return fmt.Errorf("chart needs a positive sample rate, got %v", c.SampleRateHz)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.Title,
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.Title,
			Subtitle: fmt.Sprintf("%d bins, resampled at %g Hz", len(points), c.SampleRateHz),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:        FrequencyAxisTitle,
			Type:        "value",
			Min:         0,
			Max:         spectrum.Nyquist(c.SampleRateHz),
			SplitNumber: frequencyTicks - 1,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: MagnitudeAxisTitle,
			Type: "value",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)

	data := make([]opts.LineData, len(points))
	for i, p := range points {
		data[i] = opts.LineData{Value: []interface{}{p.Frequency, p.Magnitude}}
	}
	line.AddSeries("spectrum", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)

	return line.Render(w)
}
