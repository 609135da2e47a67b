package monitor

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/seisattr/internal/trace"
)

// reportBins is the histogram resolution of the eigenvalue report.
const reportBins = 40

// WriteEigenReport renders a static HTML report with the e1/e2/e3
// value distributions over the defined region of an eigenvalue run.
func WriteEigenReport(res *trace.EigenResult, title, file string) error {
	page := components.NewPage()
	page.PageTitle = title

	for _, s := range []struct {
		name string
		data []float64
	}{
		{"e1", definedSamples(res, res.E1.Data)},
		{"e2", definedSamples(res, res.E2.Data)},
		{"e3", definedSamples(res, res.E3.Data)},
	} {
		chart, err := histogramBar(s.name, s.data)
		if err != nil {
			return err
		}
		page.AddCharts(chart)
	}

	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render report: %w", err)
	}
	return f.Close()
}

// definedSamples collects the samples inside the interior trace region
// and valid z-range, skipping the undefined margins.
func definedSamples(res *trace.EigenResult, data []float64) []float64 {
	b := res.E1
	out := make([]float64, 0, len(data))
	for ix := res.MarginX; ix < b.NX-res.MarginX; ix++ {
		for iy := res.MarginY; iy < b.NY-res.MarginY; iy++ {
			base := (ix*b.NY + iy) * b.NZ
			for z := res.ValidLo; z < res.ValidHi; z++ {
				out = append(out, data[base+z])
			}
		}
	}
	return out
}

// histogramBar builds a bar chart of the value distribution.
func histogramBar(name string, data []float64) (*charts.Bar, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no defined samples for %s", name)
	}

	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	width := (hi - lo) / reportBins
	if width == 0 {
		width = 1 // constant output, single occupied bin
	}

	counts := make([]int, reportBins)
	for _, v := range data {
		bin := int((v - lo) / width)
		if bin >= reportBins {
			bin = reportBins - 1
		}
		counts[bin]++
	}

	labels := make([]string, reportBins)
	values := make([]opts.BarData, reportBins)
	for i := range counts {
		labels[i] = fmt.Sprintf("%.3g", lo+(float64(i)+0.5)*width)
		values[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s distribution", name),
			Subtitle: fmt.Sprintf("samples=%d min=%.4g max=%.4g", len(data), lo, hi),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries(name, values)
	return bar, nil
}
