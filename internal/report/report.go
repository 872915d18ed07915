// Package report renders comparison results as a text table or an HTML page of charts.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lytics/hll/v2/internal/compare"
)

// WriteTable prints a single comparison in the layout of the original exercise: one column per
// method, one row per metric.
func WriteTable(w io.Writer, r *compare.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\nComparison results:\n")
	fmt.Fprintf(&b, "%-30s%20s%15s\n", "", "Exact count", "HyperLogLog")
	fmt.Fprintf(&b, "%-30s%20.1f%15.1f\n", "Unique elements", float64(r.Exact), float64(int64(r.Estimate)))
	fmt.Fprintf(&b, "%-30s%20.2f%15.2f\n", "Execution time (sec.)", r.ExactTime.Seconds(),
		r.EstimateTime.Seconds())
	fmt.Fprintf(&b, "%-30s%20s%15.2f\n", "Error (%)", "0.00", r.RelativeError())
	fmt.Fprintf(&b, "%-30s%20d%15d\n", "Memory (bytes)", r.ExactBytes, r.EstimateBytes)
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSweepTable prints one row per precision.
func WriteSweepTable(w io.Writer, results []*compare.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%4s %12s %14s %10s %10s %12s %10s\n", "p", "exact", "estimate", "error %",
		"std err %", "bytes", "seconds")
	for _, r := range results {
		fmt.Fprintf(&b, "%4d %12d %14.1f %10.2f %10.2f %12d %10.3f\n", r.Precision, r.Exact,
			r.Estimate, r.RelativeError(), r.StandardError*100, r.EstimateBytes,
			r.EstimateTime.Seconds())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderHTML writes a page with the error and the memory of the estimator against precision,
// next to the exact counter's.
func RenderHTML(w io.Writer, results []*compare.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to render")
	}

	xs := make([]uint, 0, len(results))
	observed := make([]opts.LineData, 0, len(results))
	expected := make([]opts.LineData, 0, len(results))
	sketchBytes := make([]opts.BarData, 0, len(results))
	exactBytes := make([]opts.BarData, 0, len(results))
	for _, r := range results {
		xs = append(xs, r.Precision)
		observed = append(observed, opts.LineData{Value: r.RelativeError()})
		expected = append(expected, opts.LineData{Value: r.StandardError * 100})
		sketchBytes = append(sketchBytes, opts.BarData{Value: r.EstimateBytes})
		exactBytes = append(exactBytes, opts.BarData{Value: r.ExactBytes})
	}

	errLine := charts.NewLine()
	errLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("HyperLogLog error, %d distinct of %d items",
			results[0].Exact, results[0].Items)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "precision"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "error %"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Right: "5%", Top: "5%"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}))
	errLine.SetXAxis(xs).
		AddSeries("observed", observed).
		AddSeries("standard error", expected)

	memBar := charts.NewBar()
	memBar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Memory"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "precision"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "bytes", Type: "log"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Right: "5%", Top: "5%"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}))
	memBar.SetXAxis(xs).
		AddSeries("HyperLogLog", sketchBytes).
		AddSeries("exact", exactBytes)

	page := components.NewPage()
	page.AddCharts(errLine, memBar)
	return page.Render(w)
}
