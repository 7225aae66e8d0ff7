package report

import (
	"bytes"
	"fmt"
	"html"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/flightcore/fwautotune/pkg/bench"
)

// WriteHTMLReport renders one SVG time-series chart per bench.Result
// (actuator, desired rate and actual rate against block index) plus the
// tabwriter summary table, wrapped in a single static HTML page.
//
// go-chart/v2 renders raster/vector images, not markup directly, so each
// chart is rendered to SVG and its markup written inline into the page, the same
// "render then embed" shape pkg/visualization used for its own chart
// outputs.
func WriteHTMLReport(w io.Writer, results []bench.Result) error {
	summaries := make([]Summary, len(results))
	for i, res := range results {
		summaries[i] = Summarize(res)
	}

	fmt.Fprint(w, "<!doctype html><html><head><meta charset=\"utf-8\"><title>autotune bench report</title></head><body>")
	fmt.Fprint(w, "<h1>autotune bench report</h1><pre>")

	var tableBuf bytes.Buffer
	WriteTable(&tableBuf, summaries)
	fmt.Fprint(w, html.EscapeString(tableBuf.String()))
	fmt.Fprint(w, "</pre>")

	for _, res := range results {
		fmt.Fprintf(w, "<h2>%s</h2>", html.EscapeString(res.Scenario.Name))
		svg, err := renderSeriesSVG(res)
		if err != nil {
			return fmt.Errorf("render chart for %q: %w", res.Scenario.Name, err)
		}
		w.Write(svg)
	}

	fmt.Fprint(w, "</body></html>")
	return nil
}

// renderSeriesSVG draws the actuator/desired-rate/actual-rate series for a
// single bench.Result to an inline SVG document.
func renderSeriesSVG(res bench.Result) ([]byte, error) {
	x := make([]float64, len(res.Records))
	actuator := make([]float64, len(res.Records))
	desired := make([]float64, len(res.Records))
	actual := make([]float64, len(res.Records))
	for i, rec := range res.Records {
		x[i] = float64(i)
		actuator[i] = float64(rec.Actuator)
		desired[i] = float64(rec.DesiredRate)
		actual[i] = float64(rec.ActualRate)
	}

	c := chart.Chart{
		Title: res.Scenario.Name,
		XAxis: chart.XAxis{Name: "block"},
		YAxis: chart.YAxis{Name: "deg/s"},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "actuator", XValues: x, YValues: actuator},
			chart.ContinuousSeries{Name: "desired rate", XValues: x, YValues: desired},
			chart.ContinuousSeries{Name: "actual rate", XValues: x, YValues: actual},
		},
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}

	var buf bytes.Buffer
	if err := c.Render(chart.SVG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
