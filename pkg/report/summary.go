// Package report summarizes and visualizes a bench.Result: a tabwriter
// table for terminal output and an SVG time-series chart for the HTML
// report, standing in for the teacher's pkg/analysis (tabular summary) and
// pkg/visualization (charted summary) pair.
//
// Grounded on pkg/analysis.PrintResults's tabwriter table and per-result
// statistics block. go-chart/v2 is used for the chart rather than the
// go-echarts import the teacher's pkg/visualization carries, since
// go-chart/v2 is the charting library go.mod actually pins.
package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/flightcore/fwautotune/pkg/bench"
)

// Summary is the computed statistics for one bench.Result, the report
// analogue of pkg/analysis.Result.
type Summary struct {
	ScenarioName string
	TotalBlocks  int
	LastAction   string
	FinalFF      float32
	FinalP       float32
	FinalI       float32
	FinalD       float32
	FinalRMaxPos int16
	FinalTau     float32
	MaxActuator  float32
	MinActuator  float32
	ActuatorRMS  float64
	StoreWrites  int
}

// Summarize reduces a bench.Result down to the headline numbers a report
// table or CLI summary would show.
func Summarize(res bench.Result) Summary {
	var maxA, minA float32
	var sumSq float64
	for i, rec := range res.Records {
		if i == 0 {
			maxA, minA = rec.Actuator, rec.Actuator
		}
		if rec.Actuator > maxA {
			maxA = rec.Actuator
		}
		if rec.Actuator < minA {
			minA = rec.Actuator
		}
		sumSq += float64(rec.Actuator) * float64(rec.Actuator)
	}
	var rms float64
	if len(res.Records) > 0 {
		rms = math.Sqrt(sumSq / float64(len(res.Records)))
	}

	return Summary{
		ScenarioName: res.Scenario.Name,
		TotalBlocks:  len(res.Records),
		LastAction:   res.LastAction.String(),
		FinalFF:      res.FinalGains.FF,
		FinalP:       res.FinalGains.P,
		FinalI:       res.FinalGains.I,
		FinalD:       res.FinalGains.D,
		FinalRMaxPos: res.FinalGains.RMaxPos,
		FinalTau:     res.FinalGains.Tau,
		MaxActuator:  maxA,
		MinActuator:  minA,
		ActuatorRMS:  rms,
		StoreWrites:  res.StoreWrites,
	}
}

// WriteTable prints a tabwriter summary table across every Summary, one row
// per scenario, matching pkg/analysis.PrintResults's table shape.
func WriteTable(w io.Writer, summaries []Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "Scenario\tBlocks\tLast Action\tFinal FF\tFinal P\tFinal D\tRMAX\tTau\tWrites")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.4f\t%.4f\t%.4f\t%d\t%.3f\t%d\n",
			s.ScenarioName, s.TotalBlocks, s.LastAction,
			s.FinalFF, s.FinalP, s.FinalD, s.FinalRMaxPos, s.FinalTau, s.StoreWrites)
	}
}
