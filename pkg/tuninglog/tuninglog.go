// Package tuninglog defines the autotuner's logging sink (spec.md §4.6)
// and two implementations: a charmbracelet/log-backed sink for the bench
// CLI, grounded on doismellburning-samoyed's structured logging, and an
// in-memory sink that keeps every record, for tests and the report generator, grounded on the
// teacher's habit of pairing every collaborator interface with both a real
// and a fake implementation (pkg/simulator.FeeAdjuster / the scenario
// generator's in-process use of it).
package tuninglog

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/flightcore/fwautotune/pkg/airframe"
)

// Action mirrors pkg/tuner.Action without importing it, so tuninglog has
// no dependency on the core package it's a collaborator of.
type Action int

const (
	ActionNone Action = iota
	ActionLowRate
	ActionShort
	ActionRaisePD
	ActionLowerPD
	ActionIdleLowerPD
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionLowRate:
		return "low_rate"
	case ActionShort:
		return "short"
	case ActionRaisePD:
		return "raise_pd"
	case ActionLowerPD:
		return "lower_pd"
	case ActionIdleLowerPD:
		return "idle_lower_pd"
	default:
		return "unknown"
	}
}

// Record is one logged block of autotune telemetry (spec.md §4.6).
type Record struct {
	TimestampUs uint64
	Axis        airframe.Axis
	State       string
	Actuator    float32
	DesiredRate float32
	ActualRate  float32
	FFSingle    float32
	FF          float32
	P           float32
	I           float32
	D           float32
	Action      Action
	RMaxPos     int16
	Tau         float32
}

// Sink is the logger collaborator (spec.md §6): write_block(record).
type Sink interface {
	WriteBlock(rec Record)
}

// LogSink writes Records through charmbracelet/log, one structured line
// per block, suitable for the bench CLI's stderr output.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a LogSink writing to stderr with INFO level, matching
// the charmbracelet/log defaults samoyed configures for its own
// subsystems.
func NewLogSink() *LogSink {
	return &LogSink{logger: log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "autotune",
		Level:  log.InfoLevel,
	})}
}

func (s *LogSink) WriteBlock(rec Record) {
	s.logger.Info("block",
		"axis", rec.Axis,
		"state", rec.State,
		"action", rec.Action,
		"actuator", rec.Actuator,
		"desired_rate", rec.DesiredRate,
		"actual_rate", rec.ActualRate,
		"ff_single", rec.FFSingle,
		"ff", rec.FF,
		"p", rec.P,
		"i", rec.I,
		"d", rec.D,
		"rmax_pos", rec.RMaxPos,
		"tau", rec.Tau,
	)
}

// MemorySink buffers every Record it receives, for tests and for
// pkg/report to summarize/plot after a bench run completes.
type MemorySink struct {
	Records []Record
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) WriteBlock(rec Record) {
	s.Records = append(s.Records, rec)
}
