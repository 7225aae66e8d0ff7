// Package tuner implements the core autotune state machine: signal
// conditioning, event detection, the FF/P/D/I gain law, the delayed-commit
// persistence scheduler, and the RMAX/TAU envelope slewer (spec.md §2–4).
//
// Grounded on pkg/simulator's PID-family adjusters: pid_adjuster.go for the
// single-layer PID update shape (config struct, mutable controller state,
// ProcessBlock-equivalent per-tick entry point, GetCurrentState/Reset),
// batcher_slow_pid.go for periodic strategic parameter updates with
// clamped per-update change (clampParameterChange directly grounds
// update_rmax's ±20°/s, ±15% slew caps), and sequencer_fast_pid.go for
// emergency/consecutive-streak counters (grounding the idle-oscillation
// "≥500ms with max_Dmod<0.9" detector).
package tuner

import (
	"github.com/flightcore/fwautotune/pkg/airframe"
	"github.com/flightcore/fwautotune/pkg/tuninglog"
)

// Action re-exports tuninglog.Action so callers of this package don't need
// a second import just to compare against it.
type Action = tuninglog.Action

// Action values (spec.md §3).
const (
	ActionNone        = tuninglog.ActionNone
	ActionLowRate     = tuninglog.ActionLowRate
	ActionShort       = tuninglog.ActionShort
	ActionRaisePD     = tuninglog.ActionRaisePD
	ActionLowerPD     = tuninglog.ActionLowerPD
	ActionIdleLowerPD = tuninglog.ActionIdleLowerPD
)

// State is the tuner's event-detector state (spec.md §3).
type State int

const (
	StateIdle State = iota
	StateDemandPos
	StateDemandNeg
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDemandPos:
		return "demand_pos"
	case StateDemandNeg:
		return "demand_neg"
	default:
		return "unknown"
	}
}

// ATGains is the trivially-copyable gain/envelope snapshot the persistence
// scheduler rotates through (current / next_save / last_save / restore),
// spec.md §3.
type ATGains struct {
	Tau     float32
	RMaxPos int16
	RMaxNeg int16
	FF      float32
	P       float32
	I       float32
	D       float32
	IMAX    float32
}

// tuningRow is one entry of the 11-row tuning table (spec.md §3).
type tuningRow struct {
	Tau  float32
	RMax float32
}

// tuningTable maps aggressiveness level 1..11 to (tau, rmax). Index 0
// corresponds to level 1.
var tuningTable = [11]tuningRow{
	{Tau: 1.00, RMax: 20},
	{Tau: 0.90, RMax: 30},
	{Tau: 0.80, RMax: 40},
	{Tau: 0.70, RMax: 50},
	{Tau: 0.60, RMax: 60},
	{Tau: 0.50, RMax: 75},
	{Tau: 0.30, RMax: 90},
	{Tau: 0.20, RMax: 120},
	{Tau: 0.15, RMax: 160},
	{Tau: 0.10, RMax: 210},
	{Tau: 0.10, RMax: 300},
}

// Gain-law constants (spec.md §4.3).
const (
	incFF  = 0.12
	decFF  = 0.15
	incPD  = 0.10
	decPD  = 0.20
	iRatio = 0.75
	trimTConst = 1.0
	overshootRatio = 1.1
)

// Signal-conditioner filter cutoffs (spec.md §4.1).
const (
	actuatorFilterHz = 0.75
	rateFilterHz     = 0.75
	targetFilterHz   = 4.0
	ffFilterWindow   = 2
)

// SAVE_PERIOD (spec.md §4.4).
const savePeriodMs uint32 = 10_000

// Axis is re-exported for caller convenience; it is airframe.Axis under
// the hood since the only axis-specific behavior is the attitude-limit
// lookup (spec.md §9: "no dynamic dispatch needed for axis polymorphism").
type Axis = airframe.Axis

const (
	AxisRoll  = airframe.AxisRoll
	AxisPitch = airframe.AxisPitch
)
