package bench

import (
	"time"

	"github.com/flightcore/fwautotune/pkg/airframe"
	"github.com/flightcore/fwautotune/pkg/clockiface"
	"github.com/flightcore/fwautotune/pkg/paramstore"
	"github.com/flightcore/fwautotune/pkg/ratepid"
	"github.com/flightcore/fwautotune/pkg/tuner"
	"github.com/flightcore/fwautotune/pkg/tuninglog"
)

// Config supplies everything a Run needs beyond the Scenario itself: the
// airframe envelope and starting gains a real vehicle config would provide.
type Config struct {
	Axis             airframe.Axis
	RollLimitCd      int32
	PitchLimitMaxCd  int32
	PitchLimitMinCd  int32
	AutotuneLevel    int
	FF, P, I, D      float32
	IMAX             float32
	RMaxPos, RMaxNeg int16
	Tau              float32
	SlewLimit        float32
}

// DefaultConfig returns a roll-axis configuration representative of a small
// fixed-wing, the bench harness's out-of-the-box starting point.
func DefaultConfig() Config {
	return Config{
		Axis:            airframe.AxisRoll,
		RollLimitCd:     4500,
		PitchLimitMaxCd: 4500,
		PitchLimitMinCd: 4500,
		AutotuneLevel:   0,
		FF:              0.3, P: 0.08, I: 0.15, D: 0.002,
		IMAX:      0.5,
		RMaxPos:   75, RMaxNeg: 75,
		Tau:       0.5,
		SlewLimit: 150,
	}
}

// Result is everything a bench run produced: the telemetry log plus the
// final gain set and last action, for pkg/report to summarize. FinalGains
// is read after the last sample, before Stop restores the saved snapshot;
// LastAction is the most recent action other than ActionNone.
type Result struct {
	Scenario    Scenario
	Records     []tuninglog.Record
	FinalGains  tuner.ATGains
	LastAction  tuner.Action
	StoreWrites int
}

// Run drives a fresh Tuner through every Sample in s, deterministically,
// using a SimClock/FixedScheduler pair so the run is reproducible
// bit-for-bit (grounded on pkg/simulator's table-driven batcher tests,
// which exercise their adjuster the same way: construct, feed a scripted
// series, inspect state afterward).
func Run(s Scenario, cfg Config) Result {
	store := paramstore.NewMemoryStore()
	pid := ratepid.NewFakeRatePID(store, "AUTOTUNE", cfg.FF, cfg.P, cfg.I, cfg.D, cfg.IMAX, cfg.Tau, cfg.RMaxPos, cfg.RMaxNeg, cfg.SlewLimit)
	params := &airframe.StaticParams{
		RollLimitCdValue:     cfg.RollLimitCd,
		PitchLimitMaxCdValue: cfg.PitchLimitMaxCd,
		PitchLimitMinCdValue: cfg.PitchLimitMinCd,
		AutotuneLevelValue:   cfg.AutotuneLevel,
	}
	clock := clockiface.NewSimClock()
	sched := clockiface.FixedScheduler{HzValue: s.LoopRateHz}
	sink := tuninglog.NewMemorySink()

	tn := tuner.New(pid, cfg.Axis, params, clock, sched, sink)
	tn.Start()

	period := time.Duration(float64(time.Second) / float64(s.LoopRateHz))
	lastAction := tuner.ActionNone
	for _, sample := range s.Samples {
		tn.Update(ratepid.PidInfo{
			Target:   sample.Target,
			Actual:   sample.Actual,
			FF:       sample.FF,
			P:        sample.P,
			I:        sample.I,
			D:        sample.D,
			Dmod:     sample.Dmod,
			SlewRate: sample.SlewRate,
		}, sample.Scaler, sample.AngleErrDeg)
		if a := tn.LastAction(); a != tuner.ActionNone {
			lastAction = a
		}
		clock.Advance(period)
	}
	finalGains := tn.CurrentGains()
	tn.Stop()

	return Result{
		Scenario:    s,
		Records:     sink.Records,
		FinalGains:  finalGains,
		LastAction:  lastAction,
		StoreWrites: len(store.FloatWrites) + len(store.IntWrites),
	}
}
