package tuner

import (
	"github.com/flightcore/fwautotune/pkg/clockiface"
	"github.com/flightcore/fwautotune/pkg/ratepid"
	"github.com/flightcore/fwautotune/pkg/tuninglog"
)

// maybeLog emits a telemetry block through the logging sink, throttled to
// at most 25Hz (spec.md §4.6) so a 400Hz caller doesn't flood the sink.
func (t *Tuner) maybeLog(nowMs uint32, pidInfo ratepid.PidInfo, actuator, desiredRate, actualRate float32) {
	if t.logSink == nil {
		return
	}
	if t.lastLogMs != 0 && clockiface.MsSince(nowMs, t.lastLogMs) < 40 {
		return
	}
	t.lastLogMs = nowMs

	t.logSink.WriteBlock(tuninglog.Record{
		TimestampUs: t.clock.NowUs(),
		Axis:        t.axis,
		State:       t.state.String(),
		Actuator:    actuator,
		DesiredRate: desiredRate,
		ActualRate:  actualRate,
		FFSingle:    t.ffSingle,
		FF:          t.current.FF,
		P:           t.current.P,
		I:           t.current.I,
		D:           t.current.D,
		Action:      t.action,
		RMaxPos:     t.current.RMaxPos,
		Tau:         t.current.Tau,
	})
}
