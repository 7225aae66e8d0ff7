package tuner

import (
	"github.com/flightcore/fwautotune/pkg/airframe"
	"github.com/flightcore/fwautotune/pkg/clockiface"
	"github.com/flightcore/fwautotune/pkg/ratepid"
)

// Update is the single per-tick entry point, intended to be called once per
// inner-loop iteration (spec.md §2, §6). It must not allocate, spin, or
// touch the filesystem/RNG; every collaborator it needs was bound at New.
func (t *Tuner) Update(pidInfo ratepid.PidInfo, scaler, angleErrDeg float32) {
	if !t.running {
		return
	}
	nowMs := t.clock.NowMs()
	t.action = ActionNone

	if !pidInfoFinite(pidInfo) || !isFinite(scaler) || !isFinite(angleErrDeg) {
		t.abortEvent(nowMs)
		t.checkSave(nowMs)
		t.maybeLog(nowMs, pidInfo, 0, 0, 0)
		return
	}

	clippedActuator := clamp(pidInfo.FF+pidInfo.P+pidInfo.D+pidInfo.I, -45, 45) - pidInfo.I
	filteredActuator := t.actuatorFilter.Apply(clippedActuator)
	filteredRate := t.rateFilter.Apply(pidInfo.Actual)
	filteredTarget := t.targetFilter.Apply(pidInfo.Target)

	t.runDetector(nowMs, scaler, filteredActuator, filteredRate, filteredTarget, angleErrDeg, pidInfo)
	t.updateRmax()
	t.checkSave(nowMs)
	t.maybeLog(nowMs, pidInfo, filteredActuator, pidInfo.Target, filteredRate)
}

func pidInfoFinite(pidInfo ratepid.PidInfo) bool {
	return isFinite(pidInfo.Target) && isFinite(pidInfo.Actual) &&
		isFinite(pidInfo.FF) && isFinite(pidInfo.P) && isFinite(pidInfo.I) && isFinite(pidInfo.D) &&
		isFinite(pidInfo.Dmod) && isFinite(pidInfo.SlewRate)
}

// abortEvent handles a non-finite intermediate: any in-progress DEMAND
// event is abandoned as LOW_RATE and the tuner returns to IDLE rather than
// let NaN/Inf propagate into a filter or the gain law (spec.md §7).
func (t *Tuner) abortEvent(nowMs uint32) {
	if t.state != StateIdle {
		t.action = ActionLowRate
		t.state = StateIdle
	}
	t.resetIdleTracking(nowMs)
}

// runDetector implements the event detector / state machine (spec.md §4.2).
func (t *Tuner) runDetector(nowMs uint32, scaler, filteredActuator, filteredRate, filteredTarget, angleErrDeg float32, pidInfo ratepid.PidInfo) {
	attLimitDeg := airframe.AttitudeLimitDeg(t.params, t.axis)
	rateThreshold1 := 0.6 * minf(attLimitDeg/maxf(t.current.Tau, 0.01), float32(t.current.RMaxPos))
	rateThreshold2 := 0.25 * rateThreshold1
	inAttDemand := absf(angleErrDeg) >= 0.3*attLimitDeg

	switch t.state {
	case StateIdle:
		switch {
		case filteredTarget > rateThreshold1 && inAttDemand:
			t.enterDemand(StateDemandPos, nowMs)
			t.updateEventExtrema(filteredActuator, filteredRate, filteredTarget, pidInfo)
		case filteredTarget < -rateThreshold1 && inAttDemand:
			t.enterDemand(StateDemandNeg, nowMs)
			t.updateEventExtrema(filteredActuator, filteredRate, filteredTarget, pidInfo)
		default:
			t.updateIdleTracking(nowMs, pidInfo)
		}
	case StateDemandPos:
		t.updateEventExtrema(filteredActuator, filteredRate, filteredTarget, pidInfo)
		if filteredTarget < rateThreshold2 {
			t.endEvent(nowMs, scaler)
		}
	case StateDemandNeg:
		t.updateEventExtrema(filteredActuator, filteredRate, filteredTarget, pidInfo)
		if filteredTarget > -rateThreshold2 {
			t.endEvent(nowMs, scaler)
		}
	}
}

func (t *Tuner) updateEventExtrema(filteredActuator, filteredRate, filteredTarget float32, pidInfo ratepid.PidInfo) {
	t.minActuator = minf(t.minActuator, filteredActuator)
	t.maxActuator = maxf(t.maxActuator, filteredActuator)
	t.minRate = minf(t.minRate, filteredRate)
	t.maxRate = maxf(t.maxRate, filteredRate)
	t.minTarget = minf(t.minTarget, filteredTarget)
	t.maxTarget = maxf(t.maxTarget, filteredTarget)
	t.maxP = maxf(t.maxP, absf(pidInfo.P))
	t.maxD = maxf(t.maxD, absf(pidInfo.D))
	t.minDmod = minf(t.minDmod, pidInfo.Dmod)
	t.maxDmod = maxf(t.maxDmod, pidInfo.Dmod)
	t.maxSRate = maxf(t.maxSRate, absf(pidInfo.SlewRate))
}

// endEvent closes out a DEMAND_* event: low-rate/short-duration aborts are
// logged-only, anything else runs the gain law (spec.md §4.2, §4.3).
func (t *Tuner) endEvent(nowMs uint32, scaler float32) {
	prevState := t.state
	durMs := clockiface.MsSince(nowMs, t.stateEnterMs)

	lowRate := false
	switch prevState {
	case StateDemandPos:
		lowRate = t.maxRate < 0.01*float32(t.current.RMaxPos)
	case StateDemandNeg:
		lowRate = t.minRate > -0.01*float32(t.current.RMaxNeg)
	}

	switch {
	case lowRate:
		t.action = ActionLowRate
	case durMs < 100:
		t.action = ActionShort
	default:
		t.runGainLaw(prevState, scaler)
	}

	t.state = StateIdle
	t.resetIdleTracking(nowMs)
}

// updateIdleTracking watches for idle-state oscillation: the slew limiter
// staying engaged for half a second straight while no DEMAND event is
// occurring (spec.md §4.2).
func (t *Tuner) updateIdleTracking(nowMs uint32, pidInfo ratepid.PidInfo) {
	t.idle.maxDmod = maxf(t.idle.maxDmod, pidInfo.Dmod)
	t.idle.maxP = maxf(t.idle.maxP, absf(pidInfo.P))
	t.idle.maxD = maxf(t.idle.maxD, absf(pidInfo.D))

	if clockiface.MsSince(nowMs, t.idle.enterMs) < 500 || t.idle.maxDmod >= 0.9 {
		return
	}

	P := maxf(t.current.P, 0.01)
	D := maxf(t.current.D, 0.0005)
	if t.idle.maxD > t.idle.maxP {
		D *= 1 - decPD
	} else {
		P *= 1 - decPD
	}
	D = maxf(D, 0.0005)
	P = maxf(P, 0.01)
	I := maxf(P*iRatio, t.current.FF/trimTConst)

	t.ratePID.KP().Set(P)
	t.ratePID.KD().Set(D)
	t.ratePID.KI().Set(I)
	t.current.P = P
	t.current.D = D
	t.current.I = I
	t.action = ActionIdleLowerPD

	t.resetIdleTracking(nowMs)
	t.resetEventExtrema()
}
