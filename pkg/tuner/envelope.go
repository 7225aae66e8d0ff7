package tuner

import "math"

// updateRmax is the envelope slewer (spec.md §4.5): it gradually moves
// RMAX and TAU toward the profile selected by the airframe's aggressiveness
// level, running every tick regardless of event-detector state.
func (t *Tuner) updateRmax() {
	level := t.params.AutotuneLevel()
	if level < 0 {
		level = 0
	}
	if level > 11 {
		level = 11
	}

	var targetRmax, targetTau float32
	if level == 0 {
		targetRmax = clamp(float32(t.current.RMaxPos), 75, 720)
		targetTau = clamp(t.current.Tau, 0.1, 2)
	} else {
		row := tuningTable[level-1]
		targetRmax = row.RMax
		targetTau = row.Tau
	}

	if level > 0 && t.current.FF > 0 {
		invTau := 1/targetTau + t.current.I/t.current.FF
		if invTau > 0 {
			targetTau = maxf(targetTau, 1/invTau)
		}
	}

	if t.current.RMaxPos == 0 {
		t.current.RMaxPos = 75
	}

	t.current.RMaxPos = slewRmax(t.current.RMaxPos, targetRmax, 20)
	if level != 0 || t.current.RMaxNeg == 0 {
		t.current.RMaxNeg = t.current.RMaxPos
	}

	t.current.Tau = clamp(slewTau(t.current.Tau, targetTau, 0.15), 0.1, 2)

	t.ratePID.RMaxPos().Set(t.current.RMaxPos)
	t.ratePID.RMaxNeg().Set(t.current.RMaxNeg)
	t.ratePID.TAU().Set(t.current.Tau)
}

// slewRmax moves current toward target by at most maxStep deg/s per call
// (spec.md invariant: "rmax moves toward its target profile by at most
// ±20°/s per update_rmax invocation").
func slewRmax(current int16, target, maxStep float32) int16 {
	diff := clamp(target-float32(current), -maxStep, maxStep)
	return int16(math.Round(float64(float32(current) + diff)))
}

// slewTau moves current toward target by at most pct of current's
// magnitude per call (spec.md invariant: "tau moves by at most ±15% of its
// prior value per update_rmax invocation").
func slewTau(current, target, pct float32) float32 {
	maxStep := absf(current) * pct
	diff := clamp(target-current, -maxStep, maxStep)
	return current + diff
}
