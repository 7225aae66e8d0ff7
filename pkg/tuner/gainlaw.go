package tuner

// runGainLaw implements the FF/P/D/I adjustment law once a DEMAND_* event
// has completed cleanly (spec.md §4.3). prevState tells us which sign of
// event just ended so the right extrema are read.
func (t *Tuner) runGainLaw(prevState State, scaler float32) {
	var ffSingle, demRatio float32
	switch prevState {
	case StateDemandPos:
		ffSingle = t.maxActuator / (t.maxRate * scaler)
		demRatio = clamp(t.maxRate/maxf(t.maxTarget, 1e-6), 0.1, 2)
	case StateDemandNeg:
		ffSingle = t.minActuator / (t.minRate * scaler)
		demRatio = clamp(t.minRate/minf(t.minTarget, -1e-6), 0.1, 2)
	}

	if !isFinite(ffSingle) {
		t.action = ActionLowRate
		return
	}
	t.ffSingle = ffSingle

	ffFiltered := t.ffFilter.Apply(ffSingle)
	oldFF := t.current.FF
	newFF := clamp(ffFiltered, oldFF*(1-decFF), oldFF*(1+incFF))

	absActuator := maxf(t.maxActuator, absf(t.minActuator))
	pdSignificant := t.maxP > 0.3*absActuator || t.maxD > 0.3*absActuator
	overshot := demRatio > overshootRatio

	P := maxf(t.current.P, 0.01)
	D := maxf(t.current.D, 0.0005)

	if t.minDmod < 1.0 || (overshot && pdSignificant) {
		dmodMul := lerp(1-decPD, 1, t.minDmod, 0.6, 1.0)
		overshootMul := lerp(1, 1-decPD, demRatio, overshootRatio, 1.3*overshootRatio)
		mul := dmodMul * overshootMul
		if t.maxD > t.maxP {
			D *= mul
		} else {
			P *= mul
		}
		t.action = ActionLowerPD
	} else {
		slewLimit := t.ratePID.SlewLimit()
		pdMul := lerp(1+incPD, 1, t.maxSRate, 0.2*slewLimit, 0.6*slewLimit)
		P *= pdMul
		D *= pdMul
		t.action = ActionRaisePD
	}

	D = maxf(D, 0.0005)
	P = maxf(P, 0.01)
	I := maxf(P*iRatio, newFF/trimTConst)

	t.ratePID.FF().Set(newFF)
	t.ratePID.KP().Set(P)
	t.ratePID.KI().Set(I)
	t.ratePID.KD().Set(D)

	t.current.FF = newFF
	t.current.P = P
	t.current.I = I
	t.current.D = D
}
