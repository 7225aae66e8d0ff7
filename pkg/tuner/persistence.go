package tuner

import "github.com/flightcore/fwautotune/pkg/clockiface"

// checkSave is the delayed-commit persistence scheduler (spec.md §4.4): at
// most once per SAVE_PERIOD it commits the snapshot recorded one period
// ago (next_save) to the parameter store, then immediately restores the
// live gains so flight is never interrupted by the brief write.
func (t *Tuner) checkSave(nowMs uint32) {
	if !t.running {
		return
	}
	if clockiface.MsSince(nowMs, t.lastSaveMs) < savePeriodMs {
		return
	}

	tmp := t.gainsFromPID()

	t.writeAndSave(t.nextSave)
	t.lastSave = t.nextSave
	t.restore = t.nextSave

	t.writeOnly(tmp)
	t.nextSave = tmp
	t.current = tmp

	t.lastSaveMs = nowMs
}
