package tuner

import (
	"github.com/flightcore/fwautotune/pkg/airframe"
	"github.com/flightcore/fwautotune/pkg/clockiface"
	"github.com/flightcore/fwautotune/pkg/filter"
	"github.com/flightcore/fwautotune/pkg/ratepid"
	"github.com/flightcore/fwautotune/pkg/tuninglog"
)

// idleTracker accumulates the "while remaining in IDLE" oscillation
// detector's window (spec.md §4.2), separate from the per-event extrema
// tracked while a DEMAND_* event is in progress.
type idleTracker struct {
	enterMs uint32
	maxDmod float32
	maxP    float32
	maxD    float32
}

// Tuner is the autotune core: one instance owns exactly one axis/gain-slot
// pair, bound to its collaborators at construction (spec.md §3 Lifecycle).
// All fields are mutated only inside Update/Start/Stop/checkSave.
type Tuner struct {
	ratePID ratepid.RatePID
	axis    airframe.Axis
	params  airframe.Params
	clock   clockiface.Clock
	sched   clockiface.Scheduler
	logSink tuninglog.Sink

	running      bool
	state        State
	stateEnterMs uint32
	lastSaveMs   uint32
	lastLogMs    uint32

	current  ATGains
	restore  ATGains
	lastSave ATGains
	nextSave ATGains

	actuatorFilter *filter.LowPass
	rateFilter     *filter.LowPass
	targetFilter   *filter.LowPass
	ffFilter       *filter.Median

	// per-event extrema (spec.md §3)
	minActuator, maxActuator float32
	minRate, maxRate         float32
	minTarget, maxTarget     float32
	maxP, maxD               float32
	minDmod, maxDmod         float32
	maxSRate                 float32
	ffSingle                 float32
	action                   Action

	idle idleTracker
}

// New creates a Tuner bound to the given rate-PID collaborator, axis,
// airframe parameter block, clock and scheduler. It does not start
// tuning; call Start to begin.
func New(rp ratepid.RatePID, axis airframe.Axis, params airframe.Params, clock clockiface.Clock, sched clockiface.Scheduler, logSink tuninglog.Sink) *Tuner {
	return &Tuner{
		ratePID:        rp,
		axis:           axis,
		params:         params,
		clock:          clock,
		sched:          sched,
		logSink:        logSink,
		actuatorFilter: filter.NewLowPass(actuatorFilterHz),
		rateFilter:     filter.NewLowPass(rateFilterHz),
		targetFilter:   filter.NewLowPass(targetFilterHz),
		ffFilter:       filter.NewMedian(ffFilterWindow),
		state:          StateIdle,
	}
}

// IsRunning reports whether the tuner is currently active.
func (t *Tuner) IsRunning() bool { return t.running }

// CurrentGains returns a snapshot of the gain set the tuner currently
// believes is live, for reporting/logging callers outside the hot path.
func (t *Tuner) CurrentGains() ATGains { return t.current }

// LastAction returns the Action recorded on the most recent Update call.
func (t *Tuner) LastAction() Action { return t.action }

// Start enters tuning, idempotent: calling Start while already running has
// no effect beyond what the first call did (spec.md §3, §4.4).
func (t *Tuner) Start() {
	if t.running {
		return
	}
	nowMs := t.clock.NowMs()

	g := t.gainsFromPID()
	// Degenerate-input floors applied at start (spec.md §7).
	if g.FF < 0.01 {
		g.FF = 0.01
	}
	g.IMAX = clamp(g.IMAX, 0.4, 0.9)

	t.current = g
	t.restore = g
	t.lastSave = g
	t.nextSave = g
	t.lastSaveMs = nowMs
	t.lastLogMs = 0

	t.ratePID.FF().Set(g.FF)
	t.ratePID.KIMAX().Set(g.IMAX)

	loopHz := t.sched.LoopRateHz()
	t.actuatorFilter.Reset(loopHz)
	t.rateFilter.Reset(loopHz)
	t.targetFilter.Reset(loopHz)
	t.ffFilter.Reset()

	t.state = StateIdle
	t.resetIdleTracking(nowMs)
	t.resetEventExtrema()
	t.action = ActionNone

	t.running = true
}

// Stop leaves tuning, restoring the restore snapshot (the gains flying
// ten seconds before the most recent delayed-commit boundary, or the
// gains live at Start if none occurred) into the rate-PID collaborator
// and persisting them. Idempotent: calling Stop repeatedly keeps
// restoring the same snapshot rather than erroring or double-applying a
// side effect (spec.md §5 Cancellation).
func (t *Tuner) Stop() {
	t.writeAndSave(t.restore)
	t.current = t.restore
	t.running = false
	t.state = StateIdle
}

func (t *Tuner) resetIdleTracking(nowMs uint32) {
	t.idle = idleTracker{enterMs: nowMs}
}

func (t *Tuner) resetEventExtrema() {
	t.minActuator, t.maxActuator = 0, 0
	t.minRate, t.maxRate = 0, 0
	t.minTarget, t.maxTarget = 0, 0
	t.maxP, t.maxD = 0, 0
	t.minDmod, t.maxDmod = 1, 0
	t.maxSRate = 0
}

func (t *Tuner) enterDemand(state State, nowMs uint32) {
	t.state = state
	t.stateEnterMs = nowMs
	t.resetEventExtrema()
}

// gainsFromPID reads the live gain set straight off the rate-PID handles.
func (t *Tuner) gainsFromPID() ATGains {
	return ATGains{
		Tau:     t.ratePID.TAU().Get(),
		RMaxPos: t.ratePID.RMaxPos().Get(),
		RMaxNeg: t.ratePID.RMaxNeg().Get(),
		FF:      t.ratePID.FF().Get(),
		P:       t.ratePID.KP().Get(),
		I:       t.ratePID.KI().Get(),
		D:       t.ratePID.KD().Get(),
		IMAX:    t.ratePID.KIMAX().Get(),
	}
}

// writeOnly applies g to the live rate-PID gains without persisting.
func (t *Tuner) writeOnly(g ATGains) {
	t.ratePID.FF().Set(g.FF)
	t.ratePID.KP().Set(g.P)
	t.ratePID.KI().Set(g.I)
	t.ratePID.KD().Set(g.D)
	t.ratePID.KIMAX().Set(g.IMAX)
	t.ratePID.RMaxPos().Set(g.RMaxPos)
	t.ratePID.RMaxNeg().Set(g.RMaxNeg)
	t.ratePID.TAU().Set(g.Tau)
}

// writeAndSave applies g to the live rate-PID gains and persists each one.
func (t *Tuner) writeAndSave(g ATGains) {
	t.ratePID.FF().SetAndSave(g.FF)
	t.ratePID.KP().SetAndSave(g.P)
	t.ratePID.KI().SetAndSave(g.I)
	t.ratePID.KD().SetAndSave(g.D)
	t.ratePID.KIMAX().SetAndSave(g.IMAX)
	t.ratePID.RMaxPos().SetAndSave(g.RMaxPos)
	t.ratePID.RMaxNeg().SetAndSave(g.RMaxNeg)
	t.ratePID.TAU().SetAndSave(g.Tau)
}
