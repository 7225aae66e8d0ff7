// Package clockiface injects time and loop-rate collaborators into the
// tuner so its core stays free of a process-wide HAL singleton, mirroring
// the teacher's practice of passing configuration and environment in
// rather than reaching for globals.
package clockiface

import "time"

// Clock supplies monotonic time to the tuner. NowMs wraps every ~49.7 days;
// callers must difference with 32-bit unsigned subtraction semantics.
// NowUs is used only for log timestamps and is not subject to the same
// wraparound handling.
type Clock interface {
	NowMs() uint32
	NowUs() uint64
}

// Scheduler exposes the loop rate the tuner is being driven at.
type Scheduler interface {
	LoopRateHz() float32
}

// MsSince returns now-prev under 32-bit unsigned wraparound semantics, the
// duration in milliseconds that elapsed since prev.
func MsSince(now, prev uint32) uint32 {
	return now - prev
}

// WallClock implements Clock against the real process clock, for use
// outside of tests (the bench CLI runs against a scripted fake instead,
// see SimClock).
type WallClock struct {
	start time.Time
}

// NewWallClock creates a WallClock anchored at the moment of construction,
// so NowMs/NowUs measure elapsed time rather than epoch time (the tuner
// only ever differences two readings, so the anchor is arbitrary).
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

func (w *WallClock) NowMs() uint32 {
	return uint32(time.Since(w.start).Milliseconds())
}

func (w *WallClock) NowUs() uint64 {
	return uint64(time.Since(w.start).Microseconds())
}

// FixedScheduler reports a constant loop rate, as a real flight controller
// would once its scheduler has stabilized.
type FixedScheduler struct {
	HzValue float32
}

func (f FixedScheduler) LoopRateHz() float32 { return f.HzValue }

// SimClock is a deterministic, manually-advanced clock for tests and the
// bench harness: each ProcessBlock-equivalent tick advances it by exactly
// one loop period, so a scripted scenario reproduces bit-for-bit.
//
// Internally it accumulates nanoseconds rather than milliseconds: at the
// canonical 400Hz loop rate one tick period is 2.5ms exactly, and
// time.Duration.Milliseconds()/Microseconds() truncate toward zero, so
// advancing in already-truncated units would silently lose the .5ms
// every single tick. NowMs/NowUs divide down from the nanosecond total at
// read time instead, so no fractional period is ever dropped.
type SimClock struct {
	ns uint64
}

// NewSimClock creates a SimClock starting at t=0.
func NewSimClock() *SimClock {
	return &SimClock{}
}

func (s *SimClock) NowMs() uint32 { return uint32(s.ns / uint64(time.Millisecond)) }
func (s *SimClock) NowUs() uint64 { return s.ns / uint64(time.Microsecond) }

// Advance moves the simulated clock forward by d.
func (s *SimClock) Advance(d time.Duration) {
	s.ns += uint64(d)
}
