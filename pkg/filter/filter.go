// Package filter provides the small signal-conditioning primitives the
// tuner composes: single-pole low-pass filters for target/actual rate and
// actuator command, and a tiny fixed-window median filter for single-event
// FF estimates. Both are value types holding small arrays/scalars, owned
// exclusively by their caller (spec.md §4.1, §9 "Filter ownership").
//
// Grounded on the windowed error-history bookkeeping in
// pkg/simulator/pid_adjuster.go (calculateDerivative keeps a small ring
// and recomputes a statistic over it on demand) generalized from a
// derivative estimator to a low-pass/median filter pair.
package filter

import "math"

// LowPass is a single-pole (RC) low-pass filter, the discrete form used
// throughout embedded flight-control loops: each sample moves the state a
// fraction alpha of the way toward the new input, where alpha is derived
// from the cutoff frequency and the loop's sample period.
type LowPass struct {
	cutoffHz float32
	alpha    float32
	value    float32
	primed   bool
}

// NewLowPass creates a LowPass with the given cutoff frequency. Call
// SetSampleRate (or Reset, which also accepts a sample rate) before the
// first Apply so alpha reflects the actual loop rate.
func NewLowPass(cutoffHz float32) *LowPass {
	return &LowPass{cutoffHz: cutoffHz}
}

// SetSampleRate recomputes alpha for a loop running at loopHz. It does not
// reset the filter's current value.
func (f *LowPass) SetSampleRate(loopHz float32) {
	if loopHz <= 0 || f.cutoffHz <= 0 {
		f.alpha = 1
		return
	}
	dt := 1.0 / loopHz
	rc := 1.0 / (2 * math.Pi * float64(f.cutoffHz))
	f.alpha = float32(dt / (rc + float64(dt)))
}

// Reset clears the filter state and recomputes alpha for loopHz, as done
// on Tuner.start (spec.md §4.1: "On start, all filters are reset").
func (f *LowPass) Reset(loopHz float32) {
	f.SetSampleRate(loopHz)
	f.value = 0
	f.primed = false
}

// Apply filters one sample and returns the new filtered value. The first
// call after Reset snaps directly to x rather than ramping from zero, so a
// filter doesn't bias its first few readings toward zero after a restart.
func (f *LowPass) Apply(x float32) float32 {
	if !f.primed {
		f.value = x
		f.primed = true
		return f.value
	}
	f.value += f.alpha * (x - f.value)
	return f.value
}

// Value returns the filter's current output without feeding a new sample.
func (f *LowPass) Value() float32 { return f.value }

// Median is a small fixed-window median-style filter over the last N
// samples, used for single-event FF estimates (spec.md §4.1: "ff_filter
// ... window length 2 applying the median of the buffered samples").
// For an even window the "median" is the mean of the two middle samples,
// which for window=2 is simply the average of the two buffered values.
type Median struct {
	window  int
	buf     []float32
	scratch []float32
}

// NewMedian creates a Median filter with the given window length.
func NewMedian(window int) *Median {
	if window < 1 {
		window = 1
	}
	return &Median{window: window, buf: make([]float32, 0, window), scratch: make([]float32, window)}
}

// Reset clears all buffered samples.
func (m *Median) Reset() {
	m.buf = m.buf[:0]
}

// Apply pushes x into the window (evicting the oldest sample once full)
// and returns the median of the buffered samples. Uses the pre-allocated
// scratch buffer rather than a fresh slice per call, since Apply sits on
// the tuner's allocation-free hot path (spec.md §5).
func (m *Median) Apply(x float32) float32 {
	if len(m.buf) == m.window {
		copy(m.buf, m.buf[1:])
		m.buf[len(m.buf)-1] = x
	} else {
		m.buf = append(m.buf, x)
	}
	copy(m.scratch[:len(m.buf)], m.buf)
	return median(m.scratch[:len(m.buf)])
}

func median(sorted []float32) float32 {
	if len(sorted) == 0 {
		return 0
	}
	// Small fixed windows (2 in practice): insertion sort is plenty, and
	// in place so no allocation happens here.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
