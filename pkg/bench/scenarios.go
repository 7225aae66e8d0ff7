// Package bench generates scripted stick-demand scenarios and drives a
// pkg/tuner.Tuner through them, standing in for the hand-flown test card a
// real autotune session would fly.
//
// Grounded on pkg/scenarios.Generator (GenerateAll/generateFullBlocks/
// generateEmptyBlocks/generateMixedTraffic building named, fixed block
// sequences) and pkg/randomizer's GaussianNoise for the noisy variant.
package bench

import "math/rand"

// Sample is one tick's worth of scripted rate-PID telemetry, the bench
// harness's analogue of a stick position.
type Sample struct {
	Target, Actual, AngleErrDeg float32
	FF, P, I, D                 float32
	Dmod, SlewRate              float32
	Scaler                      float32
}

// Scenario is a named, fixed sequence of Samples run at a fixed loop rate.
type Scenario struct {
	Name        string
	Description string
	LoopRateHz  float32
	Samples     []Sample
}

// Generator builds the canonical scenario set. A non-zero seed produces the
// reproducible noisy variant; zero disables randomness entirely.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator. seed=0 means the noisy scenario degrades
// to its clean base (no jitter is added).
func NewGenerator(seed int64) *Generator {
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	return &Generator{rng: rng}
}

// GenerateAll returns every named scenario the bench CLI can run.
func (g *Generator) GenerateAll() map[string]Scenario {
	return map[string]Scenario{
		"quiet-hover":    g.quietHover(),
		"clean-positive": g.cleanStep(1),
		"clean-negative": g.cleanStep(-1),
		"oscillatory":    g.oscillatoryOvershoot(),
		"mixed-noisy":    g.mixedNoisy(),
	}
}

const loopHz = 400

// quietHover feeds ten seconds of zero demand: the baseline "nothing should
// happen" scenario (spec.md S1).
func (g *Generator) quietHover() Scenario {
	n := 10 * loopHz
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{Dmod: 1}
	}
	return Scenario{
		Name:        "Quiet Hover",
		Description: "Ten seconds of zero stick demand; exercises only the persistence scheduler.",
		LoopRateHz:  loopHz,
		Samples:     samples,
	}
}

// cleanStep holds a steady rate demand for 300ms then releases it, the
// scripted form of spec.md's S2/clean-step scenario. sign selects the
// positive or negative axis direction.
func (g *Generator) cleanStep(sign float32) Scenario {
	const holdTicks = int(0.3 * loopHz)
	const releaseTicks = 4 * loopHz
	samples := make([]Sample, 0, holdTicks+releaseTicks)
	demand := Sample{
		Target: sign * 80, Actual: sign * 70, AngleErrDeg: sign * 30,
		FF: 0.3, P: 0.05, D: 0.01, I: 0.02, Dmod: 1, SlewRate: 10, Scaler: 1,
	}
	for i := 0; i < holdTicks; i++ {
		samples = append(samples, demand)
	}
	release := demand
	release.Target, release.Actual, release.AngleErrDeg = 0, 0, 0
	for i := 0; i < releaseTicks; i++ {
		samples = append(samples, release)
	}
	name := "Clean Positive Step"
	if sign < 0 {
		name = "Clean Negative Step"
	}
	return Scenario{
		Name:        name,
		Description: "A single clean stick step held long enough to complete one DEMAND event.",
		LoopRateHz:  loopHz,
		Samples:     samples,
	}
}

// oscillatoryOvershoot scripts a demand event where the measured rate
// overshoots the commanded target and the slew limiter engages partway
// through, exercising the gain law's decrease branch (spec.md S3/S4).
func (g *Generator) oscillatoryOvershoot() Scenario {
	const holdTicks = int(0.3 * loopHz)
	const releaseTicks = 4 * loopHz
	samples := make([]Sample, 0, holdTicks+releaseTicks)
	for i := 0; i < holdTicks; i++ {
		dmod := float32(1.0)
		if i > holdTicks/2 {
			dmod = 0.7
		}
		samples = append(samples, Sample{
			Target: 80, Actual: 96, AngleErrDeg: 30,
			FF: 0.25, P: 0.05, D: 0.2, I: 0.02, Dmod: dmod, SlewRate: 10, Scaler: 1,
		})
	}
	for i := 0; i < releaseTicks; i++ {
		samples = append(samples, Sample{
			FF: 0.25, P: 0.05, D: 0.2, I: 0.02, Dmod: 1, SlewRate: 10, Scaler: 1,
		})
	}
	return Scenario{
		Name:        "Oscillatory Overshoot",
		Description: "Measured rate overshoots the command and the slew limiter fires mid-event.",
		LoopRateHz:  loopHz,
		Samples:     samples,
	}
}

// mixedNoisy repeats clean steps, alternating sign each second, for 30s
// with Gaussian jitter applied to actual/target, the bench analogue of
// pkg/scenarios' applyRandomness.
func (g *Generator) mixedNoisy() Scenario {
	const cycleTicks = loopHz // one step per second
	const holdTicks = int(0.3 * loopHz)
	const totalTicks = 30 * loopHz
	samples := make([]Sample, totalTicks)
	for i := range samples {
		phase := i % cycleTicks
		sign := float32(1)
		if (i/cycleTicks)%2 == 1 {
			sign = -1
		}
		var s Sample
		if phase < holdTicks {
			s = Sample{
				Target: sign * 80, Actual: sign * 70, AngleErrDeg: sign * 30,
				FF: 0.3, P: 0.05, D: 0.01, I: 0.02, Dmod: 1, SlewRate: 10, Scaler: 1,
			}
		} else {
			s = Sample{FF: 0.3, P: 0.05, D: 0.01, I: 0.02, Dmod: 1, Scaler: 1}
		}
		s.Target = addGaussianNoise(g.rng, s.Target, 2)
		s.Actual = addGaussianNoise(g.rng, s.Actual, 2)
		samples[i] = s
	}
	return Scenario{
		Name:        "Mixed Noisy",
		Description: "Alternating positive/negative steps for 30s with Gaussian jitter on target/actual rate.",
		LoopRateHz:  loopHz,
		Samples:     samples,
	}
}

// addGaussianNoise perturbs value by mean-zero Gaussian noise with the given
// standard deviation. A nil rng (seed=0) is a no-op, matching
// GaussianNoise.AddRandomness's stdDev==0 short circuit.
func addGaussianNoise(rng *rand.Rand, value, stdDev float32) float32 {
	if rng == nil {
		return value
	}
	return value + float32(rng.NormFloat64())*stdDev
}
