package dsp

import "math"

// ----- Slew Limiter ----- //

// slewLimiter ramps linearly toward a destination. The per-sample step is
// fixed when the destination (or the time constant) changes, so a large jump
// reaches the destination in the configured number of seconds exactly; the
// final step is clamped to the remaining distance and never overshoots.
type slewLimiter struct {
	sr    float64
	value float64
	dest  float64
	rise  float64 // seconds
	fall  float64 // seconds
	step  float64 // per-sample increment toward dest
}

const slewEpsilon = 1e-6

func (s *slewLimiter) init(samplerate float64) {
	s.sr = samplerate
	s.value = 0
	s.dest = 0
	s.rise = 0.01
	s.fall = 0.01
	s.step = 0
}

func (s *slewLimiter) setRiseTime(t float64) {
	if t == s.rise {
		return
	}
	s.rise = t
	s.retarget()
}

func (s *slewLimiter) setFallTime(t float64) {
	if t == s.fall {
		return
	}
	s.fall = t
	s.retarget()
}

func (s *slewLimiter) setRiseFall(t float64) {
	if t == s.rise && t == s.fall {
		return
	}
	s.rise = t
	s.fall = t
	s.retarget()
}

// setValue jumps to v immediately and clears any ramp in progress.
func (s *slewLimiter) setValue(v float64) {
	s.value = v
	s.dest = v
	s.step = 0
}

func (s *slewLimiter) setDest(d float64) {
	if d == s.dest {
		return
	}
	s.dest = d
	s.retarget()
}

func (s *slewLimiter) retarget() {
	diff := s.dest - s.value
	tc := s.rise
	if diff < 0 {
		tc = s.fall
	}
	if tc < slewEpsilon {
		// treated as instantaneous; process snaps on the next call
		s.step = diff
		return
	}
	s.step = diff / (tc * s.sr)
}

func (s *slewLimiter) process() float64 {
	diff := s.dest - s.value
	if diff == 0 {
		return s.value
	}
	if s.step == 0 || math.Abs(s.step) >= math.Abs(diff) {
		s.value = s.dest
		return s.value
	}
	s.value += s.step
	return s.value
}
