package dsp

import (
	"log"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// ----- Spectrum ----- //

// spectrum keeps a ring of recent output samples and turns them into
// magnitudes for the front panel. push is called from the render loop and
// only writes into the preallocated ring; the FFT itself runs on the
// foreground side, outside the engine lock.
type spectrum struct {
	plan  *algofft.Plan[complex128]
	size  int
	ring  []float64
	write int
	win   []float64
	in    []complex128
	out   []complex128
	mags  []float64
}

func newSpectrum(size int) *spectrum {
	s := &spectrum{
		size: size,
		ring: make([]float64, size),
		win:  make([]float64, size),
		in:   make([]complex128, size),
		out:  make([]complex128, size),
		mags: make([]float64, size/2),
	}
	for i := range s.win {
		s.win[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
	}
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		log.Printf("spectrum disabled: %v\n", err)
		return s
	}
	s.plan = plan
	return s
}

func (s *spectrum) push(x float64) {
	s.ring[s.write] = x
	s.write++
	if s.write >= s.size {
		s.write = 0
	}
}

// snapshot returns the ring contents oldest-first. Call under the engine
// lock.
func (s *spectrum) snapshot() []float64 {
	out := make([]float64, s.size)
	n := copy(out, s.ring[s.write:])
	copy(out[n:], s.ring[:s.write])
	return out
}

// magnitudes windows the samples and returns the normalized magnitude of the
// lower half of the spectrum. The returned slice is reused across calls.
func (s *spectrum) magnitudes(samples []float64) []float64 {
	if s.plan == nil || len(samples) != s.size {
		return nil
	}
	for i, v := range samples {
		s.in[i] = complex(v*s.win[i], 0)
	}
	if err := s.plan.Forward(s.out, s.in); err != nil {
		return nil
	}
	for k := range s.mags {
		s.mags[k] = cmplx.Abs(s.out[k]) * 2 / float64(s.size)
	}
	return s.mags
}
