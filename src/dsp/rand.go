package dsp

// ----- PRNG ----- //

// lcg is a 32-bit linear congruential generator. Every voice owns its own
// instance so that a note replays the same value sequence every time it is
// triggered with the same seed.
type lcg struct {
	seed uint32
}

func newLCG(seed uint32) lcg {
	return lcg{seed: seed}
}

// noteSeed derives the per-note seed from a MIDI note number. The constants
// are a contract: external gear tuned against recorded sequences relies on
// note 60 always producing the same stepped values.
func noteSeed(note int) uint32 {
	return uint32(note)*12345 + 99999
}

func (g *lcg) next() uint32 {
	g.seed = g.seed*1664525 + 1013904223
	return g.seed
}

// rand01 returns a uniform value in [0, 1) built from the high 24 bits of the
// generator state.
func (g *lcg) rand01() float64 {
	return float64(g.next()>>8) * (1.0 / 16777216.0)
}
