package dsp

// ----- Note Engine ----- //

// voice is the single mono voice driven by MIDI note events. A note-on seeds
// the voice's generator and captures the zoom controls; both stay fixed for
// the lifetime of the note so the resulting trajectory is reproducible.
type voice struct {
	on         bool
	note       int
	rng        lcg
	phase      float64 // seconds since note-on
	duration   float64 // seconds; 0 means hold until note-off
	zoomFactor float64
	zoomPoint  float64
}

// noteOn starts (or retriggers) the voice. A velocity of zero is a note-off
// in disguise and is routed accordingly.
func (v *voice) noteOn(note, vel int, zoomFactor, zoomPoint float64) {
	if vel == 0 {
		v.noteOff(note)
		return
	}
	v.on = true
	v.note = note
	v.rng = newLCG(noteSeed(note))
	v.phase = 0
	v.zoomFactor = zoomFactor
	v.zoomPoint = zoomPoint
}

// noteOff ends the voice only if the note number matches the sounding one.
func (v *voice) noteOff(note int) {
	if v.on && v.note == note {
		v.on = false
	}
}

// advance moves the note clock by dt and expires the voice once its duration
// has elapsed. Voices with duration 0 only end on note-off.
func (v *voice) advance(dt float64) {
	if !v.on {
		return
	}
	v.phase += dt
	if v.duration > 0 && v.phase >= v.duration {
		v.on = false
	}
}
