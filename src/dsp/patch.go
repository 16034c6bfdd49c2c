package dsp

import "encoding/json"

// ----- Patch ----- //

// Patch is one musical program. The engine calls HandleEvent and Render from
// the audio context (under the state lock, at block boundaries) and
// UpdateControls/Draw from the foreground context at UI rate. Render must
// not allocate.
type Patch interface {
	Name() string
	Init(samplerate float64)

	HandleEvent(r *Rig, e midiEvent)
	Render(r *Rig, frames int)

	UpdateControls(r *Rig)
	Draw(d *Display)

	Set(key, value string) error
	ApplyJSON(data json.RawMessage)
	ToJSON() json.RawMessage
}
