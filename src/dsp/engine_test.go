package dsp

import (
	"encoding/json"
	"testing"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func readBlocks(t *testing.T, e *Engine, buf []byte, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := e.Read(buf); err != nil {
			t.Fatalf("Read failed at block %d: %v", i, err)
		}
	}
}

func bufferIsSilent(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

func TestEngineNoteLifecycle(t *testing.T) {
	e := New()
	defer expectNoError(t, e.Close())
	buf := make([]byte, bufferSizeInBytes)

	expectNoError(t, e.update([]string{"patch", "fractal_zoom"}))
	expectNoError(t, e.update([]string{"knob", "3", "1"})) // level up
	readBlocks(t, e, buf, 1)
	if !bufferIsSilent(buf) {
		t.Error("no note yet, output should be silent")
	}
	if e.state.rig.Gate() {
		t.Error("gate should be low before the note")
	}

	expectNoError(t, e.update([]string{"note_on", "60", "100"}))
	readBlocks(t, e, buf, 1)
	if bufferIsSilent(buf) {
		t.Error("note is sounding, output should not be silent")
	}
	if !e.state.rig.Gate() {
		t.Error("gate should be high while the note sounds")
	}

	// the note self-expires after five seconds
	blocks := int(5*sampleRate)/samplesPerCycle + 2
	readBlocks(t, e, buf, blocks)
	readBlocks(t, e, buf, 1)
	if !bufferIsSilent(buf) {
		t.Error("note expired, output should be silent again")
	}
	if e.state.rig.Gate() {
		t.Error("gate should drop when the note expires")
	}
}

func TestEngineNoteOff(t *testing.T) {
	e := New()
	defer expectNoError(t, e.Close())
	buf := make([]byte, bufferSizeInBytes)

	expectNoError(t, e.update([]string{"patch", "randos"}))
	expectNoError(t, e.update([]string{"knob", "1", "1"}))
	expectNoError(t, e.update([]string{"note_on", "60", "100"}))
	readBlocks(t, e, buf, 4)
	if !e.state.rig.Gate() {
		t.Error("gate should be high while holding")
	}
	expectNoError(t, e.update([]string{"note_off", "60"}))
	readBlocks(t, e, buf, 1)
	if e.state.rig.Gate() {
		t.Error("gate should drop on note-off")
	}
	if !bufferIsSilent(buf) {
		t.Error("released voice should be silent")
	}
}

func TestEngineMidiBytes(t *testing.T) {
	e := New()
	defer expectNoError(t, e.Close())
	buf := make([]byte, bufferSizeInBytes)

	e.AddMidiEvent([]byte{0x90, 64, 100})
	readBlocks(t, e, buf, 1)
	if !e.state.rig.Gate() {
		t.Error("raw note-on should raise the gate")
	}
	e.AddMidiEvent([]byte{0x80, 64, 0})
	readBlocks(t, e, buf, 1)
	if e.state.rig.Gate() {
		t.Error("raw note-off should drop the gate")
	}
	// too short and non-note messages are dropped
	e.AddMidiEvent([]byte{0x90})
	e.AddMidiEvent([]byte{0xB0, 1, 64})
	readBlocks(t, e, buf, 1)
	if e.state.rig.Gate() {
		t.Error("control change must not raise the gate")
	}
}

func TestEngineDACMapping(t *testing.T) {
	e := New()
	defer expectNoError(t, e.Close())
	buf := make([]byte, bufferSizeInBytes)

	expectNoError(t, e.update([]string{"patch", "just_in_tone"}))
	expectNoError(t, e.update([]string{"knob", "0", "0.5"})) // 4 V in
	readBlocks(t, e, buf, 1)
	if got := e.state.rig.DAC(1); got != 3276 {
		t.Errorf("DAC1 = %v, want 3276", got)
	}
	if got := e.state.rig.DAC(2); got != 3276 {
		t.Errorf("DAC2 = %v, want 3276", got)
	}
	if !bufferIsSilent(buf) {
		t.Error("quantizer patch should not make sound")
	}

	expectNoError(t, e.update([]string{"knob", "0", "1"})) // 8 V clamps at 5
	readBlocks(t, e, buf, 1)
	if got := e.state.rig.DAC(1); got != 4095 {
		t.Errorf("DAC1 at full scale = %v, want 4095", got)
	}
}

func TestEngineCommands(t *testing.T) {
	e := New()
	defer expectNoError(t, e.Close())

	if err := e.update([]string{"bogus"}); err == nil {
		t.Error("unknown command should fail")
	}
	if err := e.update([]string{"patch", "nope"}); err == nil {
		t.Error("unknown patch should fail")
	}
	if err := e.update([]string{"set", "randos", "root", "99"}); err == nil {
		t.Error("out-of-range root should fail")
	}
	expectNoError(t, e.update([]string{"set", "randos", "root", "5"}))
	if !e.Changes.Has("data") {
		t.Error("set should mark the config dirty")
	}
	e.Changes.Delete("data")
	if e.Changes.Has("data") {
		t.Error("delete should clear the flag")
	}
	expectNoError(t, e.update([]string{"set", "fractal_zoom", "evalRate", "20"}))
	expectNoError(t, e.update([]string{"set", "drums", "tempo", "4"}))
	expectNoError(t, e.update([]string{"knob_delta", "0", "0.25"}))
	if got := e.state.rig.Knob[0]; got != 0.25 {
		t.Errorf("knob 0 = %v, want 0.25", got)
	}
}

func TestEngineJSONRoundTrip(t *testing.T) {
	e := New()
	defer expectNoError(t, e.Close())
	expectNoError(t, e.update([]string{"patch", "drums"}))
	expectNoError(t, e.update([]string{"set", "drums", "tempo", "7.5"}))
	dump := e.ToJSON()

	e2 := New()
	defer expectNoError(t, e2.Close())
	e2.ApplyJSON(dump)
	if got := e2.state.patch().Name(); got != "drums" {
		t.Errorf("patch after apply = %v, want drums", got)
	}
	var j engineJSON
	expectNoError(t, json.Unmarshal(e2.ToJSON(), &j))
	var d drumsJSON
	expectNoError(t, json.Unmarshal(j.Patches["drums"], &d))
	if d.Tempo != 7.5 {
		t.Errorf("tempo after round trip = %v, want 7.5", d.Tempo)
	}
}

func TestEngineUIFrame(t *testing.T) {
	e := New()
	defer expectNoError(t, e.Close())
	buf := make([]byte, bufferSizeInBytes)
	readBlocks(t, e, buf, 4)

	f := e.UIFrame()
	if f.Patch != "fractal_zoom" {
		t.Errorf("active patch = %v", f.Patch)
	}
	if len(f.Patches) != 5 {
		t.Errorf("patch list = %v", f.Patches)
	}
	hasText := len(f.Texts) > 0
	if !hasText {
		t.Error("display should carry the patch title")
	}

	e.NextPatch()
	f = e.UIFrame()
	if f.Patch != "fractal_drone" {
		t.Errorf("after NextPatch: %v", f.Patch)
	}
}
