package dsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"

	"github.com/hajimehoshi/oto"
)

const (
	sampleRate      = 48000
	channelNum      = 2
	bitDepthInBytes = 2
	samplesPerCycle = 1024
)
const bytesPerSample = bitDepthInBytes * channelNum
const bufferSizeInBytes = samplesPerCycle * bytesPerSample
const secPerSample = 1.0 / sampleRate

// ----- MIDI Event ----- //

type midiEvent interface{}

type noteOn struct {
	note int
	vel  int
}
type noteOff struct {
	note int
}

// ----- Changes ----- //

// Changes is a concurrency-safe set of dirty flags the front panel polls.
type Changes struct {
	sync.Mutex
	dict map[string]struct{}
}

func (c *Changes) Add(key string) {
	c.Lock()
	c.dict[key] = struct{}{}
	c.Unlock()
}

func (c *Changes) Has(key string) bool {
	c.Lock()
	_, ok := c.dict[key]
	c.Unlock()
	return ok
}

func (c *Changes) Delete(key string) {
	c.Lock()
	delete(c.dict, key)
	c.Unlock()
}

// ----- State ----- //

// state is the single record shared by the audio and foreground contexts.
// The audio context renders under the lock; the foreground context mutates
// configuration under the same lock. MIDI events queue here and take effect
// at the next block boundary.
type state struct {
	sync.Mutex
	rig     *Rig
	patches []Patch
	current int
	pending []midiEvent
	spect   *spectrum
	pos     int64
}

func newState() *state {
	s := &state{
		rig: newRig(samplesPerCycle),
		patches: []Patch{
			newFractalZoom(),
			newFractalDrone(),
			newRandos(),
			newJustInTone(),
			newDrums(),
		},
		pending: make([]midiEvent, 0, 256),
		spect:   newSpectrum(2048),
	}
	for _, p := range s.patches {
		p.Init(sampleRate)
	}
	return s
}

func (s *state) patch() Patch {
	return s.patches[s.current]
}

func (s *state) selectPatch(i int) {
	if i == s.current {
		return
	}
	s.current = i
	// quiet the board across the switch
	s.rig.silence(samplesPerCycle)
	s.rig.SetGate(false)
	s.rig.WriteDAC(1, 0)
	s.rig.WriteDAC(2, 0)
	s.rig.SetLED(0, 0, 0, 0)
	s.rig.SetLED(1, 0, 0, 0)
}

// ----- Engine ----- //

// Engine owns the virtual rig, the active patch set and the audio device.
// It satisfies io.Reader; oto pulls one block per Read.
type Engine struct {
	ctx       context.Context
	CommandCh chan []string
	state     *state
	Changes   *Changes
}

var _ io.Reader = (*Engine)(nil)

// New builds an engine with all patches initialized but no audio device
// attached; Start opens the device.
func New() *Engine {
	commandCh := make(chan []string, 256)
	e := &Engine{
		ctx:       context.Background(),
		CommandCh: commandCh,
		state:     newState(),
		Changes:   &Changes{dict: make(map[string]struct{})},
	}
	go processCommands(e, commandCh)
	return e
}

func processCommands(e *Engine, commandCh <-chan []string) {
	for command := range commandCh {
		if err := e.update(command); err != nil {
			log.Printf("command %v failed: %v\n", command, err)
		}
	}
	log.Println("processCommands() ended.")
}

func (e *Engine) update(command []string) error {
	e.state.Lock()
	defer e.state.Unlock()

	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}
	switch command[0] {
	case "patch":
		if len(command) != 2 {
			return fmt.Errorf("usage: patch <name>")
		}
		for i, p := range e.state.patches {
			if p.Name() == command[1] {
				e.state.selectPatch(i)
				e.Changes.Add("data")
				return nil
			}
		}
		return fmt.Errorf("unknown patch %q", command[1])
	case "set":
		if len(command) != 4 {
			return fmt.Errorf("usage: set <patch> <key> <value>")
		}
		for _, p := range e.state.patches {
			if p.Name() == command[1] {
				if err := p.Set(command[2], command[3]); err != nil {
					return err
				}
				e.Changes.Add("data")
				return nil
			}
		}
		return fmt.Errorf("unknown patch %q", command[1])
	case "note_on":
		if len(command) != 3 {
			return fmt.Errorf("usage: note_on <note> <vel>")
		}
		note, err := strconv.ParseInt(command[1], 10, 32)
		if err != nil {
			return err
		}
		vel, err := strconv.ParseInt(command[2], 10, 32)
		if err != nil {
			return err
		}
		e.state.pending = append(e.state.pending, noteOn{note: int(note) & 0x7F, vel: int(vel) & 0x7F})
	case "note_off":
		if len(command) != 2 {
			return fmt.Errorf("usage: note_off <note>")
		}
		note, err := strconv.ParseInt(command[1], 10, 32)
		if err != nil {
			return err
		}
		e.state.pending = append(e.state.pending, noteOff{note: int(note) & 0x7F})
	case "knob":
		if len(command) != 3 {
			return fmt.Errorf("usage: knob <index> <value>")
		}
		i, err := strconv.ParseInt(command[1], 10, 32)
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(command[2], 64)
		if err != nil {
			return err
		}
		e.state.rig.SetKnob(int(i), v)
	case "knob_delta":
		if len(command) != 3 {
			return fmt.Errorf("usage: knob_delta <index> <delta>")
		}
		i, err := strconv.ParseInt(command[1], 10, 32)
		if err != nil {
			return err
		}
		dv, err := strconv.ParseFloat(command[2], 64)
		if err != nil {
			return err
		}
		if i >= 0 && i < 4 {
			e.state.rig.SetKnob(int(i), e.state.rig.Knob[i]+dv)
		}
	case "encoder":
		if len(command) != 2 {
			return fmt.Errorf("usage: encoder <increment>")
		}
		inc, err := strconv.ParseInt(command[1], 10, 32)
		if err != nil {
			return err
		}
		e.state.rig.Turn(int(inc))
	case "encoder_press":
		e.state.rig.Press()
	case "button":
		if len(command) != 3 {
			return fmt.Errorf("usage: button <index> <true|false>")
		}
		i, err := strconv.ParseInt(command[1], 10, 32)
		if err != nil {
			return err
		}
		e.state.rig.SetButton(int(i), command[2] == "true")
	default:
		return fmt.Errorf("unknown command %v", command[0])
	}
	return nil
}

// ----- Audio ----- //

// Read renders one block: pending MIDI events are applied first, then the
// active patch fills the rig's four audio buffers. Channels 0 and 1 feed the
// stereo device.
func (e *Engine) Read(buf []byte) (int, error) {
	select {
	case <-e.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	e.state.Lock()
	defer e.state.Unlock()

	frames := len(buf) / bytesPerSample
	if frames > samplesPerCycle {
		frames = samplesPerCycle
	}
	p := e.state.patch()
	for _, ev := range e.state.pending {
		p.HandleEvent(e.state.rig, ev)
	}
	e.state.pending = e.state.pending[:0]

	p.Render(e.state.rig, frames)

	for i := 0; i < frames; i++ {
		e.state.spect.push((e.state.rig.Audio[0][i] + e.state.rig.Audio[1][i]) * 0.5)
	}
	writeBuffer(e.state.rig.Audio[0], buf, frames, 0)
	writeBuffer(e.state.rig.Audio[1], buf, frames, 1)
	e.state.pos += int64(frames)
	return frames * bytesPerSample, nil
}

func writeBuffer(out []float64, buf []byte, frames int, ch int) {
	for i := 0; i < frames; i++ {
		value := clampf(out[i], -1, 1)
		const max = 32767
		b := int16(value * max)
		buf[bytesPerSample*i+2*ch] = byte(b)
		buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
	}
}

// Start opens the audio device and plays until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	otoContext, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return err
	}
	defer func() {
		if err := otoContext.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	p := otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	e.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, e, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

func (e *Engine) Close() error {
	log.Println("Closing Engine...")
	close(e.CommandCh)
	return nil
}

// AddMidiEvent decodes a raw MIDI message from the UART/driver boundary.
// Anything but note-on and note-off is dropped; data bytes are masked to
// seven bits.
func (e *Engine) AddMidiEvent(data []byte) {
	if len(data) < 3 {
		return
	}
	e.state.Lock()
	defer e.state.Unlock()
	switch data[0] >> 4 {
	case 8:
		e.state.pending = append(e.state.pending, noteOff{note: int(data[1] & 0x7F)})
	case 9:
		e.state.pending = append(e.state.pending, noteOn{note: int(data[1] & 0x7F), vel: int(data[2] & 0x7F)})
	}
}

// ----- Front Panel ----- //

// PanelFrame is one snapshot for the terminal front panel.
type PanelFrame struct {
	Patch    string
	Patches  []string
	Pixels   [DisplayHeight][DisplayWidth]bool
	Texts    []DisplayText
	Knob     [4]float64
	Button   [2]bool
	LED      [2][3]float64
	Gate     bool
	DAC      [2]uint16
	Spectrum []float64
}

// UIFrame runs one foreground tick: the active patch consumes encoder and
// button state, updates LEDs, redraws the display, and the result is
// snapshotted for rendering. Callers should invoke this at 10-100 Hz.
func (e *Engine) UIFrame() PanelFrame {
	e.state.Lock()
	p := e.state.patch()
	p.UpdateControls(e.state.rig)
	p.Draw(e.state.rig.Display)
	e.state.rig.Display.Flush()

	var f PanelFrame
	f.Patch = p.Name()
	f.Patches = make([]string, len(e.state.patches))
	for i, pp := range e.state.patches {
		f.Patches[i] = pp.Name()
	}
	f.Pixels, f.Texts = e.state.rig.Display.Frame()
	f.Knob = e.state.rig.Knob
	f.Button = e.state.rig.Button
	f.LED = e.state.rig.LED
	f.Gate = e.state.rig.Gate()
	f.DAC = [2]uint16{e.state.rig.DAC(1), e.state.rig.DAC(2)}
	ring := e.state.spect.snapshot()
	e.state.Unlock()

	f.Spectrum = e.state.spect.magnitudes(ring)
	return f
}

// NextPatch cycles to the following patch.
func (e *Engine) NextPatch() {
	e.state.Lock()
	defer e.state.Unlock()
	e.state.selectPatch((e.state.current + 1) % len(e.state.patches))
	e.Changes.Add("data")
}

// ----- JSON ----- //

type engineJSON struct {
	Patch   string                     `json:"patch"`
	Patches map[string]json.RawMessage `json:"patches"`
}

func toRawMessage(v interface{}) json.RawMessage {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(bytes)
}

// ApplyJSON loads a configuration snapshot produced by ToJSON.
func (e *Engine) ApplyJSON(data []byte) {
	e.state.Lock()
	defer e.state.Unlock()
	var j engineJSON
	if err := json.Unmarshal(data, &j); err != nil {
		log.Println("failed to apply JSON to Engine", err)
		return
	}
	for i, p := range e.state.patches {
		if raw, ok := j.Patches[p.Name()]; ok {
			p.ApplyJSON(raw)
		}
		if p.Name() == j.Patch {
			e.state.selectPatch(i)
		}
	}
}

// ToJSON dumps the current patch selection and every patch's parameters.
func (e *Engine) ToJSON() []byte {
	e.state.Lock()
	defer e.state.Unlock()
	j := engineJSON{
		Patch:   e.state.patch().Name(),
		Patches: map[string]json.RawMessage{},
	}
	for _, p := range e.state.patches {
		j.Patches[p.Name()] = p.ToJSON()
	}
	bytes, err := json.Marshal(&j)
	if err != nil {
		panic(err)
	}
	return bytes
}
