package dsp

// ----- Virtual Hardware ----- //

const (
	// DisplayWidth and DisplayHeight match the board's OLED.
	DisplayWidth  = 128
	DisplayHeight = 64
)

// DisplayText is a text overlay entry on the display.
type DisplayText struct {
	X, Y int
	S    string
}

// Display is a monochrome framebuffer plus a text overlay list. Drawing
// happens into a working frame; Flush publishes it for the front panel to
// read, so a half-drawn frame is never shown.
type Display struct {
	pix   [DisplayHeight][DisplayWidth]bool
	texts []DisplayText

	frontPix   [DisplayHeight][DisplayWidth]bool
	frontTexts []DisplayText
}

func newDisplay() *Display {
	return &Display{
		texts:      make([]DisplayText, 0, 16),
		frontTexts: make([]DisplayText, 0, 16),
	}
}

func (d *Display) Clear() {
	for y := range d.pix {
		for x := range d.pix[y] {
			d.pix[y][x] = false
		}
	}
	d.texts = d.texts[:0]
}

func (d *Display) Text(x, y int, s string) {
	d.texts = append(d.texts, DisplayText{X: x, Y: y, S: s})
}

func (d *Display) SetPixel(x, y int) {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return
	}
	d.pix[y][x] = true
}

// Line draws with Bresenham's algorithm; endpoints outside the framebuffer
// are clipped pixel by pixel.
func (d *Display) Line(x0, y0, x1, y1 int) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		d.SetPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (d *Display) Flush() {
	d.frontPix = d.pix
	d.frontTexts = append(d.frontTexts[:0], d.texts...)
}

// Frame returns the last flushed framebuffer and overlay.
func (d *Display) Frame() ([DisplayHeight][DisplayWidth]bool, []DisplayText) {
	texts := make([]DisplayText, len(d.frontTexts))
	copy(texts, d.frontTexts)
	return d.frontPix, texts
}

// voltsToDAC converts a 0-5 V control voltage to a 12-bit code.
func voltsToDAC(volts float64) uint16 {
	return uint16(clampf(volts, 0, 5) / 5 * 4095)
}

// Rig is the virtual board every patch runs against: four knobs, an encoder,
// two buttons, four audio outputs, a dual 12-bit DAC, a gate output, two RGB
// LEDs and the OLED. The engine mutates it under its state lock; the front
// panel reads snapshots through the engine.
type Rig struct {
	Knob   [4]float64
	Button [2]bool

	encoderInc     int
	encoderPressed bool

	Audio [4][]float64

	dac  [2]uint16
	gate bool
	LED  [2][3]float64

	Display *Display
}

func newRig(blockFrames int) *Rig {
	r := &Rig{Display: newDisplay()}
	for c := range r.Audio {
		r.Audio[c] = make([]float64, blockFrames)
	}
	return r
}

func (r *Rig) SetKnob(i int, v float64) {
	if i < 0 || i > 3 {
		return
	}
	r.Knob[i] = clampf(v, 0, 1)
}

func (r *Rig) Turn(inc int)  { r.encoderInc += inc }
func (r *Rig) Press()        { r.encoderPressed = true }
func (r *Rig) SetButton(i int, pressed bool) {
	if i < 0 || i > 1 {
		return
	}
	r.Button[i] = pressed
}

// takeEncoder consumes the accumulated increments and the press edge.
func (r *Rig) takeEncoder() (inc int, pressed bool) {
	inc, pressed = r.encoderInc, r.encoderPressed
	r.encoderInc = 0
	r.encoderPressed = false
	return inc, pressed
}

// WriteDAC accepts hardware channel numbers 1 and 2.
func (r *Rig) WriteDAC(channel int, code uint16) {
	if channel < 1 || channel > 2 {
		return
	}
	if code > 4095 {
		code = 4095
	}
	r.dac[channel-1] = code
}

func (r *Rig) DAC(channel int) uint16 {
	if channel < 1 || channel > 2 {
		return 0
	}
	return r.dac[channel-1]
}

func (r *Rig) SetGate(high bool) { r.gate = high }
func (r *Rig) Gate() bool        { return r.gate }

func (r *Rig) SetLED(i int, red, green, blue float64) {
	if i < 0 || i > 1 {
		return
	}
	r.LED[i] = [3]float64{clampf(red, 0, 1), clampf(green, 0, 1), clampf(blue, 0, 1)}
}

func (r *Rig) silence(frames int) {
	for c := range r.Audio {
		buf := r.Audio[c]
		for i := 0; i < frames; i++ {
			buf[i] = 0
		}
	}
}
