// Package screen presents the CHIP-8 framebuffer in a pixelgl window and
// turns keyboard events into keypad events.
package screen

import (
	"fmt"
	"image/color"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/beanboi7/chyp8/emu/machine"
	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"
)

// Config describes the window.
type Config struct {
	Title      string
	Scale      int
	Foreground string
	Background string
}

// KeyMap is the fixed keyboard layout:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var KeyMap = map[uint8]pixelgl.Button{
	0x1: pixelgl.Key1, 0x2: pixelgl.Key2, 0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
	0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW, 0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
	0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS, 0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
	0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX, 0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
}

// KeyIndex returns the keypad index bound to a keyboard button.
func KeyIndex(button pixelgl.Button) (uint8, bool) {
	for key, b := range KeyMap {
		if b == button {
			return key, true
		}
	}
	return 0, false
}

type Window struct {
	*pixelgl.Window
	imd        *imdraw.IMDraw
	scale      float64
	foreground color.RGBA
	background color.RGBA
}

// NewWindow opens a window sized for the scaled framebuffer. It must be
// called from the function passed to pixelgl.Run.
func NewWindow(cfg Config) (*Window, error) {
	fg, ok := colornames.Map[cfg.Foreground]
	if !ok {
		return nil, fmt.Errorf("unknown colour '%s'", cfg.Foreground)
	}
	bg, ok := colornames.Map[cfg.Background]
	if !ok {
		return nil, fmt.Errorf("unknown colour '%s'", cfg.Background)
	}

	scale := float64(cfg.Scale)
	wcfg := pixelgl.WindowConfig{
		Title:     cfg.Title,
		Bounds:    pixel.R(0, 0, cpu.Width*scale, cpu.Height*scale),
		Resizable: false,
		VSync:     true,
	}

	win, err := pixelgl.NewWindow(wcfg)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	w := &Window{
		Window:     win,
		imd:        imdraw.New(nil),
		scale:      scale,
		foreground: fg,
		background: bg,
	}
	w.Clear(bg)
	w.SwapBuffers()
	return w, nil
}

// Draw renders every lit cell as a scaled rectangle. Row 0 is at the top of
// the window, pixel's y axis points up.
func (w *Window) Draw(display cpu.Display) {
	w.imd.Clear()
	w.imd.Color = w.foreground

	for y := 0; y < cpu.Height; y++ {
		for x := 0; x < cpu.Width; x++ {
			if !display.Pixel(x, y) {
				continue
			}
			minX := float64(x) * w.scale
			minY := float64(cpu.Height-1-y) * w.scale
			w.imd.Push(pixel.V(minX, minY), pixel.V(minX+w.scale, minY+w.scale))
			w.imd.Rectangle(0)
		}
	}

	w.Clear(w.background)
	w.imd.Draw(w.Window)
	w.SwapBuffers()
}

// PollKeys processes window events and returns the keypad changes since the
// previous poll. Escape closes the window.
func (w *Window) PollKeys() []machine.KeyEvent {
	w.UpdateInput()

	if w.JustPressed(pixelgl.KeyEscape) {
		w.SetClosed(true)
	}

	var events []machine.KeyEvent
	for key := uint8(0); key < 16; key++ {
		button := KeyMap[key]
		switch {
		case w.JustPressed(button):
			events = append(events, machine.KeyEvent{Key: key, Pressed: true})
		case w.JustReleased(button):
			events = append(events, machine.KeyEvent{Key: key, Pressed: false})
		}
	}
	return events
}
