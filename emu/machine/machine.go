// Package machine drives a CHIP-8 VM frame by frame: it runs a batch of
// instructions, ticks the timers, hands the display to a renderer, updates
// the sound output and applies keypad events collected during the frame.
package machine

import (
	"context"
	"fmt"
	"time"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/retroenv/retrogolib/log"
)

// KeyEvent is a keypad change reported by an input source.
type KeyEvent struct {
	Key     uint8
	Pressed bool
}

// Renderer consumes the framebuffer.
type Renderer interface {
	Draw(display cpu.Display)
	Closed() bool
}

// InputSource reports keypad changes since the last poll.
type InputSource interface {
	PollKeys() []KeyEvent
}

// Sound plays the tone while active.
type Sound interface {
	SetActive(active bool)
}

// Options controls the frame pacing.
type Options struct {
	RefreshRate           int
	InstructionsPerSecond int
}

// StepsPerFrame returns the number of instructions executed per frame, at least one.
func (o Options) StepsPerFrame() int {
	if o.RefreshRate <= 0 {
		return 1
	}
	steps := o.InstructionsPerSecond / o.RefreshRate
	if steps < 1 {
		return 1
	}
	return steps
}

// Machine owns the VM and its collaborators. It is not safe for concurrent use.
type Machine struct {
	emu      *cpu.EMU
	opts     Options
	renderer Renderer
	input    InputSource
	sound    Sound
	logger   *log.Logger

	frames    uint64
	soundOn   bool
	firstDraw bool
}

// New returns a machine. input and sound may be nil.
func New(emu *cpu.EMU, opts Options, logger *log.Logger, renderer Renderer, input InputSource, sound Sound) *Machine {
	if logger == nil {
		logger = log.NewWithConfig(log.DefaultConfig())
	}
	return &Machine{
		emu:       emu,
		opts:      opts,
		renderer:  renderer,
		input:     input,
		sound:     sound,
		logger:    logger,
		firstDraw: true,
	}
}

// Frames returns the number of completed frames.
func (m *Machine) Frames() uint64 {
	return m.frames
}

// Frame runs one frame. A Step error stops the frame and is returned.
func (m *Machine) Frame() error {
	for i := 0; i < m.opts.StepsPerFrame(); i++ {
		if err := m.emu.Step(); err != nil {
			return err
		}
	}

	m.emu.Tick()

	if m.renderer != nil && (m.emu.DrawFlag() || m.firstDraw) {
		m.renderer.Draw(m.emu.Display())
		m.emu.ClearDrawFlag()
		m.firstDraw = false
	}

	m.updateSound()
	m.applyInput()
	m.frames++
	return nil
}

func (m *Machine) updateSound() {
	active := m.emu.SoundActive()
	if m.sound == nil || active == m.soundOn {
		return
	}
	m.soundOn = active
	m.sound.SetActive(active)
}

func (m *Machine) applyInput() {
	if m.input == nil {
		return
	}
	for _, event := range m.input.PollKeys() {
		if err := m.emu.SetKey(event.Key, event.Pressed); err != nil {
			m.logger.Error("Ignoring key event", err)
		}
	}
}

// Run executes frames at the refresh rate until ctx is cancelled, the
// renderer is closed or the VM halts.
func (m *Machine) Run(ctx context.Context) error {
	if m.opts.RefreshRate <= 0 {
		return fmt.Errorf("invalid refresh rate %d", m.opts.RefreshRate)
	}

	m.logger.Info("Starting emulation",
		log.Int("refresh_rate", m.opts.RefreshRate),
		log.Int("steps_per_frame", m.opts.StepsPerFrame()))

	ticker := time.NewTicker(time.Second / time.Duration(m.opts.RefreshRate))
	defer ticker.Stop()
	defer m.silence()

	for {
		if m.renderer != nil && m.renderer.Closed() {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := m.Frame(); err != nil {
			return fmt.Errorf("frame %d: %w", m.frames, err)
		}
	}
}

func (m *Machine) silence() {
	if m.sound != nil && m.soundOn {
		m.sound.SetActive(false)
		m.soundOn = false
	}
}
