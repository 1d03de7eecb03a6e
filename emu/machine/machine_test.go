package machine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/retroenv/retrogolib/assert"
)

type fakeRenderer struct {
	draws  int
	last   cpu.Display
	closed bool
}

func (r *fakeRenderer) Draw(display cpu.Display) {
	r.draws++
	r.last = display
}

func (r *fakeRenderer) Closed() bool { return r.closed }

type fakeInput struct {
	pending []KeyEvent
}

func (in *fakeInput) PollKeys() []KeyEvent {
	events := in.pending
	in.pending = nil
	return events
}

type fakeSound struct {
	changes []bool
}

func (s *fakeSound) SetActive(active bool) {
	s.changes = append(s.changes, active)
}

func newEMU(t *testing.T, policy cpu.ErrorPolicy, words ...uint16) *cpu.EMU {
	t.Helper()
	emu := cpu.New(cpu.Options{Seed: 1, Policy: policy})
	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}
	assert.NoError(t, emu.LoadProgram(program))
	return emu
}

func TestStepsPerFrame(t *testing.T) {
	assert.Equal(t, 11, Options{RefreshRate: 60, InstructionsPerSecond: 700}.StepsPerFrame())
	assert.Equal(t, 1, Options{RefreshRate: 60, InstructionsPerSecond: 30}.StepsPerFrame())
	assert.Equal(t, 1, Options{RefreshRate: 0, InstructionsPerSecond: 30}.StepsPerFrame())
}

func TestFrameOrder(t *testing.T) {
	// V0 = 3, DT = V0, then spin
	emu := newEMU(t, cpu.PolicyContinue, 0x6003, 0xF015, 0x1204)
	renderer := &fakeRenderer{}
	m := New(emu, Options{RefreshRate: 60, InstructionsPerSecond: 180}, nil, renderer, nil, nil)

	assert.NoError(t, m.Frame())
	// three steps, then one tick
	assert.Equal(t, uint8(2), emu.DelayTimer())
	assert.Equal(t, uint64(1), m.Frames())
	// first frame is always presented
	assert.Equal(t, 1, renderer.draws)

	assert.NoError(t, m.Frame())
	assert.Equal(t, uint8(1), emu.DelayTimer())
	assert.Equal(t, 1, renderer.draws)
}

func TestFrameDrawsOnChange(t *testing.T) {
	emu := newEMU(t, cpu.PolicyContinue, 0x6000, 0xA000, 0xD015, 0x1206)
	renderer := &fakeRenderer{}
	m := New(emu, Options{RefreshRate: 1, InstructionsPerSecond: 3}, nil, renderer, nil, nil)

	assert.NoError(t, m.Frame())
	assert.Equal(t, 1, renderer.draws)
	assert.True(t, renderer.last.Pixel(0, 0))
	assert.False(t, emu.DrawFlag())

	assert.NoError(t, m.Frame())
	assert.Equal(t, 1, renderer.draws)
}

func TestInputAppliedAfterSteps(t *testing.T) {
	// skip next if key 5 pressed
	emu := newEMU(t, cpu.PolicyContinue, 0x6005, 0xE09E, 0x1200)
	input := &fakeInput{pending: []KeyEvent{{Key: 5, Pressed: true}, {Key: 42, Pressed: true}}}
	m := New(emu, Options{RefreshRate: 1, InstructionsPerSecond: 2}, nil, nil, input, nil)

	assert.NoError(t, m.Frame())
	// the key arrived after the frame's steps
	assert.Equal(t, uint16(0x204), emu.PC())
	assert.True(t, emu.Key(5))
}

func TestSoundToggles(t *testing.T) {
	// ST = 2
	emu := newEMU(t, cpu.PolicyContinue, 0x6002, 0xF018, 0x1204)
	sound := &fakeSound{}
	m := New(emu, Options{RefreshRate: 1, InstructionsPerSecond: 2}, nil, nil, nil, sound)

	assert.NoError(t, m.Frame())
	assert.Equal(t, []bool{true}, sound.changes)

	assert.NoError(t, m.Frame())
	assert.Equal(t, []bool{true, false}, sound.changes)

	assert.NoError(t, m.Frame())
	assert.Equal(t, 2, len(sound.changes))
}

func TestFrameStopsOnHalt(t *testing.T) {
	emu := newEMU(t, cpu.PolicyHalt, 0x00EE)
	m := New(emu, Options{RefreshRate: 60, InstructionsPerSecond: 600}, nil, nil, nil, nil)

	err := m.Frame()
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
	assert.Equal(t, uint64(0), m.Frames())
}

func TestRunStopsOnCancel(t *testing.T) {
	emu := newEMU(t, cpu.PolicyContinue, 0x1200)
	m := New(emu, Options{RefreshRate: 1000, InstructionsPerSecond: 1000}, nil, &fakeRenderer{}, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, m.Run(ctx))
	assert.True(t, m.Frames() > 0)
}

func TestRunStopsWhenRendererClosed(t *testing.T) {
	emu := newEMU(t, cpu.PolicyContinue, 0x1200)
	m := New(emu, Options{RefreshRate: 60, InstructionsPerSecond: 60}, nil, &fakeRenderer{closed: true}, nil, nil)

	assert.NoError(t, m.Run(context.Background()))
	assert.Equal(t, uint64(0), m.Frames())
}

func TestRunReturnsHaltError(t *testing.T) {
	emu := newEMU(t, cpu.PolicyHalt, 0x00EE)
	m := New(emu, Options{RefreshRate: 1000, InstructionsPerSecond: 1000}, nil, nil, nil, nil)

	err := m.Run(context.Background())
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
}
