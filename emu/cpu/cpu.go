// Package cpu implements the CHIP-8 virtual machine: memory, registers,
// call stack, timers, keypad state, the display buffer and the
// fetch-decode-execute engine that mutates them.
package cpu

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	memorySize   = 4096
	registers    = 16
	keyCount     = 16
	programStart = 0x200
	fontSize     = 5
	flagRegister = 0xF

	// MaxRomSize is the largest program image that fits between 0x200 and the end of memory.
	MaxRomSize = memorySize - programStart
)

var FontSet = [80]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// ErrorPolicy decides what Step does after a stack or memory bounds fault.
type ErrorPolicy int

const (
	// PolicyContinue logs the fault, skips the faulting instruction and keeps running.
	PolicyContinue ErrorPolicy = iota
	// PolicyHalt stops the VM; every later Step returns ErrHalted.
	PolicyHalt
)

// Quirks are behavioural switches where CHIP-8 interpreters disagree.
type Quirks struct {
	// ShiftUsesVy makes 8xy6 and 8xyE shift Vy into Vx instead of shifting Vx in place.
	ShiftUsesVy bool
}

// Options configures a new EMU.
type Options struct {
	Quirks Quirks
	Policy ErrorPolicy
	Logger *log.Logger
	// Seed for the Cxkk random source, 0 picks a time based seed.
	Seed int64
}

type EMU struct {
	opcode     uint16
	memory     [memorySize]uint8
	V          [registers]uint8
	I          uint16 //address register
	pc         uint16
	display    Display
	delayTimer uint8 //counts down at 60Hz
	soundTimer uint8 //same as above
	stack      callStack
	keyState   [keyCount]bool //tells whether key is pressed or not
	drawFlag   bool           //display changed since the renderer last looked

	// Fx0A latch, survives between steps
	waiting bool
	waitKey uint8

	quirks Quirks
	policy ErrorPolicy
	halted error
	logger *log.Logger
	rng    *rand.Rand
}

// New returns a VM with the font loaded, pc at 0x200 and all other state zeroed.
func New(opts Options) *EMU {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithConfig(log.DefaultConfig())
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	emu := &EMU{
		pc:     programStart,
		quirks: opts.Quirks,
		policy: opts.Policy,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
	emu.loadFont()
	return emu
}

// NewEMU creates a VM and loads the ROM at romPath into it. Any error means
// the VM must not be started.
func NewEMU(romPath string, opts Options) (*EMU, error) {
	emu := New(opts)
	if err := emu.LoadROM(romPath); err != nil {
		return nil, err
	}
	return emu, nil
}

func (emu *EMU) loadFont() {
	copy(emu.memory[:len(FontSet)], FontSet[:])
}

// LoadROM reads a program image from disk and loads it at 0x200.
func (emu *EMU) LoadROM(filename string) error {
	rom, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}
	if err := emu.LoadProgram(rom); err != nil {
		return fmt.Errorf("loading rom '%s': %w", filename, err)
	}
	return nil
}

// LoadProgram copies a program image verbatim to 0x200.
func (emu *EMU) LoadProgram(rom []byte) error {
	if len(rom) > MaxRomSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrROMTooLarge, len(rom), MaxRomSize)
	}
	copy(emu.memory[programStart:], rom)
	return nil
}

// Tick decrements both timers once, never below zero.
func (emu *EMU) Tick() {
	if emu.delayTimer > 0 {
		emu.delayTimer--
	}
	if emu.soundTimer > 0 {
		emu.soundTimer--
	}
}

// SetKey records the pressed state of one of the 16 keypad keys.
func (emu *EMU) SetKey(key uint8, pressed bool) error {
	if key >= keyCount {
		return fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	emu.keyState[key] = pressed
	return nil
}

func (emu *EMU) PC() uint16 { return emu.pc }
func (emu *EMU) Index() uint16 { return emu.I }
func (emu *EMU) Register(i int) uint8 { return emu.V[i&0xF] }
func (emu *EMU) Registers() [16]uint8 { return emu.V }
func (emu *EMU) DelayTimer() uint8 { return emu.delayTimer }
func (emu *EMU) SoundTimer() uint8 { return emu.soundTimer }
func (emu *EMU) StackDepth() int { return emu.stack.depth }
func (emu *EMU) Key(i int) bool { return emu.keyState[i&0xF] }
func (emu *EMU) Waiting() bool { return emu.waiting }
func (emu *EMU) Display() Display { return emu.display }
func (emu *EMU) Pixel(x, y int) bool { return emu.display.Pixel(x, y) }
func (emu *EMU) DrawFlag() bool { return emu.drawFlag }
func (emu *EMU) ClearDrawFlag() { emu.drawFlag = false }
func (emu *EMU) Memory(addr uint16) uint8 { return emu.memory[addr%memorySize] }

// SoundActive reports whether the tone should be playing.
func (emu *EMU) SoundActive() bool {
	return emu.soundTimer > 0
}

// Halted returns the fault that stopped the VM, or nil while it is running.
func (emu *EMU) Halted() error {
	return emu.halted
}
