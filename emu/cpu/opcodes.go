package cpu

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

// Step fetches the big endian word at pc, advances pc by 2 and executes it.
//
// Unknown opcodes are logged and skipped. Stack and memory bounds faults are
// handled according to the error policy: under PolicyContinue they are logged
// and Step returns nil, under PolicyHalt the fault is returned and the VM
// refuses to run further.
func (emu *EMU) Step() error {
	if emu.halted != nil {
		return fmt.Errorf("%w: %v", ErrHalted, emu.halted)
	}

	pc := emu.pc
	if int(pc)+1 >= memorySize {
		// nothing to fetch, there is no next instruction to continue with
		emu.halted = fmt.Errorf("fetch at pc %04X: %w", pc, ErrMemoryBounds)
		return emu.halted
	}

	emu.opcode = uint16(emu.memory[pc])<<8 | uint16(emu.memory[pc+1])
	emu.pc += 2
	in := Decode(emu.opcode)

	emu.logger.Debug("Executing",
		log.String("pc", fmt.Sprintf("0x%04X", pc)),
		log.String("opcode", fmt.Sprintf("0x%04X", emu.opcode)),
		log.String("instruction", in.Mnemonic()))

	err := emu.opCodeParser(in)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnknownOpcode):
		emu.logger.Error("Unknown opcode, ignored", err,
			log.String("pc", fmt.Sprintf("0x%04X", pc)))
		return nil
	default:
		return emu.fault(pc, err)
	}
}

// opCodeParser executes one decoded instruction. pc already points past it.
func (emu *EMU) opCodeParser(in Instruction) error {
	x, y := in.X, in.Y
	const F = flagRegister

	switch in.Group() {
	case 0x0:
		switch in.Opcode {
		case 0x00E0:
			emu.display.clear()
			emu.drawFlag = true
		case 0x00EE:
			addr, err := emu.stack.pop()
			if err != nil {
				return err
			}
			emu.pc = addr
		default:
			return emu.opCodeError(in.Opcode)
		}

	case 0x1:
		emu.pc = in.NNN

	case 0x2:
		if err := emu.stack.push(emu.pc); err != nil {
			return err
		}
		emu.pc = in.NNN

	case 0x3:
		emu.skipIf(emu.V[x] == in.KK)

	case 0x4:
		emu.skipIf(emu.V[x] != in.KK)

	case 0x5:
		if in.N != 0 {
			return emu.opCodeError(in.Opcode)
		}
		emu.skipIf(emu.V[x] == emu.V[y])

	case 0x6:
		emu.V[x] = in.KK

	case 0x7:
		emu.V[x] += in.KK

	case 0x8:
		return emu.aluOp(in)

	case 0x9:
		if in.N != 0 {
			return emu.opCodeError(in.Opcode)
		}
		emu.skipIf(emu.V[x] != emu.V[y])

	case 0xA:
		emu.I = in.NNN

	case 0xB:
		emu.pc = in.NNN + uint16(emu.V[0])

	case 0xC:
		emu.V[x] = uint8(emu.rng.Intn(256)) & in.KK

	case 0xD:
		if err := emu.checkSpan(emu.I, int(in.N)); err != nil {
			return err
		}
		sprite := emu.memory[int(emu.I) : int(emu.I)+int(in.N)]
		emu.V[F] = 0
		if emu.display.drawSprite(emu.V[x], emu.V[y], sprite) {
			emu.V[F] = 1
		}
		emu.drawFlag = true

	case 0xE:
		pressed := emu.keyState[emu.V[x]&0xF]
		switch in.KK {
		case 0x9E:
			emu.skipIf(pressed)
		case 0xA1:
			emu.skipIf(!pressed)
		default:
			return emu.opCodeError(in.Opcode)
		}

	case 0xF:
		return emu.miscOp(in)

	default:
		return emu.opCodeError(in.Opcode)
	}
	return nil
}

func (emu *EMU) aluOp(in Instruction) error {
	x, y := in.X, in.Y
	const F = flagRegister

	switch in.N {
	case 0x0:
		emu.V[x] = emu.V[y]
	case 0x1:
		emu.V[x] |= emu.V[y]
	case 0x2:
		emu.V[x] &= emu.V[y]
	case 0x3:
		emu.V[x] ^= emu.V[y]
	case 0x4:
		sum := uint16(emu.V[x]) + uint16(emu.V[y])
		emu.V[x] = uint8(sum)
		emu.V[F] = boolToFlag(sum > 0xFF)
	case 0x5:
		// flag first, a subtraction into VF overwrites it
		emu.V[F] = boolToFlag(emu.V[x] > emu.V[y])
		emu.V[x] -= emu.V[y]
	case 0x6:
		src := emu.shiftSource(in)
		emu.V[F] = src & 0x01
		emu.V[x] = src >> 1
	case 0x7:
		emu.V[F] = boolToFlag(emu.V[y] > emu.V[x])
		emu.V[x] = emu.V[y] - emu.V[x]
	case 0xE:
		src := emu.shiftSource(in)
		emu.V[F] = (src >> 7) & 0x01
		emu.V[x] = src << 1
	default:
		return emu.opCodeError(in.Opcode)
	}
	return nil
}

func (emu *EMU) miscOp(in Instruction) error {
	x := in.X

	switch in.KK {
	case 0x07:
		emu.V[x] = emu.delayTimer
	case 0x0A:
		emu.waitForKey(x)
	case 0x15:
		emu.delayTimer = emu.V[x]
	case 0x18:
		emu.soundTimer = emu.V[x]
	case 0x1E:
		emu.I += uint16(emu.V[x])
	case 0x29:
		emu.I = uint16(emu.V[x]) * fontSize
	case 0x33:
		if err := emu.checkSpan(emu.I, 3); err != nil {
			return err
		}
		value := emu.V[x]
		emu.memory[emu.I] = value / 100
		emu.memory[emu.I+1] = (value / 10) % 10
		emu.memory[emu.I+2] = value % 10
	case 0x55:
		if err := emu.checkSpan(emu.I, int(x)+1); err != nil {
			return err
		}
		for i := 0; i <= int(x); i++ {
			emu.memory[int(emu.I)+i] = emu.V[i]
		}
	case 0x65:
		if err := emu.checkSpan(emu.I, int(x)+1); err != nil {
			return err
		}
		for i := 0; i <= int(x); i++ {
			emu.V[i] = emu.memory[int(emu.I)+i]
		}
	default:
		return emu.opCodeError(in.Opcode)
	}
	return nil
}

// waitForKey implements Fx0A. The first pressed key (lowest index) is
// latched and the instruction repeats until that key is released, then its
// index lands in Vx.
func (emu *EMU) waitForKey(x uint8) {
	if !emu.waiting {
		for key, pressed := range emu.keyState {
			if pressed {
				emu.waiting = true
				emu.waitKey = uint8(key)
				break
			}
		}
		emu.pc -= 2
		return
	}

	if emu.keyState[emu.waitKey] {
		emu.pc -= 2
		return
	}
	emu.V[x] = emu.waitKey
	emu.waiting = false
}

func (emu *EMU) shiftSource(in Instruction) uint8 {
	if emu.quirks.ShiftUsesVy {
		return emu.V[in.Y]
	}
	return emu.V[in.X]
}

func (emu *EMU) skipIf(cond bool) {
	if cond {
		emu.pc += 2
	}
}

// checkSpan verifies that count bytes starting at addr are inside memory.
func (emu *EMU) checkSpan(addr uint16, count int) error {
	if int(addr)+count > memorySize {
		return fmt.Errorf("%w: I=%04X length %d", ErrMemoryBounds, addr, count)
	}
	return nil
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
