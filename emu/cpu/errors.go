package cpu

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

var (
	ErrROMTooLarge    = errors.New("rom too big")
	ErrInvalidKey     = errors.New("invalid key index")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrStackUnderflow = errors.New("call stack underflow")
	ErrMemoryBounds   = errors.New("memory access out of bounds")
	ErrHalted         = errors.New("vm halted")
)

func (emu *EMU) opCodeError(opcode uint16) error {
	return fmt.Errorf("%w: %04X", ErrUnknownOpcode, opcode)
}

// fault applies the error policy to a stack or bounds error raised while
// executing the instruction at pc.
func (emu *EMU) fault(pc uint16, err error) error {
	err = fmt.Errorf("pc %04X opcode %04X: %w", pc, emu.opcode, err)
	if emu.policy == PolicyHalt {
		emu.halted = err
		return err
	}

	emu.logger.Error("Instruction skipped", err,
		log.String("pc", fmt.Sprintf("0x%04X", pc)),
		log.String("opcode", fmt.Sprintf("0x%04X", emu.opcode)))
	return nil
}
