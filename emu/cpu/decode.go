package cpu

import "fmt"

// Instruction holds the fields of one opcode. Every 16 bit value decodes,
// whether it means anything is up to the executor.
type Instruction struct {
	Opcode uint16
	NNN    uint16 // low 12 bits, address
	KK     uint8  // low byte
	N      uint8  // low nibble
	X      uint8  // bits 8-11
	Y      uint8  // bits 4-7
}

// Decode splits a big endian opcode word into its fields.
func Decode(opcode uint16) Instruction {
	return Instruction{
		Opcode: opcode,
		NNN:    opcode & 0x0FFF,
		KK:     uint8(opcode & 0x00FF),
		N:      uint8(opcode & 0x000F),
		X:      uint8((opcode & 0x0F00) >> 8),
		Y:      uint8((opcode & 0x00F0) >> 4),
	}
}

// Group is the top nibble selecting the opcode family.
func (in Instruction) Group() uint8 {
	return uint8(in.Opcode >> 12)
}

// Mnemonic renders the instruction as assembly. Words that are not
// instructions come out as DW.
func (in Instruction) Mnemonic() string {
	x, y := in.X, in.Y
	switch in.Group() {
	case 0x0:
		switch in.Opcode {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
	case 0x1:
		return fmt.Sprintf("JP $%03X", in.NNN)
	case 0x2:
		return fmt.Sprintf("CALL $%03X", in.NNN)
	case 0x3:
		return fmt.Sprintf("SE V%X, $%02X", x, in.KK)
	case 0x4:
		return fmt.Sprintf("SNE V%X, $%02X", x, in.KK)
	case 0x5:
		if in.N == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, $%02X", x, in.KK)
	case 0x7:
		return fmt.Sprintf("ADD V%X, $%02X", x, in.KK)
	case 0x8:
		if name, ok := aluNames[in.N]; ok {
			if in.N == 0x6 || in.N == 0xE {
				return fmt.Sprintf("%s V%X", name, x)
			}
			return fmt.Sprintf("%s V%X, V%X", name, x, y)
		}
	case 0x9:
		if in.N == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, $%03X", in.NNN)
	case 0xB:
		return fmt.Sprintf("JP V0, $%03X", in.NNN)
	case 0xC:
		return fmt.Sprintf("RND V%X, $%02X", x, in.KK)
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, $%X", x, y, in.N)
	case 0xE:
		switch in.KK {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		if format, ok := miscFormats[in.KK]; ok {
			return fmt.Sprintf(format, x)
		}
	}
	return fmt.Sprintf("DW $%04X", in.Opcode)
}

var aluNames = map[uint8]string{
	0x0: "LD",
	0x1: "OR",
	0x2: "AND",
	0x3: "XOR",
	0x4: "ADD",
	0x5: "SUB",
	0x6: "SHR",
	0x7: "SUBN",
	0xE: "SHL",
}

var miscFormats = map[uint8]string{
	0x07: "LD V%X, DT",
	0x0A: "LD V%X, K",
	0x15: "LD DT, V%X",
	0x18: "LD ST, V%X",
	0x1E: "ADD I, V%X",
	0x29: "LD F, V%X",
	0x33: "LD B, V%X",
	0x55: "LD [I], V%X",
	0x65: "LD V%X, [I]",
}

// Line is one disassembled word of a program image.
type Line struct {
	Address uint16
	Bytes   []byte
	Text    string
}

// Disassemble decodes a program image word by word as if it were loaded at
// base. A trailing odd byte is emitted as DB.
func Disassemble(program []byte, base uint16) []Line {
	lines := make([]Line, 0, len(program)/2+1)
	for i := 0; i < len(program); i += 2 {
		addr := base + uint16(i)
		if i+1 >= len(program) {
			lines = append(lines, Line{
				Address: addr,
				Bytes:   program[i : i+1],
				Text:    fmt.Sprintf("DB $%02X", program[i]),
			})
			break
		}
		opcode := uint16(program[i])<<8 | uint16(program[i+1])
		lines = append(lines, Line{
			Address: addr,
			Bytes:   program[i : i+2],
			Text:    Decode(opcode).Mnemonic(),
		})
	}
	return lines
}
