package cpu

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecodeFields(t *testing.T) {
	for op := 0; op <= 0xFFFF; op += 0x0123 {
		opcode := uint16(op)
		in := Decode(opcode)
		assert.Equal(t, opcode, in.Opcode)
		assert.Equal(t, opcode&0xFFF, in.NNN)
		assert.Equal(t, uint8(opcode&0xFF), in.KK)
		assert.Equal(t, uint8(opcode&0xF), in.N)
		assert.Equal(t, uint8((opcode>>8)&0xF), in.X)
		assert.Equal(t, uint8((opcode>>4)&0xF), in.Y)
	}
}

func TestDecodeExample(t *testing.T) {
	in := Decode(0xD12F)
	assert.Equal(t, uint8(0xD), in.Group())
	assert.Equal(t, uint16(0x12F), in.NNN)
	assert.Equal(t, uint8(0x2F), in.KK)
	assert.Equal(t, uint8(0xF), in.N)
	assert.Equal(t, uint8(1), in.X)
	assert.Equal(t, uint8(2), in.Y)
}

func TestMnemonic(t *testing.T) {
	tests := []struct {
		op   uint16
		want string
	}{
		{0x00E0, "CLS"},
		{0x00EE, "RET"},
		{0x0123, "DW $0123"},
		{0x1234, "JP $234"},
		{0x2ABC, "CALL $ABC"},
		{0x3A12, "SE VA, $12"},
		{0x4B34, "SNE VB, $34"},
		{0x5120, "SE V1, V2"},
		{0x5121, "DW $5121"},
		{0x6C0F, "LD VC, $0F"},
		{0x7D01, "ADD VD, $01"},
		{0x8120, "LD V1, V2"},
		{0x8124, "ADD V1, V2"},
		{0x8125, "SUB V1, V2"},
		{0x8126, "SHR V1"},
		{0x8127, "SUBN V1, V2"},
		{0x812E, "SHL V1"},
		{0x8128, "DW $8128"},
		{0x9340, "SNE V3, V4"},
		{0xA2F0, "LD I, $2F0"},
		{0xB300, "JP V0, $300"},
		{0xC5FF, "RND V5, $FF"},
		{0xD015, "DRW V0, V1, $5"},
		{0xE19E, "SKP V1"},
		{0xE2A1, "SKNP V2"},
		{0xF307, "LD V3, DT"},
		{0xF40A, "LD V4, K"},
		{0xF515, "LD DT, V5"},
		{0xF618, "LD ST, V6"},
		{0xF71E, "ADD I, V7"},
		{0xF829, "LD F, V8"},
		{0xF933, "LD B, V9"},
		{0xFA55, "LD [I], VA"},
		{0xFB65, "LD VB, [I]"},
		{0xFFFF, "DW $FFFF"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Decode(tt.op).Mnemonic())
	}
}

func TestDisassemble(t *testing.T) {
	lines := Disassemble([]byte{0x60, 0x05, 0x00, 0xE0, 0x12}, 0x200)

	assert.Equal(t, 3, len(lines))
	assert.Equal(t, uint16(0x200), lines[0].Address)
	assert.Equal(t, "LD V0, $05", lines[0].Text)
	assert.Equal(t, uint16(0x202), lines[1].Address)
	assert.Equal(t, "CLS", lines[1].Text)
	assert.Equal(t, uint16(0x204), lines[2].Address)
	assert.Equal(t, "DB $12", lines[2].Text)
	assert.Equal(t, 1, len(lines[2].Bytes))
}
