package cmd

import (
	"fmt"
	"os"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:          "disasm `path/ROM`",
	Short:        "print the ROM as Chip-8 assembly",
	Args:         cobra.ExactArgs(1),
	RunE:         Disasm,
	SilenceUsage: true,
}

func Disasm(cmd *cobra.Command, args []string) error {
	rom, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}
	if len(rom) > cpu.MaxRomSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", cpu.ErrROMTooLarge, len(rom), cpu.MaxRomSize)
	}

	out := cmd.OutOrStdout()
	for _, line := range cpu.Disassemble(rom, 0x200) {
		fmt.Fprintf(out, "%03X  %-4X  %s\n", line.Address, line.Bytes, line.Text)
	}
	return nil
}
