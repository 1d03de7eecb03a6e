package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/beanboi7/chyp8/emu/audio"
	"github.com/beanboi7/chyp8/emu/config"
	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/beanboi7/chyp8/emu/machine"
	"github.com/beanboi7/chyp8/emu/screen"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var startCmd = &cobra.Command{
	Use:          "start `path/ROM`",
	Short:        "load and start the Emulator",
	Args:         cobra.ExactArgs(1),
	RunE:         Start,
	SilenceUsage: true,
}

// chyp8 start 'path/to/ROM' -r 60 --ips 700
func Start(cmd *cobra.Command, args []string) error {
	opts, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	romPath := args[0]

	emu, err := cpu.NewEMU(romPath, emuOptions(opts, logger))
	if err != nil {
		return fmt.Errorf("error starting the emulator: %w", err)
	}
	logger.Info("ROM loaded", log.String("file", romPath))

	win, err := screen.NewWindow(screen.Config{
		Title:      "Chyp8",
		Scale:      opts.Scale,
		Foreground: opts.Foreground,
		Background: opts.Background,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	beeper, err := audio.New(audio.Config{BeepFile: opts.BeepFile, Muted: opts.Mute})
	if err != nil {
		return err
	}
	defer beeper.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := machine.New(emu, machine.Options{
		RefreshRate:           opts.RefreshRate,
		InstructionsPerSecond: opts.InstructionsPerSecond,
	}, logger, win, win, beeper)

	if err := m.Run(ctx); err != nil {
		return err
	}
	logger.Info("Emulation stopped", log.Int("frames", int(m.Frames())))
	return nil
}

func emuOptions(opts config.Options, logger *log.Logger) cpu.Options {
	policy := cpu.PolicyContinue
	if opts.HaltOnError {
		policy = cpu.PolicyHalt
	}
	return cpu.Options{
		Quirks: cpu.Quirks{ShiftUsesVy: opts.ShiftUsesVy},
		Policy: policy,
		Logger: logger,
		Seed:   opts.Seed,
	}
}

// bindFlags binds the named flags to their viper keys.
func bindFlags(lookup func(string) *pflag.Flag, keys ...string) {
	for _, key := range keys {
		cobra.CheckErr(viper.BindPFlag(key, lookup(key)))
	}
}

func init() {
	flags := startCmd.Flags()
	flags.IntP(config.KeyRefresh, "r", 60, "sets the refresh rate of the display and timers in Hz")
	flags.Int(config.KeyIPS, 700, "instructions executed per second")
	flags.IntP(config.KeyScale, "s", 10, "window pixels per Chip-8 pixel")
	flags.String(config.KeyForeground, "white", "colour of lit pixels")
	flags.String(config.KeyBackground, "black", "colour of unlit pixels")
	flags.Bool(config.KeyShiftVy, false, "8xy6/8xyE shift Vy into Vx")
	flags.Bool(config.KeyHaltOnError, false, "stop on stack or memory faults instead of skipping the instruction")
	flags.String(config.KeyBeepFile, "", "mp3 file to play as the buzzer")
	flags.Bool(config.KeyMute, false, "disable sound")
	flags.Int64(config.KeySeed, 0, "random seed, 0 uses the current time")

	bindFlags(flags.Lookup,
		config.KeyRefresh, config.KeyIPS, config.KeyScale,
		config.KeyForeground, config.KeyBackground,
		config.KeyShiftVy, config.KeyHaltOnError,
		config.KeyBeepFile, config.KeyMute, config.KeySeed)
}
