// Package config handles emulator configuration and logger setup.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/viper"
	"golang.org/x/image/colornames"
)

// Configuration keys, shared by flags, environment and config file.
const (
	KeyRefresh     = "refresh"
	KeyIPS         = "ips"
	KeyScale       = "scale"
	KeyForeground  = "foreground"
	KeyBackground  = "background"
	KeyShiftVy     = "shift-vy"
	KeyHaltOnError = "halt-on-error"
	KeyBeepFile    = "beep-file"
	KeyMute        = "mute"
	KeySeed        = "seed"
	KeyDebug       = "debug"
	KeyQuiet       = "quiet"
)

var errInvalid = errors.New("invalid configuration")

// Options contains all emulator settings.
type Options struct {
	RefreshRate           int // frames and timer ticks per second
	InstructionsPerSecond int
	Scale                 int
	Foreground            string
	Background            string
	ShiftUsesVy           bool
	HaltOnError           bool
	BeepFile              string
	Mute                  bool
	Seed                  int64
	Debug                 bool
	Quiet                 bool
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRefresh, 60)
	v.SetDefault(KeyIPS, 700)
	v.SetDefault(KeyScale, 10)
	v.SetDefault(KeyForeground, "white")
	v.SetDefault(KeyBackground, "black")
	v.SetDefault(KeyShiftVy, false)
	v.SetDefault(KeyHaltOnError, false)
	v.SetDefault(KeyBeepFile, "")
	v.SetDefault(KeyMute, false)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyQuiet, false)
}

// Load reads the options from v and validates them.
func Load(v *viper.Viper) (Options, error) {
	opts := Options{
		RefreshRate:           v.GetInt(KeyRefresh),
		InstructionsPerSecond: v.GetInt(KeyIPS),
		Scale:                 v.GetInt(KeyScale),
		Foreground:            strings.ToLower(v.GetString(KeyForeground)),
		Background:            strings.ToLower(v.GetString(KeyBackground)),
		ShiftUsesVy:           v.GetBool(KeyShiftVy),
		HaltOnError:           v.GetBool(KeyHaltOnError),
		BeepFile:              v.GetString(KeyBeepFile),
		Mute:                  v.GetBool(KeyMute),
		Seed:                  v.GetInt64(KeySeed),
		Debug:                 v.GetBool(KeyDebug),
		Quiet:                 v.GetBool(KeyQuiet),
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks value ranges and colour names.
func (o Options) Validate() error {
	switch {
	case o.RefreshRate <= 0:
		return fmt.Errorf("%w: refresh rate must be positive, got %d", errInvalid, o.RefreshRate)
	case o.InstructionsPerSecond <= 0:
		return fmt.Errorf("%w: instructions per second must be positive, got %d", errInvalid, o.InstructionsPerSecond)
	case o.Scale <= 0:
		return fmt.Errorf("%w: scale must be positive, got %d", errInvalid, o.Scale)
	}

	for _, name := range []string{o.Foreground, o.Background} {
		if _, ok := colornames.Map[name]; !ok {
			return fmt.Errorf("%w: unknown colour '%s'", errInvalid, name)
		}
	}
	return nil
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
