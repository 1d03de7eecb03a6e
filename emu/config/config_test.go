package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	opts, err := Load(newViper())
	assert.NoError(t, err)

	assert.Equal(t, 60, opts.RefreshRate)
	assert.Equal(t, 700, opts.InstructionsPerSecond)
	assert.Equal(t, 10, opts.Scale)
	assert.Equal(t, "white", opts.Foreground)
	assert.Equal(t, "black", opts.Background)
	assert.False(t, opts.ShiftUsesVy)
	assert.False(t, opts.HaltOnError)
	assert.Equal(t, int64(0), opts.Seed)
}

func TestLoadOverrides(t *testing.T) {
	v := newViper()
	v.Set(KeyRefresh, 30)
	v.Set(KeyShiftVy, true)
	v.Set(KeyForeground, "LimeGreen")
	v.Set(KeySeed, 99)

	opts, err := Load(v)
	assert.NoError(t, err)
	assert.Equal(t, 30, opts.RefreshRate)
	assert.True(t, opts.ShiftUsesVy)
	assert.Equal(t, "limegreen", opts.Foreground)
	assert.Equal(t, int64(99), opts.Seed)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chyp8.yaml")
	data := []byte("ips: 1000\nhalt-on-error: true\nbackground: navy\n")
	assert.NoError(t, os.WriteFile(path, data, 0o644))

	v := newViper()
	v.SetConfigFile(path)
	assert.NoError(t, v.ReadInConfig())

	opts, err := Load(v)
	assert.NoError(t, err)
	assert.Equal(t, 1000, opts.InstructionsPerSecond)
	assert.True(t, opts.HaltOnError)
	assert.Equal(t, "navy", opts.Background)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value interface{}
	}{
		{KeyRefresh, 0},
		{KeyIPS, -5},
		{KeyScale, 0},
		{KeyForeground, "notacolour"},
		{KeyBackground, ""},
	}
	for _, tt := range tests {
		v := newViper()
		v.Set(tt.key, tt.value)
		_, err := Load(v)
		assert.True(t, errors.Is(err, errInvalid), tt.key)
	}
}

func TestCreateLogger(t *testing.T) {
	assert.True(t, CreateLogger(false, false) != nil)
	assert.True(t, CreateLogger(true, false) != nil)
	assert.True(t, CreateLogger(false, true) != nil)
}
