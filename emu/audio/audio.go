// Package audio plays the buzzer tone while the sound timer is running.
package audio

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)
	DefaultToneHz     = 440
	volume            = 0.2
)

// Config selects the tone source.
type Config struct {
	SampleRate beep.SampleRate
	ToneHz     float64
	// BeepFile is an optional mp3 that replaces the square wave.
	BeepFile string
	Muted    bool
}

// Beeper owns the speaker stream. SetActive pauses and resumes it.
type Beeper struct {
	ctrl   *beep.Ctrl
	closer io.Closer
}

// New initialises the speaker and queues the paused tone. A muted config
// returns a Beeper that does nothing.
func New(cfg Config) (*Beeper, error) {
	if cfg.Muted {
		return &Beeper{}, nil
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.ToneHz == 0 {
		cfg.ToneHz = DefaultToneHz
	}

	b := &Beeper{}
	var streamer beep.Streamer
	if cfg.BeepFile != "" {
		s, err := b.openMP3(cfg.BeepFile, cfg.SampleRate)
		if err != nil {
			return nil, err
		}
		streamer = s
	} else {
		streamer = Tone(cfg.SampleRate, cfg.ToneHz)
	}

	if err := speaker.Init(cfg.SampleRate, cfg.SampleRate.N(time.Second/30)); err != nil {
		b.Close()
		return nil, fmt.Errorf("initialising speaker: %w", err)
	}

	b.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	speaker.Play(b.ctrl)
	return b, nil
}

func (b *Beeper) openMP3(path string, rate beep.SampleRate) (beep.Streamer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening beep file: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding beep file '%s': %w", path, err)
	}
	b.closer = streamer

	looped := beep.Loop(-1, streamer)
	if format.SampleRate == rate {
		return looped, nil
	}
	return beep.Resample(4, format.SampleRate, rate, looped), nil
}

// SetActive starts or stops the tone.
func (b *Beeper) SetActive(active bool) {
	if b.ctrl == nil {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = !active
	speaker.Unlock()
}

// Close stops the tone and releases the decoder, if any.
func (b *Beeper) Close() {
	b.SetActive(false)
	if b.closer != nil {
		_ = b.closer.Close()
		b.closer = nil
	}
}

// Tone returns an endless square wave at hz.
func Tone(rate beep.SampleRate, hz float64) beep.Streamer {
	period := float64(rate) / hz
	pos := 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			v := volume
			if pos >= period/2 {
				v = -volume
			}
			samples[i][0] = v
			samples[i][1] = v
			pos++
			if pos >= period {
				pos -= period
			}
		}
		return len(samples), true
	})
}
