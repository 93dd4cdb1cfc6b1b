// Package audio plays the roll sound through the system speaker.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rlindsey28/dice-roller/assets"
	"github.com/rlindsey28/dice-roller/clock"
	"github.com/rlindsey28/dice-roller/logger"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"
)

// ErrPlayback indicates the sound could not be decoded or played.
var ErrPlayback = errors.New("playback failed")

// Speaker is the output device sounds are sent to.
type Speaker interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
}

type systemSpeaker struct{}

func (systemSpeaker) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (systemSpeaker) Play(s ...beep.Streamer) {
	speaker.Play(s...)
}

// Player plays the sound for a face and then pauses for Pause, letting the
// sound be heard before the next roll. The speaker is initialized once, at
// the sample rate of the first sound played; later sounds are resampled.
type Player struct {
	Resolver assets.Resolver
	Pause    time.Duration

	speaker    Speaker
	once       sync.Once
	initErr    error
	sampleRate beep.SampleRate
}

func NewPlayer(resolver assets.Resolver, pause time.Duration) *Player {
	return &Player{
		Resolver: resolver,
		Pause:    pause,
		speaker:  systemSpeaker{},
	}
}

func (p *Player) Play(ctx context.Context, face int) error {
	log := logger.FromCtx(ctx)
	path := p.Resolver.SoundPath(face)
	if err := assets.Check(path); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrPlayback, path, err)
	}
	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: decode %s: %w", ErrPlayback, path, err)
	}

	if err := p.initSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		return fmt.Errorf("%w: init speaker: %w", ErrPlayback, err)
	}

	var out beep.Streamer = streamer
	if format.SampleRate != p.sampleRate {
		out = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}
	p.speaker.Play(beep.Seq(out, beep.Callback(func() {
		streamer.Close()
	})))
	log.Debug("playing sound", zap.String("path", path), zap.Int("face", face))

	clock.Sleep(ctx, p.Pause)
	return nil
}

func (p *Player) initSpeaker(rate beep.SampleRate) error {
	p.once.Do(func() {
		if p.speaker == nil {
			p.speaker = systemSpeaker{}
		}
		p.sampleRate = rate
		p.initErr = p.speaker.Init(rate, rate.N(time.Second/10))
	})
	return p.initErr
}
