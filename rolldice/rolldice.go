// Package rolldice rolls six-sided dice one at a time, keeps the running
// total, and fans each roll out to sound and image collaborators whose
// failures never affect the outcome.
package rolldice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rlindsey28/dice-roller/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Sides is the number of faces on every die.
const Sides = 6

const name = "rolldice"

// initialCapacity bounds the up-front allocation for large dice counts.
const initialCapacity = 1024

// ErrInvalidDiceCount indicates a request for zero or fewer dice.
var ErrInvalidDiceCount = errors.New("number of dice must be greater than 0")

// ErrEffectPanic wraps a panic recovered from a collaborator.
var ErrEffectPanic = errors.New("side effect panicked")

type Request struct {
	DiceCount int
}

func (r Request) Validate() error {
	if r.DiceCount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDiceCount, r.DiceCount)
	}
	return nil
}

// Outcome holds the face values in the order they were rolled and their sum.
type Outcome struct {
	Faces []int
	Total int
}

// State is Done for an idle session and Collecting while dice are rolled.
type State int

const (
	StateDone State = iota
	StateCollecting
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "Collecting"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

type Effect string

const (
	EffectSound Effect = "sound"
	EffectImage Effect = "image"
)

// Failure describes a side effect that failed for one roll.
type Failure struct {
	Effect Effect
	Face   int
	Err    error
}

// SoundPlayer plays the sound for a face value.
type SoundPlayer interface {
	Play(ctx context.Context, face int) error
}

// ImagePresenter shows the image for a face value and dismisses it again
// before returning.
type ImagePresenter interface {
	Show(ctx context.Context, face int) error
}

// Notifier receives the user-visible events of a session.
type Notifier interface {
	Rolled(index, face, total int)
	Rejected(diceCount int, err error)
	EffectFailed(f Failure)
}

type nopNotifier struct{}

func (nopNotifier) Rolled(int, int, int) {}
func (nopNotifier) Rejected(int, error)  {}
func (nopNotifier) EffectFailed(Failure) {}

// Session rolls dice for one request at a time. Nil collaborators are
// skipped, a nil Rand uses NewSource and a nil Notifier discards events.
type Session struct {
	Rand     Source
	Sound    SoundPlayer
	Image    ImagePresenter
	Notifier Notifier
	Metrics  Metrics
	Tracer   trace.Tracer

	state State
}

// NewSession returns a Session with metrics registered on the global meter
// provider.
func NewSession(rng Source, sound SoundPlayer, image ImagePresenter, notifier Notifier) *Session {
	s := &Session{
		Rand:     rng,
		Sound:    sound,
		Image:    image,
		Notifier: notifier,
	}
	s.Metrics.InitMetrics()
	return s
}

// State reports whether the session is still rolling.
func (s *Session) State() State {
	return s.state
}

// Run rolls diceCount dice. A non-positive count is reported through the
// Notifier and yields an empty Outcome. Every die is rolled once started;
// collaborator failures are reported and the loop continues.
func (s *Session) Run(ctx context.Context, diceCount int) Outcome {
	ctx, span := s.tracer().Start(ctx, "rollSession",
		trace.WithAttributes(attribute.Int("dice.count", diceCount)))
	defer span.End()
	log := logger.FromCtx(ctx)
	s.Metrics.addSession(ctx)

	if err := (Request{DiceCount: diceCount}).Validate(); err != nil {
		log.Info("invalid input", zap.Int("dice_count", diceCount), zap.Error(err))
		span.SetStatus(otelcodes.Error, "invalid dice count")
		span.RecordError(err)
		s.state = StateDone
		s.notifier().Rejected(diceCount, err)
		return Outcome{Faces: []int{}}
	}

	s.state = StateCollecting
	rng := s.Rand
	if rng == nil {
		rng = NewSource()
		s.Rand = rng
	}

	outcome := Outcome{Faces: make([]int, 0, min(diceCount, initialCapacity))}
	for i := 1; i <= diceCount; i++ {
		face := s.roll(ctx, rng, i, &outcome)
		log.Debug("rolled",
			zap.Int("index", i),
			zap.Int("face", face),
			zap.Int("total", outcome.Total),
			zap.Time("timestamp", time.Now()))
	}
	s.state = StateDone

	span.SetAttributes(attribute.Int("dice.total", outcome.Total))
	span.SetStatus(otelcodes.Ok, "success")
	return outcome
}

// roll draws one face, records it in outcome and runs the side effects.
func (s *Session) roll(ctx context.Context, rng Source, index int, outcome *Outcome) int {
	ctx, span := s.tracer().Start(ctx, "roll", trace.WithAttributes(attribute.Int("dice.index", index)))
	defer span.End()

	face := rng.IntN(Sides) + 1
	outcome.Faces = append(outcome.Faces, face)
	outcome.Total += face
	span.SetAttributes(attribute.Int("dice.face", face), attribute.Int("dice.total", outcome.Total))
	s.Metrics.addRoll(ctx, face)

	s.notifier().Rolled(index, face, outcome.Total)

	if s.Sound != nil {
		s.present(ctx, EffectSound, face, s.Sound.Play)
	}
	if s.Image != nil {
		s.present(ctx, EffectImage, face, s.Image.Show)
	}
	return face
}

func (s *Session) present(ctx context.Context, effect Effect, face int, fn func(context.Context, int) error) {
	err := contain(ctx, face, fn)
	if err == nil {
		return
	}

	logger.FromCtx(ctx).Warn("side effect failed",
		zap.String("effect", string(effect)),
		zap.Int("face", face),
		zap.Error(err))
	trace.SpanFromContext(ctx).RecordError(err,
		trace.WithAttributes(attribute.String("dice.effect", string(effect))))
	s.Metrics.addFailure(ctx, effect)
	s.notifier().EffectFailed(Failure{Effect: effect, Face: face, Err: err})
}

// contain runs fn and converts a panic into an error.
func contain(ctx context.Context, face int, fn func(context.Context, int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrEffectPanic, r)
		}
	}()
	return fn(ctx, face)
}

func (s *Session) tracer() trace.Tracer {
	if s.Tracer == nil {
		return otel.Tracer(name)
	}
	return s.Tracer
}

func (s *Session) notifier() Notifier {
	if s.Notifier == nil {
		return nopNotifier{}
	}
	return s.Notifier
}
