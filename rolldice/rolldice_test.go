package rolldice

import (
	"context"
	"errors"
	"testing"

	"github.com/rlindsey28/dice-roller/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// scriptedSource returns the scripted faces in order.
type scriptedSource struct {
	faces []int
	next  int
}

func (s *scriptedSource) IntN(n int) int {
	face := s.faces[s.next%len(s.faces)]
	s.next++
	return face - 1
}

type rolledEvent struct {
	index, face, total int
}

type recordingNotifier struct {
	rolled   []rolledEvent
	rejected []error
	failures []Failure
}

func (n *recordingNotifier) Rolled(index, face, total int) {
	n.rolled = append(n.rolled, rolledEvent{index, face, total})
}

func (n *recordingNotifier) Rejected(_ int, err error) {
	n.rejected = append(n.rejected, err)
}

func (n *recordingNotifier) EffectFailed(f Failure) {
	n.failures = append(n.failures, f)
}

// fakeEffect records the faces it is called with and returns err.
type fakeEffect struct {
	faces []int
	err   error
	panic bool
}

func (f *fakeEffect) call(face int) error {
	f.faces = append(f.faces, face)
	if f.panic {
		panic("backend exploded")
	}
	return f.err
}

func (f *fakeEffect) Play(_ context.Context, face int) error { return f.call(face) }
func (f *fakeEffect) Show(_ context.Context, face int) error { return f.call(face) }

func sum(faces []int) int {
	total := 0
	for _, f := range faces {
		total += f
	}
	return total
}

func TestRunScriptedRolls(t *testing.T) {
	notifier := &recordingNotifier{}
	sound, image := &fakeEffect{}, &fakeEffect{}
	s := NewSession(&scriptedSource{faces: []int{2, 5, 1}}, sound, image, notifier)

	outcome := s.Run(context.Background(), 3)

	assert.Equal(t, []int{2, 5, 1}, outcome.Faces)
	assert.Equal(t, 8, outcome.Total)
	assert.Equal(t, []rolledEvent{{1, 2, 2}, {2, 5, 7}, {3, 1, 8}}, notifier.rolled)
	assert.Equal(t, []int{2, 5, 1}, sound.faces)
	assert.Equal(t, []int{2, 5, 1}, image.faces)
	assert.Empty(t, notifier.rejected)
	assert.Empty(t, notifier.failures)
	assert.Equal(t, StateDone, s.State())
}

func TestRunOutcomeInvariants(t *testing.T) {
	s := NewSession(NewSource(), nil, nil, nil)

	for _, count := range []int{1, 2, 7, 50, 1500} {
		outcome := s.Run(context.Background(), count)

		require.Len(t, outcome.Faces, count)
		for _, face := range outcome.Faces {
			assert.GreaterOrEqual(t, face, 1)
			assert.LessOrEqual(t, face, Sides)
		}
		assert.Equal(t, sum(outcome.Faces), outcome.Total)
	}
}

func TestRunRejectsNonPositiveCount(t *testing.T) {
	for _, count := range []int{0, -1, -100} {
		notifier := &recordingNotifier{}
		sound, image := &fakeEffect{}, &fakeEffect{}
		s := NewSession(&scriptedSource{faces: []int{3}}, sound, image, notifier)

		outcome := s.Run(context.Background(), count)

		assert.NotNil(t, outcome.Faces)
		assert.Empty(t, outcome.Faces)
		assert.Zero(t, outcome.Total)
		require.Len(t, notifier.rejected, 1)
		assert.ErrorIs(t, notifier.rejected[0], ErrInvalidDiceCount)
		assert.Empty(t, notifier.rolled)
		assert.Empty(t, sound.faces, "sound must not be invoked")
		assert.Empty(t, image.faces, "image must not be invoked")
		assert.Equal(t, StateDone, s.State())
	}
}

func TestRunIsolatesFailingCollaborators(t *testing.T) {
	notifier := &recordingNotifier{}
	sound := &fakeEffect{err: errors.New("no audio device")}
	image := &fakeEffect{panic: true}
	s := NewSession(&scriptedSource{faces: []int{6, 3, 4, 1}}, sound, image, notifier)

	outcome := s.Run(context.Background(), 4)

	assert.Equal(t, []int{6, 3, 4, 1}, outcome.Faces)
	assert.Equal(t, 14, outcome.Total)
	assert.Len(t, notifier.rolled, 4)
	require.Len(t, notifier.failures, 8)
	assert.Equal(t, Failure{Effect: EffectSound, Face: 6, Err: sound.err}, notifier.failures[0])
	assert.Equal(t, EffectImage, notifier.failures[1].Effect)
	assert.ErrorIs(t, notifier.failures[1].Err, ErrEffectPanic)
	assert.Equal(t, []int{6, 3, 4, 1}, image.faces, "image called once per roll despite panics")
}

func TestRunSingleRollWithFailingImage(t *testing.T) {
	notifier := &recordingNotifier{}
	image := &fakeEffect{err: errors.New("cannot open window")}
	s := NewSession(NewSource(), &fakeEffect{}, image, notifier)

	core, logs := observer.New(zap.WarnLevel)
	ctx := logger.WithCtx(context.Background(), zap.New(core))

	outcome := s.Run(ctx, 1)

	require.Len(t, outcome.Faces, 1)
	assert.Equal(t, outcome.Faces[0], outcome.Total)
	require.Len(t, notifier.failures, 1)
	assert.Equal(t, EffectImage, notifier.failures[0].Effect)
	assert.Equal(t, outcome.Faces[0], notifier.failures[0].Face)
	assert.Equal(t, 1, logs.FilterMessage("side effect failed").Len())
}

func TestRunDistribution(t *testing.T) {
	const rolls = 60000
	s := NewSession(NewSource(), nil, nil, nil)

	outcome := s.Run(context.Background(), rolls)

	counts := make(map[int]int)
	for _, face := range outcome.Faces {
		counts[face]++
	}
	expected := float64(rolls) / Sides
	for face := 1; face <= Sides; face++ {
		assert.InEpsilon(t, expected, float64(counts[face]), 0.05, "face %d appeared %d times", face, counts[face])
	}
}

func TestSeededSourceIsReproducible(t *testing.T) {
	first := NewSession(NewSeededSource(42), nil, nil, nil).Run(context.Background(), 20)
	second := NewSession(NewSeededSource(42), nil, nil, nil).Run(context.Background(), 20)

	assert.Equal(t, first, second)
}

func TestZeroValueSession(t *testing.T) {
	var s Session

	outcome := s.Run(context.Background(), 5)

	assert.Len(t, outcome.Faces, 5)
	assert.Equal(t, sum(outcome.Faces), outcome.Total)
}

func TestRunRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	s := &Session{
		Rand:  &scriptedSource{faces: []int{4, 4, 2}},
		Image: &fakeEffect{err: errors.New("broken")},
	}
	s.Metrics.InitMetricsWith(provider)

	ctx := context.Background()
	s.Run(ctx, 3)
	s.Run(ctx, 0)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	assert.Equal(t, int64(2), counterTotal(rm, "dice.sessions"))
	assert.Equal(t, int64(3), counterTotal(rm, "dice.rolls"))
	assert.Equal(t, int64(3), counterTotal(rm, "dice.effect.failures"))
}

func TestRunRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	s := &Session{
		Rand:   &scriptedSource{faces: []int{1, 6}},
		Sound:  &fakeEffect{err: errors.New("muted")},
		Tracer: provider.Tracer("test"),
	}

	s.Run(context.Background(), 2)

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "roll", spans[0].Name())
	assert.Equal(t, "roll", spans[1].Name())
	assert.Equal(t, "rollSession", spans[2].Name())
	assert.Len(t, spans[0].Events(), 1, "sound failure recorded on the roll span")
}

func counterTotal(rm metricdata.ResourceMetrics, name string) int64 {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				return 0
			}
			var total int64
			for _, dp := range data.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Collecting", StateCollecting.String())
	assert.Equal(t, "Done", StateDone.String())
	assert.Equal(t, "Unknown", State(9).String())
}
