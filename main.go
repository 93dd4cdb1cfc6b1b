package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/rlindsey28/dice-roller/assets"
	"github.com/rlindsey28/dice-roller/audio"
	"github.com/rlindsey28/dice-roller/config"
	"github.com/rlindsey28/dice-roller/console"
	"github.com/rlindsey28/dice-roller/display"
	"github.com/rlindsey28/dice-roller/health"
	"github.com/rlindsey28/dice-roller/logger"
	"github.com/rlindsey28/dice-roller/rolldice"
	"github.com/rlindsey28/dice-roller/telemetry"

	"go.uber.org/zap"
)

func main() {
	// Handle SIGINT gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Load config
	conf, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to process config: %v", err)
	}
	zaplog := logger.Init(conf.LogLevel)
	defer zaplog.Sync()
	ctx = logger.WithCtx(ctx, zaplog)

	// Setup otel
	otelShutdown, err := telemetry.SetupOtelSDK(ctx, conf.Telemetry, os.Stderr)
	if err != nil {
		zaplog.Error("failed to setup otel", zap.Error(err))
	}
	// Handle otel shutdown
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			zaplog.Error("failed to shutdown otel", zap.Error(err))
		}
	}()

	run(ctx, conf, os.Stdin, os.Stdout)
}

// run plays one interactive session: banner, prompt, rolls, total, credits.
func run(ctx context.Context, conf config.AppConfig, in io.Reader, out io.Writer) rolldice.Outcome {
	log := logger.FromCtx(ctx)
	resolver := assets.Resolver{
		Dir:          conf.Assets.Dir,
		SoundFile:    conf.Assets.SoundFile,
		ImagePattern: conf.Assets.ImagePattern,
	}

	var sound rolldice.SoundPlayer
	if conf.Sound.Enabled {
		sound = audio.NewPlayer(resolver, conf.Sound.Pause)
	}
	image := display.New(conf.Display, resolver, out)

	needs := health.Needs{Sound: sound != nil, Images: display.UsesImages(image)}
	report := health.Check(ctx, resolver, rolldice.Sides, needs)
	if report.Status != health.StatusOK {
		log.Warn("assets missing", zap.String("dir", resolver.Dir), zap.Strings("missing", report.Missing))
	}

	printer := console.NewPrinter(out, resolver)
	printer.Banner()
	printer.Prompt()

	count, err := readDiceCount(ctx, in)
	if err != nil {
		log.Debug("failed to read dice count", zap.Error(err))
		printer.InputError(err)
		printer.Total(0)
		printer.Credits()
		return rolldice.Outcome{Faces: []int{}}
	}

	source := rolldice.NewSource()
	if conf.Seed != 0 {
		source = rolldice.NewSeededSource(conf.Seed)
	}

	session := rolldice.NewSession(source, sound, image, printer)
	outcome := session.Run(ctx, count)

	printer.Total(outcome.Total)
	printer.Credits()
	return outcome
}

// readDiceCount reads the dice count from in, giving up when ctx is done.
func readDiceCount(ctx context.Context, in io.Reader) (int, error) {
	type result struct {
		count int
		err   error
	}
	read := make(chan result, 1)
	go func() {
		count, err := console.ReadDiceCount(in)
		read <- result{count, err}
	}()

	select {
	case r := <-read:
		return r.count, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
