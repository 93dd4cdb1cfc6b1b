package health

import (
	"context"
	"errors"

	"github.com/rlindsey28/dice-roller/assets"
	"github.com/rlindsey28/dice-roller/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	StatusOK       = "OK"
	StatusDegraded = "DEGRADED"
)

type Response struct {
	Status  string
	Missing []string
}

const name = "healthcheck"

var (
	tracer = otel.Tracer(name)
)

// Needs names the collaborators that are wired for the session. Only their
// assets are checked.
type Needs struct {
	Sound  bool
	Images bool
}

// Check verifies every asset the needed collaborators read for faces 1
// through sides is present. Missing assets degrade the session but never
// stop it.
func Check(ctx context.Context, resolver assets.Resolver, sides int, needs Needs) Response {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	log := logger.FromCtx(ctx)

	var paths []string
	if needs.Sound {
		paths = append(paths, resolver.Sounds(sides)...)
	}
	if needs.Images {
		paths = append(paths, resolver.Images(sides)...)
	}

	resp := Response{Status: StatusOK}
	for _, path := range paths {
		err := assets.Check(path)
		if err == nil {
			continue
		}
		if !errors.Is(err, assets.ErrMissing) {
			log.Warn("failed to check asset", zap.String("path", path), zap.Error(err))
		}
		resp.Missing = append(resp.Missing, path)
	}
	if len(resp.Missing) > 0 {
		resp.Status = StatusDegraded
	}

	span.SetAttributes(
		attribute.Bool("health.sound", needs.Sound),
		attribute.Bool("health.images", needs.Images),
		attribute.String("health.status", resp.Status),
		attribute.Int("health.missing", len(resp.Missing)),
	)
	log.Debug("health check", zap.String("status", resp.Status), zap.Strings("missing", resp.Missing))
	return resp
}
