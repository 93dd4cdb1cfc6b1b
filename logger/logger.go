package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const appName = "dice-roller"

// DefaultLevel keeps the interactive prompt free of log noise.
const DefaultLevel = zap.ErrorLevel

type ctxKey struct{}

var once sync.Once

var logger *zap.Logger

// Init builds the process logger at the given level the first time it is
// called. Later calls return the same instance and ignore level.
func Init(level string) *zap.Logger {
	once.Do(func() {
		logger = New(level, os.Stderr)
	})

	return logger
}

// Get initializes a zap.Logger instance from LOG_LEVEL if it has not been
// initialized already and returns the same instance for subsequent calls.
func Get() *zap.Logger {
	return Init(os.Getenv("LOG_LEVEL"))
}

// New builds a console logger writing to w. An empty or invalid level falls
// back to DefaultLevel.
func New(level string, w io.Writer) *zap.Logger {
	serviceLevel := DefaultLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			log.Println(
				fmt.Errorf("invalid log level, defaulting to %s: %w", DefaultLevel, err),
			)
			parsed = DefaultLevel
		}
		serviceLevel = parsed
	}

	atomicLevel := zap.NewAtomicLevelAt(serviceLevel)
	developmentCfg := zap.NewDevelopmentEncoderConfig()
	developmentCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(developmentCfg)

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(w), atomicLevel)

	return zap.New(core).With(zap.String("app", appName))
}

// FromCtx returns the Logger associated with the ctx. If no logger
// is associated, the default logger is returned, unless it is nil
// in which case a disabled logger is returned.
func FromCtx(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	} else if l := logger; l != nil {
		return l
	}

	return zap.NewNop()
}

// WithCtx returns a copy of ctx with the Logger attached.
func WithCtx(ctx context.Context, l *zap.Logger) context.Context {
	if lp, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		if lp == l {
			// Do not store same logger.
			return ctx
		}
	}

	return context.WithValue(ctx, ctxKey{}, l)
}
