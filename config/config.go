package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DisplayAuto     = "auto"
	DisplayTerminal = "terminal"
	DisplayASCII    = "ascii"
	DisplayNone     = "none"
)

type AppConfig struct {
	LogLevel string `env:"LOG_LEVEL, default=error"`
	// Seed makes rolls reproducible when non-zero.
	Seed      uint64          `env:"DICE_SEED"`
	Assets    AssetsConfig    `env:", prefix=ASSETS_"`
	Sound     SoundConfig     `env:", prefix=SOUND_"`
	Display   DisplayConfig   `env:", prefix=DISPLAY_"`
	Telemetry TelemetryConfig `env:", prefix=OTEL_"`
}

type AssetsConfig struct {
	Dir          string `env:"DIR, default=assets_diceroller_final"`
	SoundFile    string `env:"SOUND_FILE, default=roll.wav"`
	ImagePattern string `env:"IMAGE_PATTERN, default=dice{face}.png"`
}

type SoundConfig struct {
	Enabled bool          `env:"ENABLED, default=true"`
	Pause   time.Duration `env:"PAUSE, default=1s"`
}

type DisplayConfig struct {
	Mode     string        `env:"MODE, default=auto"`
	Duration time.Duration `env:"DURATION, default=2s"`
}

type TelemetryConfig struct {
	Enabled          bool   `env:"ENABLED, default=false"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE"`
	ServiceName      string `env:"SERVICE_NAME, default=dice-roller"`
	ExporterEndpoint string `env:"EXPORTER_OTLP_ENDPOINT"`
	Insecure         bool   `env:"EXPORTER_OTLP_INSECURE"`
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (AppConfig, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration through the given lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (AppConfig, error) {
	var conf AppConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &conf,
		Lookuper: lookuper,
	}); err != nil {
		return AppConfig{}, fmt.Errorf("failed to process config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return AppConfig{}, err
	}
	return conf, nil
}

func (c AppConfig) Validate() error {
	switch c.Display.Mode {
	case DisplayAuto, DisplayTerminal, DisplayASCII, DisplayNone:
	default:
		return fmt.Errorf("invalid display mode %q", c.Display.Mode)
	}
	if c.Sound.Pause < 0 {
		return fmt.Errorf("sound pause must not be negative, got %s", c.Sound.Pause)
	}
	if c.Display.Duration < 0 {
		return fmt.Errorf("display duration must not be negative, got %s", c.Display.Duration)
	}
	if c.Assets.Dir == "" {
		return fmt.Errorf("assets dir must not be empty")
	}
	return nil
}
