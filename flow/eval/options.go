package eval

import (
	"io"
	"log/slog"
	"math/rand/v2"
)

type config struct {
	logger *slog.Logger
	rng    *rand.Rand
}

// Option configures an Evaluator.
type Option func(*config)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithRand sets the random source used by Random triggers and the
// RandomInRange mapping law.
func WithRand(rng *rand.Rand) Option {
	return func(cfg *config) {
		if rng != nil {
			cfg.rng = rng
		}
	}
}

func applyOptions(opts ...Option) config {
	cfg := config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec
	}

	return cfg
}
