package audio

import "github.com/MrLongNight/MapFlow-sub000/internal/window"

// Config holds the analyzer settings.
type Config struct {
	SampleRate float64
	FFTSize    int
	// Overlap is the fraction of each FFT frame shared with the next one.
	Overlap float64
	// Smoothing is the one-pole coefficient applied to RMS, magnitudes and
	// band energies. Zero disables smoothing.
	Smoothing float64
	// Window is the analysis window applied to every FFT frame.
	Window window.Type
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the analyzer defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		FFTSize:    2048,
		Overlap:    0.5,
		Smoothing:  0.7,
		Window:     window.TypeHann,
	}
}

// WithSampleRate sets the input sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithFFTSize sets the FFT frame length. Non powers of two are ignored.
func WithFFTSize(size int) Option {
	return func(cfg *Config) {
		if size >= 64 && size&(size-1) == 0 {
			cfg.FFTSize = size
		}
	}
}

// WithOverlap sets the frame overlap in [0, 0.95].
func WithOverlap(overlap float64) Option {
	return func(cfg *Config) {
		if overlap >= 0 && overlap <= 0.95 {
			cfg.Overlap = overlap
		}
	}
}

// WithSmoothing sets the smoothing coefficient in [0, 1).
func WithSmoothing(smoothing float64) Option {
	return func(cfg *Config) {
		if smoothing >= 0 && smoothing < 1 {
			cfg.Smoothing = smoothing
		}
	}
}

// WithWindow sets the analysis window.
func WithWindow(t window.Type) Option {
	return func(cfg *Config) {
		if t >= window.TypeRectangular && t <= window.TypeFlatTop {
			cfg.Window = t
		}
	}
}

func applyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
