package testgen

import "go.uber.org/zap"

// GeneratorOption is a functional option for configuring a Generator.
type GeneratorOption func(*generatorConfig)

type generatorConfig struct {
	logger       *zap.Logger
	temperatures []float64
	refiners     []Refiner
	trace        *Trace
}

func defaultGeneratorConfig() *generatorConfig {
	return &generatorConfig{
		temperatures: append([]float64(nil), DefaultTemperatures...),
		refiners:     DefaultRefiners(),
	}
}

// WithLogger sets the logger a Generator uses for per-step diagnostics.
// Default: zap.NewNop().
func WithLogger(logger *zap.Logger) GeneratorOption {
	return func(c *generatorConfig) {
		c.logger = logger
	}
}

// WithTemperatures sets the ordered list of temperatures a Generator sweeps
// low-to-high, stopping early once a pass is recorded. Default: [0.2].
func WithTemperatures(temperatures ...float64) GeneratorOption {
	return func(c *generatorConfig) {
		if len(temperatures) > 0 {
			c.temperatures = temperatures
		}
	}
}

// WithRefiners overrides the refiner set and its order. Default:
// DefaultRefiners(). Pass no arguments to disable refinement entirely.
// Intended for tests that need to observe a subset of refinement behavior in
// isolation.
func WithRefiners(refiners ...Refiner) GeneratorOption {
	return func(c *generatorConfig) {
		c.refiners = refiners
	}
}

// WithTrace attaches a tracing scope the Generator reports step events to.
// Default: nil (tracing disabled).
func WithTrace(trace *Trace) GeneratorOption {
	return func(c *generatorConfig) {
		c.trace = trace
	}
}
