package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Sampling strategies determine which traces are recorded and exported.
const (
	// SamplerAlways samples all traces
	SamplerAlways = "always"

	// SamplerNever samples no traces
	SamplerNever = "never"

	// SamplerRatio samples a percentage of traces
	SamplerRatio = "ratio"
)

// createSampler creates a sampler based on the strategy and ratio.
//
// All samplers are wrapped in ParentBased(), which respects the sampling
// decision carried by an inbound traceparent header:
//   - If parent span is sampled → child is sampled
//   - If parent span is not sampled → child is not sampled
//   - If no parent span → use configured sampler
func createSampler(strategy string, ratio float64) (sdktrace.Sampler, error) {
	var baseSampler sdktrace.Sampler

	switch strategy {
	case SamplerAlways:
		baseSampler = sdktrace.AlwaysSample()

	case SamplerNever:
		baseSampler = sdktrace.NeverSample()

	case SamplerRatio, "":
		if ratio < 0.0 || ratio > 1.0 {
			return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
		}
		// TraceIDRatioBased keeps decisions consistent across services
		baseSampler = sdktrace.TraceIDRatioBased(ratio)

	default:
		return nil, fmt.Errorf("unknown sampler strategy: %s (valid: always, never, ratio)", strategy)
	}

	return sdktrace.ParentBased(baseSampler), nil
}
