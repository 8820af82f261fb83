package config

import "time"

// Default values for configuration fields.
const (
	// Common defaults
	DefaultPathPrefix                  = "/api/v1"
	DefaultReadTimeout                 = 30 * time.Second
	DefaultIdleTimeout                 = 120 * time.Second
	DefaultShutdownTimeout             = 30 * time.Second
	DefaultMaxHeaderBytes              = 1048576  // 1MB
	DefaultMaxBodyBytes                = 10485760 // 10MB
	DefaultUpstreamMaxIdleConns        = 100
	DefaultUpstreamMaxIdleConnsPerHost = 100

	// Telemetry defaults
	DefaultLoggingLevel   = "INFO"
	DefaultLoggingFormat  = "json"
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
	DefaultMetricsNS      = "restql"
	DefaultTracingSampler = "ratio"
	DefaultTracingRatio   = 1.0
	DefaultServiceName    = "restql"
	DefaultTracingInsec   = true

	// Endpoint defaults
	DefaultMethod = MethodGet
	DefaultKind   = KindString
)

// NewDefaultConfig returns a configuration holding every default that cannot
// be told apart from its zero value after decoding (booleans, the path prefix).
// The YAML document is decoded on top of it.
func NewDefaultConfig() *Config {
	return &Config{
		Common: CommonConfig{
			PathPrefix: DefaultPathPrefix,
			Metrics: MetricsConfig{
				Enabled: DefaultMetricsEnabled,
			},
			Tracing: TracingConfig{
				Insecure:    DefaultTracingInsec,
				SampleRatio: DefaultTracingRatio,
			},
		},
	}
}

// ApplyDefaults fills zero-valued fields with their defaults. It is applied
// after decoding, so explicit non-zero values always win.
func ApplyDefaults(cfg *Config) {
	c := &cfg.Common

	if c.ReadTimeout == 0 {
		c.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = Duration(DefaultIdleTimeout)
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if c.MaxHeaderBytes == 0 {
		c.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.UpstreamMaxIdleConns == 0 {
		c.UpstreamMaxIdleConns = DefaultUpstreamMaxIdleConns
	}
	if c.UpstreamMaxIdleConnsPerHost == 0 {
		c.UpstreamMaxIdleConnsPerHost = DefaultUpstreamMaxIdleConnsPerHost
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLoggingLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLoggingFormat
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNS
	}

	if c.Tracing.Sampler == "" {
		c.Tracing.Sampler = DefaultTracingSampler
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = DefaultServiceName
	}

	for i := range cfg.Endpoints {
		applyEndpointDefaults(&cfg.Endpoints[i])
	}
}

func applyEndpointDefaults(ep *EndpointConfig) {
	if ep.Method == "" {
		ep.Method = DefaultMethod
	}
	for _, params := range [][]ParamConfig{ep.QueryParams, ep.PathArguments, ep.BodyParams} {
		for i := range params {
			if params[i].Kind == "" {
				params[i].Kind = DefaultKind
			}
			if params[i].To == "" {
				params[i].To = params[i].From
			}
		}
	}
}
