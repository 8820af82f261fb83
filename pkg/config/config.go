package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for restql.
// It describes the listener, the upstream GraphQL service and the REST
// endpoints that are translated into persisted query calls.
type Config struct {
	// Common contains process-wide settings: listener, path prefix,
	// upstream endpoint, timeouts and telemetry.
	Common CommonConfig `yaml:"common"`

	// Endpoints is the list of REST endpoints exposed by the gateway.
	// Each endpoint maps to exactly one persisted query.
	Endpoints []EndpointConfig `yaml:"endpoints"`
}

// CommonConfig contains settings shared by every endpoint.
type CommonConfig struct {
	// Listen is the address and port to bind.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	Listen string `yaml:"listen" jsonschema:"minLength=1,example=0.0.0.0:8080"`

	// PathPrefix is prepended to every endpoint path.
	// Default: "/api/v1"
	PathPrefix string `yaml:"path_prefix,omitempty" jsonschema:"default=/api/v1"`

	// GraphQLEndpoint is the absolute URL of the upstream GraphQL service.
	// Every gateway call is forwarded to it as a POST.
	GraphQLEndpoint string `yaml:"graphql_endpoint" jsonschema:"minLength=1,example=http://localhost:4000/graphql"`

	// UpstreamTimeout bounds a single upstream call. Zero means no timeout.
	// Default: 0
	UpstreamTimeout Duration `yaml:"upstream_timeout,omitempty"`

	// UpstreamMaxIdleConns is the size of the shared upstream connection pool.
	// Default: 100
	UpstreamMaxIdleConns int `yaml:"upstream_max_idle_conns,omitempty" jsonschema:"minimum=0"`

	// UpstreamMaxIdleConnsPerHost limits idle connections kept to the upstream host.
	// Default: 100
	UpstreamMaxIdleConnsPerHost int `yaml:"upstream_max_idle_conns_per_host,omitempty" jsonschema:"minimum=0"`

	// ReadTimeout is the maximum duration for reading an inbound request.
	// Default: 30s
	ReadTimeout Duration `yaml:"read_timeout,omitempty"`

	// WriteTimeout is the maximum duration before timing out response writes.
	// It must cover the upstream call. Zero means no timeout.
	// Default: 0
	WriteTimeout Duration `yaml:"write_timeout,omitempty"`

	// IdleTimeout is the keep-alive idle timeout for inbound connections.
	// Default: 120s
	IdleTimeout Duration `yaml:"idle_timeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout Duration `yaml:"shutdown_timeout,omitempty"`

	// MaxHeaderBytes limits inbound request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes,omitempty" jsonschema:"minimum=0"`

	// MaxBodyBytes limits the inbound request body consulted for body parameters.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes,omitempty" jsonschema:"minimum=0"`

	// Logging configures the process-wide logger.
	Logging LoggingConfig `yaml:"logging,omitempty"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// Tracing configures OpenTelemetry tracing.
	Tracing TracingConfig `yaml:"tracing,omitempty"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit. Case-insensitive.
	// Options: "TRACE", "DEBUG", "INFO", "WARN", "ERROR"
	// Default: "INFO"
	Level string `yaml:"level,omitempty" jsonschema:"enum=TRACE,enum=DEBUG,enum=INFO,enum=WARN,enum=ERROR,enum=trace,enum=debug,enum=info,enum=warn,enum=error,default=INFO"`

	// Format controls the log output format. Case-insensitive.
	// Options: "json", "text", "pretty"
	// Default: "json"
	Format string `yaml:"format,omitempty" jsonschema:"enum=json,enum=text,enum=pretty,enum=JSON,enum=TEXT,enum=PRETTY,default=json"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled,omitempty" jsonschema:"default=true"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path,omitempty" jsonschema:"default=/metrics"`

	// Namespace is the metric name prefix.
	// Default: "restql"
	Namespace string `yaml:"namespace,omitempty" jsonschema:"default=restql"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled,omitempty" jsonschema:"default=false"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler,omitempty" jsonschema:"enum=always,enum=never,enum=ratio,default=ratio"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio,omitempty" jsonschema:"minimum=0,maximum=1,default=1"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint,omitempty"`

	// ServiceName is the service name reported in traces.
	// Default: "restql"
	ServiceName string `yaml:"service_name,omitempty" jsonschema:"default=restql"`

	// Insecure disables TLS for the collector connection.
	// Default: true
	Insecure bool `yaml:"insecure,omitempty" jsonschema:"default=true"`
}

// EndpointConfig describes one REST endpoint and the persisted query it calls.
type EndpointConfig struct {
	// Path is the endpoint path below the prefix. Path parameters are written
	// as "{name}" or ":name" segments.
	Path string `yaml:"path" jsonschema:"minLength=1,pattern=^/,example=/users/{id}"`

	// Method is the inbound HTTP method the gateway listens for.
	// Default: "GET"
	Method HTTPMethod `yaml:"method,omitempty"`

	// PersistedQueryID is the persisted query hash sent upstream.
	PersistedQueryID string `yaml:"pq_id" jsonschema:"minLength=1"`

	// QueryParams are read from the URL query string.
	QueryParams []ParamConfig `yaml:"query_params,omitempty"`

	// PathArguments are read from the matched path segments.
	PathArguments []ParamConfig `yaml:"path_arguments,omitempty"`

	// BodyParams are read from the top-level keys of a JSON object body.
	BodyParams []ParamConfig `yaml:"body_params,omitempty"`
}

// ParamConfig maps one request parameter to one GraphQL variable.
type ParamConfig struct {
	// From is the parameter name in the request source.
	From string `yaml:"from" jsonschema:"minLength=1"`

	// To is the GraphQL variable name. Defaults to From.
	To string `yaml:"to,omitempty"`

	// Required fails the request with 400 when the parameter is absent.
	// Default: false
	Required bool `yaml:"required,omitempty" jsonschema:"default=false"`

	// Kind is the type the raw string value is coerced to.
	// Default: "STRING"
	Kind ParamKind `yaml:"kind,omitempty"`
}

// Variable returns the GraphQL variable name the parameter is written to.
func (p ParamConfig) Variable() string {
	if p.To == "" {
		return p.From
	}
	return p.To
}

// HTTPMethod is one of the inbound methods an endpoint may listen on.
type HTTPMethod string

// Supported inbound methods.
const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodPatch  HTTPMethod = "PATCH"
	MethodDelete HTTPMethod = "DELETE"
)

// Methods lists every supported method in declaration order.
var Methods = []HTTPMethod{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

// Valid reports whether m is a supported method.
func (m HTTPMethod) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// JSONSchema describes the method enumeration.
func (HTTPMethod) JSONSchema() *jsonschema.Schema {
	enum := make([]any, len(Methods))
	for i, m := range Methods {
		enum[i] = string(m)
	}
	return &jsonschema.Schema{
		Type:    "string",
		Enum:    enum,
		Default: string(MethodGet),
	}
}

// ParamKind is the coercion applied to a raw parameter value.
type ParamKind string

// Supported parameter kinds.
const (
	KindString  ParamKind = "STRING"
	KindInt     ParamKind = "INT"
	KindFloat   ParamKind = "FLOAT"
	KindBoolean ParamKind = "BOOLEAN"
	KindObject  ParamKind = "OBJECT"
	KindArray   ParamKind = "ARRAY"
)

// Kinds lists every supported kind in declaration order.
var Kinds = []ParamKind{KindString, KindInt, KindFloat, KindBoolean, KindObject, KindArray}

// Valid reports whether k is a supported kind.
func (k ParamKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// JSONSchema describes the kind enumeration.
func (ParamKind) JSONSchema() *jsonschema.Schema {
	enum := make([]any, len(Kinds))
	for i, k := range Kinds {
		enum[i] = string(k)
	}
	return &jsonschema.Schema{
		Type:    "string",
		Enum:    enum,
		Default: string(KindString),
	}
}

// Duration is a time.Duration written as a Go duration string ("30s", "1m30s").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// JSONSchema describes durations as strings.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{
			{Type: "string", Pattern: `^(0|([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+)$`},
			{Type: "integer", Enum: []any{0}},
		},
		Description: `Go duration string, e.g. "500ms", "30s", "1m30s"; 0 disables`,
	}
}
