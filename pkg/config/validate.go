package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"
)

// Paths served by the gateway itself. Endpoints may not resolve to them.
const (
	HealthPath  = "/health"
	ReadyPath   = "/ready"
	VersionPath = "/version"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "common.listen").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateCommon(&cfg.Common)...)
	errs = append(errs, validateEndpoints(cfg)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// ReservedPaths returns the paths owned by the gateway's operational endpoints.
func ReservedPaths(c *CommonConfig) []string {
	paths := []string{HealthPath, ReadyPath, VersionPath}
	if c.Metrics.Enabled && c.Metrics.Path != "" {
		paths = append(paths, c.Metrics.Path)
	}
	return paths
}

func validateCommon(c *CommonConfig) []FieldError {
	var errs []FieldError

	if c.Listen == "" {
		errs = append(errs, FieldError{Field: "common.listen", Message: "listen address is required"})
	} else if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		errs = append(errs, FieldError{Field: "common.listen", Message: fmt.Sprintf("invalid listen address: %v", err)})
	}

	if c.GraphQLEndpoint == "" {
		errs = append(errs, FieldError{Field: "common.graphql_endpoint", Message: "graphql endpoint is required"})
	} else if u, err := url.Parse(c.GraphQLEndpoint); err != nil {
		errs = append(errs, FieldError{Field: "common.graphql_endpoint", Message: fmt.Sprintf("invalid URL: %v", err)})
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{Field: "common.graphql_endpoint", Message: "must be an absolute http or https URL"})
	}

	if c.PathPrefix != "" && !strings.HasPrefix(c.PathPrefix, "/") {
		errs = append(errs, FieldError{Field: "common.path_prefix", Message: "path prefix must start with /"})
	}

	durations := []struct {
		field string
		value Duration
	}{
		{"common.upstream_timeout", c.UpstreamTimeout},
		{"common.read_timeout", c.ReadTimeout},
		{"common.write_timeout", c.WriteTimeout},
		{"common.idle_timeout", c.IdleTimeout},
		{"common.shutdown_timeout", c.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			errs = append(errs, FieldError{Field: d.field, Message: "duration must not be negative"})
		}
	}

	if c.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{Field: "common.max_header_bytes", Message: "must be non-negative"})
	}
	if c.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{Field: "common.max_body_bytes", Message: "must be non-negative"})
	}
	if c.UpstreamMaxIdleConns < 0 {
		errs = append(errs, FieldError{Field: "common.upstream_max_idle_conns", Message: "must be non-negative"})
	}
	if c.UpstreamMaxIdleConnsPerHost < 0 {
		errs = append(errs, FieldError{Field: "common.upstream_max_idle_conns_per_host", Message: "must be non-negative"})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "common.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be TRACE, DEBUG, INFO, WARN or ERROR)", c.Logging.Level),
		})
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text", "pretty":
	default:
		errs = append(errs, FieldError{
			Field:   "common.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json, text or pretty)", c.Logging.Format),
		})
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "common.metrics.path", Message: "metrics path must start with /"})
	}

	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "common.tracing.endpoint", Message: "endpoint is required when tracing is enabled"})
		}
		switch c.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "common.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q (must be always, never or ratio)", c.Tracing.Sampler),
			})
		}
		if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{Field: "common.tracing.sample_ratio", Message: "sample ratio must be between 0.0 and 1.0"})
		}
	}

	return errs
}

func validateEndpoints(cfg *Config) []FieldError {
	var errs []FieldError

	reserved := ReservedPaths(&cfg.Common)
	seen := make(map[string]int, len(cfg.Endpoints))

	for i := range cfg.Endpoints {
		ep := &cfg.Endpoints[i]
		field := fmt.Sprintf("endpoints[%d]", i)

		if ep.Path == "" {
			errs = append(errs, FieldError{Field: field + ".path", Message: "path is required"})
		} else if !strings.HasPrefix(ep.Path, "/") {
			errs = append(errs, FieldError{Field: field + ".path", Message: "path must start with /"})
		}
		if ep.PersistedQueryID == "" {
			errs = append(errs, FieldError{Field: field + ".pq_id", Message: "persisted query id is required"})
		}
		if ep.Method != "" && !ep.Method.Valid() {
			errs = append(errs, FieldError{
				Field:   field + ".method",
				Message: fmt.Sprintf("unsupported method %q (must be GET, POST, PUT, PATCH or DELETE)", ep.Method),
			})
		}

		pathParams := PathParamNames(ep.Path)
		for j, name := range pathParams {
			if !validParamName(name) {
				errs = append(errs, FieldError{
					Field:   field + ".path",
					Message: fmt.Sprintf("invalid path parameter name %q", name),
				})
			}
			if slices.Contains(pathParams[:j], name) {
				errs = append(errs, FieldError{
					Field:   field + ".path",
					Message: fmt.Sprintf("path parameter %q appears more than once", name),
				})
			}
		}

		errs = append(errs, validateParams(field+".query_params", ep.QueryParams)...)
		errs = append(errs, validateParams(field+".path_arguments", ep.PathArguments)...)
		errs = append(errs, validateParams(field+".body_params", ep.BodyParams)...)

		for j, p := range ep.PathArguments {
			if p.From != "" && !slices.Contains(pathParams, p.From) {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("%s.path_arguments[%d].from", field, j),
					Message: fmt.Sprintf("path %q has no parameter named %q", ep.Path, p.From),
				})
			}
		}

		if ep.Path == "" {
			continue
		}
		full := JoinPath(cfg.Common.PathPrefix, ep.Path)
		if slices.Contains(reserved, NormalizePath(full)) {
			errs = append(errs, FieldError{
				Field:   field + ".path",
				Message: fmt.Sprintf("%s is reserved for the gateway's own endpoints", full),
			})
		}

		method := ep.Method
		if method == "" {
			method = DefaultMethod
		}
		key := RouteKey(method, full)
		if prev, dup := seen[key]; dup {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("duplicate route %s %s (already defined by endpoints[%d])", method, full, prev),
			})
			continue
		}
		seen[key] = i
	}

	return errs
}

func validateParams(field string, params []ParamConfig) []FieldError {
	var errs []FieldError
	seen := make(map[string]struct{}, len(params))

	for i, p := range params {
		f := fmt.Sprintf("%s[%d]", field, i)
		if p.From == "" {
			errs = append(errs, FieldError{Field: f + ".from", Message: "from is required"})
			continue
		}
		if _, dup := seen[p.From]; dup {
			errs = append(errs, FieldError{Field: f + ".from", Message: fmt.Sprintf("duplicate parameter %q", p.From)})
		}
		seen[p.From] = struct{}{}
		if p.Kind != "" && !p.Kind.Valid() {
			errs = append(errs, FieldError{
				Field:   f + ".kind",
				Message: fmt.Sprintf("unsupported kind %q (must be STRING, INT, FLOAT, BOOLEAN, OBJECT or ARRAY)", p.Kind),
			})
		}
	}

	return errs
}
