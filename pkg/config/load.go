package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "RESTQL_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The document is checked against the configuration schema, decoded
// strictly (unknown keys are rejected), completed with defaults and then
// validated. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration file %q: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention RESTQL_SECTION_FIELD (e.g., RESTQL_COMMON_LISTEN) and always
// take precedence over the file.
//
// The loading sequence is:
// 1. Check the YAML document against the schema
// 2. Decode it strictly on top of the defaults
// 3. Apply remaining default values
// 4. Apply environment variable overrides
// 5. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration file %q: %w", path, err)
	}

	if errs := applyEnvOverrides(cfg, os.LookupEnv); len(errs) > 0 {
		return nil, ValidationError{Errors: errs}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a validated configuration from raw YAML.
func Parse(data []byte) (*Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte) (*Config, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	cfg := NewDefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("configuration is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Malformed values are reported rather than ignored.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) []FieldError {
	var errs []FieldError
	c := &cfg.Common

	str := func(name string, dst *string) {
		if val, ok := lookup(EnvPrefix + name); ok && val != "" {
			*dst = val
		}
	}
	boolean := func(name string, dst *bool) {
		val, ok := lookup(EnvPrefix + name)
		if !ok || val == "" {
			return
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			errs = append(errs, FieldError{Field: EnvPrefix + name, Message: fmt.Sprintf("invalid boolean %q", val)})
			return
		}
		*dst = b
	}
	duration := func(name string, dst *Duration) {
		val, ok := lookup(EnvPrefix + name)
		if !ok || val == "" {
			return
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			errs = append(errs, FieldError{Field: EnvPrefix + name, Message: fmt.Sprintf("invalid duration %q", val)})
			return
		}
		*dst = Duration(d)
	}

	str("COMMON_LISTEN", &c.Listen)
	str("COMMON_PATH_PREFIX", &c.PathPrefix)
	str("COMMON_GRAPHQL_ENDPOINT", &c.GraphQLEndpoint)
	duration("COMMON_UPSTREAM_TIMEOUT", &c.UpstreamTimeout)

	str("LOGGING_LEVEL", &c.Logging.Level)
	str("LOGGING_FORMAT", &c.Logging.Format)

	boolean("METRICS_ENABLED", &c.Metrics.Enabled)

	boolean("TRACING_ENABLED", &c.Tracing.Enabled)
	str("TRACING_ENDPOINT", &c.Tracing.Endpoint)

	return errs
}
