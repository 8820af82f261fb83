package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaResource = "restql-config.schema.json"

var (
	compiledOnce   sync.Once
	compiledSchema *validator.Schema
	compileErr     error
)

// SchemaError reports structural problems found while checking a
// configuration document against the generated JSON Schema.
type SchemaError struct {
	Errors []FieldError
}

// Error returns every schema violation on its own line.
func (e SchemaError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration does not match schema: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration does not match schema (%d errors):\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Schema reflects the JSON Schema (draft 2020-12) of the configuration file
// from the Config type. Field names follow the yaml tags.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		FieldNameTag:   "yaml",
		Anonymous:      true,
		ExpandedStruct: true,
	}
	s := r.Reflect(&Config{})
	s.Title = "restql configuration"
	s.Description = "REST endpoints translated into GraphQL persisted query calls"
	return s
}

// ValidateDocument checks a raw YAML document against Schema. It returns a
// SchemaError listing every violation, or a plain error if the document is
// not well-formed YAML.
func ValidateDocument(data []byte) error {
	schema, err := compiled()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	// The validator expects encoding/json shaped values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert YAML document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("failed to convert YAML document: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		var verr *validator.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		var out []FieldError
		collectViolations(verr, &out)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
		return SchemaError{Errors: out}
	}
	return nil
}

func compiled() (*validator.Schema, error) {
	compiledOnce.Do(func() {
		data, err := json.Marshal(Schema())
		if err != nil {
			compileErr = fmt.Errorf("failed to marshal schema: %w", err)
			return
		}
		compiler := validator.NewCompiler()
		compiler.Draft = validator.Draft2020
		if err := compiler.AddResource(schemaResource, bytes.NewReader(data)); err != nil {
			compileErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile(schemaResource)
	})
	return compiledSchema, compileErr
}

// collectViolations flattens the cause tree into its leaves.
func collectViolations(err *validator.ValidationError, out *[]FieldError) {
	if len(err.Causes) == 0 {
		*out = append(*out, FieldError{
			Field:   pointerToField(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectViolations(cause, out)
	}
}

// pointerToField turns "/endpoints/0/path" into "endpoints[0].path".
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "(root)"
	}
	var sb strings.Builder
	for i, part := range strings.Split(ptr, "/") {
		if isIndex(part) {
			sb.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
