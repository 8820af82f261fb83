package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// GraphQLError is one entry of the envelope's errors list.
type GraphQLError struct {
	Message    string          `json:"message"`
	Locations  json.RawMessage `json:"locations,omitempty"`
	Path       json.RawMessage `json:"path,omitempty"`
	Extensions json.RawMessage `json:"extensions,omitempty"`
}

// UnmarshalJSON requires a string message.
func (e *GraphQLError) UnmarshalJSON(data []byte) error {
	var wire struct {
		Message    *string         `json:"message"`
		Locations  json.RawMessage `json:"locations"`
		Path       json.RawMessage `json:"path"`
		Extensions json.RawMessage `json:"extensions"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Message == nil {
		return errors.New(`missing field "message"`)
	}
	*e = GraphQLError{
		Message:    *wire.Message,
		Locations:  wire.Locations,
		Path:       wire.Path,
		Extensions: wire.Extensions,
	}
	return nil
}

// Envelope is a decoded GraphQL response. Data and Extensions keep the raw
// upstream JSON: nil means the field was absent, while a literal null is
// kept as "null". Errors is nil when absent or null.
type Envelope struct {
	Data       json.RawMessage
	Errors     []GraphQLError
	Extensions json.RawMessage
}

// DecodeEnvelope parses an upstream body. Fields other than data, errors and
// extensions are ignored.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("response envelope is not a JSON object")
	}

	env := &Envelope{
		Data:       fields["data"],
		Extensions: fields["extensions"],
	}
	if raw, ok := fields["errors"]; ok {
		if err := json.Unmarshal(raw, &env.Errors); err != nil {
			return nil, fmt.Errorf("invalid errors field: %w", err)
		}
	}
	return env, nil
}

// HasErrors reports whether the errors list is present and non-empty.
func (e *Envelope) HasErrors() bool {
	return len(e.Errors) > 0
}

// HasData reports whether data is present and not null.
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && !bytes.Equal(bytes.TrimSpace(e.Data), []byte("null"))
}

// Encode serializes the envelope as data, errors, extensions, omitting the
// fields that were absent upstream.
func (e *Envelope) Encode() ([]byte, error) {
	wire := struct {
		Data       json.RawMessage `json:"data,omitempty"`
		Errors     *[]GraphQLError `json:"errors,omitempty"`
		Extensions json.RawMessage `json:"extensions,omitempty"`
	}{
		Data:       e.Data,
		Extensions: e.Extensions,
	}
	if e.Errors != nil {
		wire.Errors = &e.Errors
	}
	return encodeJSON(wire)
}
