package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/restql/pkg/config"
)

// Error kinds used as metric labels and span attributes.
const (
	KindMissing   = "missing"
	KindCoercion  = "coercion"
	KindBody      = "body"
	KindTransport = "transport"
	KindDecode    = "decode"
	KindInternal  = "internal"
)

// MissingParameterError is returned when a required parameter is absent
// from its source.
type MissingParameterError struct {
	From string
}

func (e *MissingParameterError) Error() string {
	return "Missing required parameter: " + e.From
}

// ParameterCoercionError is returned when a raw parameter value cannot be
// coerced to the declared kind. Its message is the parse failure verbatim.
type ParameterCoercionError struct {
	Param string
	Kind  config.ParamKind
	Err   error
}

func (e *ParameterCoercionError) Error() string {
	return e.Err.Error()
}

func (e *ParameterCoercionError) Unwrap() error {
	return e.Err
}

// InvalidBodyError is returned when an endpoint reads body parameters and
// the request body is not a JSON object.
type InvalidBodyError struct {
	Err error
}

func (e *InvalidBodyError) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.Err)
}

func (e *InvalidBodyError) Unwrap() error {
	return e.Err
}

// UpstreamTransportError is returned when the upstream call itself fails:
// connection refused, timeout, reset, unreadable body.
type UpstreamTransportError struct {
	Err error
}

func (e *UpstreamTransportError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamTransportError) Unwrap() error {
	return e.Err
}

// UpstreamDecodeError is returned when the upstream body is not a valid
// GraphQL response envelope.
type UpstreamDecodeError struct {
	Err error
}

func (e *UpstreamDecodeError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamDecodeError) Unwrap() error {
	return e.Err
}

// StatusFor maps an error to the outward HTTP status. Parameter resolution
// failures are client errors; everything else is a 500.
func StatusFor(err error) int {
	switch ErrorKind(err) {
	case KindMissing, KindCoercion, KindBody:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	var (
		missing   *MissingParameterError
		coercion  *ParameterCoercionError
		body      *InvalidBodyError
		transport *UpstreamTransportError
		decode    *UpstreamDecodeError
	)
	switch {
	case errors.As(err, &missing):
		return KindMissing
	case errors.As(err, &coercion):
		return KindCoercion
	case errors.As(err, &body):
		return KindBody
	case errors.As(err, &transport):
		return KindTransport
	case errors.As(err, &decode):
		return KindDecode
	default:
		return KindInternal
	}
}

type errorMessage struct {
	Message string `json:"message"`
}

type errorEnvelope struct {
	Errors []errorMessage   `json:"errors"`
	Data   *json.RawMessage `json:"data"`
}

// ErrorEnvelope renders the synthesized error body
// {"errors":[{"message":msg}],"data":null}.
func ErrorEnvelope(msg string) []byte {
	body, err := encodeJSON(errorEnvelope{Errors: []errorMessage{{Message: msg}}})
	if err != nil {
		// A struct of strings always encodes.
		panic(err)
	}
	return body
}

// encodeJSON marshals v without HTML escaping and without the trailing
// newline json.Encoder appends.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
