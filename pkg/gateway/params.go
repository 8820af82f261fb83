package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"mercator-hq/restql/pkg/config"
)

// Variables is the GraphQL variables mapping built for one request. Keys are
// the target variable names.
type Variables map[string]any

// Sources holds the raw string values of the three parameter sources of a
// request. A nil map is an empty source.
type Sources struct {
	Query map[string]string
	Path  map[string]string
	Body  map[string]string
}

// Resolve merges the parameters of an endpoint into one Variables mapping.
// Query parameters are resolved first, then path arguments, then body
// parameters; a later source overwrites an earlier one on a name collision.
// The first missing or malformed parameter aborts resolution.
func Resolve(ep *config.EndpointConfig, src Sources) (Variables, error) {
	vars := make(Variables)
	if err := resolveList(vars, ep.QueryParams, src.Query); err != nil {
		return nil, err
	}
	if err := resolveList(vars, ep.PathArguments, src.Path); err != nil {
		return nil, err
	}
	if err := resolveList(vars, ep.BodyParams, src.Body); err != nil {
		return nil, err
	}
	return vars, nil
}

func resolveList(dst Variables, params []config.ParamConfig, source map[string]string) error {
	for _, param := range params {
		raw, ok := source[param.From]
		if !ok {
			if param.Required {
				return &MissingParameterError{From: param.From}
			}
			continue
		}

		value, err := Coerce(param.Kind, raw)
		if err != nil {
			return &ParameterCoercionError{Param: param.From, Kind: param.Kind, Err: err}
		}
		dst[param.Variable()] = value
	}
	return nil
}

// Coerce converts a raw parameter value to kind. An empty kind is STRING.
//
//	STRING          the raw string
//	INT             base-10 signed 64-bit integer
//	FLOAT           finite IEEE-754 double in decimal notation
//	BOOLEAN         exactly "true" or "false"
//	OBJECT, ARRAY   any syntactically valid JSON text, kept as json.RawMessage
func Coerce(kind config.ParamKind, raw string) (any, error) {
	switch kind {
	case config.KindString, "":
		return raw, nil
	case config.KindInt:
		return strconv.ParseInt(raw, 10, 64)
	case config.KindFloat:
		if !decimalFloat(raw) {
			return nil, &strconv.NumError{Func: "ParseFloat", Num: raw, Err: strconv.ErrSyntax}
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &strconv.NumError{Func: "ParseFloat", Num: raw, Err: strconv.ErrSyntax}
		}
		return f, nil
	case config.KindBoolean:
		switch raw {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, &strconv.NumError{Func: "ParseBool", Num: raw, Err: strconv.ErrSyntax}
		}
	case config.KindObject, config.KindArray:
		var doc json.RawMessage
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, err
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unsupported parameter kind %q", kind)
	}
}

// decimalFloat rejects the Go literal forms ParseFloat accepts beyond plain
// decimal notation: digit separators and hexadecimal mantissas.
func decimalFloat(raw string) bool {
	if strings.ContainsRune(raw, '_') {
		return false
	}
	s := raw
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	return !(len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X'))
}

// NormalizeBody flattens the top-level keys of a JSON object body into raw
// string values. String values contribute their inner text; any other value
// contributes its compact JSON text, so {"n": 5} yields "5" and
// {"o": {"a": 1}} yields `{"a":1}`.
func NormalizeBody(data []byte) (map[string]string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &InvalidBodyError{Err: err}
	}
	if fields == nil {
		return nil, &InvalidBodyError{Err: errors.New("body is not a JSON object")}
	}

	out := make(map[string]string, len(fields))
	for key, raw := range fields {
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '"' {
			var s string
			if err := json.Unmarshal(trimmed, &s); err != nil {
				return nil, &InvalidBodyError{Err: err}
			}
			out[key] = s
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, &InvalidBodyError{Err: err}
		}
		out[key] = buf.String()
	}
	return out, nil
}

// SourcesFromRequest collects the raw parameter sources of r for route.
// Repeated query keys resolve to their last occurrence. The body is read
// only when the endpoint declares body parameters; an empty body is treated
// as no body, and so is a body that is not valid JSON. A valid JSON body
// that is not an object is an InvalidBodyError. maxBody <= 0 disables the
// body size limit.
func SourcesFromRequest(r *http.Request, route *Route, maxBody int64) (Sources, error) {
	src := Sources{
		Query: lastValues(r.URL.Query()),
		Path:  make(map[string]string, len(route.PathParams)),
	}
	for _, name := range route.PathParams {
		src.Path[name] = r.PathValue(name)
	}

	if len(route.Endpoint.BodyParams) == 0 || r.Body == nil {
		return src, nil
	}

	data, err := readBody(r.Body, maxBody)
	if err != nil {
		return src, &InvalidBodyError{Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 || !json.Valid(data) {
		return src, nil
	}

	body, err := NormalizeBody(data)
	if err != nil {
		return src, err
	}
	src.Body = body
	return src, nil
}

func readBody(body io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(body)
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("request body exceeds %d bytes", limit)
	}
	return data, nil
}

func lastValues(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			out[key] = vs[len(vs)-1]
		}
	}
	return out
}
