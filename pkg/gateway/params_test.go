package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/restql/pkg/config"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name     string
		kind     config.ParamKind
		raw      string
		wantJSON string
	}{
		{"string", config.KindString, "hello", `"hello"`},
		{"empty kind is string", "", "42", `"42"`},
		{"string keeps spaces", config.KindString, " a b ", `" a b "`},
		{"int", config.KindInt, "42", `42`},
		{"negative int", config.KindInt, "-9223372036854775808", `-9223372036854775808`},
		{"float", config.KindFloat, "1.5", `1.5`},
		{"float exponent", config.KindFloat, "1.5e3", `1500`},
		{"float from int text", config.KindFloat, "3", `3`},
		{"float leading zero", config.KindFloat, "-0.25", `-0.25`},
		{"float zero", config.KindFloat, "0", `0`},
		{"boolean true", config.KindBoolean, "true", `true`},
		{"boolean false", config.KindBoolean, "false", `false`},
		{"object", config.KindObject, `{"a": [1, 2]}`, `{"a":[1,2]}`},
		{"array", config.KindArray, `[1, "x", null]`, `[1,"x",null]`},
		{"object kind accepts any json", config.KindObject, `"just a string"`, `"just a string"`},
		{"array kind accepts scalar", config.KindArray, `7`, `7`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.kind, tt.raw)
			require.NoError(t, err)

			first, err := json.Marshal(v)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(first))

			again, err := Coerce(tt.kind, tt.raw)
			require.NoError(t, err)
			second, err := json.Marshal(again)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestCoerce_Failures(t *testing.T) {
	tests := []struct {
		name    string
		kind    config.ParamKind
		raw     string
		wantMsg string
	}{
		{"int letters", config.KindInt, "abc", `strconv.ParseInt: parsing "abc": invalid syntax`},
		{"int float text", config.KindInt, "1.5", `strconv.ParseInt: parsing "1.5": invalid syntax`},
		{"int empty", config.KindInt, "", `strconv.ParseInt: parsing "": invalid syntax`},
		{"int overflow", config.KindInt, "9223372036854775808", `strconv.ParseInt: parsing "9223372036854775808": value out of range`},
		{"float letters", config.KindFloat, "x1", `strconv.ParseFloat: parsing "x1": invalid syntax`},
		{"float NaN", config.KindFloat, "NaN", `strconv.ParseFloat: parsing "NaN": invalid syntax`},
		{"float Inf", config.KindFloat, "+Inf", `strconv.ParseFloat: parsing "+Inf": invalid syntax`},
		{"float digit separator", config.KindFloat, "1_0", `strconv.ParseFloat: parsing "1_0": invalid syntax`},
		{"float hex", config.KindFloat, "0x1p3", `strconv.ParseFloat: parsing "0x1p3": invalid syntax`},
		{"float signed hex", config.KindFloat, "-0X1.8p1", `strconv.ParseFloat: parsing "-0X1.8p1": invalid syntax`},
		{"boolean case", config.KindBoolean, "True", `strconv.ParseBool: parsing "True": invalid syntax`},
		{"boolean digit", config.KindBoolean, "1", `strconv.ParseBool: parsing "1": invalid syntax`},
		{"object truncated", config.KindObject, "{", "unexpected end of JSON input"},
		{"array garbage", config.KindArray, "[1,", "unexpected end of JSON input"},
		{"object empty", config.KindObject, "", "unexpected end of JSON input"},
		{"unknown kind", "DATE", "2024-01-01", `unsupported parameter kind "DATE"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := Coerce(tt.kind, tt.raw)
				require.Error(t, err)
				assert.Equal(t, tt.wantMsg, err.Error())
			})
		})
	}
}

func TestResolve(t *testing.T) {
	ep := &config.EndpointConfig{
		QueryParams:   []config.ParamConfig{{From: "limit", Kind: config.KindInt}, {From: "q", To: "search"}},
		PathArguments: []config.ParamConfig{{From: "id", To: "userId", Kind: config.KindInt, Required: true}},
		BodyParams:    []config.ParamConfig{{From: "active", Kind: config.KindBoolean}},
	}

	vars, err := Resolve(ep, Sources{
		Query: map[string]string{"limit": "10", "q": "ada", "ignored": "x"},
		Path:  map[string]string{"id": "7"},
		Body:  map[string]string{"active": "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, Variables{
		"limit":  int64(10),
		"search": "ada",
		"userId": int64(7),
		"active": true,
	}, vars)
}

func TestResolve_OptionalAbsentIsSkipped(t *testing.T) {
	ep := &config.EndpointConfig{QueryParams: []config.ParamConfig{{From: "q"}}}

	vars, err := Resolve(ep, Sources{})
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestResolve_Precedence(t *testing.T) {
	ep := &config.EndpointConfig{
		QueryParams:   []config.ParamConfig{{From: "q", To: "v"}},
		PathArguments: []config.ParamConfig{{From: "p", To: "v"}},
		BodyParams:    []config.ParamConfig{{From: "b", To: "v"}},
	}

	tests := []struct {
		name string
		src  Sources
		want string
	}{
		{"query only", Sources{Query: map[string]string{"q": "query"}}, "query"},
		{"path over query", Sources{
			Query: map[string]string{"q": "query"},
			Path:  map[string]string{"p": "path"},
		}, "path"},
		{"body over query", Sources{
			Query: map[string]string{"q": "query"},
			Body:  map[string]string{"b": "body"},
		}, "body"},
		{"body over path and query", Sources{
			Query: map[string]string{"q": "query"},
			Path:  map[string]string{"p": "path"},
			Body:  map[string]string{"b": "body"},
		}, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars, err := Resolve(ep, tt.src)
			require.NoError(t, err)
			assert.Equal(t, Variables{"v": tt.want}, vars)
		})
	}
}

func TestResolve_MissingRequired(t *testing.T) {
	for _, source := range []string{"query", "path", "body"} {
		t.Run(source, func(t *testing.T) {
			params := []config.ParamConfig{{From: "id", Required: true}}
			ep := &config.EndpointConfig{}
			switch source {
			case "query":
				ep.QueryParams = params
			case "path":
				ep.PathArguments = params
			case "body":
				ep.BodyParams = params
			}

			_, err := Resolve(ep, Sources{})
			require.Error(t, err)

			var missing *MissingParameterError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, "Missing required parameter: id", err.Error())
			assert.Equal(t, http.StatusBadRequest, StatusFor(err))
		})
	}
}

func TestResolve_FirstErrorWins(t *testing.T) {
	ep := &config.EndpointConfig{
		QueryParams: []config.ParamConfig{{From: "n", Kind: config.KindInt}},
		BodyParams:  []config.ParamConfig{{From: "name", Required: true}},
	}

	_, err := Resolve(ep, Sources{Query: map[string]string{"n": "x"}})
	require.Error(t, err)

	var coercion *ParameterCoercionError
	require.True(t, errors.As(err, &coercion))
	assert.Equal(t, "n", coercion.Param)
	assert.Equal(t, config.KindInt, coercion.Kind)
	assert.Equal(t, `strconv.ParseInt: parsing "x": invalid syntax`, err.Error())
}

func TestNormalizeBody(t *testing.T) {
	got, err := NormalizeBody([]byte(`{
		"s": "text",
		"quoted": "say \"hi\"",
		"n": 5,
		"f": 1.25,
		"b": true,
		"o": {"a": 1, "nested": {"b": [1, 2]}},
		"a": [1, "two"],
		"z": null
	}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"s":      "text",
		"quoted": `say "hi"`,
		"n":      "5",
		"f":      "1.25",
		"b":      "true",
		"o":      `{"a":1,"nested":{"b":[1,2]}}`,
		"a":      `[1,"two"]`,
		"z":      "null",
	}, got)
}

func TestNormalizeBody_RoundTrip(t *testing.T) {
	body, err := NormalizeBody([]byte(`{"count": 5, "filter": {"tag": "go"}, "flag": false}`))
	require.NoError(t, err)

	ep := &config.EndpointConfig{BodyParams: []config.ParamConfig{
		{From: "count", Kind: config.KindInt},
		{From: "filter", Kind: config.KindObject},
		{From: "flag", Kind: config.KindBoolean},
	}}
	vars, err := Resolve(ep, Sources{Body: body})
	require.NoError(t, err)

	out, err := json.Marshal(vars)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":5,"filter":{"tag":"go"},"flag":false}`, string(out))
}

func TestNormalizeBody_NotAnObject(t *testing.T) {
	for _, body := range []string{`[1,2]`, `"text"`, `42`, `null`, `{"a":`, `not json`} {
		_, err := NormalizeBody([]byte(body))
		require.Error(t, err, body)

		var invalid *InvalidBodyError
		assert.True(t, errors.As(err, &invalid), body)
		assert.Equal(t, http.StatusBadRequest, StatusFor(err), body)
	}
}

func testRoute(ep config.EndpointConfig) *Route {
	return &Route{
		Method:     config.MethodPost,
		Path:       "/users/{id}",
		Pattern:    "POST /users/{id}",
		PathParams: []string{"id"},
		Endpoint:   &ep,
	}
}

func TestSourcesFromRequest(t *testing.T) {
	route := testRoute(config.EndpointConfig{BodyParams: []config.ParamConfig{{From: "name"}}})

	mux := http.NewServeMux()
	var got Sources
	var gotErr error
	mux.HandleFunc(route.Pattern, func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = SourcesFromRequest(r, route, 1024)
	})

	req := httptest.NewRequest(http.MethodPost, "/users/42?tag=a&tag=b&q=x", strings.NewReader(`{"name":"ada","age":36}`))
	mux.ServeHTTP(httptest.NewRecorder(), req)

	require.NoError(t, gotErr)
	assert.Equal(t, map[string]string{"tag": "b", "q": "x"}, got.Query)
	assert.Equal(t, map[string]string{"id": "42"}, got.Path)
	assert.Equal(t, map[string]string{"name": "ada", "age": "36"}, got.Body)
}

func TestSourcesFromRequest_Body(t *testing.T) {
	withBody := testRoute(config.EndpointConfig{BodyParams: []config.ParamConfig{{From: "name"}}})
	withoutBody := testRoute(config.EndpointConfig{})

	tests := []struct {
		name     string
		route    *Route
		body     string
		limit    int64
		wantBody map[string]string
		wantErr  bool
	}{
		{"empty body is no body", withBody, "", 1024, nil, false},
		{"whitespace body is no body", withBody, " \n\t", 1024, nil, false},
		{"ignored without body params", withoutBody, "not json", 1024, nil, false},
		{"invalid json is no body", withBody, "{", 1024, nil, false},
		{"garbage is no body", withBody, "name=ada", 1024, nil, false},
		{"array body", withBody, "[1]", 1024, nil, true},
		{"over limit", withBody, `{"name":"abcdefghij"}`, 8, nil, true},
		{"at limit", withBody, `{"name":"x"}`, 12, map[string]string{"name": "x"}, false},
		{"no limit", withBody, `{"name":"x"}`, 0, map[string]string{"name": "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users/1", strings.NewReader(tt.body))
			src, err := SourcesFromRequest(req, tt.route, tt.limit)
			if tt.wantErr {
				var invalid *InvalidBodyError
				require.True(t, errors.As(err, &invalid), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, src.Body)
		})
	}
}
