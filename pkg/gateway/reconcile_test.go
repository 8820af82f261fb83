package gateway

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_Status(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantPartial bool
	}{
		{"data passes through", 200, `{"data":{"x":1}}`, 200, false},
		{"errors without data", 200, `{"errors":[{"message":"boom"}]}`, 500, false},
		{"errors with data", 200, `{"data":{"x":1},"errors":[{"message":"boom"}]}`, 206, true},
		{"errors with null data", 200, `{"data":null,"errors":[{"message":"boom"}]}`, 500, false},
		{"empty errors list", 200, `{"data":{"x":1},"errors":[]}`, 200, false},
		{"400 with errors passes through", 400, `{"errors":[{"message":"bad"}]}`, 400, false},
		{"400 with data and errors passes through", 400, `{"data":{"x":1},"errors":[{"message":"bad"}]}`, 400, false},
		{"503 passes through", 503, `{"errors":[{"message":"down"}]}`, 503, false},
		{"201 with errors passes through", 201, `{"data":{},"errors":[{"message":"x"}]}`, 201, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Reconcile(&UpstreamResponse{Status: tt.status, Header: http.Header{}, Body: []byte(tt.body)})
			require.NoError(t, res.Err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantPartial, res.Partial)
			assert.JSONEq(t, tt.body, string(res.Body))
		})
	}
}

func TestReconcile_DecodeFailure(t *testing.T) {
	h := http.Header{}
	h.Set("X-Upstream", "1")
	res := Reconcile(&UpstreamResponse{Status: 200, Header: h, Body: []byte(`<html>`)})

	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.JSONEq(t, `{"errors":[{"message":"invalid character '<' looking for beginning of value"}],"data":null}`, string(res.Body))
	assert.Empty(t, res.Header.Get("X-Upstream"))
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var decodeErr *UpstreamDecodeError
	assert.True(t, errors.As(res.Err, &decodeErr))
}

func TestReconcile_Headers(t *testing.T) {
	h := http.Header{}
	h.Set("Transfer-Encoding", "chunked")
	h.Set("Content-Length", "999")
	h.Set("Content-Type", "application/graphql-response+json")
	h.Set("Connection", "keep-alive, X-Hop")
	h.Set("X-Hop", "1")
	h.Set("Keep-Alive", "timeout=5")
	h.Set("Cache-Control", "no-cache")
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")
	h.Set("X-Request-Id", "upstream-own-id")

	res := Reconcile(&UpstreamResponse{Status: 200, Header: h, Body: []byte(`{"data":{}}`)})
	require.NoError(t, res.Err)

	for _, name := range []string{"Transfer-Encoding", "Content-Length", "Connection", "X-Hop", "Keep-Alive", "X-Request-Id"} {
		assert.Empty(t, res.Header.Values(name), name)
	}
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", res.Header.Get("Cache-Control"))
	assert.Equal(t, []string{"a=1", "b=2"}, res.Header.Values("Set-Cookie"))

	// The upstream headers are not modified.
	assert.Equal(t, "chunked", h.Get("Transfer-Encoding"))
}

func TestReconcile_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"data":{"x":1},"errors":[{"message":"boom"}]}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	h := http.Header{}
	h.Set("Content-Encoding", "gzip")
	res := Reconcile(&UpstreamResponse{Status: 200, Header: h, Body: buf.Bytes()})

	require.NoError(t, res.Err)
	assert.Equal(t, http.StatusPartialContent, res.Status)
	assert.Empty(t, res.Header.Get("Content-Encoding"))
	assert.JSONEq(t, `{"data":{"x":1},"errors":[{"message":"boom"}]}`, string(res.Body))
}

func TestReconcile_Compressed(t *testing.T) {
	const payload = `{"data":{"x":1}}`

	compress := func(t *testing.T, newWriter func(*bytes.Buffer) (io.WriteCloser, error)) []byte {
		t.Helper()
		var buf bytes.Buffer
		w, err := newWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write([]byte(payload))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{"zlib deflate", "deflate", compress(t, func(b *bytes.Buffer) (io.WriteCloser, error) {
			return zlib.NewWriter(b), nil
		})},
		{"raw deflate", "deflate", compress(t, func(b *bytes.Buffer) (io.WriteCloser, error) {
			return flate.NewWriter(b, flate.DefaultCompression)
		})},
		{"zstd", "zstd", compress(t, func(b *bytes.Buffer) (io.WriteCloser, error) {
			return zstd.NewWriter(b)
		})},
		{"upper case gzip", "GZIP", compress(t, func(b *bytes.Buffer) (io.WriteCloser, error) {
			return gzip.NewWriter(b), nil
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			h.Set("Content-Encoding", tt.encoding)
			res := Reconcile(&UpstreamResponse{Status: 200, Header: h, Body: tt.body})

			require.NoError(t, res.Err)
			assert.Equal(t, http.StatusOK, res.Status)
			assert.Empty(t, res.Header.Get("Content-Encoding"))
			assert.JSONEq(t, payload, string(res.Body))
		})
	}
}

func TestReconcile_BadEncoding(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		body     []byte
		wantMsg  string
	}{
		{"corrupt gzip", "gzip", []byte("not gzip"), "failed to decompress upstream response"},
		{"corrupt zstd", "zstd", []byte("not zstd"), "failed to decompress upstream response"},
		{"corrupt deflate", "deflate", []byte{0xff, 0xff, 0xff}, "failed to decompress upstream response"},
		{"unsupported", "br", []byte(`{"data":{}}`), `unsupported upstream content encoding "br"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			h.Set("Content-Encoding", tt.encoding)
			res := Reconcile(&UpstreamResponse{Status: 200, Header: h, Body: tt.body})
			assert.Equal(t, http.StatusInternalServerError, res.Status)
			require.Error(t, res.Err)
			assert.Contains(t, res.Err.Error(), tt.wantMsg)
		})
	}
}

func TestFailureResult(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{&MissingParameterError{From: "id"}, 400},
		{&ParameterCoercionError{Err: errors.New("bad")}, 400},
		{&InvalidBodyError{Err: errors.New("bad")}, 400},
		{&UpstreamTransportError{Err: errors.New("connection refused")}, 500},
		{&UpstreamDecodeError{Err: errors.New("bad json")}, 500},
		{errors.New("anything else"), 500},
	}
	for _, tt := range tests {
		res := FailureResult(tt.err)
		assert.Equal(t, tt.wantStatus, res.Status, tt.err.Error())
		assert.JSONEq(t, `{"errors":[{"message":"`+tt.err.Error()+`"}],"data":null}`, string(res.Body))
	}
}

func TestResult_Write(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Upstream", "1")
	res := &Result{Status: http.StatusPartialContent, Header: h, Body: []byte(`{"data":{}}`)}

	rec := httptest.NewRecorder()
	res.Write(rec)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Upstream"))
	assert.Equal(t, `{"data":{}}`, rec.Body.String())
}

func TestErrorEnvelope(t *testing.T) {
	assert.Equal(t,
		`{"errors":[{"message":"Missing required parameter: id"}],"data":null}`,
		string(ErrorEnvelope("Missing required parameter: id")))
	assert.Equal(t,
		`{"errors":[{"message":"a \"quoted\" <tag>"}],"data":null}`,
		string(ErrorEnvelope(`a "quoted" <tag>`)))
}

func TestErrorKind(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), &UpstreamTransportError{Err: errors.New("x")})
	assert.Equal(t, KindTransport, ErrorKind(wrapped))
	assert.Equal(t, KindMissing, ErrorKind(&MissingParameterError{From: "a"}))
	assert.Equal(t, KindInternal, ErrorKind(errors.New("x")))
}
