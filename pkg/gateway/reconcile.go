package gateway

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// hopHeaders are connection-scoped and never copied to the outward
// response. Transfer-Encoding, Content-Length and Content-Encoding go too:
// the body is re-serialized and written uncompressed.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Connection",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
	"Content-Length",
	"Content-Encoding",
}

// gatewayHeaders are owned by the gateway and set by its middleware; the
// upstream's values never replace them.
var gatewayHeaders = []string{
	"X-Request-Id",
}

// UpstreamResponse is a fully read response from the GraphQL service.
type UpstreamResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// Result is the outward response of one gateway request.
type Result struct {
	Status int
	Header http.Header
	Body   []byte

	// Partial is set when errors accompany real data (206).
	Partial bool

	// Err is the failure that produced a synthesized error body, if any.
	Err error
}

// FailureResult renders err as the synthesized error envelope. Upstream
// headers are never carried on a failure.
func FailureResult(err error) *Result {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &Result{
		Status: StatusFor(err),
		Header: h,
		Body:   ErrorEnvelope(err.Error()),
		Err:    err,
	}
}

// Write sends the result to w.
func (r *Result) Write(w http.ResponseWriter) {
	dst := w.Header()
	for key, values := range r.Header {
		dst[key] = append([]string(nil), values...)
	}
	w.WriteHeader(r.Status)
	_, _ = w.Write(r.Body)
}

// Reconcile maps an upstream response to the outward response.
//
// The upstream status passes through unless the upstream answered 200 with
// a non-empty errors list: then the status becomes 500, or 206 when the
// envelope also carries non-null data. A body that is not a GraphQL
// envelope yields a 500 error envelope.
func Reconcile(resp *UpstreamResponse) *Result {
	body, err := decodeContent(resp.Header, resp.Body)
	if err != nil {
		return FailureResult(&UpstreamDecodeError{Err: err})
	}

	env, err := DecodeEnvelope(body)
	if err != nil {
		return FailureResult(&UpstreamDecodeError{Err: err})
	}

	status := resp.Status
	partial := false
	if resp.Status == http.StatusOK && env.HasErrors() {
		status = http.StatusInternalServerError
		if env.HasData() {
			status = http.StatusPartialContent
			partial = true
		}
	}

	out, err := env.Encode()
	if err != nil {
		return FailureResult(&UpstreamDecodeError{Err: err})
	}

	return &Result{
		Status:  status,
		Header:  outwardHeaders(resp.Header),
		Body:    out,
		Partial: partial,
	}
}

// zstdDecoder is shared; DecodeAll is safe for concurrent use.
var zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))

// decodeContent undoes a gzip, deflate or zstd Content-Encoding. The
// outbound request forwards the client's Accept-Encoding, so the transport
// does not decompress on its own.
func decodeContent(h http.Header, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(h.Get("Content-Encoding")))

	var (
		out []byte
		err error
	)
	switch encoding {
	case "", "identity":
		return body, nil
	case "gzip", "x-gzip":
		var zr *gzip.Reader
		if zr, err = gzip.NewReader(bytes.NewReader(body)); err == nil {
			out, err = io.ReadAll(zr)
			_ = zr.Close()
		}
	case "deflate":
		out, err = inflate(body)
	case "zstd":
		out, err = zstdDecoder.DecodeAll(body, nil)
	default:
		return nil, fmt.Errorf("unsupported upstream content encoding %q", encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decompress upstream response: %w", err)
	}
	return out, nil
}

// inflate reads a zlib-wrapped deflate body, falling back to a raw deflate
// stream for servers that omit the zlib header.
func inflate(body []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(body))
	if errors.Is(err, zlib.ErrHeader) {
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		return io.ReadAll(fr)
	}
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func outwardHeaders(upstream http.Header) http.Header {
	h := upstream.Clone()
	if h == nil {
		h = make(http.Header)
	}
	for _, value := range h.Values("Connection") {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
	for _, name := range gatewayHeaders {
		h.Del(name)
	}
	h.Set("Content-Type", "application/json")
	return h
}
