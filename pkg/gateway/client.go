package gateway

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mercator-hq/restql/pkg/config"
	"mercator-hq/restql/pkg/telemetry/tracing"
)

// Client performs the single POST of each gateway request against the
// GraphQL service. One Client is shared by all routes and is safe for
// concurrent use. It never retries.
type Client struct {
	url        string
	addr       string
	httpClient *http.Client
	dialer     *net.Dialer
}

// NewClient creates the shared upstream client. The connection pool is
// sized from cfg; a zero upstream_timeout leaves calls unbounded. When
// tracer is non-nil each call is a client span and carries the trace
// context the tracer propagates.
func NewClient(cfg *config.CommonConfig, tracer *tracing.Tracer) (*Client, error) {
	u, err := url.Parse(cfg.GraphQLEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid graphql endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid graphql endpoint %q: scheme must be http or https", cfg.GraphQLEndpoint)
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.UpstreamMaxIdleConns,
		MaxIdleConnsPerHost:   cfg.UpstreamMaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}
	if tracer != nil {
		transport = otelhttp.NewTransport(transport,
			otelhttp.WithTracerProvider(tracer.Provider()),
			otelhttp.WithPropagators(tracer.Propagator()),
		)
	}

	return &Client{
		url:    u.String(),
		addr:   hostPort(u),
		dialer: dialer,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.UpstreamTimeout.Std(),
		},
	}, nil
}

// URL returns the GraphQL endpoint.
func (c *Client) URL() string {
	return c.url
}

// Do sends body to the GraphQL service with headers derived from inbound
// and reads the whole response. Any failure before the body is fully read
// is an *UpstreamTransportError.
func (c *Client) Do(ctx context.Context, inbound http.Header, body []byte) (*UpstreamResponse, error) {
	req, err := NewUpstreamRequest(ctx, c.url, inbound, body)
	if err != nil {
		return nil, &UpstreamTransportError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamTransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamTransportError{Err: fmt.Errorf("failed to read upstream response: %w", err)}
	}

	return &UpstreamResponse{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}, nil
}

// Ping checks that the GraphQL service's host accepts TCP connections.
func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Close releases idle upstream connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func hostPort(u *url.URL) string {
	if port := u.Port(); port != "" {
		return net.JoinHostPort(u.Hostname(), port)
	}
	if u.Scheme == "https" {
		return net.JoinHostPort(u.Hostname(), "443")
	}
	return net.JoinHostPort(u.Hostname(), "80")
}
