package gateway

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

const (
	// ClientNameHeader identifies the gateway to the GraphQL service.
	ClientNameHeader = "apollographql-client-name"

	// ClientName is the value sent in ClientNameHeader.
	ClientName = "restql"

	// PersistedQueryVersion is the persisted query protocol version.
	PersistedQueryVersion = 1
)

// PersistedQueryRequest is the body POSTed to the GraphQL service.
type PersistedQueryRequest struct {
	// Variables is omitted entirely when empty.
	Variables  Variables         `json:"variables,omitempty"`
	Extensions RequestExtensions `json:"extensions"`
}

// RequestExtensions carries the persisted query reference.
type RequestExtensions struct {
	PersistedQuery PersistedQuery `json:"persistedQuery"`
}

// PersistedQuery identifies a query registered with the GraphQL service.
type PersistedQuery struct {
	SHA256Hash string `json:"sha256Hash"`
	Version    int    `json:"version"`
}

// NewPersistedQueryRequest builds the request body for a persisted query.
func NewPersistedQueryRequest(pqID string, vars Variables) PersistedQueryRequest {
	return PersistedQueryRequest{
		Variables: vars,
		Extensions: RequestExtensions{
			PersistedQuery: PersistedQuery{SHA256Hash: pqID, Version: PersistedQueryVersion},
		},
	}
}

// Encode serializes the request. Variable keys are written in sorted order,
// so equal inputs always produce identical bytes.
func (r PersistedQueryRequest) Encode() ([]byte, error) {
	body, err := encodeJSON(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode persisted query request: %w", err)
	}
	return body, nil
}

// UpstreamHeaders derives the outbound headers from the inbound ones: Host
// is removed, and Content-Type, Accept and the client name are set. Every
// other inbound header is forwarded unchanged.
func UpstreamHeaders(inbound http.Header) http.Header {
	h := inbound.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Del("Host")
	h.Set("Content-Type", "application/json")
	h.Set(ClientNameHeader, ClientName)
	h.Set("Accept", "*/*")
	return h
}

// NewUpstreamRequest builds the POST to the GraphQL service. The inbound
// method never affects the outbound one.
func NewUpstreamRequest(ctx context.Context, url string, inbound http.Header, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header = UpstreamHeaders(inbound)
	return req, nil
}
