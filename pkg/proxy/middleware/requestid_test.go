package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/restql/pkg/telemetry/logging"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		inbound  string
		wantKept bool
	}{
		{"generates when absent", "", false},
		{"keeps client id", "client-id-123", true},
		{"replaces id with spaces", "two words", false},
		{"replaces oversized id", strings.Repeat("a", 129), false},
		{"keeps id at limit", strings.Repeat("a", 128), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID, forwarded string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = logging.GetRequestID(r.Context())
				forwarded = r.Header.Get(RequestIDHeader)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			echoed := rec.Header().Get(RequestIDHeader)
			assert.Equal(t, ctxID, echoed)
			assert.Equal(t, tt.inbound, forwarded, "inbound headers must not change")

			if tt.wantKept {
				assert.Equal(t, tt.inbound, echoed)
				return
			}
			_, err := uuid.Parse(echoed)
			require.NoError(t, err, echoed)
		})
	}
}

func TestRequestIDMiddleware_Unique(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(RequestIDHeader)
		_, dup := seen[id]
		require.False(t, dup, "duplicate request id %s", id)
		seen[id] = struct{}{}
	}
}
