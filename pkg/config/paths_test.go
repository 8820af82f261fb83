package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPath(t *testing.T) {
	tests := []struct {
		prefix, path, want string
	}{
		{"/api/v1", "/users", "/api/v1/users"},
		{"/api/v1/", "/users", "/api/v1/users"},
		{"", "/users", "/users"},
		{"api", "users", "/api/users"},
		{"/api", "", "/api/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinPath(tt.prefix, tt.path), "%q + %q", tt.prefix, tt.path)
	}
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/users/{id}/posts/{postId}", NormalizePath("/users/:id/posts/{postId}"))
	assert.Equal(t, "/users/:", NormalizePath("/users/:"))
	assert.Equal(t, "/plain", NormalizePath("/plain"))
}

func TestPathParamNames(t *testing.T) {
	assert.Equal(t, []string{"id", "postId"}, PathParamNames("/users/:id/posts/{postId}"))
	assert.Nil(t, PathParamNames("/users"))
}

func TestRouteKey(t *testing.T) {
	assert.Equal(t, "GET /users/{}", RouteKey(MethodGet, "/users/{id}"))
	assert.Equal(t, RouteKey(MethodGet, "/users/{id}"), RouteKey(MethodGet, "/users/:uid"))
	assert.NotEqual(t, RouteKey(MethodGet, "/users/{id}"), RouteKey(MethodPost, "/users/{id}"))
}
