package gateway

import (
	"fmt"
	"net/http"
	"strings"

	"mercator-hq/restql/pkg/config"
)

// Route is the immutable context bound to one registered endpoint.
type Route struct {
	// Method is the inbound method the route answers.
	Method config.HTTPMethod

	// Path is the full path below the listener, e.g. "/api/v1/users/{id}".
	Path string

	// Pattern is the ServeMux pattern the route is registered under.
	Pattern string

	// PathParams lists the wildcard names of Path in order.
	PathParams []string

	// Endpoint is the endpoint configuration the route serves.
	Endpoint *config.EndpointConfig
}

// RouteTable dispatches inbound requests to their endpoint. It is built
// once at startup and read-only afterwards.
type RouteTable struct {
	mux    *http.ServeMux
	routes []*Route
}

// NewRouteTable registers every endpoint of cfg under the path prefix.
// It fails when two endpoints share a method and path.
func NewRouteTable(cfg *config.Config, gw *Gateway) (*RouteTable, error) {
	t := &RouteTable{mux: http.NewServeMux()}
	seen := make(map[string]int, len(cfg.Endpoints))

	for i := range cfg.Endpoints {
		ep := cfg.Endpoints[i]
		method := ep.Method
		if method == "" {
			method = config.MethodGet
		}
		if !method.Valid() {
			return nil, fmt.Errorf("endpoints[%d]: unsupported method %q", i, method)
		}

		path := config.NormalizePath(config.JoinPath(cfg.Common.PathPrefix, ep.Path))
		key := config.RouteKey(method, path)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("endpoints[%d]: duplicate route %s %s (already defined by endpoints[%d])", i, method, path, prev)
		}
		seen[key] = i

		route := &Route{
			Method:     method,
			Path:       path,
			Pattern:    muxPattern(method, path),
			PathParams: config.PathParamNames(path),
			Endpoint:   &ep,
		}
		if err := t.register(route, gw); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		t.routes = append(t.routes, route)
	}
	return t, nil
}

func (t *RouteTable) register(route *Route, gw *Gateway) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cannot register route %s: %v", route.Pattern, r)
		}
	}()
	t.mux.Handle(route.Pattern, &routeHandler{gw: gw, route: route})
	return nil
}

// muxPattern renders a route as a ServeMux pattern. A trailing slash is
// anchored with {$} so it matches only itself rather than a subtree.
func muxPattern(method config.HTTPMethod, path string) string {
	if strings.HasSuffix(path, "/") {
		path += "{$}"
	}
	return string(method) + " " + path
}

// Routes returns the registered routes in configuration order.
func (t *RouteTable) Routes() []*Route {
	return append([]*Route(nil), t.routes...)
}

// Len returns the number of registered routes.
func (t *RouteTable) Len() int {
	return len(t.routes)
}

// ServeHTTP dispatches r to its route. Unknown paths answer 404 and known
// paths with another method answer 405.
func (t *RouteTable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.mux.ServeHTTP(w, r)
}

type routeHandler struct {
	gw    *Gateway
	route *Route
}

func (h *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.gw.serve(w, r, h.route)
}
