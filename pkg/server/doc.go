// Package server ties the gateway routes, the ops endpoints and the
// middleware chain to a listener.
//
// # Lifecycle
//
//	srv := server.New(server.Options{Config: cfg, Routes: table, Client: client, Metrics: collector})
//	if err := srv.Listen(); err != nil {
//	    return err // bind failure: startup aborts
//	}
//	return srv.Serve(ctx) // returns after ctx is canceled and shutdown completes
//
// Listen binds synchronously so that an unusable address fails startup
// before anything is served. Serve shuts down gracefully once ctx is
// canceled: the listener closes, in-flight requests get up to
// shutdown_timeout to finish, then idle upstream connections are released.
//
// # Routes
//
//   - GET /health: liveness
//   - GET /ready: readiness (routes configured, GraphQL service reachable)
//   - GET /version: build information
//   - GET <metrics.path>: Prometheus metrics, when enabled
//   - everything else: the gateway RouteTable
//
// Every request passes through middleware.Chain (request ID, logging,
// panic recovery).
package server
