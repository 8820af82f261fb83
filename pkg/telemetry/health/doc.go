// Package health provides the operational probe endpoints of the gateway.
//
//   - /health answers 200 while the process is serving (liveness).
//   - /ready runs the registered checks and answers 200 only when all of
//     them pass, 503 otherwise (readiness).
//   - /version reports build information.
//
// The server registers two readiness checks: "routes", which fails when the
// route table is empty, and "upstream", which fails when the GraphQL
// service's host cannot be reached over TCP. Checks run concurrently, each
// bounded by the checker timeout.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("upstream", client.Ping)
//	health.Register(mux, checker, "/health", "/ready", "/version", info)
package health
