package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// VersionInfo is the body of the version endpoint.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// LivenessHandler serves the liveness probe. It always answers 200.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, c.CheckLiveness(r.Context()))
	}
}

// ReadinessHandler serves the readiness probe: 200 when every check
// passes, 503 otherwise.
//
// Example response (not ready):
//
//	{
//	    "status": "not_ready",
//	    "checks": {
//	        "routes": {"status": "ok", "duration_ms": 0.002},
//	        "upstream": {"status": "unhealthy", "message": "dial tcp 127.0.0.1:4000: connect: connection refused", "duration_ms": 0.4}
//	    },
//	    "timestamp": "2026-01-12T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.CheckReadiness(r.Context())
		status := http.StatusOK
		if !report.Ready() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, r, status, report)
	}
}

// VersionHandler serves build information.
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, info)
	}
}

// Register mounts the three ops endpoints on mux for GET (and HEAD).
func Register(mux *http.ServeMux, checker *Checker, livePath, readyPath, versionPath string, info VersionInfo) {
	mux.Handle("GET "+livePath, checker.LivenessHandler())
	mux.Handle("GET "+readyPath, checker.ReadinessHandler())
	mux.Handle("GET "+versionPath, VersionHandler(info.Version, info.Commit, info.BuildTime))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
