package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status values reported by the checker.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusNotReady  = "not_ready"
	StatusUnhealthy = "unhealthy"
)

// DefaultCheckTimeout bounds a single readiness check when none is given.
const DefaultCheckTimeout = 2 * time.Second

// CheckFunc reports whether one dependency of the gateway is usable.
// It returns nil when healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of a single readiness check.
type CheckResult struct {
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// Report is the body of the liveness and readiness endpoints.
type Report struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Ready reports whether every check passed.
func (r Report) Ready() bool {
	return r.Status == StatusReady
}

// Checker runs the readiness checks registered at startup.
type Checker struct {
	mu           sync.RWMutex
	checks       map[string]CheckFunc
	checkTimeout time.Duration
}

// New creates a checker. A zero timeout means DefaultCheckTimeout.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}
	return &Checker{
		checks:       make(map[string]CheckFunc),
		checkTimeout: checkTimeout,
	}
}

// RegisterCheck registers a readiness check, replacing any check of the same name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Checks returns the registered check names in sorted order.
func (c *Checker) Checks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckLiveness reports that the process is serving. It runs no checks.
func (c *Checker) CheckLiveness(context.Context) Report {
	return Report{Status: StatusOK, Timestamp: time.Now().UTC()}
}

// CheckReadiness runs all registered checks concurrently. The gateway is
// ready only when every check passes; with no checks it is ready.
func (c *Checker) CheckReadiness(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var (
		resultMu sync.Mutex
		wg       sync.WaitGroup
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()
			result := c.runCheck(ctx, check)

			resultMu.Lock()
			results[name] = result
			resultMu.Unlock()
		}(name, check)
	}
	wg.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status != StatusOK {
			status = StatusNotReady
		}
	}

	return Report{Status: status, Checks: results, Timestamp: time.Now().UTC()}
}

// runCheck executes one check bounded by the checker timeout.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		errCh <- check(checkCtx)
	}()

	elapsed := func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}

	select {
	case err := <-errCh:
		if err != nil {
			return CheckResult{Status: StatusUnhealthy, Message: err.Error(), DurationMS: elapsed()}
		}
		return CheckResult{Status: StatusOK, DurationMS: elapsed()}
	case <-checkCtx.Done():
		return CheckResult{Status: StatusUnhealthy, Message: "health check timeout", DurationMS: elapsed()}
	}
}
