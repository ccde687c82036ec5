// Package health implements liveness and readiness probes with periodically
// evaluated background checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Check reports an error when the checked resource is unhealthy.
type Check func(ctx context.Context) error

// Service evaluates registered checks in the background and serves their
// latest results over HTTP probe endpoints.
type Service struct {
	mu        sync.RWMutex
	liveness  map[string]Check
	readiness map[string]Check
	failures  map[string]string
	ready     bool

	interval time.Duration
	timeout  time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// Option configures a Service.
type Option func(*Service)

// WithInterval sets how often checks are evaluated. Default is 10s.
func WithInterval(d time.Duration) Option {
	return func(s *Service) { s.interval = d }
}

// WithTimeout bounds a single check evaluation. Default is 5s.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New creates a health service. Call Start to begin evaluating checks.
func New(opts ...Option) *Service {
	s := &Service{
		liveness:  make(map[string]Check),
		readiness: make(map[string]Check),
		failures:  make(map[string]string),
		interval:  10 * time.Second,
		timeout:   5 * time.Second,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddLivenessCheck registers a check that gates the liveness probe.
func (s *Service) AddLivenessCheck(name string, c Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness[name] = c
}

// AddReadinessCheck registers a check that gates the readiness probe.
// Readiness also includes all liveness checks.
func (s *Service) AddReadinessCheck(name string, c Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness[name] = c
}

// SetReady toggles the manual readiness gate. The service starts not ready;
// the application flips it once initialization completes.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start launches the background evaluation loop.
func (s *Service) Start(ctx context.Context) {
	go s.loop(ctx)
}

// Stop terminates the evaluation loop and waits for it to exit.
func (s *Service) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Service) loop(ctx context.Context) {
	defer close(s.done)

	s.evaluate(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.evaluate(ctx)
		}
	}
}

func (s *Service) evaluate(ctx context.Context) {
	s.mu.RLock()
	checks := make(map[string]Check, len(s.liveness)+len(s.readiness))
	for name, c := range s.liveness {
		checks[name] = c
	}
	for name, c := range s.readiness {
		checks[name] = c
	}
	s.mu.RUnlock()

	failures := make(map[string]string)
	for name, c := range checks {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		if err := c(cctx); err != nil {
			failures[name] = err.Error()
		}
		cancel()
	}

	s.mu.Lock()
	s.failures = failures
	s.mu.Unlock()
}

type probeResult struct {
	Status   string            `json:"status"`
	Failures map[string]string `json:"failures,omitempty"`
}

// LiveEndpoint serves the liveness probe. It fails only when a liveness
// check failed in the last evaluation.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	failures := s.probeFailures(s.liveness)
	s.mu.RUnlock()

	writeProbe(w, len(failures) == 0, failures)
}

// ReadyEndpoint serves the readiness probe. It fails when the manual gate is
// off or when any check failed in the last evaluation.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	ready := s.ready
	failures := make(map[string]string, len(s.failures))
	for name, msg := range s.failures {
		failures[name] = msg
	}
	s.mu.RUnlock()

	if !ready {
		failures["ready"] = "service is not ready"
	}
	writeProbe(w, ready && len(failures) == 0, failures)
}

// probeFailures filters last-evaluation failures to the given check set.
// Caller holds at least a read lock.
func (s *Service) probeFailures(set map[string]Check) map[string]string {
	failures := make(map[string]string)
	for name := range set {
		if msg, ok := s.failures[name]; ok {
			failures[name] = msg
		}
	}
	return failures
}

func writeProbe(w http.ResponseWriter, ok bool, failures map[string]string) {
	res := probeResult{Status: "ok", Failures: failures}
	code := http.StatusOK
	if !ok {
		res.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(res)
}
