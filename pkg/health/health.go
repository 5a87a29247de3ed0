// Package health serves liveness and readiness probes.
//
// Every check is polled by its own goroutine. A check turns unhealthy only
// after FailureThreshold consecutive failures and healthy again after
// SuccessThreshold consecutive successes, so single blips do not flap the
// probe.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckFunc returns nil when the checked dependency is healthy.
type CheckFunc func(ctx context.Context) error

// Thresholds tune when a check flips state.
type Thresholds struct {
	Failure int
	Success int
}

// DefaultThresholds flip unhealthy after three failures and back after one
// success.
var DefaultThresholds = Thresholds{Failure: 3, Success: 1}

type kind int

const (
	liveness kind = iota
	readiness
)

// probe is one registered check. Counters are owned by the polling
// goroutine; healthy and lastErr are read by handlers.
type probe struct {
	name    string
	kind    kind
	timeout time.Duration
	check   CheckFunc
	limits  Thresholds

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	fails int
	oks   int
}

func (p *probe) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(ctx)
	p.lastErr.Store(&err)
	if err != nil {
		p.oks = 0
		p.fails++
		if p.fails >= p.limits.Failure {
			p.healthy.Store(false)
		}
		return
	}
	p.fails = 0
	p.oks++
	if p.oks >= p.limits.Success {
		p.healthy.Store(true)
	}
}

func (p *probe) failure() string {
	if e := p.lastErr.Load(); e != nil && *e != nil {
		return (*e).Error()
	}
	return "check is unhealthy"
}

// Health aggregates probes for one process.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	probes []*probe
	cancel context.CancelFunc
}

// New returns a Health that is not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check that decides whether the process should
// be restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(name, liveness, timeout, check, DefaultThresholds)
}

// AddReadinessCheck registers a check that decides whether the process
// receives traffic.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(name, readiness, timeout, check, DefaultThresholds)
}

// AddReadinessCheckWithThresholds is AddReadinessCheck with custom limits.
func (h *Health) AddReadinessCheckWithThresholds(name string, timeout time.Duration, check CheckFunc, t Thresholds) {
	h.add(name, readiness, timeout, check, t)
}

func (h *Health) add(name string, k kind, timeout time.Duration, check CheckFunc, t Thresholds) {
	p := &probe{name: name, kind: k, timeout: timeout, check: check, limits: t}
	p.healthy.Store(true)

	h.mu.Lock()
	h.probes = append(h.probes, p)
	h.mu.Unlock()
}

// Start polls every registered check at interval until Stop or ctx ends.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := append([]*probe(nil), h.probes...)
	h.mu.Unlock()

	for _, p := range probes {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				p.poll(ctx)
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()
	}
}

// Stop ends polling. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate. It is set to false first thing
// on shutdown so load balancers drain the instance.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the manual gate and all readiness checks.
func (h *Health) IsReady() bool {
	return h.ready.Load() && len(h.failures(readiness)) == 0
}

func (h *Health) failures(k kind) map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]string)
	for _, p := range h.probes {
		if p.kind == k && !p.healthy.Load() {
			out[p.name] = p.failure()
		}
	}
	return out
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Live serves GET /livez.
func (h *Health) Live(c *gin.Context) {
	respond(c, h.failures(liveness))
}

// Ready serves GET /readyz.
func (h *Health) Ready(c *gin.Context) {
	failures := h.failures(readiness)
	if !h.ready.Load() {
		failures["_readiness"] = "service is not ready"
	}
	respond(c, failures)
}

func respond(c *gin.Context, failures map[string]string) {
	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, statusResponse{Status: "unhealthy", Checks: failures})
		return
	}
	c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}
