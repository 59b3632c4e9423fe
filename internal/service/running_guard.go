package service

import (
	"context"
	"sync"
)

// ExportedRunGuard is an exported alias so _test packages can test
// the guard directly.
type ExportedRunGuard = runGuard

// ─────────────────────────────────────────────────────────────
// runGuard — serializes runs of one job while letting distinct
// jobs run concurrently
// ─────────────────────────────────────────────────────────────

type runGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryAcquire marks jobID as running. Returns false if a run of that
// job is already in flight.
func (g *runGuard) TryAcquire(jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[jobID]; ok {
		return false
	}
	g.running[jobID] = struct{}{}
	g.wg.Add(1)
	return true
}

// Release marks the job as done. Must follow a successful TryAcquire.
func (g *runGuard) Release(jobID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, jobID)
	g.wg.Done()
}

// WaitIdle blocks until all in-flight runs finish or ctx is done.
func (g *runGuard) WaitIdle(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
