// Package jobs runs background workers for the lifetime of the process.
package jobs

import (
	"context"
	"sync"
)

// Job is a long-running background worker. Start blocks until ctx is done.
type Job interface {
	Start(ctx context.Context)
}

// Manager starts registered jobs together and waits for them on shutdown.
type Manager struct {
	jobs []Job
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{}
}

// Register adds a job. Not safe to call after Start.
func (m *Manager) Register(job Job) {
	m.jobs = append(m.jobs, job)
}

// Start runs every registered job in its own goroutine and blocks until ctx
// is cancelled and all jobs have returned.
func (m *Manager) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range m.jobs {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			j.Start(ctx)
		}(job)
	}
	<-ctx.Done()
	wg.Wait()
}
