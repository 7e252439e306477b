package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

var ErrJobAlreadyRegistered = fmt.Errorf("job with this key is already registered")

type registeredJob struct {
	id    uuid.UUID
	runAt time.Time
}

// JobRegistry owns the one-shot dispatch jobs, addressed by deterministic
// keys. Duplicate registration for a key is rejected, so a resync tick that
// re-derives an already known key is a no-op. Runtime-only: the registry is
// rebuilt from scratch by the first resync after a restart, with the survey
// uniqueness constraint as the backstop against double dispatch.
type JobRegistry struct {
	mu    sync.Mutex
	sched gocron.Scheduler
	jobs  map[string]registeredJob
}

func NewJobRegistry() (*JobRegistry, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create job scheduler: %w", err)
	}
	return &JobRegistry{
		sched: sched,
		jobs:  make(map[string]registeredJob),
	}, nil
}

// Start begins executing registered jobs at their instants.
func (r *JobRegistry) Start() {
	r.sched.Start()
}

// Stop shuts the underlying scheduler down, waiting for running jobs.
func (r *JobRegistry) Stop() error {
	return r.sched.Shutdown()
}

// Has reports whether a job with the key is currently registered.
func (r *JobRegistry) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.jobs[key]
	return ok
}

// Register books a one-shot job for the given UTC instant.
func (r *JobRegistry) Register(key string, runAt time.Time, task func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[key]; ok {
		return ErrJobAlreadyRegistered
	}

	job, err := r.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(runAt)),
		gocron.NewTask(task),
		gocron.WithName(key),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", key, err)
	}

	r.jobs[key] = registeredJob{id: job.ID(), runAt: runAt}
	return nil
}

// Cancel removes the job with the key, if registered.
func (r *JobRegistry) Cancel(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[key]
	if !ok {
		return nil
	}
	delete(r.jobs, key)
	if err := r.sched.RemoveJob(job.id); err != nil {
		return fmt.Errorf("failed to remove job %s: %w", key, err)
	}
	return nil
}

// Len returns the number of registered jobs.
func (r *JobRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// PruneBefore drops bookkeeping for jobs whose instant passed before the
// boundary. Executed one-shot jobs stay in the table until pruned, which
// keeps their keys suppressing re-registration for the rest of the day.
func (r *JobRegistry) PruneBefore(boundary time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pruned := 0
	for key, job := range r.jobs {
		if job.runAt.Before(boundary) {
			delete(r.jobs, key)
			// The job already ran; removal failures only mean it is gone.
			_ = r.sched.RemoveJob(job.id)
			pruned++
		}
	}
	return pruned
}
