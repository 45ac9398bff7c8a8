// SPDX-License-Identifier: MIT

package obs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rinman24/arcobs/internal/log"
	"github.com/rinman24/arcobs/internal/metrics"
)

// JobState is the lifecycle position of a job. Transitions only move
// forward: queued, running, then done or failed.
type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// Job is one tracked pipeline run.
type Job struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	State    JobState  `json:"state"`
	Created  time.Time `json:"created"`
	Started  time.Time `json:"started,omitzero"`
	Finished time.Time `json:"finished,omitzero"`
	Error    string    `json:"error,omitempty"`
}

// Tracker records jobs and runs their work in the background.
type Tracker struct {
	mu   sync.Mutex
	jobs map[string]*Job
	wg   sync.WaitGroup
	now  func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Launch registers a job and runs fn on its own goroutine. The returned
// id can be polled with Get.
func (t *Tracker) Launch(ctx context.Context, kind string, fn func(context.Context) error) string {
	job := &Job{
		ID:      uuid.NewString(),
		Kind:    kind,
		State:   JobQueued,
		Created: t.now().UTC(),
	}
	t.mu.Lock()
	t.jobs[job.ID] = job
	t.mu.Unlock()

	ctx = log.ContextWithJobID(ctx, job.ID)
	logger := log.WithComponentFromContext(ctx, "jobs")

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.transition(job.ID, JobRunning, "")
		logger.Info().Str("kind", kind).Msg("job started")

		err := fn(ctx)

		t.mu.Lock()
		started := job.Started
		t.mu.Unlock()
		seconds := t.now().Sub(started).Seconds()
		if err != nil {
			t.transition(job.ID, JobFailed, err.Error())
			metrics.RecordJob(kind, string(JobFailed), seconds)
			logger.Error().Err(err).Str("kind", kind).Msg("job failed")
			return
		}
		t.transition(job.ID, JobDone, "")
		metrics.RecordJob(kind, string(JobDone), seconds)
		logger.Info().Str("kind", kind).Msg("job finished")
	}()
	return job.ID
}

// Get returns a copy of the job, if known.
func (t *Tracker) Get(id string) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// List returns all jobs, newest first.
func (t *Tracker) List() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.After(out[j].Created)
	})
	return out
}

// Wait blocks until every launched job has finished.
func (t *Tracker) Wait() { t.wg.Wait() }

func (t *Tracker) transition(id string, state JobState, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok {
		return
	}
	// Terminal jobs never change again.
	if job.State == JobDone || job.State == JobFailed {
		return
	}
	now := t.now().UTC()
	switch state {
	case JobRunning:
		job.Started = now
	case JobDone, JobFailed:
		job.Finished = now
		job.Error = errMsg
	}
	job.State = state
}
