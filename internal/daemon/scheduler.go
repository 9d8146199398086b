package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/user/wolbook/internal/util"
)

// Job is a named task run every Interval, such as the dynamic-address sync.
type Job struct {
	Name     string
	Interval time.Duration
	// Delay before the first run. Zero runs on the next tick.
	Delay time.Duration
	Run   func(ctx context.Context) error

	lastRun    time.Time
	nextRun    time.Time
	lastError  error
	errorCount int
	running    bool
	mu         sync.RWMutex
}

// JobStatus is a snapshot of a Job as published in the status file.
type JobStatus struct {
	Name       string        `json:"name"`
	Interval   time.Duration `json:"interval"`
	LastRun    time.Time     `json:"last_run"`
	NextRun    time.Time     `json:"next_run"`
	LastError  string        `json:"last_error,omitempty"`
	ErrorCount int           `json:"error_count"`
	Running    bool          `json:"running"`
}

// Scheduler polls its jobs every tick and starts the ones that are due.
type Scheduler struct {
	ctx  context.Context
	tick time.Duration
	jobs []*Job
	wg   sync.WaitGroup
	mu   sync.RWMutex
}

// NewScheduler returns a scheduler bound to ctx with a one second tick.
func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{
		ctx:  ctx,
		tick: time.Second,
		jobs: make([]*Job, 0),
	}
}

// AddJob registers job. Its first run is due after job.Delay.
func (s *Scheduler) AddJob(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.nextRun = time.Now().Add(job.Delay)
	s.jobs = append(s.jobs, job)
}

// Run blocks until the context is done. Jobs still running are waited for.
func (s *Scheduler) Run() {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	util.Info("Scheduler running %d jobs", len(s.jobs))

	for {
		select {
		case <-s.ctx.Done():
			util.Info("Scheduler stopping, waiting for running jobs")
			s.wg.Wait()
			return
		case now := <-ticker.C:
			s.checkJobs(now)
		}
	}
}

func (s *Scheduler) checkJobs(now time.Time) {
	s.mu.RLock()
	jobs := s.jobs
	s.mu.RUnlock()

	for _, job := range jobs {
		if !job.claim(now) {
			continue
		}
		s.wg.Add(1)
		go func(j *Job) {
			defer s.wg.Done()
			s.runJob(j)
		}(job)
	}
}

// claim marks the job running if it is due at now.
func (j *Job) claim(now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running || now.Before(j.nextRun) {
		return false
	}
	j.running = true
	j.lastRun = now
	return true
}

// finish records the outcome of a run and schedules the next one. A failed
// run is retried after half the interval.
func (j *Job) finish(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.running = false
	j.lastError = err
	next := j.Interval
	if err != nil {
		j.errorCount++
		next /= 2
	}
	j.nextRun = time.Now().Add(next)
}

func (s *Scheduler) runJob(job *Job) {
	util.Debug("Job %s started", job.Name)

	// A run may not outlast its own interval.
	ctx, cancel := context.WithTimeout(s.ctx, job.Interval)
	defer cancel()

	err := job.Run(ctx)
	job.finish(err)

	if err != nil {
		util.Warn("Job %s failed, retrying in %s: %v", job.Name, job.Interval/2, err)
		return
	}
	util.Debug("Job %s finished", job.Name)
}

// GetJobStatuses snapshots every job in registration order.
func (s *Scheduler) GetJobStatuses() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]JobStatus, len(s.jobs))
	for i, job := range s.jobs {
		job.mu.RLock()
		status := JobStatus{
			Name:       job.Name,
			Interval:   job.Interval,
			LastRun:    job.lastRun,
			NextRun:    job.nextRun,
			ErrorCount: job.errorCount,
			Running:    job.running,
		}
		if job.lastError != nil {
			status.LastError = job.lastError.Error()
		}
		job.mu.RUnlock()
		statuses[i] = status
	}

	return statuses
}

// GetJob looks a job up by name. It returns nil when none matches.
func (s *Scheduler) GetJob(name string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, job := range s.jobs {
		if job.Name == name {
			return job
		}
	}
	return nil
}

// TriggerJob makes the named job due on the next tick. It reports false for
// an unknown name.
func (s *Scheduler) TriggerJob(name string) bool {
	job := s.GetJob(name)
	if job == nil {
		return false
	}

	job.mu.Lock()
	job.nextRun = time.Now()
	job.mu.Unlock()

	return true
}
