package scheduler

import (
	"context"
	"time"
)

// Job is a unit of work the scheduler runs on a cron expression
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule accepts 5-field, 6-field (seconds first) and descriptor
	// expressions such as "@every 30m"
	Schedule() string
}

// recentRuns is how many runs each job keeps for inspection
const recentRuns = 20

// Run is one finished execution of a job
type Run struct {
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// OK reports whether the run finished without error
func (r Run) OK() bool { return r.Error == "" }

// runLog counts every run of a job and keeps the most recent ones.
// Totals cover the whole process lifetime, not only the kept window.
type runLog struct {
	total    int
	failures int
	recent   []Run

	lastSuccess *time.Time
	lastFailure *time.Time
}

func (l *runLog) record(r Run) {
	l.total++
	started := r.Started
	if r.OK() {
		l.lastSuccess = &started
	} else {
		l.failures++
		l.lastFailure = &started
	}

	l.recent = append(l.recent, r)
	if len(l.recent) > recentRuns {
		l.recent = l.recent[len(l.recent)-recentRuns:]
	}
}

// JobStatus summarises a registered job for GET /api/scheduler
type JobStatus struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Running     bool       `json:"running"`
	Runs        int        `json:"runs"`
	Failures    int        `json:"failures"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastFailure *time.Time `json:"last_failure,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	Recent      []Run      `json:"recent"`
}

func (l *runLog) status(job Job) JobStatus {
	recent := make([]Run, len(l.recent))
	// newest first
	for i, r := range l.recent {
		recent[len(l.recent)-1-i] = r
	}
	return JobStatus{
		Name:        job.Name(),
		Schedule:    job.Schedule(),
		Runs:        l.total,
		Failures:    l.failures,
		LastSuccess: l.lastSuccess,
		LastFailure: l.lastFailure,
		Recent:      recent,
	}
}
