package scheduler

import (
	"context"

	"github.com/wonny/histolib/pkg/logger"
)

// Reloader performs a full card reload
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloadJob refreshes every card on a schedule
type ReloadJob struct {
	reloader Reloader
	schedule string
	logger   *logger.Logger
}

// NewReloadJob creates a reload job running on schedule
func NewReloadJob(reloader Reloader, schedule string, log *logger.Logger) *ReloadJob {
	return &ReloadJob{
		reloader: reloader,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ReloadJob) Name() string {
	return "cards_reload"
}

// Schedule returns the configured cron schedule
func (j *ReloadJob) Schedule() string {
	return j.schedule
}

// Run reloads the ticker list and every card
func (j *ReloadJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled card reload")
	return j.reloader.Reload(ctx)
}
