package background

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"freightdesk/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// DirectoryRefreshJob is the name of the directory cache refresh job.
const DirectoryRefreshJob = "directory-cache-refresh"

// ErrUnknownJob is returned by RunNow for a name that is not registered.
var ErrUnknownJob = errors.New("unknown job")

// JobInfo describes a registered job.
type JobInfo struct {
	Name    string     `json:"name"`
	LastRun *time.Time `json:"last_run,omitempty"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// DirectoryRefresher reloads the directory cache from storage.
type DirectoryRefresher interface {
	Refresh(ctx context.Context, dir repositories.DirectoryRepository) (int, error)
}

// JobScheduler runs the periodic maintenance jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	refresher DirectoryRefresher
	directory repositories.DirectoryRepository
	interval  time.Duration
	logger    *zap.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler. The directory refresh job is
// registered only for a positive interval.
func NewJobScheduler(refresher DirectoryRefresher, directory repositories.DirectoryRepository, interval time.Duration, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		refresher: refresher,
		directory: directory,
		interval:  interval,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", zap.Int("jobs", js.JobCount()))
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// JobCount reports how many jobs are registered.
func (js *JobScheduler) JobCount() int {
	js.mu.RLock()
	defer js.mu.RUnlock()
	return len(js.jobs)
}

// Jobs lists the registered jobs by name.
func (js *JobScheduler) Jobs() []JobInfo {
	js.mu.RLock()
	defer js.mu.RUnlock()

	out := make([]JobInfo, 0, len(js.jobs))
	for name, job := range js.jobs {
		info := JobInfo{Name: name}
		if t, err := job.LastRun(); err == nil && !t.IsZero() {
			info.LastRun = &t
		}
		if t, err := job.NextRun(); err == nil && !t.IsZero() {
			info.NextRun = &t
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunNow triggers the named job outside its schedule.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	js.logger.Info("job triggered manually", zap.String("job", name))
	return job.RunNow()
}

func (js *JobScheduler) registerJobs() error {
	if js.interval <= 0 || js.refresher == nil {
		js.logger.Info("directory cache refresh disabled")
		return nil
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(js.interval),
		gocron.NewTask(js.refreshDirectoryCache, context.Background()),
		gocron.WithName(DirectoryRefreshJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("create %s job: %w", DirectoryRefreshJob, err)
	}

	js.mu.Lock()
	js.jobs[DirectoryRefreshJob] = job
	js.mu.Unlock()
	return nil
}

// refreshDirectoryCache reloads carrier and customer codes into the cache
func (js *JobScheduler) refreshDirectoryCache(ctx context.Context) error {
	started := time.Now()
	n, err := js.refresher.Refresh(ctx, js.directory)
	if err != nil {
		js.logger.Error("directory cache refresh failed", zap.Int("cached", n), zap.Error(err))
		return err
	}
	js.logger.Debug("directory cache refreshed",
		zap.Int("cached", n),
		zap.Duration("took", time.Since(started)))
	return nil
}
