package source

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// SyncJob re-imports a CSV file into a dataset on a cron schedule.
type SyncJob struct {
	Dataset  string
	Path     string
	Schedule string // cron spec or descriptor such as "@every 1h"
	CSV      CSVOptions
}

// SyncResult is reported after every run of a job.
type SyncResult struct {
	Dataset string
	Rows    int
	Err     error
}

type Syncer struct {
	store  *Store
	cron   *cron.Cron
	report func(SyncResult)

	mu   sync.Mutex
	jobs []SyncJob
}

// NewSyncer schedules jobs against store. report may be nil.
func NewSyncer(store *Store, report func(SyncResult)) *Syncer {
	return &Syncer{
		store:  store,
		cron:   cron.New(),
		report: report,
	}
}

func (s *Syncer) Add(ctx context.Context, job SyncJob) error {
	if job.Dataset == "" || job.Path == "" {
		return fmt.Errorf("source: sync job needs a dataset and a path")
	}
	_, err := s.cron.AddFunc(job.Schedule, func() {
		s.run(ctx, job)
	})
	if err != nil {
		return fmt.Errorf("source: scheduling %s %q: %w", job.Dataset, job.Schedule, err)
	}
	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()
	return nil
}

// Start runs every job once, then hands them to the scheduler.
func (s *Syncer) Start(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]SyncJob(nil), s.jobs...)
	s.mu.Unlock()
	for _, job := range jobs {
		s.run(ctx, job)
	}
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs.
func (s *Syncer) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce imports a single job immediately.
func (s *Syncer) RunOnce(ctx context.Context, job SyncJob) SyncResult {
	return s.run(ctx, job)
}

func (s *Syncer) run(ctx context.Context, job SyncJob) SyncResult {
	res := SyncResult{Dataset: job.Dataset}
	series, err := ReadCSVFile(job.Path, job.CSV)
	if err == nil {
		res.Rows, err = s.store.Import(ctx, job.Dataset, series)
	}
	res.Err = err
	if err != nil {
		log.Printf("[sync] %s: %v", job.Dataset, err)
	} else {
		log.Printf("[sync] %s: imported %d rows from %s", job.Dataset, res.Rows, job.Path)
	}
	if s.report != nil {
		s.report(res)
	}
	return res
}
