package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"tablemerge/internal/ingest"
	"tablemerge/internal/merge"
	"tablemerge/internal/storage"
	"tablemerge/internal/table"
)

// ─────────────────────────────────────────────────────────────
// Merge Service — saved merge jobs, run orchestration, triggers
// ─────────────────────────────────────────────────────────────

// MergeService manages persisted merge jobs: running them on demand,
// on a cron schedule, or whenever the external source file changes.
type MergeService struct {
	store   *storage.JobStore
	emitter EventEmitter
	running runGuard

	// trigger lifecycle
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// NewMergeService creates a MergeService ready for use.
func NewMergeService(store *storage.JobStore, emitter EventEmitter) *MergeService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &MergeService{store: store, emitter: emitter}
}

// ── Job CRUD ───────────────────────────────────────────────

// CreateJobInput carries the fields of a new merge job.
type CreateJobInput struct {
	Name             string `json:"name"`
	PrimaryPath      string `json:"primaryPath"`
	ExternalPath     string `json:"externalPath,omitempty"`
	SourceDriver     string `json:"sourceDriver,omitempty"`
	SourceDSN        string `json:"sourceDsn,omitempty"`
	SourceQuery      string `json:"sourceQuery,omitempty"`
	PrimaryKey       string `json:"primaryKey"`
	ExternalKey      string `json:"externalKey"`
	Delimiter        string `json:"delimiter,omitempty"`
	How              string `json:"how"`
	OutputPath       string `json:"outputPath"`
	AllowDoubleMerge bool   `json:"allowDoubleMerge"`
	TriggerType      string `json:"triggerType"`
	TriggerConfig    string `json:"triggerConfig"`
	Enabled          bool   `json:"enabled"`
}

// CreateJob validates and persists a new job. Key-column existence
// is checked at run time, when the tables are actually loaded.
func (s *MergeService) CreateJob(ctx context.Context, input CreateJobInput) (*merge.Job, error) {
	job, err := jobFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateJob(job); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}
	return job, nil
}

// UpdateJob replaces the configuration of an existing job, keeping
// its identity and run history. Changed triggers take effect the next
// time StartTriggers runs.
func (s *MergeService) UpdateJob(ctx context.Context, id string, input CreateJobInput) (*merge.Job, error) {
	existing, err := s.store.GetJob(id)
	if err != nil {
		return nil, err
	}
	job, err := jobFromInput(input)
	if err != nil {
		return nil, err
	}
	job.ID = existing.ID
	job.CreatedAt = existing.CreatedAt
	job.LastRunAt = existing.LastRunAt
	job.LastStatus = existing.LastStatus
	job.LastError = existing.LastError

	if err := s.store.UpdateJob(job); err != nil {
		return nil, fmt.Errorf("persist job: %w", err)
	}
	return job, nil
}

// jobFromInput validates the input and builds the job it describes.
func jobFromInput(input CreateJobInput) (*merge.Job, error) {
	how, err := merge.ParseJoinKind(input.How)
	if err != nil {
		return nil, err
	}
	if input.PrimaryPath == "" || input.OutputPath == "" {
		return nil, fmt.Errorf("primaryPath and outputPath are required")
	}
	if input.ExternalPath == "" && input.SourceQuery == "" {
		return nil, fmt.Errorf("either externalPath or sourceQuery is required")
	}
	if input.PrimaryKey == "" || input.ExternalKey == "" {
		return nil, fmt.Errorf("primaryKey and externalKey are required")
	}

	trigger := input.TriggerType
	if trigger == "" {
		trigger = merge.TriggerManual
	}
	switch trigger {
	case merge.TriggerManual, merge.TriggerFileWatch, merge.TriggerSchedule:
	default:
		return nil, fmt.Errorf("unknown trigger type %q", trigger)
	}
	if trigger == merge.TriggerSchedule && input.TriggerConfig == "" {
		return nil, fmt.Errorf("schedule trigger needs a cron expression")
	}
	if trigger == merge.TriggerFileWatch && input.ExternalPath == "" {
		return nil, fmt.Errorf("file_watch trigger needs a file source")
	}

	return &merge.Job{
		Name:             input.Name,
		PrimaryPath:      input.PrimaryPath,
		ExternalPath:     input.ExternalPath,
		SourceDriver:     input.SourceDriver,
		SourceDSN:        input.SourceDSN,
		SourceQuery:      input.SourceQuery,
		PrimaryKey:       input.PrimaryKey,
		ExternalKey:      input.ExternalKey,
		Delimiter:        input.Delimiter,
		How:              how,
		OutputPath:       input.OutputPath,
		AllowDoubleMerge: input.AllowDoubleMerge,
		TriggerType:      trigger,
		TriggerConfig:    input.TriggerConfig,
		Enabled:          input.Enabled,
	}, nil
}

// GetJob returns a job by ID.
func (s *MergeService) GetJob(id string) (*merge.Job, error) { return s.store.GetJob(id) }

// ListJobs returns all saved jobs.
func (s *MergeService) ListJobs() ([]*merge.Job, error) { return s.store.ListJobs() }

// DeleteJob removes a job and its run logs.
func (s *MergeService) DeleteJob(id string) error { return s.store.DeleteJob(id) }

// RunLogs returns the most recent runs of a job, newest first.
func (s *MergeService) RunLogs(jobID string, limit int) ([]*merge.RunLog, error) {
	return s.store.ListRunLogs(jobID, limit)
}

// ── Run orchestration ──────────────────────────────────────

// RunJob executes a job end to end: load both tables, bind, merge
// under the job's double-merge policy, write the output CSV, and
// record the run. Concurrent runs of the same job are rejected.
func (s *MergeService) RunJob(ctx context.Context, jobID string) (*merge.RunResult, error) {
	job, err := s.store.GetJob(jobID)
	if err != nil {
		return nil, err
	}

	if !s.running.TryAcquire(job.ID) {
		return nil, fmt.Errorf("job %s is already running", job.ID)
	}
	defer s.running.Release(job.ID)

	if err := s.store.UpdateJobStatus(job.ID, "running", ""); err != nil {
		log.Printf("[service] cannot mark job %s running: %v", job.ID, err)
	}
	started := time.Now()

	result := &merge.RunResult{JobID: job.ID}
	out, runErr := s.executeJob(ctx, job)
	result.Duration = time.Since(started)

	switch {
	case runErr == nil:
		result.Status = "success"
		result.Rows = out.NumRows()
		result.Cols = out.NumCols()
	case errors.Is(runErr, merge.ErrMergeCanceled):
		// The guard fired and the job's policy declined. A deliberate
		// outcome, not a fault.
		result.Status = "canceled"
		result.Error = runErr.Error()
	default:
		result.Status = "error"
		result.Error = runErr.Error()
	}

	if err := s.store.UpdateJobStatus(job.ID, result.Status, result.Error); err != nil {
		log.Printf("[service] cannot record status of job %s: %v", job.ID, err)
	}
	if err := s.store.CreateRunLog(&merge.RunLog{
		JobID:      job.ID,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Status:     result.Status,
		Rows:       result.Rows,
		Cols:       result.Cols,
		Error:      result.Error,
	}); err != nil {
		log.Printf("[service] cannot record run of job %s: %v", job.ID, err)
	}
	s.emitter.Emit(ctx, "merge:job:finished", result)

	if runErr != nil && result.Status == "error" {
		return result, runErr
	}
	return result, nil
}

func (s *MergeService) executeJob(ctx context.Context, job *merge.Job) (*table.Table, error) {
	primary, err := ingest.Load(job.PrimaryPath)
	if err != nil {
		return nil, fmt.Errorf("load primary: %w", err)
	}

	policy := job.AllowDoubleMerge
	m := merge.New(primary, func(string) bool { return policy })

	if job.UsesQuery() {
		if err := m.LoadQuery(ctx, job.SourceDriver, job.SourceDSN, job.SourceQuery); err != nil {
			return nil, fmt.Errorf("load external: %w", err)
		}
	} else {
		if err := m.LoadFile(job.ExternalPath); err != nil {
			return nil, fmt.Errorf("load external: %w", err)
		}
	}

	if err := m.Bind(job.PrimaryKey, job.ExternalKey, job.Delimiter); err != nil {
		return nil, err
	}
	out, err := m.Merge(job.How)
	if err != nil {
		return nil, err
	}

	if err := table.WriteCSVFile(job.OutputPath, out); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	return out, nil
}

// ── Triggers ───────────────────────────────────────────────

// StartTriggers wires schedule and file_watch triggers for all
// enabled jobs. Call Stop to tear them down.
func (s *MergeService) StartTriggers(ctx context.Context) error {
	jobs, err := s.store.ListJobs()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel

	var watchJobs []*merge.Job
	for _, job := range jobs {
		if !job.Enabled {
			continue
		}
		switch job.TriggerType {
		case merge.TriggerSchedule:
			s.addSchedule(ctx, job)
		case merge.TriggerFileWatch:
			watchJobs = append(watchJobs, job)
		}
	}

	if s.cronSched != nil {
		s.cronSched.Start()
	}
	if len(watchJobs) > 0 {
		if err := s.startWatcher(ctx, watchJobs); err != nil {
			return err
		}
	}
	return nil
}

func (s *MergeService) addSchedule(ctx context.Context, job *merge.Job) {
	if s.cronSched == nil {
		s.cronSched = cron.New()
	}
	jobID := job.ID
	_, err := s.cronSched.AddFunc(job.TriggerConfig, func() {
		if _, err := s.RunJob(ctx, jobID); err != nil {
			log.Printf("[service] scheduled run of %s failed: %v", jobID, err)
		}
	})
	if err != nil {
		log.Printf("[service] bad cron expression %q for job %s: %v", job.TriggerConfig, job.ID, err)
	}
}

func (s *MergeService) startWatcher(ctx context.Context, jobs []*merge.Job) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	s.watcher = watcher

	byPath := make(map[string][]string) // source path → job IDs
	for _, job := range jobs {
		if err := watcher.Add(job.ExternalPath); err != nil {
			log.Printf("[service] cannot watch %s for job %s: %v", job.ExternalPath, job.ID, err)
			continue
		}
		byPath[job.ExternalPath] = append(byPath[job.ExternalPath], job.ID)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				for _, jobID := range byPath[ev.Name] {
					log.Printf("[service] %s changed, re-running job %s", ev.Name, jobID)
					if _, err := s.RunJob(ctx, jobID); err != nil {
						log.Printf("[service] watched run of %s failed: %v", jobID, err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[service] watcher error: %v", err)
			}
		}
	}()
	return nil
}

// WaitRunning blocks until all in-flight runs complete or ctx is done.
func (s *MergeService) WaitRunning(ctx context.Context) { s.running.WaitIdle(ctx) }

// Stop tears down triggers and waits briefly for in-flight runs.
// Safe to call more than once.
func (s *MergeService) Stop() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.running.WaitIdle(ctx)
}
