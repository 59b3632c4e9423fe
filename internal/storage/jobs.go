package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tablemerge/internal/merge"
)

// JobStore persists merge jobs and their run logs. Job configuration
// is stored as a JSON blob; the columns queried on (trigger, status)
// are broken out.
type JobStore struct {
	db *DB
}

// NewJobStore creates a JobStore over an open DB.
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

// ── Job CRUD ───────────────────────────────────────────────

func (s *JobStore) CreateJob(job *merge.Job) error {
	now := time.Now()
	job.ID = uuid.New().String()
	job.CreatedAt = now
	job.UpdatedAt = now

	cfg, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	_, err = s.db.conn.Exec(
		`INSERT INTO merge_jobs (id, name, config, trigger_type, trigger_config, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Name, string(cfg), job.TriggerType, job.TriggerConfig, job.Enabled,
		job.CreatedAt, job.UpdatedAt,
	)
	return err
}

func (s *JobStore) GetJob(id string) (*merge.Job, error) {
	var cfg string
	var lastRunAt sql.NullTime
	var lastStatus, lastError string

	err := s.db.conn.QueryRow(
		`SELECT config, last_run_at, last_status, last_error FROM merge_jobs WHERE id = ?`, id,
	).Scan(&cfg, &lastRunAt, &lastStatus, &lastError)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("merge job not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	job := &merge.Job{}
	if err := json.Unmarshal([]byte(cfg), job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	if lastRunAt.Valid {
		job.LastRunAt = lastRunAt.Time
	}
	job.LastStatus = lastStatus
	job.LastError = lastError
	return job, nil
}

func (s *JobStore) UpdateJob(job *merge.Job) error {
	job.UpdatedAt = time.Now()
	cfg, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	_, err = s.db.conn.Exec(
		`UPDATE merge_jobs SET name=?, config=?, trigger_type=?, trigger_config=?, enabled=?, updated_at=?
		 WHERE id=?`,
		job.Name, string(cfg), job.TriggerType, job.TriggerConfig, job.Enabled, job.UpdatedAt, job.ID,
	)
	return err
}

// UpdateJobStatus records the outcome of the latest run on the job row.
func (s *JobStore) UpdateJobStatus(id, status, errMsg string) error {
	_, err := s.db.conn.Exec(
		`UPDATE merge_jobs SET last_run_at=?, last_status=?, last_error=?, updated_at=? WHERE id=?`,
		time.Now(), status, errMsg, time.Now(), id,
	)
	return err
}

func (s *JobStore) DeleteJob(id string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM merge_run_logs WHERE job_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.conn.Exec(`DELETE FROM merge_jobs WHERE id = ?`, id)
	return err
}

func (s *JobStore) ListJobs() ([]*merge.Job, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, config, last_run_at, last_status, last_error FROM merge_jobs ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*merge.Job
	for rows.Next() {
		var id, cfg, lastStatus, lastError string
		var lastRunAt sql.NullTime
		if err := rows.Scan(&id, &cfg, &lastRunAt, &lastStatus, &lastError); err != nil {
			return nil, err
		}
		job := &merge.Job{}
		if err := json.Unmarshal([]byte(cfg), job); err != nil {
			return nil, fmt.Errorf("decode job %s: %w", id, err)
		}
		if lastRunAt.Valid {
			job.LastRunAt = lastRunAt.Time
		}
		job.LastStatus = lastStatus
		job.LastError = lastError
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ── Run logs ───────────────────────────────────────────────

func (s *JobStore) CreateRunLog(l *merge.RunLog) error {
	l.ID = uuid.New().String()
	_, err := s.db.conn.Exec(
		`INSERT INTO merge_run_logs (id, job_id, started_at, finished_at, status, rows, cols, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.JobID, l.StartedAt, l.FinishedAt, l.Status, l.Rows, l.Cols, l.Error,
	)
	return err
}

// ListRunLogs returns the most recent runs for a job, newest first.
func (s *JobStore) ListRunLogs(jobID string, limit int) ([]*merge.RunLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.conn.Query(
		`SELECT id, job_id, started_at, finished_at, status, rows, cols, error
		 FROM merge_run_logs WHERE job_id = ? ORDER BY started_at DESC LIMIT ?`, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*merge.RunLog
	for rows.Next() {
		l := &merge.RunLog{}
		if err := rows.Scan(&l.ID, &l.JobID, &l.StartedAt, &l.FinishedAt,
			&l.Status, &l.Rows, &l.Cols, &l.Error); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
