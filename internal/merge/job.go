package merge

import "time"

// ── Merge jobs ─────────────────────────────────────────────
// A Job is a saved, re-runnable merge: where the tables come from,
// how they are keyed, and where the result goes. Jobs are persisted
// by the storage layer and orchestrated by the service layer.

// Trigger types for saved jobs.
const (
	TriggerManual    = "manual"
	TriggerFileWatch = "file_watch" // re-run when the external source file changes
	TriggerSchedule  = "schedule"   // re-run on a cron expression
)

// Job holds the configuration for a saved merge.
type Job struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Primary table source (CSV/TSV/spreadsheet/SQLite file).
	PrimaryPath string `json:"primaryPath"`

	// External table source: either a file path or a database query.
	ExternalPath string `json:"externalPath,omitempty"`
	SourceDriver string `json:"sourceDriver,omitempty"` // "mysql" | "postgres" | "sqlite"
	SourceDSN    string `json:"sourceDsn,omitempty"`
	SourceQuery  string `json:"sourceQuery,omitempty"`

	PrimaryKey  string   `json:"primaryKey"`
	ExternalKey string   `json:"externalKey"`
	Delimiter   string   `json:"delimiter,omitempty"`
	How         JoinKind `json:"how"`

	OutputPath string `json:"outputPath"`

	// AllowDoubleMerge is the job's canned confirmation policy: when
	// true the guard's prompt is answered yes, otherwise the run is
	// canceled on detection.
	AllowDoubleMerge bool `json:"allowDoubleMerge"`

	TriggerType   string `json:"triggerType"`   // "manual" | "schedule" | "file_watch"
	TriggerConfig string `json:"triggerConfig"` // cron expression for "schedule"
	Enabled       bool   `json:"enabled"`

	LastRunAt  time.Time `json:"lastRunAt"`
	LastStatus string    `json:"lastStatus"` // "success" | "canceled" | "error" | "running" | ""
	LastError  string    `json:"lastError"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UsesQuery reports whether the external table comes from a database
// query rather than a file.
func (j *Job) UsesQuery() bool { return j.SourceQuery != "" }

// RunResult is the outcome of running a job once.
type RunResult struct {
	JobID    string        `json:"jobId"`
	Status   string        `json:"status"` // "success" | "canceled" | "error"
	Rows     int           `json:"rows"`
	Cols     int           `json:"cols"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// RunLog is a historical record of one job run.
type RunLog struct {
	ID         string    `json:"id"`
	JobID      string    `json:"jobId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Status     string    `json:"status"`
	Rows       int       `json:"rows"`
	Cols       int       `json:"cols"`
	Error      string    `json:"error,omitempty"`
}
