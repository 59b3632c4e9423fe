package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"tablemerge/internal/service"
)

func (s *Server) registerJobTools() {
	s.mcp.AddTool(mcp.NewTool("create_merge_job",
		mcp.WithDescription("Save a re-runnable merge job. The job loads both tables, binds the keys, merges, and writes the output CSV. Triggers: manual (default), schedule (cron expression in triggerConfig), file_watch (re-run when the external file changes)."),
		mcp.WithString("name", mcp.Description("Job name"), mcp.Required()),
		mcp.WithString("primaryPath", mcp.Description("Primary table file"), mcp.Required()),
		mcp.WithString("externalPath", mcp.Description("External table file (omit when using a database source)")),
		mcp.WithString("sourceDriver", mcp.Description("Database driver: mysql, postgres, or sqlite")),
		mcp.WithString("sourceDsn", mcp.Description("Database DSN")),
		mcp.WithString("sourceQuery", mcp.Description("Query producing the external table")),
		mcp.WithString("primaryKey", mcp.Description("Key column in the primary table"), mcp.Required()),
		mcp.WithString("externalKey", mcp.Description("Key column in the external table"), mcp.Required()),
		mcp.WithString("delimiter", mcp.Description("Composite-key delimiter (optional)")),
		mcp.WithString("how", mcp.Description("Join kind: left (default), right, inner, outer")),
		mcp.WithString("outputPath", mcp.Description("Where the merged CSV is written"), mcp.Required()),
		mcp.WithBoolean("allowDoubleMerge", mcp.Description("Proceed when a double merge is detected")),
		mcp.WithString("triggerType", mcp.Description("manual | schedule | file_watch")),
		mcp.WithString("triggerConfig", mcp.Description("Cron expression for schedule triggers")),
	), s.handleCreateJob)

	s.mcp.AddTool(mcp.NewTool("update_merge_job",
		mcp.WithDescription("Replace the configuration of a saved merge job. Fields are full-replacement, as for create_merge_job; the job keeps its ID and run history. Trigger changes take effect the next time the server starts."),
		mcp.WithString("jobId", mcp.Description("Merge job ID"), mcp.Required()),
		mcp.WithString("name", mcp.Description("Job name"), mcp.Required()),
		mcp.WithString("primaryPath", mcp.Description("Primary table file"), mcp.Required()),
		mcp.WithString("externalPath", mcp.Description("External table file (omit when using a database source)")),
		mcp.WithString("sourceDriver", mcp.Description("Database driver: mysql, postgres, or sqlite")),
		mcp.WithString("sourceDsn", mcp.Description("Database DSN")),
		mcp.WithString("sourceQuery", mcp.Description("Query producing the external table")),
		mcp.WithString("primaryKey", mcp.Description("Key column in the primary table"), mcp.Required()),
		mcp.WithString("externalKey", mcp.Description("Key column in the external table"), mcp.Required()),
		mcp.WithString("delimiter", mcp.Description("Composite-key delimiter (optional)")),
		mcp.WithString("how", mcp.Description("Join kind: left (default), right, inner, outer")),
		mcp.WithString("outputPath", mcp.Description("Where the merged CSV is written"), mcp.Required()),
		mcp.WithBoolean("allowDoubleMerge", mcp.Description("Proceed when a double merge is detected")),
		mcp.WithString("triggerType", mcp.Description("manual | schedule | file_watch")),
		mcp.WithString("triggerConfig", mcp.Description("Cron expression for schedule triggers")),
		mcp.WithBoolean("enabled", mcp.Description("Whether the job's trigger is active (default true)")),
	), s.handleUpdateJob)

	s.mcp.AddTool(mcp.NewTool("delete_merge_job",
		mcp.WithDescription("Delete a saved merge job and its run history"),
		mcp.WithString("jobId", mcp.Description("Merge job ID"), mcp.Required()),
	), s.handleDeleteJob)

	s.mcp.AddTool(mcp.NewTool("list_merge_jobs",
		mcp.WithDescription("List saved merge jobs with their last run status"),
	), s.handleListJobs)

	s.mcp.AddTool(mcp.NewTool("run_merge_job",
		mcp.WithDescription("Execute a saved merge job now. Overwrites the job's output file on success."),
		mcp.WithString("jobId", mcp.Description("Merge job ID"), mcp.Required()),
	), s.handleRunJob)

	s.mcp.AddTool(mcp.NewTool("merge_job_runs",
		mcp.WithDescription("Show the run history of a merge job, newest first"),
		mcp.WithString("jobId", mcp.Description("Merge job ID"), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum runs to return (default 20)")),
	), s.handleJobRuns)
}

// jobInputFromArgs maps the shared create/update tool arguments onto
// the service input. A missing enabled flag means enabled.
func jobInputFromArgs(args map[string]any) service.CreateJobInput {
	str := func(key string) string {
		v, _ := args[key].(string)
		return v
	}
	allow, _ := args["allowDoubleMerge"].(bool)
	enabled := true
	if v, ok := args["enabled"].(bool); ok {
		enabled = v
	}

	return service.CreateJobInput{
		Name:             str("name"),
		PrimaryPath:      str("primaryPath"),
		ExternalPath:     str("externalPath"),
		SourceDriver:     str("sourceDriver"),
		SourceDSN:        str("sourceDsn"),
		SourceQuery:      str("sourceQuery"),
		PrimaryKey:       str("primaryKey"),
		ExternalKey:      str("externalKey"),
		Delimiter:        str("delimiter"),
		How:              str("how"),
		OutputPath:       str("outputPath"),
		AllowDoubleMerge: allow,
		TriggerType:      str("triggerType"),
		TriggerConfig:    str("triggerConfig"),
		Enabled:          enabled,
	}
}

func (s *Server) handleCreateJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("job store not configured")
	}

	job, err := s.jobs.CreateJob(ctx, jobInputFromArgs(req.GetArguments()))
	if err != nil {
		return nil, err
	}
	return jsonResult(job)
}

func (s *Server) handleUpdateJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("job store not configured")
	}
	args := req.GetArguments()
	jobID, _ := args["jobId"].(string)

	job, err := s.jobs.UpdateJob(ctx, jobID, jobInputFromArgs(args))
	if err != nil {
		return nil, err
	}
	return jsonResult(job)
}

func (s *Server) handleDeleteJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("job store not configured")
	}
	jobID, _ := req.GetArguments()["jobId"].(string)

	if err := s.jobs.DeleteJob(jobID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted merge job %s", jobID)), nil
}

func (s *Server) handleListJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("job store not configured")
	}
	jobs, err := s.jobs.ListJobs()
	if err != nil {
		return nil, err
	}
	return jsonResult(jobs)
}

func (s *Server) handleRunJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("job store not configured")
	}
	jobID, _ := req.GetArguments()["jobId"].(string)

	result, err := s.jobs.RunJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return jsonResult(result)
}

func (s *Server) handleJobRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("job store not configured")
	}
	args := req.GetArguments()
	jobID, _ := args["jobId"].(string)
	limit := 0
	if v, ok := args["limit"].(float64); ok {
		limit = int(v)
	}

	logs, err := s.jobs.RunLogs(jobID, limit)
	if err != nil {
		return nil, err
	}
	return jsonResult(logs)
}
