package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"tablemerge/internal/ingest"
	"tablemerge/internal/merge"
	"tablemerge/internal/table"
)

func (s *Server) registerTableTools() {
	s.mcp.AddTool(mcp.NewTool("load_primary",
		mcp.WithDescription("Load the primary table (the dataset being enriched) from a file. Supported: .csv, .tsv, .xlsx, .xls, .json, .db/.sqlite."),
		mcp.WithString("path", mcp.Description("Path to the file"), mcp.Required()),
	), s.handleLoadPrimary)

	s.mcp.AddTool(mcp.NewTool("load_external",
		mcp.WithDescription("Load the external table (the enrichment source) from a file. Replaces any previously loaded external table and clears the key binding."),
		mcp.WithString("path", mcp.Description("Path to the file"), mcp.Required()),
	), s.handleLoadExternal)

	s.mcp.AddTool(mcp.NewTool("preview_external",
		mcp.WithDescription("Render the first rows of the loaded external table as text"),
		mcp.WithNumber("rows", mcp.Description("Number of rows to show (default 5)")),
	), s.handlePreviewExternal)

	s.mcp.AddTool(mcp.NewTool("bind_merge_keys",
		mcp.WithDescription("Bind the key columns for the next merge. Set delimiter when one external key cell packs several identifiers (e.g. \"A1,A2,A3\")."),
		mcp.WithString("primaryColumn", mcp.Description("Key column in the primary table"), mcp.Required()),
		mcp.WithString("externalColumn", mcp.Description("Key column in the external table"), mcp.Required()),
		mcp.WithString("delimiter", mcp.Description("Composite-key delimiter (optional)")),
	), s.handleBindKeys)

	s.mcp.AddTool(mcp.NewTool("run_merge",
		mcp.WithDescription("Merge the primary table with the external table on the bound keys and write the result to a CSV file. If the external table's columns already exist in the primary table the merge is treated as a likely double merge and only proceeds when allowDoubleMerge is true."),
		mcp.WithString("how", mcp.Description("Join kind: left (default), right, inner, outer")),
		mcp.WithString("outputPath", mcp.Description("Where to write the merged CSV"), mcp.Required()),
		mcp.WithBoolean("allowDoubleMerge", mcp.Description("Proceed even when a double merge is detected (default false)")),
	), s.handleRunMerge)
}

func (s *Server) handleLoadPrimary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, _ := req.GetArguments()["path"].(string)

	primary, err := ingest.Load(path)
	if err != nil {
		return nil, err
	}
	// The confirmation decision arrives per run_merge call, so the
	// session engine starts with the declining default.
	s.session = merge.New(primary, nil)

	return textResult(fmt.Sprintf("Loaded primary table from %s, shape %s", path, primary.Shape())), nil
}

func (s *Server) handleLoadExternal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.engine()
	if err != nil {
		return nil, err
	}
	path, _ := req.GetArguments()["path"].(string)

	if err := m.LoadFile(path); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Loaded external table from %s, shape %s", path, m.External().Shape())), nil
}

func (s *Server) handlePreviewExternal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.engine()
	if err != nil {
		return nil, err
	}

	n := 0
	if v, ok := req.GetArguments()["rows"].(float64); ok {
		n = int(v)
	}

	out, err := m.Preview(n)
	if err != nil {
		return nil, err
	}
	return textResult(out), nil
}

func (s *Server) handleBindKeys(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.engine()
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	primaryCol, _ := args["primaryColumn"].(string)
	externalCol, _ := args["externalColumn"].(string)
	delimiter, _ := args["delimiter"].(string)

	if err := m.Bind(primaryCol, externalCol, delimiter); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Merging on primary column %q, external column %q", primaryCol, externalCol)
	if delimiter != "" {
		msg += fmt.Sprintf("; composite keys split on %q", delimiter)
	}
	return textResult(msg), nil
}

func (s *Server) handleRunMerge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.engine()
	if err != nil {
		return nil, err
	}
	args := req.GetArguments()
	how, _ := args["how"].(string)
	outputPath, _ := args["outputPath"].(string)
	allow, _ := args["allowDoubleMerge"].(bool)

	if outputPath == "" {
		return nil, fmt.Errorf("outputPath is required")
	}

	out, err := m.MergeWithConfirm(merge.JoinKind(how), func(string) bool { return allow })
	if errors.Is(err, merge.ErrMergeCanceled) {
		return textResult("Merge canceled: the external table's columns already exist in the primary table " +
			"(likely double merge). Pass allowDoubleMerge=true to proceed anyway."), nil
	}
	if err != nil {
		return nil, err
	}

	if err := table.WriteCSVFile(outputPath, out); err != nil {
		return nil, err
	}
	if how == "" {
		how = string(merge.JoinLeft)
	}
	return jsonResult(map[string]any{
		"outputPath": outputPath,
		"rows":       out.NumRows(),
		"cols":       out.NumCols(),
		"how":        how,
	})
}
