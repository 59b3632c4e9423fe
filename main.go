package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tablemerge/internal/ingest"
	mcpserver "tablemerge/internal/mcp"
	"tablemerge/internal/merge"
	"tablemerge/internal/service"
	"tablemerge/internal/storage"
	"tablemerge/internal/table"
)

func main() {
	var (
		primaryPath  = flag.String("primary", "", "primary table file (csv/tsv/xlsx/xls/json/sqlite)")
		externalPath = flag.String("external", "", "external table file")
		driver       = flag.String("driver", "", "database driver for the external table (mysql|postgres|sqlite)")
		dsn          = flag.String("dsn", "", "database DSN for -driver")
		query        = flag.String("query", "", "query producing the external table")
		primaryKey   = flag.String("on", "", "key column in the primary table")
		externalKey  = flag.String("ext-key", "", "key column in the external table (defaults to -on)")
		delimiter    = flag.String("delimiter", "", "composite-key delimiter in the external key column")
		how          = flag.String("how", "left", "join kind: left|right|inner|outer")
		outputPath   = flag.String("out", "", "output CSV path (default: print preview of the result)")
		previewRows  = flag.Int("preview", 0, "preview the first N rows of the external table and exit")
		yes          = flag.Bool("yes", false, "answer yes to the double-merge confirmation")
		serveMCP     = flag.Bool("serve-mcp", false, "run as a stdio MCP server")
		jobsDB       = flag.String("jobs-db", defaultJobsDB(), "SQLite file holding saved merge jobs")
	)
	flag.Parse()

	if *serveMCP {
		runMCP(*jobsDB)
		return
	}

	if *primaryPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	primary, err := ingest.Load(*primaryPath)
	if err != nil {
		log.Fatalf("load primary: %v", err)
	}

	confirm := stdinConfirm
	if *yes {
		confirm = func(string) bool { return true }
	}
	m := merge.New(primary, confirm)

	ctx := context.Background()
	switch {
	case *query != "":
		if err := m.LoadQuery(ctx, *driver, *dsn, *query); err != nil {
			log.Fatalf("load external: %v", err)
		}
	case *externalPath != "":
		if err := m.LoadFile(*externalPath); err != nil {
			log.Fatalf("load external: %v", err)
		}
	default:
		log.Fatal("either -external or -driver/-dsn/-query is required")
	}

	if *previewRows > 0 {
		out, err := m.Preview(*previewRows)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(out)
		return
	}

	if *primaryKey == "" {
		log.Fatal("-on is required")
	}
	extKey := *externalKey
	if extKey == "" {
		extKey = *primaryKey
	}
	if err := m.Bind(*primaryKey, extKey, *delimiter); err != nil {
		log.Fatal(err)
	}

	result, err := m.Merge(merge.JoinKind(*how))
	if errors.Is(err, merge.ErrMergeCanceled) {
		fmt.Println("Merge operation canceled.")
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}

	if *outputPath != "" {
		if err := table.WriteCSVFile(*outputPath, result); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Wrote %s, shape %s\n", *outputPath, result.Shape())
		return
	}
	table.Render(os.Stdout, result, 20)
}

// stdinConfirm prompts on the terminal and reads one line. Anything
// but an affirmative token is a no.
func stdinConfirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return merge.Affirmative(line)
}

func defaultJobsDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tablemerge.db"
	}
	return filepath.Join(home, ".local", "share", "tablemerge", "jobs.db")
}

// runMCP runs the stdio MCP server with the job service and its
// triggers until interrupted.
func runMCP(jobsDB string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := storage.Open(jobsDB)
	if err != nil {
		log.Fatalf("open job store: %v", err)
	}
	defer db.Close()

	svc := service.NewMergeService(storage.NewJobStore(db), service.NopEmitter{})
	if err := svc.StartTriggers(ctx); err != nil {
		log.Fatalf("start triggers: %v", err)
	}
	defer svc.Stop()

	srv := mcpserver.New(mcpserver.Deps{Jobs: svc})
	if err := srv.ServeStdio(); err != nil && ctx.Err() == nil {
		log.Fatalf("mcp server: %v", err)
	}

	// Let trigger-started runs finish before the service is torn down.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer drainCancel()
	svc.WaitRunning(drainCtx)
}
