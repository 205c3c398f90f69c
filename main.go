package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/fmuoria/resume-tailor/internal/backend"
	"github.com/fmuoria/resume-tailor/internal/config"
	"github.com/fmuoria/resume-tailor/internal/export"
	"github.com/fmuoria/resume-tailor/internal/gui"
	"github.com/fmuoria/resume-tailor/internal/logger"
	"github.com/fmuoria/resume-tailor/internal/store"
)

func main() {
	stubAddr := flag.String("stub-backend", "", "serve the stub backend on this address instead of starting the GUI, e.g. :8000")
	exportPath := flag.String("export-history", "", "write the generation history to this .xlsx file and exit")
	envFile := flag.String("env", ".env", "dotenv file with BACKEND_URL and friends")
	verbose := flag.Bool("verbose", false, "log to stderr at debug level")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		cfg = config.DefaultConfig()
	}
	if err := cfg.ApplyEnv(*envFile); err != nil {
		log.Printf("Failed to apply environment: %v", err)
	}

	closer := logger.Init(logger.Config{DataDir: cfg.DataDir, Verbose: *verbose || *stubAddr != ""})
	defer closer.Close()

	if *stubAddr != "" {
		runStubBackend(*stubAddr)
		return
	}

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.DatabasePath())
	if err != nil {
		// Folder preferences and history are unavailable, the rest still works
		slog.Error("failed to open settings database", "path", cfg.DatabasePath(), "error", err)
	} else {
		defer db.Close()
	}

	if *exportPath != "" {
		if db == nil {
			log.Fatalf("Cannot export history: settings database unavailable")
		}
		entries, err := db.History().List(ctx, 0)
		if err != nil {
			log.Fatalf("Failed to read history: %v", err)
		}
		if err := export.ExportHistory(entries, *exportPath); err != nil {
			log.Fatalf("Failed to export history: %v", err)
		}
		fmt.Printf("Exported %d entries to %s\n", len(entries), *exportPath)
		return
	}

	gui.NewApp(gui.Options{Config: cfg, DB: db}).Run()
}

func runStubBackend(addr string) {
	server := backend.NewDemoServer()

	fmt.Printf("Starting stub backend on %s...\n", addr)
	fmt.Printf("Endpoints:\n")
	fmt.Printf("  POST /login - Exchange demo/demo for a token\n")
	fmt.Printf("  GET /profiles - List profiles\n")
	fmt.Printf("  POST /generate_dynamic_resume_pdf - Generate a tailored PDF\n")

	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
