package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"

	"github.com/migratekit/intent-reconciler/internal/api"
	"github.com/migratekit/intent-reconciler/internal/config"
	"github.com/migratekit/intent-reconciler/internal/engine"
	"github.com/migratekit/intent-reconciler/internal/kb"
	"github.com/migratekit/intent-reconciler/internal/models"
	"github.com/migratekit/intent-reconciler/internal/registry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-v" {
			fmt.Printf("reconciler %s (commit: %s, built: %s)\n", version, commit, date)
			os.Exit(0)
		}
	}

	cfg := config.Parse()

	reg, err := registry.Load(cfg.Registry)
	if err != nil {
		log.Fatal("Failed to load field registry", "path", cfg.Registry, "err", err)
	}
	log.Info("Loaded field registry", "path", cfg.Registry, "version", reg.Version, "keys", reg.Keys())

	knowledge, err := kb.Load(cfg.KB)
	if err != nil {
		log.Fatal("Failed to load capability knowledge base", "path", cfg.KB, "err", err)
	}
	log.Info("Loaded knowledge base", "path", cfg.KB, "version", knowledge.Version, "capabilities", knowledge.Size())

	eng := engine.New(reg, knowledge, engine.Options{
		DriftTolerance:           cfg.DriftTolerance,
		MostlyAutomaticThreshold: cfg.MostlyAutomaticThreshold,
	})

	server := &api.Server{
		Engine:    eng,
		Workloads: models.NewWorkloadStore(),
		Jobs:      models.NewJobStore(),
		Results:   api.NewResultStore(),
	}

	log.Info("Intent reconciler starting", "version", version, "listen", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, api.NewRouter(server)); err != nil {
		log.Fatal("Server stopped", "err", err)
	}
}
