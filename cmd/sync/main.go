package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"sprachtrainer/internal/config"
	"sprachtrainer/internal/database"
	"sprachtrainer/internal/repository"
	"sprachtrainer/internal/service"
	"sprachtrainer/internal/tasks"
)

// One-shot sync runner. Runs a single task-spec sync pass against the
// configured database and prints the resulting stats, for cron jobs and
// operational use.
func main() {
	var jsonOut bool
	flag.BoolVar(&jsonOut, "json", false, "print the sync result as JSON")
	flag.Parse()

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	registry := tasks.DefaultRegistry()
	lexemeRepo := repository.NewLexemeRepository(db)
	taskSpecRepo := repository.NewTaskSpecRepository(db)
	checkpointRepo := repository.NewCheckpointRepository(db)

	syncService := service.NewSyncService(lexemeRepo, taskSpecRepo, checkpointRepo, registry, cfg.SyncPageSize, cfg.SyncMaxLexemes)

	result, err := syncService.Run()
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		return
	}

	log.Printf("Sync finished in %s: considered=%d processed=%d inserted=%d updated=%d deleted=%d checkpointChanged=%t",
		result.Duration, result.Stats.Considered, result.Stats.Processed,
		result.Stats.Inserted, result.Stats.Updated, result.Stats.Deleted,
		result.CheckpointChanged)
}
