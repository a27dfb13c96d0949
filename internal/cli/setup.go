package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mrlokans/jisho/internal/database"
	"github.com/mrlokans/jisho/internal/importer"
	"github.com/mrlokans/jisho/internal/services"
	"github.com/mrlokans/jisho/internal/settings"
)

// openOrchestrator wires a standalone import orchestrator on top of a
// local database file. Used by the CLI commands, which run without the
// HTTP server or the task queue.
func openOrchestrator(dbPath string, details importer.Details) (*services.Orchestrator, *database.Database, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := settings.NewRepository(db.DB)
	orch := services.NewOrchestrator(services.OrchestratorConfig{
		Store:    &services.DatabaseStore{DB: db, BatchSize: details.BatchSize},
		Importer: importer.NewImporter(),
		Settings: settings.NewSynchronizer(repo),
		Sessions: db,
		Details:  details,
	})
	return orch, db, nil
}
