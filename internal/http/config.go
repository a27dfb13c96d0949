package http

import (
	"context"

	"github.com/mrlokans/jisho/internal/database"
	"github.com/mrlokans/jisho/internal/services"
	"github.com/mrlokans/jisho/internal/settings"
	"github.com/mrlokans/jisho/internal/tasks"
)

// ImportOrchestrator is the subset of the import orchestrator the
// HTTP controllers depend on.
type ImportOrchestrator interface {
	Busy() bool
	Status() services.Status
	ImportFiles(ctx context.Context, files []services.InputFile)
	Purge(ctx context.Context)
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Orchestrator ImportOrchestrator
	Database     *database.Database
	Settings     *settings.Repository

	// Cached statistics served by GET /api/stats (optional; the
	// stats endpoint falls back to a direct query when unset)
	StatsCache *tasks.StatsCache

	// Application info
	Version string
}
