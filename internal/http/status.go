package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jisho/internal/database"
	"github.com/mrlokans/jisho/internal/settings"
	"github.com/mrlokans/jisho/internal/tasks"
)

type StatsResponse struct {
	database.Stats
	UpdatedAt string `json:"updated_at,omitempty"`
}

type StatusController struct {
	orchestrator ImportOrchestrator
	db           *database.Database
	settings     *settings.Repository
	cache        *tasks.StatsCache
}

func NewStatusController(orchestrator ImportOrchestrator, db *database.Database, repo *settings.Repository, cache *tasks.StatsCache) *StatusController {
	return &StatusController{
		orchestrator: orchestrator,
		db:           db,
		settings:     repo,
		cache:        cache,
	}
}

// GetStatus reports whether an operation is in flight, its progress,
// and the accumulated error panel of the latest operation.
func (s *StatusController) GetStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.orchestrator.Status())
}

// GetStats serves the cached storage statistics. When no refresh has
// populated the cache yet the statistics are computed directly.
func (s *StatusController) GetStats(ctx *gin.Context) {
	if s.cache != nil {
		stats, updatedAt := s.cache.Get()
		if !updatedAt.IsZero() {
			ctx.JSON(http.StatusOK, StatsResponse{
				Stats:     stats,
				UpdatedAt: updatedAt.Format(time.RFC3339),
			})
			return
		}
	}

	stats, err := s.db.Stats(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}
	ctx.JSON(http.StatusOK, StatsResponse{Stats: stats})
}

// GetOptions serves the full configuration document with all profiles.
func (s *StatusController) GetOptions(ctx *gin.Context) {
	full, err := s.settings.GetFullConfig(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load configuration"})
		return
	}
	ctx.JSON(http.StatusOK, full)
}
