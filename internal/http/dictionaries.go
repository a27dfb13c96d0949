package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/jisho/internal/database"
	"github.com/mrlokans/jisho/internal/services"
)

const (
	// Maximum size for a single uploaded dictionary archive (256 MB)
	maxArchiveSize = 256 * 1024 * 1024

	// Form field carrying the uploaded archives
	archivesField = "archives"

	defaultSessionLimit = 50
)

type DictionariesController struct {
	orchestrator ImportOrchestrator
	db           *database.Database
}

func NewDictionariesController(orchestrator ImportOrchestrator, db *database.Database) *DictionariesController {
	return &DictionariesController{
		orchestrator: orchestrator,
		db:           db,
	}
}

// Import accepts one or more dictionary archives as a multipart upload
// and runs them through the import pipeline in order. While another
// import or purge is running the request is rejected with 409.
func (d *DictionariesController) Import(ctx *gin.Context) {
	if d.orchestrator.Busy() {
		ctx.JSON(http.StatusConflict, gin.H{"busy": true})
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	uploads := form.File[archivesField]
	if len(uploads) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("no files provided in field %q", archivesField)})
		return
	}

	files := make([]services.InputFile, 0, len(uploads))
	for _, header := range uploads {
		content, err := readUpload(header)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s: %v", header.Filename, err)})
			return
		}
		files = append(files, services.InputFile{
			Name:    filepath.Base(header.Filename),
			Content: content,
		})
	}

	d.orchestrator.ImportFiles(ctx.Request.Context(), files)
	ctx.JSON(http.StatusOK, d.orchestrator.Status())
}

// Purge drops all imported dictionaries and clears derived
// configuration. Rejected with 409 while another operation is running.
func (d *DictionariesController) Purge(ctx *gin.Context) {
	if d.orchestrator.Busy() {
		ctx.JSON(http.StatusConflict, gin.H{"busy": true})
		return
	}

	d.orchestrator.Purge(ctx.Request.Context())
	ctx.JSON(http.StatusOK, d.orchestrator.Status())
}

func (d *DictionariesController) List(ctx *gin.Context) {
	dictionaries, err := d.db.GetDictionaries(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list dictionaries"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"dictionaries": dictionaries,
		"count":        len(dictionaries),
	})
}

func (d *DictionariesController) Sessions(ctx *gin.Context) {
	limit := defaultSessionLimit
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	sessions, err := d.db.GetImportSessions(ctx.Request.Context(), limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list import sessions"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	if header.Size > maxArchiveSize {
		return nil, fmt.Errorf("file too large (max %d MB)", maxArchiveSize/(1024*1024))
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload")
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxArchiveSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload")
	}
	if int64(len(content)) > maxArchiveSize {
		return nil, fmt.Errorf("file too large (max %d MB)", maxArchiveSize/(1024*1024))
	}
	return content, nil
}
