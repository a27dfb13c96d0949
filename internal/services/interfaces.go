package services

import (
	"context"

	"github.com/mrlokans/jisho/internal/database"
	"github.com/mrlokans/jisho/internal/entities"
	"github.com/mrlokans/jisho/internal/importer"
)

// StoreHandle is an exclusive store handle for one file's import. It
// must be closed exactly once; Close is best-effort and never fails.
type StoreHandle interface {
	importer.StoreHandle
	Close()
}

// Store is the persistent dictionary storage the orchestrator
// mutates.
type Store interface {
	// Open acquires an exclusive handle, or fails with no partial
	// handle returned.
	Open(ctx context.Context) (StoreHandle, error)

	// Purge deletes all dictionary data.
	Purge(ctx context.Context) error
}

// DictionaryImporter parses an archive's bytes and writes its records
// through the given handle.
type DictionaryImporter interface {
	ImportDictionary(ctx context.Context, handle importer.StoreHandle, content []byte, details importer.Details, onProgress importer.ProgressFunc) (*importer.Result, error)
}

// SettingsSynchronizer keeps per-profile configuration consistent
// with store contents. Both methods return per-target errors first
// and a transport-level failure second.
type SettingsSynchronizer interface {
	AddDictionary(ctx context.Context, sequenced bool, title string) ([]error, error)
	ClearDictionaries(ctx context.Context) ([]error, error)
}

// UpdateNotifier broadcasts store update events. Fire-and-forget.
type UpdateNotifier interface {
	Notify(kind, reason string)
}

// StatsRefresher recomputes storage statistics. Fire-and-forget.
type StatsRefresher interface {
	Refresh()
}

// SessionRecorder keeps the per-file import audit trail. Optional.
type SessionRecorder interface {
	StartImportSession(ctx context.Context, filename string) (*entities.ImportSession, error)
	CompleteImportSession(ctx context.Context, session *entities.ImportSession, dictionary string, termCount int) error
	FailImportSession(ctx context.Context, session *entities.ImportSession, importErr error) error
}

// DatabaseStore adapts the concrete database to the Store interface.
type DatabaseStore struct {
	DB        *database.Database
	BatchSize int
}

func (s *DatabaseStore) Open(ctx context.Context) (StoreHandle, error) {
	handle, err := s.DB.Open(ctx)
	if err != nil {
		return nil, err
	}
	if s.BatchSize > 0 {
		handle.SetBatchSize(s.BatchSize)
	}
	return handle, nil
}

func (s *DatabaseStore) Purge(ctx context.Context) error {
	return s.DB.Purge(ctx)
}
