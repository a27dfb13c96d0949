package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/jisho/internal/entities"
)

// StartImportSession records the beginning of one file's import.
func (d *Database) StartImportSession(ctx context.Context, filename string) (*entities.ImportSession, error) {
	session := &entities.ImportSession{
		UUID:      uuid.NewString(),
		Filename:  filename,
		Status:    entities.ImportStatusRunning,
		StartedAt: time.Now(),
	}
	if err := d.DB.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// CompleteImportSession marks a session finished.
func (d *Database) CompleteImportSession(ctx context.Context, session *entities.ImportSession, dictionary string, termCount int) error {
	session.Status = entities.ImportStatusCompleted
	session.Dictionary = dictionary
	session.TermCount = termCount
	session.CompletedAt = nowPtr()
	return d.DB.WithContext(ctx).Save(session).Error
}

// FailImportSession marks a session failed with the given error.
func (d *Database) FailImportSession(ctx context.Context, session *entities.ImportSession, importErr error) error {
	session.Status = entities.ImportStatusFailed
	if importErr != nil {
		session.Error = importErr.Error()
	}
	session.CompletedAt = nowPtr()
	return d.DB.WithContext(ctx).Save(session).Error
}

// GetImportSessions lists sessions, newest first.
func (d *Database) GetImportSessions(ctx context.Context, limit int) ([]entities.ImportSession, error) {
	var sessions []entities.ImportSession
	q := d.DB.WithContext(ctx).Order("started_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&sessions).Error
	return sessions, err
}
