package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/jisho/internal/entities"
)

func setupTestDB(t *testing.T) *Database {
	dbPath := filepath.Join(t.TempDir(), "test_store_"+t.Name()+".db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	return db
}

func TestOpen_Exclusive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	handle, err := db.Open(ctx)
	require.NoError(t, err)

	_, err = db.Open(ctx)
	assert.ErrorIs(t, err, ErrStoreBusy)

	handle.Close()

	// Released handle allows a new one
	handle2, err := db.Open(ctx)
	require.NoError(t, err)
	handle2.Close()
}

func TestHandle_CloseIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	handle, err := db.Open(ctx)
	require.NoError(t, err)

	handle.Close()
	handle.Close()

	handle2, err := db.Open(ctx)
	require.NoError(t, err)
	handle2.Close()
}

func TestPutDictionary_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	handle, err := db.Open(ctx)
	require.NoError(t, err)
	defer handle.Close()

	err = handle.PutDictionary(ctx, &entities.Dictionary{Title: "JMdict", Revision: "1"})
	require.NoError(t, err)

	err = handle.PutDictionary(ctx, &entities.Dictionary{Title: "JMdict", Revision: "2"})
	assert.ErrorIs(t, err, ErrDuplicateDictionary)
}

func TestPutTerms_AndStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	handle, err := db.Open(ctx)
	require.NoError(t, err)

	require.NoError(t, handle.PutDictionary(ctx, &entities.Dictionary{Title: "Test", Sequenced: true}))
	require.NoError(t, handle.PutTerms(ctx, []entities.Term{
		{DictionaryTitle: "Test", Expression: "猫", Reading: "ねこ", Glossary: `["cat"]`},
		{DictionaryTitle: "Test", Expression: "犬", Reading: "いぬ", Glossary: `["dog"]`},
	}))

	count, err := handle.TermCount(ctx, "Test")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	handle.Close()

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Dictionaries)
	assert.Equal(t, int64(2), stats.Terms)
	assert.Greater(t, stats.DatabaseSizeBytes, int64(0))
}

func TestPurge_ResetsStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	handle, err := db.Open(ctx)
	require.NoError(t, err)
	require.NoError(t, handle.PutDictionary(ctx, &entities.Dictionary{Title: "Test"}))
	require.NoError(t, handle.PutTerms(ctx, []entities.Term{
		{DictionaryTitle: "Test", Expression: "猫"},
	}))
	handle.Close()

	require.NoError(t, db.Purge(ctx))

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Dictionaries)
	assert.Equal(t, int64(0), stats.Terms)
}

func TestImportSessions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	session, err := db.StartImportSession(ctx, "jmdict.zip")
	require.NoError(t, err)
	assert.NotEmpty(t, session.UUID)
	assert.Equal(t, entities.ImportStatusRunning, session.Status)

	require.NoError(t, db.CompleteImportSession(ctx, session, "JMdict", 42))

	sessions, err := db.GetImportSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, entities.ImportStatusCompleted, sessions[0].Status)
	assert.Equal(t, "JMdict", sessions[0].Dictionary)
	assert.Equal(t, 42, sessions[0].TermCount)
}
