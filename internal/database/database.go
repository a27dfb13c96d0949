package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/jisho/internal/entities"
)

var (
	// ErrStoreBusy is returned by Open while another import handle is live.
	ErrStoreBusy = errors.New("store is busy: an import handle is already open")

	// ErrDuplicateDictionary is returned when importing a dictionary
	// whose title already exists in the store.
	ErrDuplicateDictionary = errors.New("dictionary with this title already exists")
)

type Database struct {
	DB *gorm.DB

	path string

	mu         sync.Mutex
	handleOpen bool
}

// Stats is a point-in-time summary of store contents.
type Stats struct {
	Dictionaries      int64 `json:"dictionaries"`
	Terms             int64 `json:"terms"`
	DatabaseSizeBytes int64 `json:"database_size_bytes"`
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Dictionary{},
		&entities.Term{},
		&entities.ImportSession{},
		&entities.OptionsDocument{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized at %s", dbPath)

	return &Database{DB: db, path: dbPath}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Purge drops and recreates every dictionary table. The options
// document is untouched; clearing derived configuration is the
// caller's responsibility.
func (d *Database) Purge(ctx context.Context) error {
	migrator := d.DB.WithContext(ctx).Migrator()

	err := migrator.DropTable(
		&entities.Term{},
		&entities.Dictionary{},
		&entities.ImportSession{},
	)
	if err != nil {
		return fmt.Errorf("failed to drop dictionary tables: %w", err)
	}

	err = d.DB.WithContext(ctx).AutoMigrate(
		&entities.Dictionary{},
		&entities.Term{},
		&entities.ImportSession{},
	)
	if err != nil {
		return fmt.Errorf("failed to recreate dictionary tables: %w", err)
	}

	log.Printf("Store purged")
	return nil
}

// Stats counts store contents. Size is best-effort: a missing or
// unreadable database file reports zero bytes.
func (d *Database) Stats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := d.DB.WithContext(ctx).Model(&entities.Dictionary{}).Count(&stats.Dictionaries).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count dictionaries: %w", err)
	}
	if err := d.DB.WithContext(ctx).Model(&entities.Term{}).Count(&stats.Terms).Error; err != nil {
		return Stats{}, fmt.Errorf("failed to count terms: %w", err)
	}

	if info, err := os.Stat(d.path); err == nil {
		stats.DatabaseSizeBytes = info.Size()
	}

	return stats, nil
}

// GetDictionaries lists imported dictionaries ordered by import time.
func (d *Database) GetDictionaries(ctx context.Context) ([]entities.Dictionary, error) {
	var dictionaries []entities.Dictionary
	err := d.DB.WithContext(ctx).Order("imported_at asc").Find(&dictionaries).Error
	return dictionaries, err
}

// GetDictionaryByTitle returns nil without error when no dictionary
// with the given title exists.
func (d *Database) GetDictionaryByTitle(ctx context.Context, title string) (*entities.Dictionary, error) {
	var dictionary entities.Dictionary
	err := d.DB.WithContext(ctx).Where("title = ?", title).First(&dictionary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dictionary, nil
}

func nowPtr() *time.Time {
	now := time.Now()
	return &now
}
