package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/jisho/internal/entities"
)

// Handle is an exclusive store handle for one import. It must be
// closed exactly once; Close is safe to call from a defer even after
// a failed import.
type Handle struct {
	db        *Database
	batchSize int
	closed    bool
}

// Open acquires the exclusive import handle. It fails with
// ErrStoreBusy while another handle is live; no partial handle is
// ever returned.
func (d *Database) Open(ctx context.Context) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handleOpen {
		return nil, ErrStoreBusy
	}
	d.handleOpen = true

	return &Handle{db: d, batchSize: 500}, nil
}

// SetBatchSize overrides the number of terms inserted per batch.
func (h *Handle) SetBatchSize(n int) {
	if n > 0 {
		h.batchSize = n
	}
}

// Close releases the handle. Best-effort: it never fails and repeated
// calls are no-ops.
func (h *Handle) Close() {
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.db.handleOpen = false
}

// PutDictionary records dictionary metadata. Titles are unique per
// store; a duplicate fails with ErrDuplicateDictionary.
func (h *Handle) PutDictionary(ctx context.Context, dictionary *entities.Dictionary) error {
	existing, err := h.db.GetDictionaryByTitle(ctx, dictionary.Title)
	if err != nil {
		return fmt.Errorf("failed to check for existing dictionary: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateDictionary, dictionary.Title)
	}

	dictionary.ImportedAt = time.Now()
	return h.db.DB.WithContext(ctx).Create(dictionary).Error
}

// PutTerms inserts term records in batches.
func (h *Handle) PutTerms(ctx context.Context, terms []entities.Term) error {
	if len(terms) == 0 {
		return nil
	}
	return h.db.DB.WithContext(ctx).CreateInBatches(terms, h.batchSize).Error
}

// TermCount counts terms stored for a dictionary.
func (h *Handle) TermCount(ctx context.Context, dictionaryTitle string) (int64, error) {
	var count int64
	err := h.db.DB.WithContext(ctx).
		Model(&entities.Term{}).
		Where("dictionary_title = ?", dictionaryTitle).
		Count(&count).Error
	return count, err
}

// SetDictionaryTermCount updates the cached term count on the
// dictionary row after a completed import.
func (h *Handle) SetDictionaryTermCount(ctx context.Context, title string, count int) error {
	err := h.db.DB.WithContext(ctx).
		Model(&entities.Dictionary{}).
		Where("title = ?", title).
		Update("term_count", count).Error
	if err != nil {
		log.Printf("WARNING: failed to update term count for %q: %v", title, err)
	}
	return err
}
