package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/jisho/internal/entities"
)

// Repository is the gorm-backed settings transport. The whole
// profiles tree is one JSON document row; ApplyWrites resolves each
// target path against the tree, applies the writes in order and
// persists the document once.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func defaultDocument() map[string]any {
	return map[string]any{
		"version": 1,
		"profiles": []any{
			map[string]any{
				"name": "Default",
				"options": map[string]any{
					"general": map[string]any{
						"mainDictionary": "",
					},
					"dictionaries": map[string]any{},
					"scanning": map[string]any{
						"length":     float64(10),
						"selectText": true,
					},
				},
			},
		},
	}
}

func (r *Repository) getOrCreate(ctx context.Context) (*entities.OptionsDocument, map[string]any, error) {
	var record entities.OptionsDocument
	err := r.db.WithContext(ctx).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		document := defaultDocument()
		raw, err := json.Marshal(document)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to serialize default options: %w", err)
		}
		record = entities.OptionsDocument{Document: string(raw), Version: 1}
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to seed options document: %w", err)
		}
		return &record, document, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load options document: %w", err)
	}

	var document map[string]any
	if err := json.Unmarshal([]byte(record.Document), &document); err != nil {
		return nil, nil, fmt.Errorf("options document is corrupt: %w", err)
	}
	return &record, document, nil
}

// GetFullConfig reads the current configuration snapshot.
func (r *Repository) GetFullConfig(ctx context.Context) (*OptionsFull, error) {
	record, _, err := r.getOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	var full OptionsFull
	if err := json.Unmarshal([]byte(record.Document), &full); err != nil {
		return nil, fmt.Errorf("options document is corrupt: %w", err)
	}
	return &full, nil
}

// ApplyWrites applies targets in order against the document tree and
// returns one result per target. Per-target failures (bad path,
// unknown action, index out of range) fill that target's result slot;
// targets that succeed leave theirs empty.
func (r *Repository) ApplyWrites(ctx context.Context, targets []WriteTarget) ([]WriteResult, error) {
	record, document, err := r.getOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]WriteResult, len(targets))
	for i, target := range targets {
		if err := applyTarget(document, target); err != nil {
			results[i].Error = &SerializedError{
				Name:    "SettingsWriteError",
				Message: err.Error(),
			}
		}
	}

	raw, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize options: %w", err)
	}
	record.Document = string(raw)
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, fmt.Errorf("failed to persist options: %w", err)
	}

	return results, nil
}

func applyTarget(document map[string]any, target WriteTarget) error {
	if target.Action != ActionSet {
		return fmt.Errorf("unsupported action %q", target.Action)
	}

	segments, err := ParsePath(target.Path)
	if err != nil {
		return err
	}

	value, err := normalizeValue(target.Value)
	if err != nil {
		return err
	}

	return setAtPath(document, segments, value, target.Path)
}

// normalizeValue flattens typed values (structs) into the generic
// JSON tree representation the document uses.
func normalizeValue(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("value is not serializable: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, fmt.Errorf("value is not serializable: %w", err)
	}
	return normalized, nil
}

func setAtPath(root map[string]any, segments []Segment, value any, path string) error {
	var current any = root

	for _, segment := range segments[:len(segments)-1] {
		next, err := descend(current, segment, path)
		if err != nil {
			return err
		}
		current = next
	}

	last := segments[len(segments)-1]
	switch node := current.(type) {
	case map[string]any:
		if last.IsIndex {
			return fmt.Errorf("path %q indexes into an object", path)
		}
		node[last.Key] = value
		return nil
	case []any:
		if !last.IsIndex {
			return fmt.Errorf("path %q uses a key on an array", path)
		}
		if last.Index >= len(node) {
			return fmt.Errorf("path %q index %d out of range", path, last.Index)
		}
		node[last.Index] = value
		return nil
	default:
		return fmt.Errorf("path %q does not resolve to a container", path)
	}
}

func descend(current any, segment Segment, path string) (any, error) {
	switch node := current.(type) {
	case map[string]any:
		if segment.IsIndex {
			return nil, fmt.Errorf("path %q indexes into an object", path)
		}
		child, ok := node[segment.Key]
		if !ok {
			return nil, fmt.Errorf("path %q not found: missing %q", path, segment.Key)
		}
		return child, nil
	case []any:
		if !segment.IsIndex {
			return nil, fmt.Errorf("path %q uses a key on an array", path)
		}
		if segment.Index >= len(node) {
			return nil, fmt.Errorf("path %q index %d out of range", path, segment.Index)
		}
		return node[segment.Index], nil
	default:
		return nil, fmt.Errorf("path %q does not resolve to a container", path)
	}
}
