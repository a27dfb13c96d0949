package entities

import (
	"time"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// Dictionary is one imported dictionary archive. Title is the unique
// identifier used as the configuration key in profile options.
type Dictionary struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"uniqueIndex;size:256" json:"title"`
	Revision   string    `gorm:"size:128" json:"revision"`
	Format     int       `json:"format"`
	Sequenced  bool      `json:"sequenced"`
	TermCount  int       `json:"term_count"`
	ImportedAt time.Time `json:"imported_at"`
}

func (Dictionary) TableName() string {
	return "dictionaries"
}

// Term is a single dictionary entry.
type Term struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	DictionaryTitle string `gorm:"index;size:256" json:"dictionary_title"`
	Expression      string `gorm:"index;size:512" json:"expression"`
	Reading         string `gorm:"index;size:512" json:"reading"`
	// Reversed forms are populated only when the store supports
	// prefix-wildcard search, so suffix lookups can use the index.
	ExpressionReverse string `gorm:"index;size:512" json:"-"`
	ReadingReverse    string `gorm:"index;size:512" json:"-"`
	DefinitionTags    string `gorm:"size:256" json:"definition_tags"`
	TermTags          string `gorm:"size:256" json:"term_tags"`
	Rules             string `gorm:"size:256" json:"rules"`
	Score             int    `json:"score"`
	Glossary          string `gorm:"type:text" json:"glossary"` // JSON array of definitions
	Sequence          int64  `gorm:"index" json:"sequence"`
}

func (Term) TableName() string {
	return "terms"
}

// ImportSession is the audit trail for one imported file.
type ImportSession struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UUID        string       `gorm:"uniqueIndex;size:36" json:"uuid"`
	Filename    string       `gorm:"size:512" json:"filename"`
	Dictionary  string       `gorm:"size:256" json:"dictionary"`
	Status      ImportStatus `gorm:"size:20" json:"status"`
	TermCount   int          `json:"term_count"`
	Error       string       `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

func (ImportSession) TableName() string {
	return "import_sessions"
}
