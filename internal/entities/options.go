package entities

import (
	"time"
)

// OptionsDocument holds the full multi-profile options tree as a
// single JSON document. There is exactly one row; all settings reads
// and writes go through it.
type OptionsDocument struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Document  string    `gorm:"type:text" json:"document"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OptionsDocument) TableName() string {
	return "options_documents"
}
