package documents

import (
	"time"

	"gorm.io/datatypes"
)

// Document is one uploaded PDF and its extracted text. Rows are only ever
// inserted or hard-deleted.
type Document struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename   string    `gorm:"column:filename;not null;index" json:"filename"`
	UploadDate time.Time `gorm:"column:upload_date;not null;index" json:"upload_date"`
	Text       string    `gorm:"column:text;type:text;not null" json:"text,omitempty"`
	TextLength int       `gorm:"column:text_length;not null;default:0" json:"text_length"`

	StorageKey string `gorm:"column:storage_key" json:"storage_key,omitempty"`
	SizeBytes  int64  `gorm:"column:size_bytes" json:"size_bytes,omitempty"`
	PageCount  int    `gorm:"column:page_count" json:"page_count,omitempty"`

	// Extraction diagnostics.
	Metadata datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
}

func (Document) TableName() string { return "documents" }

// Summary is the listing view of a Document; it never carries text.
type Summary struct {
	ID         uint      `json:"id"`
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
	TextLength int       `json:"text_length"`
}

func (d *Document) Summary() Summary {
	return Summary{ID: d.ID, Filename: d.Filename, UploadDate: d.UploadDate, TextLength: d.TextLength}
}
