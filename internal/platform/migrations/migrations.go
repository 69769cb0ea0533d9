package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the document store schema. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&documentRecord{})
}

// Document schema mirrors the gormstore adapter.
type documentRecord struct {
	Collection string         `gorm:"primaryKey;column:collection;size:128"`
	ID         string         `gorm:"primaryKey;column:id;size:64"`
	Data       map[string]any `gorm:"column:data;type:text;serializer:json"`
	CreatedAt  time.Time      `gorm:"column:created_at;index"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
}

func (documentRecord) TableName() string { return "documents" }
