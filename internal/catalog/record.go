// ABOUTME: Catalog record model
// ABOUTME: One row per recording file with its title, description and duration
package catalog

import (
	"time"

	"gorm.io/gorm"
)

// Record is a recording entry in the catalog
type Record struct {
	ID          uint64    `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"column:title;type:text;not null;default:''"`
	Path        string    `json:"path" gorm:"column:path;type:text;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"column:description;type:text;not null;default:''"`
	CreatedAt   time.Time `json:"createdAt" gorm:"column:created_at;not null;index"`
	Duration    float64   `json:"duration" gorm:"column:duration;not null;default:0"`
}

func (Record) TableName() string {
	return "recordings"
}

// DisplayTitle falls back to the path when no title was set
func (r Record) DisplayTitle() string {
	if r.Title == "" {
		return r.Path
	}
	return r.Title
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}
