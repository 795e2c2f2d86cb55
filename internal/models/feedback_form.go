package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedbackForm groups feedback items and owns their single cumulative report.
type FeedbackForm struct {
	ID          string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedBy   uint           `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FeedbackForm) TableName() string { return "feedback_forms" }

func (f *FeedbackForm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
