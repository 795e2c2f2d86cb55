package models

import (
	"time"

	"gorm.io/datatypes"
)

// CommentPayload is the normalized body of a third-party review. Rating is
// already rescaled to this system's 1-5 scale at import time.
type CommentPayload struct {
	CreatedDate string   `json:"created_date,omitempty"`
	Sender      string   `json:"sender,omitempty"`
	CommentText string   `json:"comment_text,omitempty"`
	Rating      *int     `json:"rating,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	Category    string   `json:"category,omitempty"`
	Items       []string `json:"items,omitempty"`
}

// ExternalComment is the de-duplication record for an imported third-party
// review. ExternalCommentID is the source's stable id; once Imported is true
// the row is never reprocessed.
type ExternalComment struct {
	ExternalCommentID int64                              `gorm:"primaryKey;autoIncrement:false" json:"external_comment_id"`
	FormID            string                             `gorm:"type:varchar(36);index" json:"form_id"`
	SourceServiceName string                             `gorm:"size:100" json:"source_service_name"`
	Imported          bool                               `gorm:"default:false;index" json:"imported"`
	Payload           datatypes.JSONType[CommentPayload] `json:"payload"`
	CreatedAt         time.Time                          `json:"created_at"`
	UpdatedAt         time.Time                          `json:"updated_at"`
}

func (ExternalComment) TableName() string { return "external_comments" }

// NewCommentPayload wraps a payload for storage in the JSON column.
func NewCommentPayload(p CommentPayload) datatypes.JSONType[CommentPayload] {
	return datatypes.NewJSONType(p)
}
