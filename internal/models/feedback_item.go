package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalyzedMarker tracks whether an item has been consumed by a batch merge.
// Transitions are forward-only: unset -> succeeded or unset -> failed, never
// back to unset.
type AnalyzedMarker string

const (
	MarkerUnset     AnalyzedMarker = "unset"
	MarkerSucceeded AnalyzedMarker = "succeeded"
	MarkerFailed    AnalyzedMarker = "failed"
)

// AnalysisResult is the structured AI enrichment of a single feedback item.
// Numeric fields are nil for the null-signal sentinel (empty or nonsensical
// comment text).
type AnalysisResult struct {
	RatingScore *int     `json:"analyzed_ai_rating"` // 1-5
	Summary     string   `json:"short_summary"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Importance  *int     `json:"importance_index"` // 1-10
	Mood        *int     `json:"user_mood"`        // 1-10
	NeedsAction bool     `json:"needs_action"`
	ActionSteps string   `json:"action_steps"`
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
}

// SubmitterInfo is optional free-form contact data attached to a submission.
// Never required for analysis.
type SubmitterInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// FeedbackItem is one submitted feedback response.
type FeedbackItem struct {
	ID             string                              `gorm:"type:varchar(36);primaryKey" json:"id"`
	FormID         string                              `gorm:"type:varchar(36);index;not null" json:"form_id"`
	Rating         int                                 `gorm:"not null" json:"rating"` // 1-5
	CommentText    string                              `gorm:"type:text" json:"comment_text"`
	SubmitterInfo  *datatypes.JSONType[SubmitterInfo]  `json:"submitter_info,omitempty"`
	Analysis       *datatypes.JSONType[AnalysisResult] `json:"analysis,omitempty"`
	AnalyzedMarker AnalyzedMarker                      `gorm:"size:20;default:unset;index" json:"analyzed_marker"`
	CreatedAt      time.Time                           `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time                           `json:"updated_at"`
}

func (FeedbackItem) TableName() string { return "feedback_items" }

func (i *FeedbackItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.AnalyzedMarker == "" {
		i.AnalyzedMarker = MarkerUnset
	}
	return nil
}

// AnalysisData returns the decoded analysis, or nil when enrichment was
// skipped or failed.
func (i *FeedbackItem) AnalysisData() *AnalysisResult {
	if i.Analysis == nil {
		return nil
	}
	data := i.Analysis.Data()
	return &data
}

// SetSubmitterInfo attaches optional submitter contact data to the item.
func (i *FeedbackItem) SetSubmitterInfo(info *SubmitterInfo) {
	if info == nil {
		i.SubmitterInfo = nil
		return
	}
	wrapped := datatypes.NewJSONType(*info)
	i.SubmitterInfo = &wrapped
}

// SetAnalysis attaches an analysis result to the item.
func (i *FeedbackItem) SetAnalysis(result *AnalysisResult) {
	if result == nil {
		i.Analysis = nil
		return
	}
	wrapped := datatypes.NewJSONType(*result)
	i.Analysis = &wrapped
}
