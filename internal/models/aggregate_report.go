package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportData is the cumulative analysis over all merged batches of a form.
type ReportData struct {
	FormID            string             `json:"form_id"`
	TotalAnswers      int                `json:"total_answers"`
	AverageRating     float64            `json:"average_rating"`
	AverageMood       float64            `json:"average_mood"`
	ImportanceBuckets map[string]int     `json:"importance_buckets"` // "1-3", "4-6", "7-10"
	CategoryCounts    map[string]int     `json:"category_counts"`
	TagCounts         map[string]int     `json:"tag_counts"`
	NeedsActionCount  int                `json:"needs_action_count"`
	ProsCount         int                `json:"pros_count"`
	ConsCount         int                `json:"cons_count"`
	SummaryText       string             `json:"summary_text"` // replaced wholesale each merge
	SummaryStats      ReportSummaryStats `json:"summary_stats"`
	LastMergedItemIDs []string           `json:"last_merged_item_ids"`
}

type ReportSummaryStats struct {
	TotalPros           int `json:"total_pros"`
	TotalCons           int `json:"total_cons"`
	ActionStepsRequired int `json:"action_steps_required"`
}

// EmptyReportData returns the zero-valued report used before the first
// successful merge of a form.
func EmptyReportData(formID string) ReportData {
	return ReportData{
		FormID:            formID,
		ImportanceBuckets: map[string]int{"1-3": 0, "4-6": 0, "7-10": 0},
		CategoryCounts:    map[string]int{},
		TagCounts:         map[string]int{},
	}
}

// AggregateReport is the single cumulative report per form, created lazily on
// the first successful batch merge and mutated only by the aggregation engine.
type AggregateReport struct {
	ID        string                         `gorm:"type:varchar(36);primaryKey" json:"id"`
	FormID    string                         `gorm:"type:varchar(36);uniqueIndex;not null" json:"form_id"`
	Data      datatypes.JSONType[ReportData] `json:"data"`
	CreatedAt time.Time                      `json:"created_at"`
	UpdatedAt time.Time                      `json:"updated_at"`
}

func (AggregateReport) TableName() string { return "aggregate_reports" }

func (r *AggregateReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
