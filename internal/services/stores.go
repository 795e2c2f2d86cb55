package services

import (
	"context"
	"fmt"
	"time"

	"github.com/formpulse/backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ItemStore is the read/write/query contract over persisted feedback items.
type ItemStore interface {
	Create(ctx context.Context, item *models.FeedbackItem) error
	// FindUnsetBatch returns up to limit items with an unset analyzed marker,
	// oldest first, so repeated runs over the same data are reproducible.
	FindUnsetBatch(ctx context.Context, formID string, limit int) ([]models.FeedbackItem, error)
	// UpdateMarker flips the analyzed marker for the given ids. Only rows
	// still unset are touched; a marker is never reset once set.
	UpdateMarker(ctx context.Context, ids []string, marker models.AnalyzedMarker) error
	// ListByForm returns a page of the form's items, newest first, plus the
	// total count.
	ListByForm(ctx context.Context, formID string, limit, offset int) ([]models.FeedbackItem, int64, error)
	// FindAnalyzed returns every item of the form that carries an analysis.
	FindAnalyzed(ctx context.Context, formID string) ([]models.FeedbackItem, error)
	FindByID(ctx context.Context, id string) (*models.FeedbackItem, error)
}

// ReportStore is the read/write contract for the single cumulative report per form.
type ReportStore interface {
	// FindByFormID returns (nil, nil) when no report exists yet.
	FindByFormID(ctx context.Context, formID string) (*models.AggregateReport, error)
	// Upsert creates the form's report or overwrites it in place.
	Upsert(ctx context.Context, formID string, data models.ReportData) error
}

// CommentStore is the contract over imported third-party comment records.
type CommentStore interface {
	// FindExistingIDs is a single batched existence check used for dedup.
	FindExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	CreateBatch(ctx context.Context, comments []models.ExternalComment) error
	FindPending(ctx context.Context, formID string) ([]models.ExternalComment, error)
	MarkImported(ctx context.Context, ids []int64) error
}

// --- GORM implementations ---

type gormItemStore struct {
	db *gorm.DB
}

func NewItemStore(db *gorm.DB) ItemStore {
	return &gormItemStore{db: db}
}

func (s *gormItemStore) Create(ctx context.Context, item *models.FeedbackItem) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("%w: create item: %v", ErrStore, err)
	}
	return nil
}

func (s *gormItemStore) FindUnsetBatch(ctx context.Context, formID string, limit int) ([]models.FeedbackItem, error) {
	var items []models.FeedbackItem
	err := s.db.WithContext(ctx).
		Where("form_id = ? AND analyzed_marker = ?", formID, models.MarkerUnset).
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("%w: find unset batch: %v", ErrStore, err)
	}
	return items, nil
}

func (s *gormItemStore) UpdateMarker(ctx context.Context, ids []string, marker models.AnalyzedMarker) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&models.FeedbackItem{}).
		Where("id IN ? AND analyzed_marker = ?", ids, models.MarkerUnset).
		Updates(map[string]interface{}{"analyzed_marker": marker, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("%w: update marker: %v", ErrStore, err)
	}
	return nil
}

func (s *gormItemStore) ListByForm(ctx context.Context, formID string, limit, offset int) ([]models.FeedbackItem, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.FeedbackItem{}).
		Where("form_id = ?", formID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count items: %v", ErrStore, err)
	}

	var items []models.FeedbackItem
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list items: %v", ErrStore, err)
	}
	return items, total, nil
}

func (s *gormItemStore) FindAnalyzed(ctx context.Context, formID string) ([]models.FeedbackItem, error) {
	var items []models.FeedbackItem
	err := s.db.WithContext(ctx).
		Where("form_id = ? AND analysis IS NOT NULL", formID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("%w: find analyzed items: %v", ErrStore, err)
	}
	return items, nil
}

func (s *gormItemStore) FindByID(ctx context.Context, id string) (*models.FeedbackItem, error) {
	var item models.FeedbackItem
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find item: %v", ErrStore, err)
	}
	return &item, nil
}

type gormReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) ReportStore {
	return &gormReportStore{db: db}
}

func (s *gormReportStore) FindByFormID(ctx context.Context, formID string) (*models.AggregateReport, error) {
	var report models.AggregateReport
	err := s.db.WithContext(ctx).Where("form_id = ?", formID).First(&report).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find report: %v", ErrStore, err)
	}
	return &report, nil
}

func (s *gormReportStore) Upsert(ctx context.Context, formID string, data models.ReportData) error {
	var report models.AggregateReport
	err := s.db.WithContext(ctx).Where("form_id = ?", formID).First(&report).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: upsert report: %v", ErrStore, err)
		}
		report = models.AggregateReport{FormID: formID}
	}

	report.Data = datatypes.NewJSONType(data)
	if err := s.db.WithContext(ctx).Save(&report).Error; err != nil {
		return fmt.Errorf("%w: upsert report: %v", ErrStore, err)
	}
	return nil
}

type gormCommentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) CommentStore {
	return &gormCommentStore{db: db}
}

func (s *gormCommentStore) FindExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	existing := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	var found []int64
	err := s.db.WithContext(ctx).
		Model(&models.ExternalComment{}).
		Where("external_comment_id IN ?", ids).
		Pluck("external_comment_id", &found).Error
	if err != nil {
		return nil, fmt.Errorf("%w: find existing comments: %v", ErrStore, err)
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func (s *gormCommentStore) CreateBatch(ctx context.Context, comments []models.ExternalComment) error {
	if len(comments) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&comments).Error; err != nil {
		return fmt.Errorf("%w: create comments: %v", ErrStore, err)
	}
	return nil
}

func (s *gormCommentStore) FindPending(ctx context.Context, formID string) ([]models.ExternalComment, error) {
	var comments []models.ExternalComment
	err := s.db.WithContext(ctx).
		Where("form_id = ? AND imported = ?", formID, false).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("%w: find pending comments: %v", ErrStore, err)
	}
	return comments, nil
}

func (s *gormCommentStore) MarkImported(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&models.ExternalComment{}).
		Where("external_comment_id IN ?", ids).
		Update("imported", true).Error
	if err != nil {
		return fmt.Errorf("%w: mark imported: %v", ErrStore, err)
	}
	return nil
}
