package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/formpulse/backend/internal/models"
	"github.com/formpulse/backend/pkg/logger"
)

// SubmitRequest is one inbound feedback submission.
type SubmitRequest struct {
	FormID        string                `json:"form_id" binding:"required"`
	Rating        int                   `json:"rating" binding:"required,min=1,max=5"`
	CommentText   string                `json:"comment_text"`
	SubmitterInfo *models.SubmitterInfo `json:"submitter_info,omitempty"`
}

// BatchResultEntry reports the outcome of one submission within a batch.
type BatchResultEntry struct {
	Index     int    `json:"index"`
	ItemID    string `json:"item_id,omitempty"`
	Error     string `json:"error,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// BatchResult is the outcome of a whole batch submission.
type BatchResult struct {
	Items          []BatchResultEntry `json:"items"`
	TotalElapsedMS int64              `json:"total_elapsed_ms"`
}

// FeedbackService is the submission path: enrich, persist, then trigger a
// merge pass. Enrichment failures degrade to an item without analysis;
// persistence failures surface to the caller.
type FeedbackService struct {
	items      ItemStore
	analyzer   Analyzer
	taxonomy   *TaxonomyService
	aggregator *AggregationService
}

func NewFeedbackService(items ItemStore, analyzer Analyzer, taxonomy *TaxonomyService, aggregator *AggregationService) *FeedbackService {
	return &FeedbackService{
		items:      items,
		analyzer:   analyzer,
		taxonomy:   taxonomy,
		aggregator: aggregator,
	}
}

// SubmitItem runs the full intake pipeline for one submission and returns the
// persisted item. The returned item may carry a nil analysis when enrichment
// was unavailable or returned garbage.
func (s *FeedbackService) SubmitItem(ctx context.Context, req SubmitRequest) (*models.FeedbackItem, error) {
	if req.FormID == "" {
		return nil, fmt.Errorf("%w: form_id is required", ErrInvalidArgument)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidArgument)
	}

	hints := s.observedHints(ctx, req.FormID)

	analysis, err := s.analyzer.Analyze(ctx, req.CommentText, hints)
	if err != nil {
		// Enrichment is best-effort: the submission is accepted either way.
		logger.Errorf("[Feedback] Analysis failed for form %s: %v", req.FormID, err)
		analysis = nil
	}

	item := &models.FeedbackItem{
		FormID:      req.FormID,
		Rating:      req.Rating,
		CommentText: strings.TrimSpace(req.CommentText),
	}
	item.SetAnalysis(analysis)
	if req.SubmitterInfo != nil {
		item.SetSubmitterInfo(req.SubmitterInfo)
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	// A merge failure never fails the submission that triggered it, and a
	// client disconnect must not cancel an in-flight merge: that would mark
	// the window failed. The pass runs detached from the request context.
	if _, err := s.aggregator.CheckAndMerge(context.WithoutCancel(ctx), req.FormID); err != nil {
		logger.Errorf("[Feedback] Merge pass failed for form %s: %v", req.FormID, err)
	}

	return item, nil
}

// SubmitBatch processes submissions sequentially and reports per-entry
// outcomes with timings. One bad entry does not abort the rest.
func (s *FeedbackService) SubmitBatch(ctx context.Context, reqs []SubmitRequest) BatchResult {
	start := time.Now()
	result := BatchResult{Items: make([]BatchResultEntry, 0, len(reqs))}
	for i, req := range reqs {
		entryStart := time.Now()
		entry := BatchResultEntry{Index: i}
		item, err := s.SubmitItem(ctx, req)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.ItemID = item.ID
		}
		entry.ElapsedMS = time.Since(entryStart).Milliseconds()
		result.Items = append(result.Items, entry)
	}
	result.TotalElapsedMS = time.Since(start).Milliseconds()
	return result
}

// ListByForm returns the form's items, newest first.
func (s *FeedbackService) ListByForm(ctx context.Context, formID string, limit, offset int) ([]models.FeedbackItem, int64, error) {
	return s.items.ListByForm(ctx, formID, limit, offset)
}

// GetByID returns one item, or nil when it does not exist.
func (s *FeedbackService) GetByID(ctx context.Context, id string) (*models.FeedbackItem, error) {
	return s.items.FindByID(ctx, id)
}

// observedHints loads the form's accumulated taxonomy for prompt grounding.
// Hint lookup is advisory: failures degrade to empty hints.
func (s *FeedbackService) observedHints(ctx context.Context, formID string) TaxonomyHints {
	if s.taxonomy == nil {
		return TaxonomyHints{}
	}
	hints, err := s.taxonomy.ObservedTaxonomy(ctx, formID)
	if err != nil {
		logger.Warnf("[Feedback] Taxonomy lookup failed for form %s: %v", formID, err)
		return TaxonomyHints{}
	}
	return hints
}
