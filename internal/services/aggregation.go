package services

import (
	"context"
	"errors"
	"sync"

	"github.com/formpulse/backend/internal/models"
	"github.com/formpulse/backend/pkg/logger"
)

// MergeOutcome describes what a CheckAndMerge pass did.
type MergeOutcome string

const (
	MergeIdle      MergeOutcome = "idle"      // fewer than a full window pending
	MergeSucceeded MergeOutcome = "succeeded" // report updated, window marked succeeded
	MergeFailed    MergeOutcome = "failed"    // window marked failed, report untouched
)

// AggregationService owns the cumulative per-form report. It consumes pending
// items in windows of exactly BatchWindowSize and folds them into the report
// via the batch-merge capability.
type AggregationService struct {
	items   ItemStore
	reports ReportStore
	merger  BatchMerger
	events  *EventService

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAggregationService(items ItemStore, reports ReportStore, merger BatchMerger, events *EventService) *AggregationService {
	return &AggregationService{
		items:   items,
		reports: reports,
		merger:  merger,
		events:  events,
		locks:   make(map[string]*sync.Mutex),
	}
}

// formLock serializes merge passes per form so concurrent submissions cannot
// consume overlapping windows.
func (s *AggregationService) formLock(formID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[formID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[formID] = lock
	}
	return lock
}

// CheckAndMerge runs one merge pass for the form. It is idle unless exactly
// BatchWindowSize items are pending. On merge failure the window is marked
// failed and permanently excluded from future windows; the report keeps its
// last successful state.
func (s *AggregationService) CheckAndMerge(ctx context.Context, formID string) (MergeOutcome, error) {
	lock := s.formLock(formID)
	lock.Lock()
	defer lock.Unlock()

	pending, err := s.items.FindUnsetBatch(ctx, formID, BatchWindowSize)
	if err != nil {
		return MergeIdle, err
	}
	if len(pending) != BatchWindowSize {
		return MergeIdle, nil
	}

	existing, err := s.currentReport(ctx, formID)
	if err != nil {
		return MergeIdle, err
	}

	// Items whose enrichment failed carry a nil analysis. They still occupy
	// a slot in the window and count toward the report's totals.
	ids := make([]string, 0, BatchWindowSize)
	batch := make([]BatchEntry, 0, BatchWindowSize)
	for i := range pending {
		ids = append(ids, pending[i].ID)
		batch = append(batch, BatchEntry{
			Response: pending[i].CommentText,
			Analysis: pending[i].AnalysisData(),
		})
	}

	merged, mergeErr := s.merger.MergeBatch(ctx, existing, batch)
	if mergeErr != nil {
		if errors.Is(mergeErr, ErrInvalidArgument) {
			return MergeIdle, mergeErr
		}
		logger.Errorf("[Aggregation] Merge failed for form %s: %v", formID, mergeErr)
		if markErr := s.items.UpdateMarker(ctx, ids, models.MarkerFailed); markErr != nil {
			return MergeFailed, markErr
		}
		s.publishReportEvent(formID, MergeFailed)
		return MergeFailed, nil
	}

	merged.LastMergedItemIDs = ids
	if err := s.reports.Upsert(ctx, formID, merged); err != nil {
		// Report not durable; leave the window unset so the next pass
		// retries the same items.
		return MergeIdle, err
	}
	if err := s.items.UpdateMarker(ctx, ids, models.MarkerSucceeded); err != nil {
		return MergeSucceeded, err
	}

	logger.Infof("[Aggregation] Merged window of %d items into report for form %s (total %d)",
		BatchWindowSize, formID, merged.TotalAnswers)
	s.publishReportEvent(formID, MergeSucceeded)
	return MergeSucceeded, nil
}

// currentReport returns the stored report data, or the zero-valued report
// when the form has never had a successful merge.
func (s *AggregationService) currentReport(ctx context.Context, formID string) (models.ReportData, error) {
	report, err := s.reports.FindByFormID(ctx, formID)
	if err != nil {
		return models.ReportData{}, err
	}
	if report == nil {
		return models.EmptyReportData(formID), nil
	}
	return report.Data.Data(), nil
}

// GetReport returns the cumulative report for the form, or the empty report
// when no merge has succeeded yet.
func (s *AggregationService) GetReport(ctx context.Context, formID string) (models.ReportData, error) {
	return s.currentReport(ctx, formID)
}

func (s *AggregationService) publishReportEvent(formID string, outcome MergeOutcome) {
	if s.events == nil {
		return
	}
	s.events.Publish(Event{
		Type:   EventReportMerged,
		FormID: formID,
		Data:   map[string]any{"outcome": string(outcome)},
	})
}
