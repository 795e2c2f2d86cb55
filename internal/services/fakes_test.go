package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/formpulse/backend/internal/models"
	"gorm.io/datatypes"
)

// fakeItemStore is an in-memory ItemStore for engine tests.
type fakeItemStore struct {
	items   []models.FeedbackItem
	seq     int
	failOn  string // method name that should return a store error
	updated [][]string
}

func (f *fakeItemStore) fail(method string) error {
	if f.failOn == method {
		return fmt.Errorf("%w: injected %s failure", ErrStore, method)
	}
	return nil
}

func (f *fakeItemStore) Create(ctx context.Context, item *models.FeedbackItem) error {
	if err := f.fail("Create"); err != nil {
		return err
	}
	f.seq++
	if item.ID == "" {
		item.ID = fmt.Sprintf("item-%d", f.seq)
	}
	if item.AnalyzedMarker == "" {
		item.AnalyzedMarker = models.MarkerUnset
	}
	item.CreatedAt = time.Unix(int64(f.seq), 0)
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeItemStore) FindUnsetBatch(ctx context.Context, formID string, limit int) ([]models.FeedbackItem, error) {
	if err := f.fail("FindUnsetBatch"); err != nil {
		return nil, err
	}
	var out []models.FeedbackItem
	for _, it := range f.items {
		if it.FormID == formID && it.AnalyzedMarker == models.MarkerUnset {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeItemStore) UpdateMarker(ctx context.Context, ids []string, marker models.AnalyzedMarker) error {
	if err := f.fail("UpdateMarker"); err != nil {
		return err
	}
	f.updated = append(f.updated, ids)
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	for i := range f.items {
		if idSet[f.items[i].ID] && f.items[i].AnalyzedMarker == models.MarkerUnset {
			f.items[i].AnalyzedMarker = marker
		}
	}
	return nil
}

func (f *fakeItemStore) ListByForm(ctx context.Context, formID string, limit, offset int) ([]models.FeedbackItem, int64, error) {
	if err := f.fail("ListByForm"); err != nil {
		return nil, 0, err
	}
	var out []models.FeedbackItem
	for _, it := range f.items {
		if it.FormID == formID {
			out = append(out, it)
		}
	}
	total := int64(len(out))
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (f *fakeItemStore) FindAnalyzed(ctx context.Context, formID string) ([]models.FeedbackItem, error) {
	if err := f.fail("FindAnalyzed"); err != nil {
		return nil, err
	}
	var out []models.FeedbackItem
	for _, it := range f.items {
		if it.FormID == formID && it.Analysis != nil {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItemStore) FindByID(ctx context.Context, id string) (*models.FeedbackItem, error) {
	if err := f.fail("FindByID"); err != nil {
		return nil, err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeItemStore) markerOf(id string) models.AnalyzedMarker {
	for _, it := range f.items {
		if it.ID == id {
			return it.AnalyzedMarker
		}
	}
	return ""
}

func (f *fakeItemStore) countByMarker(formID string, marker models.AnalyzedMarker) int {
	n := 0
	for _, it := range f.items {
		if it.FormID == formID && it.AnalyzedMarker == marker {
			n++
		}
	}
	return n
}

// addUnset seeds n unset items for the form and returns their ids in
// creation order.
func (f *fakeItemStore) addUnset(formID string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		item := models.FeedbackItem{FormID: formID, Rating: 3, CommentText: fmt.Sprintf("comment %d", i)}
		item.SetAnalysis(&models.AnalysisResult{Summary: "ok", Tags: []string{}, Pros: []string{}, Cons: []string{}})
		_ = f.Create(context.Background(), &item)
		ids = append(ids, item.ID)
	}
	return ids
}

// fakeReportStore is an in-memory ReportStore.
type fakeReportStore struct {
	reports map[string]models.ReportData
	upserts int
	failOn  string
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: make(map[string]models.ReportData)}
}

func (f *fakeReportStore) FindByFormID(ctx context.Context, formID string) (*models.AggregateReport, error) {
	if f.failOn == "FindByFormID" {
		return nil, fmt.Errorf("%w: injected FindByFormID failure", ErrStore)
	}
	data, ok := f.reports[formID]
	if !ok {
		return nil, nil
	}
	return &models.AggregateReport{FormID: formID, Data: datatypes.NewJSONType(data)}, nil
}

func (f *fakeReportStore) Upsert(ctx context.Context, formID string, data models.ReportData) error {
	if f.failOn == "Upsert" {
		return fmt.Errorf("%w: injected Upsert failure", ErrStore)
	}
	f.upserts++
	f.reports[formID] = data
	return nil
}

// fakeCommentStore is an in-memory CommentStore.
type fakeCommentStore struct {
	comments []models.ExternalComment
}

func (f *fakeCommentStore) FindExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	existing := make(map[int64]bool)
	for _, c := range f.comments {
		for _, id := range ids {
			if c.ExternalCommentID == id {
				existing[id] = true
			}
		}
	}
	return existing, nil
}

func (f *fakeCommentStore) CreateBatch(ctx context.Context, comments []models.ExternalComment) error {
	f.comments = append(f.comments, comments...)
	return nil
}

func (f *fakeCommentStore) FindPending(ctx context.Context, formID string) ([]models.ExternalComment, error) {
	var out []models.ExternalComment
	for _, c := range f.comments {
		if c.FormID == formID && !c.Imported {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentStore) MarkImported(ctx context.Context, ids []int64) error {
	idSet := make(map[int64]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	for i := range f.comments {
		if idSet[f.comments[i].ExternalCommentID] {
			f.comments[i].Imported = true
		}
	}
	return nil
}

// fakeExternalComment builds a pending external comment row.
func fakeExternalComment(id int64, formID, text string, rating *int, sender string) models.ExternalComment {
	return models.ExternalComment{
		ExternalCommentID: id,
		FormID:            formID,
		SourceServiceName: "snappfood",
		Payload: models.NewCommentPayload(models.CommentPayload{
			CommentText: text,
			Rating:      rating,
			Sender:      sender,
		}),
	}
}

// fakeAnalyzer returns a canned analysis or error.
type fakeAnalyzer struct {
	result *models.AnalysisResult
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, commentText string, hints TaxonomyHints) (*models.AnalysisResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &models.AnalysisResult{Summary: "summary of " + commentText, Tags: []string{}, Pros: []string{}, Cons: []string{}}, nil
}

// fakeMerger records merge calls and returns a canned report or error.
type fakeMerger struct {
	err     error
	calls   int
	batches [][]BatchEntry
}

func (f *fakeMerger) MergeBatch(ctx context.Context, existing models.ReportData, batch []BatchEntry) (models.ReportData, error) {
	f.calls++
	f.batches = append(f.batches, batch)
	if f.err != nil {
		return models.ReportData{}, f.err
	}
	merged := existing
	merged.TotalAnswers += len(batch)
	merged.SummaryText = fmt.Sprintf("merged %d batches", f.calls)
	return merged, nil
}
