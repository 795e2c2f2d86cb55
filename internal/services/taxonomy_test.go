package services

import (
	"context"
	"testing"

	"github.com/formpulse/backend/internal/models"
)

func addAnalyzedItem(store *fakeItemStore, formID string, analysis *models.AnalysisResult) {
	item := models.FeedbackItem{FormID: formID, Rating: 3, CommentText: "x"}
	item.SetAnalysis(analysis)
	_ = store.Create(context.Background(), &item)
}

func TestObservedTaxonomy_DeduplicatesAcrossItems(t *testing.T) {
	store := &fakeItemStore{}
	svc := NewTaxonomyService(store)

	addAnalyzedItem(store, "form-1", &models.AnalysisResult{
		Category: "Delivery",
		Tags:     []string{"fast", "service"},
		Pros:     []string{"quick"},
		Cons:     []string{"pricey"},
	})
	addAnalyzedItem(store, "form-1", &models.AnalysisResult{
		Category: "Delivery",
		Tags:     []string{"fast", "packaging"},
		Pros:     []string{"quick", "warm food"},
		Cons:     []string{},
	})

	hints, err := svc.ObservedTaxonomy(context.Background(), "form-1")
	if err != nil {
		t.Fatalf("ObservedTaxonomy returned error: %v", err)
	}

	if len(hints.Categories) != 1 || hints.Categories[0] != "Delivery" {
		t.Errorf("Categories = %v, expected [Delivery]", hints.Categories)
	}
	if len(hints.Tags) != 3 {
		t.Errorf("Tags = %v, expected 3 distinct values", hints.Tags)
	}
	if len(hints.Pros) != 2 {
		t.Errorf("Pros = %v, expected 2 distinct values", hints.Pros)
	}
	if len(hints.Cons) != 1 {
		t.Errorf("Cons = %v, expected 1 value", hints.Cons)
	}
}

func TestObservedTaxonomy_SkipsUnanalyzedAndEmpty(t *testing.T) {
	store := &fakeItemStore{}
	svc := NewTaxonomyService(store)

	// Item without analysis contributes nothing.
	noAnalysis := models.FeedbackItem{FormID: "form-1", Rating: 2, CommentText: "x"}
	_ = store.Create(context.Background(), &noAnalysis)

	addAnalyzedItem(store, "form-1", &models.AnalysisResult{
		Category: "  ",
		Tags:     []string{"", "  ", "real tag"},
	})

	hints, err := svc.ObservedTaxonomy(context.Background(), "form-1")
	if err != nil {
		t.Fatalf("ObservedTaxonomy returned error: %v", err)
	}

	if len(hints.Categories) != 0 {
		t.Errorf("blank categories must be skipped, got %v", hints.Categories)
	}
	if len(hints.Tags) != 1 || hints.Tags[0] != "real tag" {
		t.Errorf("Tags = %v, expected [real tag]", hints.Tags)
	}
}

func TestObservedTaxonomy_IsolatedPerForm(t *testing.T) {
	store := &fakeItemStore{}
	svc := NewTaxonomyService(store)

	addAnalyzedItem(store, "form-a", &models.AnalysisResult{Category: "Delivery"})
	addAnalyzedItem(store, "form-b", &models.AnalysisResult{Category: "Billing"})

	hints, err := svc.ObservedTaxonomy(context.Background(), "form-a")
	if err != nil {
		t.Fatalf("ObservedTaxonomy returned error: %v", err)
	}
	if len(hints.Categories) != 1 || hints.Categories[0] != "Delivery" {
		t.Errorf("Categories = %v, expected only form-a labels", hints.Categories)
	}
}

func TestTaxonomyHints_Empty(t *testing.T) {
	if !(TaxonomyHints{}).Empty() {
		t.Error("zero-valued hints must report empty")
	}
	if (TaxonomyHints{Tags: []string{"a"}}).Empty() {
		t.Error("hints with a tag must not report empty")
	}
}
