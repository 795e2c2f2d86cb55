package services

import (
	"strings"
	"testing"

	"github.com/formpulse/backend/internal/models"
)

func TestBuildAnalysisPrompt_ContainsCommentAndSentinel(t *testing.T) {
	prompt := buildAnalysisPrompt("Great service, fast delivery", TaxonomyHints{})

	if !strings.Contains(prompt, "comment: Great service, fast delivery") {
		t.Error("prompt must carry the comment text")
	}
	if !strings.Contains(prompt, `"short_summary": "No valid comment provided."`) {
		t.Error("prompt must carry the null sentinel")
	}
	if !strings.Contains(prompt, "analyzed_ai_rating") {
		t.Error("prompt must describe the output schema")
	}
	if strings.Contains(prompt, "Labels already observed") {
		t.Error("empty hints must not add a hint section")
	}
}

func TestBuildAnalysisPrompt_IncludesHints(t *testing.T) {
	hints := TaxonomyHints{
		Categories: []string{"Delivery", "Support"},
		Tags:       []string{"slow response"},
		Pros:       []string{"friendly staff"},
		Cons:       []string{"late delivery"},
	}
	prompt := buildAnalysisPrompt("ok", hints)

	if !strings.Contains(prompt, "Existing categories: Delivery, Support") {
		t.Error("prompt must list existing categories")
	}
	if !strings.Contains(prompt, "Existing tags: slow response") {
		t.Error("prompt must list existing tags")
	}
	if !strings.Contains(prompt, "Existing pros: friendly staff") {
		t.Error("prompt must list existing pros")
	}
	if !strings.Contains(prompt, "Existing cons: late delivery") {
		t.Error("prompt must list existing cons")
	}
}

func TestBuildMergePrompt_CarriesReportAndBatch(t *testing.T) {
	existing := models.EmptyReportData("form-1")
	existing.TotalAnswers = 20
	existing.SummaryText = "Previous narrative."

	rating := 4
	batch := []BatchEntry{
		{Response: "loved it", Analysis: &models.AnalysisResult{RatingScore: &rating, Summary: "positive"}},
		{Response: "meh", Analysis: nil},
	}

	prompt := buildMergePrompt(existing, batch)

	if !strings.Contains(prompt, `"total_answers": 20`) {
		t.Error("prompt must embed the existing report")
	}
	if !strings.Contains(prompt, "Previous narrative.") {
		t.Error("prompt must embed the previous summary text")
	}
	if !strings.Contains(prompt, `"response": "loved it"`) {
		t.Error("prompt must embed the batch responses")
	}
	if !strings.Contains(prompt, `"analysis": null`) {
		t.Error("failed enrichments must appear as null analyses")
	}
	if !strings.Contains(prompt, `"7-10"`) {
		t.Error("prompt must name the importance buckets")
	}
}
