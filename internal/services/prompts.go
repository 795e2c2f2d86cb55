package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/formpulse/backend/internal/models"
)

const analysisPromptHeader = `Analyze the following feedback comment and return only a JSON output. The input is a single text field labeled as "comment".

Generate the following fields in the JSON output:

1. analyzed_ai_rating: A rating from 1 to 5 based solely on the AI's analysis of the comment (1 = very negative, 5 = very positive). Base this rating on overall sentiment and key themes in the comment.

2. short_summary: A concise summary of the comment (1-2 sentences) that captures the main points while avoiding minor details.

3. category: The most relevant category for the comment. Use a consistent set of categories across responses. If the comment does not clearly relate to an existing category, assign a new category (or use "General" if appropriate).

4. tags: An array of up to 2 specific, actionable tags that describe the comment. Ensure consistency by using a predefined set of tags where possible; if the comment does not fit any existing tags, generate a new, descriptive tag (or use a default tag like "General").

5. importance_index: A score from 1 to 10 indicating the importance or urgency of the comment. Consider both sentiment and any explicit urgency markers. Use the following guidelines:
   - 1-3: Low importance (e.g., general feedback, no urgency).
   - 4-6: Moderate importance (e.g., minor issues, suggestions for improvement).
   - 7-10: High importance (e.g., critical issues, complaints requiring immediate attention).

6. user_mood: A score from 1 to 10 estimating how the user feels (1 = very negative, 10 = very positive) based on sentiment and key phrases in the comment.

7. needs_action: A boolean value (true or false) indicating whether the comment requires any follow-up action. Set to true if the comment includes complaints, critical issues, or urgent feedback; otherwise, set to false.

8. action_steps: If needs_action is true, provide a short sentence summarizing the action steps that should be taken in response to the comment. If needs_action is false, return an empty string.

9. pros: An array listing any positive aspects or strengths mentioned in the comment. If no positives are identified, return an empty array.

10. cons: An array listing any negative aspects, issues, or concerns mentioned in the comment. If no negatives are identified, return an empty array.`

const analysisPromptSentinel = `If the comment is empty, nonsensical, or does not provide valid feedback, return the following JSON exactly:

{
  "analyzed_ai_rating": null,
  "short_summary": "No valid comment provided.",
  "category": null,
  "tags": [],
  "importance_index": null,
  "user_mood": null,
  "needs_action": false,
  "action_steps": "",
  "pros": [],
  "cons": []
}

Return only the JSON output, with no surrounding text.`

// buildAnalysisPrompt assembles the per-item enrichment prompt. Taxonomy hints
// bias the model toward reusing labels already observed on the form: an exact
// semantic match from the hints must be preferred over minting a new label.
func buildAnalysisPrompt(commentText string, hints TaxonomyHints) string {
	var b strings.Builder
	b.WriteString(analysisPromptHeader)
	b.WriteString("\n\n")

	if !hints.Empty() {
		b.WriteString("Labels already observed for this form. When the comment semantically matches one of these values, reuse it exactly instead of creating a new one:\n")
		writeHintList(&b, "Existing categories", hints.Categories)
		writeHintList(&b, "Existing tags", hints.Tags)
		writeHintList(&b, "Existing pros", hints.Pros)
		writeHintList(&b, "Existing cons", hints.Cons)
		b.WriteString("\n")
	}

	b.WriteString(analysisPromptSentinel)
	b.WriteString("\n\ncomment: ")
	b.WriteString(commentText)
	return b.String()
}

func writeHintList(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(values, ", "))
}

// BatchEntry is one feedback item prepared for a batch merge. Analysis is nil
// when the item's enrichment failed; such entries still occupy a window slot
// and count toward the report's totals.
type BatchEntry struct {
	Response string                 `json:"response"`
	Analysis *models.AnalysisResult `json:"analysis"`
}

// buildMergePrompt assembles the batch-merge prompt: the current cumulative
// report plus the new batch, asking for the updated report as JSON.
func buildMergePrompt(existing models.ReportData, batch []BatchEntry) string {
	existingJSON, _ := json.MarshalIndent(existing, "", "  ")
	batchJSON, _ := json.MarshalIndent(batch, "", "  ")

	var b strings.Builder
	b.WriteString(`You maintain a cumulative feedback report. Merge the new batch of analyzed feedback responses into the existing report and return only the updated report as a JSON object with exactly the same schema as the existing report.

Rules:
- total_answers increases by the number of responses in the batch, including responses with a null analysis.
- average_rating and average_mood are recomputed over all responses seen so far, counting only non-null values.
- importance_buckets uses the ranges "1-3", "4-6" and "7-10".
- category_counts and tag_counts accumulate occurrences per label.
- needs_action_count, pros_count, cons_count and summary_stats accumulate across batches.
- summary_text replaces the previous narrative: write a coherent summary that incorporates the dominant themes of the new batch together with the context of the previous summary_text.
- The result must not depend on the order of the responses inside the batch, except for the wording of summary_text.

Existing report:
`)
	b.Write(existingJSON)
	b.WriteString("\n\nNew batch of responses:\n")
	b.Write(batchJSON)
	b.WriteString("\n\nReturn only the JSON output, with no surrounding text.")
	return b.String()
}
