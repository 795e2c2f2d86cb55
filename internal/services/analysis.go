package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/formpulse/backend/pkg/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/formpulse/backend/internal/config"
	"github.com/formpulse/backend/internal/models"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
	"gorm.io/gorm"
)

// BatchWindowSize is the fixed number of items consumed by one merge attempt.
const BatchWindowSize = 10

// Analyzer is the per-item enrichment contract consumed by the submission path.
type Analyzer interface {
	Analyze(ctx context.Context, commentText string, hints TaxonomyHints) (*models.AnalysisResult, error)
}

// BatchMerger is the batch-merge contract consumed by the aggregation engine.
type BatchMerger interface {
	MergeBatch(ctx context.Context, existing models.ReportData, batch []BatchEntry) (models.ReportData, error)
}

// AnalysisService wraps the external text-analysis capability. It dispatches
// to the configured LLM providers with an ordered fallback chain and parses
// their structured output.
type AnalysisService struct {
	db      *gorm.DB
	config  *config.OpenAIConfig
	timeout time.Duration
}

func NewAnalysisService(db *gorm.DB, cfg *config.OpenAIConfig) *AnalysisService {
	return &AnalysisService{
		db:      db,
		config:  cfg,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// NullSignalResult is the sentinel analysis for empty or nonsensical input:
// all numeric fields nil, no action needed, empty arrays. It is a valid
// result, not an error.
func NullSignalResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary:     "No valid comment provided.",
		Tags:        []string{},
		NeedsAction: false,
		ActionSteps: "",
		Pros:        []string{},
		Cons:        []string{},
	}
}

// Analyze enriches one comment. Empty or whitespace-only text short-circuits
// locally to the null-signal sentinel, which is byte-identical to what the
// capability itself returns for such input.
func (s *AnalysisService) Analyze(ctx context.Context, commentText string, hints TaxonomyHints) (*models.AnalysisResult, error) {
	if strings.TrimSpace(commentText) == "" {
		return NullSignalResult(), nil
	}

	prompt := buildAnalysisPrompt(commentText, hints)

	content, err := s.callWithFallback(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseAnalysisResult(content)
}

// MergeBatch folds a batch of exactly BatchWindowSize entries into the
// existing cumulative report. A wrong batch size is a programming error in
// the caller, not a recoverable condition.
func (s *AnalysisService) MergeBatch(ctx context.Context, existing models.ReportData, batch []BatchEntry) (models.ReportData, error) {
	if len(batch) != BatchWindowSize {
		return models.ReportData{}, fmt.Errorf("%w: merge batch must contain exactly %d entries, got %d",
			ErrInvalidArgument, BatchWindowSize, len(batch))
	}

	prompt := buildMergePrompt(existing, batch)

	content, err := s.callWithFallback(ctx, prompt)
	if err != nil {
		return models.ReportData{}, err
	}

	return parseReportData(content, existing.FormID)
}

// callWithFallback runs the prompt against the ordered LLM configs until one
// succeeds, under the configured per-call timeout.
func (s *AnalysisService) callWithFallback(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	llmConfigs := s.getOrderedLLMConfigs()
	if len(llmConfigs) == 0 {
		return "", fmt.Errorf("%w: no LLM configuration available", ErrUnavailable)
	}

	var lastErr error
	for i, llmConfig := range llmConfigs {
		logger.Infof("[Analysis] Attempting LLM %d/%d: %s (model: %s)", i+1, len(llmConfigs), llmConfig.Name, llmConfig.Model)

		content, err := s.callLLM(ctx, &llmConfig, prompt)
		if err == nil {
			return content, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logger.Infof("[Analysis] LLM %s failed: %v, trying next...", llmConfig.Name, err)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: analysis call timed out after %s", ErrUnavailable, s.timeout)
	}
	return "", fmt.Errorf("%w: all LLMs failed: %v", ErrUnavailable, lastErr)
}

// getOrderedLLMConfigs returns the default config first, then the remaining
// active ones ordered by id, then the yaml fallback when the table is empty.
func (s *AnalysisService) getOrderedLLMConfigs() []models.LLMConfig {
	var configs []models.LLMConfig

	if s.db != nil {
		var defaultConfig models.LLMConfig
		if err := s.db.Where("is_default = ? AND is_active = ?", true, true).First(&defaultConfig).Error; err == nil {
			configs = append(configs, defaultConfig)
		}

		var backupConfigs []models.LLMConfig
		existingIDs := make(map[uint]bool)
		for _, c := range configs {
			existingIDs[c.ID] = true
		}
		s.db.Where("is_active = ?", true).Order("id ASC").Find(&backupConfigs)
		for _, c := range backupConfigs {
			if !existingIDs[c.ID] {
				configs = append(configs, c)
			}
		}
	}

	if len(configs) == 0 && s.config.APIKey != "" {
		configs = append(configs, models.LLMConfig{
			Name:    "fallback",
			BaseURL: s.config.BaseURL,
			APIKey:  s.config.APIKey,
			Model:   s.config.Model,
		})
	}

	return configs
}

// callLLM dispatches to the appropriate provider-specific function based on Provider field
func (s *AnalysisService) callLLM(ctx context.Context, llmConfig *models.LLMConfig, prompt string) (string, error) {
	switch llmConfig.Provider {
	case "anthropic":
		return s.callAnthropic(ctx, llmConfig, prompt)
	case "ollama":
		return s.callOllama(ctx, llmConfig, prompt)
	case "gemini":
		return s.callGemini(ctx, llmConfig, prompt)
	case "azure":
		return s.callAzure(ctx, llmConfig, prompt)
	default:
		// openai and other OpenAI-compatible services
		return s.callOpenAI(ctx, llmConfig, prompt)
	}
}

// callOpenAI handles OpenAI and OpenAI-compatible APIs (including custom endpoints)
func (s *AnalysisService) callOpenAI(ctx context.Context, llmConfig *models.LLMConfig, prompt string) (string, error) {
	clientConfig := openai.DefaultConfig(llmConfig.APIKey)
	if llmConfig.BaseURL != "" {
		clientConfig.BaseURL = llmConfig.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	temperature := float32(0.5)
	if llmConfig.Temperature > 0 {
		temperature = float32(llmConfig.Temperature)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: llmConfig.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: temperature,
	})

	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// callAnthropic handles Anthropic Claude API using the native SDK
func (s *AnalysisService) callAnthropic(ctx context.Context, llmConfig *models.LLMConfig, prompt string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(llmConfig.APIKey),
	)

	maxTokens := int64(llmConfig.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	model := llmConfig.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return content.String(), nil
}

// callOllama handles Ollama API using the native SDK
func (s *AnalysisService) callOllama(ctx context.Context, llmConfig *models.LLMConfig, prompt string) (string, error) {
	baseURL := llmConfig.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := llmConfig.Model
	if model == "" {
		model = "llama3"
	}

	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Options: map[string]interface{}{
			"temperature": llmConfig.Temperature,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})

	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}

	return content.String(), nil
}

// callGemini handles Google Gemini API using the native SDK
func (s *AnalysisService) callGemini(ctx context.Context, llmConfig *models.LLMConfig, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: llmConfig.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini client error: %w", err)
	}

	model := llmConfig.Model
	if model == "" {
		model = "gemini-3.0-flash"
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return resp.Text(), nil
}

// callAzure handles Azure OpenAI API using special configuration
func (s *AnalysisService) callAzure(ctx context.Context, llmConfig *models.LLMConfig, prompt string) (string, error) {
	// Azure requires BaseURL format: https://{resource-name}.openai.azure.com
	// Model field is used as deployment name
	cfg := openai.DefaultAzureConfig(llmConfig.APIKey, llmConfig.BaseURL)
	client := openai.NewClientWithConfig(cfg)

	temperature := float32(0.5)
	if llmConfig.Temperature > 0 {
		temperature = float32(llmConfig.Temperature)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: llmConfig.Model, // In Azure, this is the deployment name
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})

	if err != nil {
		return "", fmt.Errorf("Azure OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from Azure OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// parseAnalysisResult decodes and normalizes a per-item analysis.
func parseAnalysisResult(content string) (*models.AnalysisResult, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	normalizeAnalysisResult(&result)
	return &result, nil
}

// normalizeAnalysisResult enforces the schema bounds the model occasionally
// drifts past.
func normalizeAnalysisResult(r *models.AnalysisResult) {
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if len(r.Tags) > 2 {
		r.Tags = r.Tags[:2]
	}
	if r.Pros == nil {
		r.Pros = []string{}
	}
	if r.Cons == nil {
		r.Cons = []string{}
	}
	if !r.NeedsAction {
		r.ActionSteps = ""
	}
	r.RatingScore = clampScore(r.RatingScore, 1, 5)
	r.Importance = clampScore(r.Importance, 1, 10)
	r.Mood = clampScore(r.Mood, 1, 10)
}

func clampScore(v *int, min, max int) *int {
	if v == nil {
		return nil
	}
	if *v < min {
		*v = min
	}
	if *v > max {
		*v = max
	}
	return v
}

// parseReportData decodes and validates a merged report.
func parseReportData(content, formID string) (models.ReportData, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return models.ReportData{}, err
	}

	var data models.ReportData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return models.ReportData{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	if data.TotalAnswers <= 0 {
		return models.ReportData{}, fmt.Errorf("%w: merged report has no answers", ErrMalformedOutput)
	}

	data.FormID = formID
	if data.ImportanceBuckets == nil {
		data.ImportanceBuckets = map[string]int{"1-3": 0, "4-6": 0, "7-10": 0}
	}
	if data.CategoryCounts == nil {
		data.CategoryCounts = map[string]int{}
	}
	if data.TagCounts == nil {
		data.TagCounts = map[string]int{}
	}
	return data, nil
}
