package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/formpulse/backend/internal/config"
	"github.com/formpulse/backend/internal/models"
	"github.com/formpulse/backend/pkg/logger"
	"golang.org/x/time/rate"
)

// fullPageSize is the source-side page size. A page with fewer comments is
// the last page by convention.
const fullPageSize = 10

// anonymousSender fills in for reviews the source delivers without a name.
const anonymousSender = "Anonymous reviewer"

// SourceConfig identifies one external vendor to import from.
type SourceConfig struct {
	VendorCode  string `json:"vendor_code" binding:"required"`
	FormID      string `json:"form_id" binding:"required"`
	ServiceName string `json:"service_name"`
	SortType    string `json:"sort_type"`
}

// ImportResult summarizes one import run.
type ImportResult struct {
	NewComments int  `json:"new_comments"`
	Pages       int  `json:"pages"`
	Aborted     bool `json:"aborted"`
}

// rawComment is the source's comment shape before normalization. Rating
// arrives as a bare number or a quoted string depending on the endpoint.
type rawComment struct {
	CommentID   int64           `json:"commentId"`
	CreatedDate string          `json:"createdDate"`
	Sender      string          `json:"sender"`
	CommentText string          `json:"commentText"`
	Rating      json.RawMessage `json:"rating"`
	Feeling     string          `json:"feeling"`
	Channel     string          `json:"expeditionType"`
	Products    []struct {
		Title string `json:"title"`
	} `json:"foods"`
}

// parseSourceRating reads the raw rating field in either encoding.
func parseSourceRating(raw json.RawMessage) (int, bool) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

type commentPageResponse struct {
	Data struct {
		Comments []rawComment `json:"comments"`
	} `json:"data"`
}

// ImporterService pulls third-party reviews page by page, dedupes them into
// the external comment table, and promotes pending ones into real feedback
// items through the standard submission path.
type ImporterService struct {
	comments CommentStore
	feedback *FeedbackService
	events   *EventService

	client  *http.Client
	baseURL string
	sort    string
	limiter *rate.Limiter
}

func NewImporterService(comments CommentStore, feedback *FeedbackService, events *EventService, cfg *config.ExternalSourceConfig) *ImporterService {
	delay := time.Duration(cfg.PageDelaySeconds) * time.Second
	if delay <= 0 {
		delay = 5 * time.Second
	}
	sort := cfg.SortType
	if sort == "" {
		sort = "score"
	}
	return &ImporterService{
		comments: comments,
		feedback: feedback,
		events:   events,
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  cfg.BaseURL,
		sort:     sort,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
	}
}

// ImportAll walks the vendor's comment pages starting at 1 and stops after
// the first page that returns fewer than fullPageSize comments. Transport
// failures end the run with partial progress; store failures surface.
func (s *ImporterService) ImportAll(ctx context.Context, src SourceConfig) (ImportResult, error) {
	sortType := src.SortType
	if sortType == "" {
		sortType = s.sort
	}

	var result ImportResult
	for page := 1; ; page++ {
		// The source is a shared third party, so page fetches are paced.
		if err := s.limiter.Wait(ctx); err != nil {
			result.Aborted = true
			s.publishImportEvent(EventImportDone, src.FormID, result)
			return result, nil
		}

		comments, err := s.fetchPage(ctx, src.VendorCode, page, sortType)
		if err != nil {
			logger.Errorf("[Importer] Page %d fetch failed for vendor %s: %v", page, src.VendorCode, err)
			result.Aborted = true
			s.publishImportEvent(EventImportDone, src.FormID, result)
			return result, nil
		}
		result.Pages = page

		created, err := s.storePage(ctx, src, comments)
		if err != nil {
			return result, err
		}
		result.NewComments += created

		logger.Infof("[Importer] Page %d: %d comments, %d new (vendor %s)", page, len(comments), created, src.VendorCode)
		s.publishImportEvent(EventImportProgress, src.FormID, result)

		if len(comments) < fullPageSize {
			break
		}
	}

	s.publishImportEvent(EventImportDone, src.FormID, result)
	return result, nil
}

func (s *ImporterService) fetchPage(ctx context.Context, vendorCode string, page int, sortType string) ([]rawComment, error) {
	params := url.Values{}
	params.Set("vendorCode", vendorCode)
	params.Set("page", strconv.Itoa(page))
	params.Set("sortType", sortType)
	fetchURL := s.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportTransport, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: source returned status %d", ErrImportTransport, resp.StatusCode)
	}

	var body commentPageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportTransport, err)
	}
	return body.Data.Comments, nil
}

// storePage dedupes one page against the external comment table with a single
// batched existence check and persists the unseen rows.
func (s *ImporterService) storePage(ctx context.Context, src SourceConfig, comments []rawComment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.CommentID)
	}
	existing, err := s.comments.FindExistingIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	rows := make([]models.ExternalComment, 0, len(comments))
	for _, c := range comments {
		if existing[c.CommentID] {
			logger.Infof("[Importer] Comment %d already exists, skipping", c.CommentID)
			continue
		}
		rows = append(rows, models.ExternalComment{
			ExternalCommentID: c.CommentID,
			FormID:            src.FormID,
			SourceServiceName: src.ServiceName,
			Payload:           models.NewCommentPayload(normalizeComment(c)),
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := s.comments.CreateBatch(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// normalizeComment maps the source shape onto the stored payload, rescaling
// the source's 1-10 rating onto the 1-5 scale.
func normalizeComment(c rawComment) models.CommentPayload {
	payload := models.CommentPayload{
		CreatedDate: c.CreatedDate,
		Sender:      c.Sender,
		CommentText: c.CommentText,
		Mood:        c.Feeling,
		Category:    c.Channel,
	}
	for _, p := range c.Products {
		payload.Items = append(payload.Items, p.Title)
	}
	if raw, ok := parseSourceRating(c.Rating); ok {
		rescaled := rescaleRating(raw)
		payload.Rating = &rescaled
	}
	return payload
}

// rescaleRating maps a 1-10 source rating onto 1-5. Rounding is upward so
// the bottom of the source scale still lands on a valid rating.
func rescaleRating(raw int) int {
	r := (raw + 1) / 2
	if r < 1 {
		r = 1
	}
	if r > 5 {
		r = 5
	}
	return r
}

// PromotePending turns the form's unimported external comments into real
// feedback items through the standard submission path, then flips imported
// in one batched update covering every durably created item. Running it
// again with no new external data creates nothing.
func (s *ImporterService) PromotePending(ctx context.Context, formID string) ([]models.FeedbackItem, error) {
	pending, err := s.comments.FindPending(ctx, formID)
	if err != nil {
		return nil, err
	}

	created := make([]models.FeedbackItem, 0, len(pending))
	processedIDs := make([]int64, 0, len(pending))
	for _, comment := range pending {
		payload := comment.Payload.Data()

		rating := 3
		if payload.Rating != nil {
			rating = *payload.Rating
		}
		sender := payload.Sender
		if sender == "" {
			sender = anonymousSender
		}

		item, err := s.feedback.SubmitItem(ctx, SubmitRequest{
			FormID:        formID,
			Rating:        rating,
			CommentText:   payload.CommentText,
			SubmitterInfo: &models.SubmitterInfo{Name: sender},
		})
		if err != nil {
			// Creation did not happen, so the comment stays pending for
			// the next promotion run.
			logger.Errorf("[Importer] Promotion of comment %d failed: %v", comment.ExternalCommentID, err)
			continue
		}

		created = append(created, *item)
		processedIDs = append(processedIDs, comment.ExternalCommentID)
	}

	if len(processedIDs) > 0 {
		if err := s.comments.MarkImported(ctx, processedIDs); err != nil {
			return created, err
		}
	}

	logger.Infof("[Importer] Promoted %d/%d pending comments for form %s", len(created), len(pending), formID)
	return created, nil
}

func (s *ImporterService) publishImportEvent(eventType EventType, formID string, result ImportResult) {
	if s.events == nil {
		return
	}
	s.events.Publish(Event{
		Type:   eventType,
		FormID: formID,
		Data: map[string]any{
			"new_comments": result.NewComments,
			"pages":        result.Pages,
			"aborted":      result.Aborted,
		},
	})
}
