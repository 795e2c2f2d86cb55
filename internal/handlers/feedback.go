package handlers

import (
	"errors"
	"strconv"

	"github.com/formpulse/backend/internal/services"
	"github.com/formpulse/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// Submit accepts one feedback item. The response always carries the created
// item, even when enrichment degraded to a null analysis.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.feedbackService.SubmitItem(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, item)
}

// SubmitBatch accepts multiple feedback items and reports per-entry outcomes.
func (h *FeedbackHandler) SubmitBatch(c *gin.Context) {
	var reqs []services.SubmitRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if len(reqs) == 0 {
		response.BadRequest(c, "empty batch")
		return
	}

	result := h.feedbackService.SubmitBatch(c.Request.Context(), reqs)
	response.Success(c, result)
}

// List returns a form's items, newest first, paginated
func (h *FeedbackHandler) List(c *gin.Context) {
	formID := c.Query("form_id")
	if formID == "" {
		response.BadRequest(c, "form_id is required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := h.feedbackService.ListByForm(c.Request.Context(), formID, limit, offset)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetByID returns one item
func (h *FeedbackHandler) GetByID(c *gin.Context) {
	item, err := h.feedbackService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if item == nil {
		response.NotFound(c, "item not found")
		return
	}

	response.Success(c, item)
}
