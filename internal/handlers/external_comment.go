package handlers

import (
	"github.com/formpulse/backend/internal/services"
	"github.com/formpulse/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type ExternalCommentHandler struct {
	importer *services.ImporterService
	queue    services.TaskQueue
}

func NewExternalCommentHandler(importer *services.ImporterService, queue services.TaskQueue) *ExternalCommentHandler {
	return &ExternalCommentHandler{importer: importer, queue: queue}
}

// TriggerImport enqueues an import run for a vendor source and acknowledges
// immediately. The run itself reports progress over SSE.
func (h *ExternalCommentHandler) TriggerImport(c *gin.Context) {
	var req services.SourceConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	task := &services.ImportTask{
		VendorCode:  req.VendorCode,
		FormID:      req.FormID,
		ServiceName: req.ServiceName,
		SortType:    req.SortType,
	}
	if err := h.queue.Enqueue(task); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"message": "import started",
		"async":   h.queue.IsAsync(),
	})
}

// PromotePending turns a form's unimported comments into feedback items.
// Partial enrichment failures still count as promoted.
func (h *ExternalCommentHandler) PromotePending(c *gin.Context) {
	formID := c.Param("formId")
	if formID == "" {
		response.BadRequest(c, "form id is required")
		return
	}

	items, err := h.importer.PromotePending(c.Request.Context(), formID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"promoted": len(items),
		"items":    items,
	})
}
