package handlers

import (
	"github.com/formpulse/backend/internal/services"
	"github.com/formpulse/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	aggregator *services.AggregationService
}

func NewReportHandler(aggregator *services.AggregationService) *ReportHandler {
	return &ReportHandler{aggregator: aggregator}
}

// GetByForm returns the cumulative report for a form. Forms with no
// successful merge yet get the zero-valued report.
func (h *ReportHandler) GetByForm(c *gin.Context) {
	formID := c.Param("formId")
	if formID == "" {
		response.BadRequest(c, "form id is required")
		return
	}

	data, err := h.aggregator.GetReport(c.Request.Context(), formID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, data)
}
