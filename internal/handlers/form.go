package handlers

import (
	"errors"

	"github.com/formpulse/backend/internal/middleware"
	"github.com/formpulse/backend/internal/services"
	"github.com/formpulse/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FormHandler struct {
	formService *services.FormService
}

func NewFormHandler(db *gorm.DB) *FormHandler {
	return &FormHandler{
		formService: services.NewFormService(db),
	}
}

func (h *FormHandler) Create(c *gin.Context) {
	var req services.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	createdBy := c.GetUint(middleware.ContextUserID)
	form, err := h.formService.Create(&req, createdBy)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Created(c, form)
}

func (h *FormHandler) List(c *gin.Context) {
	forms, err := h.formService.List()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, forms)
}

func (h *FormHandler) GetByID(c *gin.Context) {
	form, err := h.formService.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, form)
}

func (h *FormHandler) Update(c *gin.Context) {
	var req services.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	form, err := h.formService.Update(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, form)
}

func (h *FormHandler) Delete(c *gin.Context) {
	if err := h.formService.Delete(c.Param("id")); err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "form deleted"})
}
