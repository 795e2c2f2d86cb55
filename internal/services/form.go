package services

import (
	"errors"

	"github.com/formpulse/backend/internal/models"
	"gorm.io/gorm"
)

type FormService struct {
	db *gorm.DB
}

func NewFormService(db *gorm.DB) *FormService {
	return &FormService{db: db}
}

type CreateFormRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateFormRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Create creates a new feedback form
func (s *FormService) Create(req *CreateFormRequest, createdBy uint) (*models.FeedbackForm, error) {
	form := models.FeedbackForm{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    true,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&form).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// List returns all forms, newest first
func (s *FormService) List() ([]models.FeedbackForm, error) {
	var forms []models.FeedbackForm
	if err := s.db.Order("created_at DESC").Find(&forms).Error; err != nil {
		return nil, err
	}
	return forms, nil
}

// GetByID returns a form by ID
func (s *FormService) GetByID(id string) (*models.FeedbackForm, error) {
	var form models.FeedbackForm
	if err := s.db.First(&form, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// Update updates a form
func (s *FormService) Update(id string, req *UpdateFormRequest) (*models.FeedbackForm, error) {
	var form models.FeedbackForm
	if err := s.db.First(&form, "id = ?", id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&form).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.db.First(&form, "id = ?", id)
	return &form, nil
}

// Delete soft-deletes a form
func (s *FormService) Delete(id string) error {
	result := s.db.Delete(&models.FeedbackForm{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("form not found")
	}
	return nil
}
