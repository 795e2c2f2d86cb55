package services

import (
	"errors"

	"github.com/formpulse/backend/internal/models"
	"gorm.io/gorm"
)

type LLMConfigService struct {
	db *gorm.DB
}

func NewLLMConfigService(db *gorm.DB) *LLMConfigService {
	return &LLMConfigService{db: db}
}

type CreateLLMConfigRequest struct {
	Name        string  `json:"name" binding:"required"`
	Provider    string  `json:"provider"`
	BaseURL     string  `json:"base_url"`
	APIKey      string  `json:"api_key" binding:"required"`
	Model       string  `json:"model" binding:"required"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	IsDefault   bool    `json:"is_default"`
	IsActive    bool    `json:"is_active"`
}

type UpdateLLMConfigRequest struct {
	Name        string   `json:"name"`
	Provider    string   `json:"provider"`
	BaseURL     string   `json:"base_url"`
	APIKey      string   `json:"api_key"`
	Model       string   `json:"model"`
	MaxTokens   *int     `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
	IsDefault   *bool    `json:"is_default"`
	IsActive    *bool    `json:"is_active"`
}

// List returns all LLM configs, default first
func (s *LLMConfigService) List() ([]models.LLMConfig, error) {
	var configs []models.LLMConfig
	if err := s.db.Order("is_default DESC, created_at DESC").Find(&configs).Error; err != nil {
		return nil, err
	}
	for i := range configs {
		configs[i].APIKeyMask = configs[i].MaskAPIKey()
	}
	return configs, nil
}

// GetByID returns a LLM config by ID
func (s *LLMConfigService) GetByID(id uint) (*models.LLMConfig, error) {
	var config models.LLMConfig
	if err := s.db.First(&config, id).Error; err != nil {
		return nil, err
	}
	config.APIKeyMask = config.MaskAPIKey()
	return &config, nil
}

// Create creates a new LLM config
func (s *LLMConfigService) Create(req *CreateLLMConfigRequest) (*models.LLMConfig, error) {
	if req.Provider == "" {
		req.Provider = "openai"
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 4096
	}
	if req.Temperature == 0 {
		req.Temperature = 0.5
	}

	config := models.LLMConfig{
		Name:        req.Name,
		Provider:    req.Provider,
		BaseURL:     req.BaseURL,
		APIKey:      req.APIKey,
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		IsDefault:   req.IsDefault,
		IsActive:    req.IsActive,
	}

	// If this is set as default, unset other defaults
	if req.IsDefault {
		s.db.Model(&models.LLMConfig{}).Where("is_default = ?", true).Update("is_default", false)
	}

	if err := s.db.Create(&config).Error; err != nil {
		return nil, err
	}

	config.APIKeyMask = config.MaskAPIKey()
	return &config, nil
}

// Update updates a LLM config
func (s *LLMConfigService) Update(id uint, req *UpdateLLMConfigRequest) (*models.LLMConfig, error) {
	var config models.LLMConfig
	if err := s.db.First(&config, id).Error; err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Provider != "" {
		updates["provider"] = req.Provider
	}
	if req.BaseURL != "" {
		updates["base_url"] = req.BaseURL
	}
	if req.APIKey != "" {
		updates["api_key"] = req.APIKey
	}
	if req.Model != "" {
		updates["model"] = req.Model
	}
	if req.MaxTokens != nil {
		updates["max_tokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		updates["temperature"] = *req.Temperature
	}
	if req.IsDefault != nil {
		if *req.IsDefault {
			// Unset other defaults
			s.db.Model(&models.LLMConfig{}).Where("is_default = ? AND id != ?", true, id).Update("is_default", false)
		}
		updates["is_default"] = *req.IsDefault
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&config).Updates(updates).Error; err != nil {
		return nil, err
	}

	// Reload
	s.db.First(&config, id)
	config.APIKeyMask = config.MaskAPIKey()
	return &config, nil
}

// Delete deletes a LLM config
func (s *LLMConfigService) Delete(id uint) error {
	result := s.db.Delete(&models.LLMConfig{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("llm config not found")
	}
	return nil
}
