package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studyai/internal/model"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) Create(material *model.Material) error {
	if err := r.db.Create(material).Error; err != nil {
		return fmt.Errorf("create material failed: %w", err)
	}
	return nil
}

func (r *MaterialRepository) GetByID(id string) (*model.Material, error) {
	var material model.Material
	if err := r.db.Where("id = ?", id).First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material failed: %w", err)
	}
	return &material, nil
}

// ListBySessionID is used for cascade deletes and for composing quiz input.
func (r *MaterialRepository) ListBySessionID(sessionID string) ([]model.Material, error) {
	var list []model.Material
	if err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list materials failed: %w", err)
	}
	return list, nil
}

func (r *MaterialRepository) UpdateContent(id, content string) error {
	if err := r.db.Model(&model.Material{}).Where("id = ?", id).Update("content", content).Error; err != nil {
		return fmt.Errorf("update material content failed: %w", err)
	}
	return nil
}

func (r *MaterialRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.Material{}).Error; err != nil {
		return fmt.Errorf("delete material failed: %w", err)
	}
	return nil
}
