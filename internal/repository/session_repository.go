package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"studyai/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.ChatSession) error {
	if err := r.db.Omit("Materials").Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

// List returns every session, most recently updated first, with materials.
func (r *SessionRepository) List() ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	if err := r.db.Preload("Materials", orderMaterials).Order("updated_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	for i := range sessions {
		ensureMaterials(&sessions[i])
	}
	return sessions, nil
}

func (r *SessionRepository) GetByID(id string) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.Preload("Materials", orderMaterials).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	ensureMaterials(&session)
	return &session, nil
}

func (r *SessionRepository) Exists(id string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.ChatSession{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check session failed: %w", err)
	}
	return count > 0, nil
}

// UpdateTitle reports false when no row matched.
func (r *SessionRepository) UpdateTitle(id, title string, now time.Time) (bool, error) {
	res := r.db.Model(&model.ChatSession{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":      title,
		"updated_at": now,
	})
	if res.Error != nil {
		return false, fmt.Errorf("update session title failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *SessionRepository) Touch(id string, now time.Time) error {
	if err := r.db.Model(&model.ChatSession{}).Where("id = ?", id).Update("updated_at", now).Error; err != nil {
		return fmt.Errorf("touch session failed: %w", err)
	}
	return nil
}

// Delete removes the session and its material rows in one transaction. The
// foreign key cascades as well; the explicit delete covers dialects running
// without FK enforcement.
func (r *SessionRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&model.Material{}).Error; err != nil {
			return fmt.Errorf("delete session materials failed: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&model.ChatSession{}).Error; err != nil {
			return fmt.Errorf("delete session failed: %w", err)
		}
		return nil
	})
}

func orderMaterials(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func ensureMaterials(session *model.ChatSession) {
	if session.Materials == nil {
		session.Materials = []model.Material{}
	}
}
