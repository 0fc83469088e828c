package repository

import (
	"fmt"

	"gorm.io/gorm"

	"studyai/internal/model"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.ChatSession{}, &model.Material{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
