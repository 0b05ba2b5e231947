package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/docqa-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.Document{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
