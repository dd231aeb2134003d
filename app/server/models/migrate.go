package models

import (
	"fmt"
	"gorm.io/gorm"
)

// Migrate 建立关联表并迁移所有表结构
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&User{}, "Roles", &UserRole{}); err != nil {
		return fmt.Errorf("setup join table: %w", err)
	}

	return db.AutoMigrate(
		&Role{},
		&User{},
		&UserRole{},
	)
}
