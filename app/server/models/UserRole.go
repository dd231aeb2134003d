package models

import "time"

// UserRole 用户与角色的关联
type UserRole struct {
	UserID    uint      `gorm:"column:user_id;primaryKey"`
	RoleID    uint      `gorm:"column:role_id;primaryKey;index"`
	CreatedAt time.Time `gorm:"column:created_at"` // 关联创建时间
}

func (UserRole) TableName() string {
	return "user_roles"
}
