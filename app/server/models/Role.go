package models

import "time"

type Role struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name        string `gorm:"column:name;size:50;not null;uniqueIndex"` // 角色名称，全局唯一
	Description string `gorm:"column:description;size:255"`              // 描述
	Order       int    `gorm:"column:sort_order;not null;default:0"`     // 排序
	Disabled    bool   `gorm:"column:disabled;not null;default:false"`   // 是否禁用
	IsAdmin     bool   `gorm:"column:is_admin;not null;default:false"`   // 是否为管理员角色：分配此角色的用户会被设置为超级管理员
}
