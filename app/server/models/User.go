package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	// 基础信息
	Username string `gorm:"column:username;size:50;not null;uniqueIndex"` // 用户名，全局唯一，创建后不可修改
	Nickname string `gorm:"column:nickname;size:50"`                      // 昵称
	Avatar   string `gorm:"column:avatar;size:200"`                       // 头像
	Phone    string `gorm:"column:phone;size:20"`                         // 手机号
	Email    string `gorm:"column:email;size:50"`                         // 邮箱

	// 状态与权限
	IsActive    bool `gorm:"column:is_active;not null;default:true"`     // 是否启用，禁用后无法登录，已签出的 token 也会在使用时被拒绝
	IsSuperuser bool `gorm:"column:is_superuser;not null;default:false"` // 是否为超级管理员，随角色变更同步

	// 登录认证相关
	PasswordHash string `gorm:"column:hashed_password;size:200;not null" json:"-"` // 密码 hash ，argon2id 或 bcrypt

	Roles []Role `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID"`
}

// ProfileUpdate 用户可自行修改的资料，nil 表示不修改，空字符串表示清空
type ProfileUpdate struct {
	Nickname *string
	Avatar   *string
	Phone    *string
	Email    *string
}

// Columns 返回需要更新的列
func (p *ProfileUpdate) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Nickname != nil {
		cols["nickname"] = *p.Nickname
	}
	if p.Avatar != nil {
		cols["avatar"] = *p.Avatar
	}
	if p.Phone != nil {
		cols["phone"] = *p.Phone
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	return cols
}

// Apply 将修改同步到内存中的对象，只在数据库提交成功后调用
func (p *ProfileUpdate) Apply(user *User) {
	if p.Nickname != nil {
		user.Nickname = *p.Nickname
	}
	if p.Avatar != nil {
		user.Avatar = *p.Avatar
	}
	if p.Phone != nil {
		user.Phone = *p.Phone
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
}
