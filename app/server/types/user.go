package types

import (
	"line-auth/app/server/models"
	"time"
)

type RoleInfo struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
	Disabled    bool   `json:"disabled"`
	IsAdmin     bool   `json:"is_admin"`
}

type UserInfo struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Nickname    string     `json:"nickname"`
	Avatar      string     `json:"avatar"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	Roles       []RoleInfo `json:"roles"`
	CreatedAt   time.Time  `json:"created_at"`
}

type UserListResponse struct {
	Limit   int        `json:"limit"`
	PageMax int64      `json:"page_max"`
	Total   int64      `json:"total"`
	List    []UserInfo `json:"list"`
}

type RoleChangeResult struct {
	UserID      uint   `json:"user_id"`
	NewRoleName string `json:"new_role_name"`
	OldRoleName string `json:"old_role_name"`
	IsSuperuser bool   `json:"is_superuser"`
}

type UserStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

type RoleChangeRequest struct {
	NewRoleID uint `json:"new_role_id"`
}

// ProfileUpdateRequest 未出现的字段保持不变，显式传入空字符串则清空
type ProfileUpdateRequest struct {
	Nickname *string `json:"nickname"`
	Avatar   *string `json:"avatar"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
}

func NewRoleInfo(role *models.Role) RoleInfo {
	return RoleInfo{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Order:       role.Order,
		Disabled:    role.Disabled,
		IsAdmin:     role.IsAdmin,
	}
}

func NewUserInfo(user *models.User) UserInfo {
	roles := make([]RoleInfo, 0, len(user.Roles))
	for i := range user.Roles {
		roles = append(roles, NewRoleInfo(&user.Roles[i]))
	}

	return UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		Nickname:    user.Nickname,
		Avatar:      user.Avatar,
		Phone:       user.Phone,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		Roles:       roles,
		CreatedAt:   user.CreatedAt,
	}
}
