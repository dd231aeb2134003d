package store

import (
	"context"
	"gorm.io/gorm/clause"
	"line-auth/app/server/errs"
	"line-auth/app/server/models"
)

func (s *Store) FindRoleByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := s.session(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, lookupError("find role by id", err)
	}
	return &role, nil
}

func (s *Store) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := s.session(ctx).First(&role, "name = ?", name).Error; err != nil {
		return nil, lookupError("find role by name", err)
	}
	return &role, nil
}

func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := s.session(ctx).Order("sort_order ASC, id ASC").Find(&roles).Error; err != nil {
		return nil, errs.Persistence("list roles", err)
	}
	return roles, nil
}

// SeedDefaultRoles 插入尚不存在的角色（按名称判断），返回新建的数量。
// 每次启动都可以安全调用，不会产生重复记录。
func (s *Store) SeedDefaultRoles(ctx context.Context, roles []models.Role) (int, error) {
	created := 0
	for _, role := range roles {
		res := s.session(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&role)
		if res.Error != nil {
			return created, errs.Persistence("seed role "+role.Name, res.Error)
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

// MarkAdminRole 为指定名称的角色加上管理员标记，用于兼容标记字段出现之前创建的角色
func (s *Store) MarkAdminRole(ctx context.Context, name string) error {
	res := s.session(ctx).Model(&models.Role{}).Where("name = ?", name).Update("is_admin", true)
	if res.Error != nil {
		return errs.Persistence("mark admin role", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrRoleNotFound
	}
	return nil
}
