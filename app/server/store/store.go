// Package store 用户、角色及其关联关系的持久化存储
//
// 每次调用都使用 db.WithContext 派生独立的会话；涉及多条语句的操作放在事务中执行，
// 出错或 panic 时由 gorm 回滚。
package store

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"line-auth/app/server/errs"
	"line-auth/app/server/models"
	"time"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) session(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction 在同一个事务中执行 fn ，fn 返回错误时整体回滚
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.session(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	if err == nil || errs.Known(err) {
		return err
	}
	return errs.Persistence("transaction", err)
}

// Ping 检查数据库连接是否可用
func (s *Store) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return errs.Persistence("get sql db", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return errs.Persistence("ping", err)
	}
	return nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.session(ctx).
		Preload("Roles").
		First(&user, "username = ?", username).Error; err != nil {
		return nil, lookupError("find user by username", err)
	}
	return &user, nil
}

func (s *Store) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.session(ctx).
		Preload("Roles").
		First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupError("find user by id", err)
	}
	return &user, nil
}

// ListUsers 按 ID 顺序列出用户， showAll 为 true 时忽略分页
func (s *Store) ListUsers(ctx context.Context, page int, limit int, showAll bool) ([]models.User, int64, error) {
	var (
		users []models.User
		count int64
	)

	queryBase := s.session(ctx).Model(&models.User{}).Preload("Roles").Order("id ASC")
	if !showAll {
		queryBase = queryBase.Limit(limit).Offset(page * limit)
	}

	if err := queryBase.Find(&users).Error; err != nil {
		return nil, 0, errs.Persistence("list users", err)
	}
	if err := s.session(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, errs.Persistence("count users", err)
	}

	return users, count, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.session(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, errs.Persistence("count users", err)
	}
	return count, nil
}

func (s *Store) CountSuperusers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.session(ctx).Model(&models.User{}).Where("is_superuser = ?", true).Count(&count).Error; err != nil {
		return 0, errs.Persistence("count superusers", err)
	}
	return count, nil
}

// CreateUser 创建用户并绑定默认角色；默认角色不存在时一并创建。
// 用户名冲突由唯一索引判定，返回 errs.ErrDuplicateUsername 。
func (s *Store) CreateUser(ctx context.Context, username string, passwordHash string, defaultRole string) (*models.User, error) {
	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	err := s.Transaction(ctx, func(tx *Store) error {
		role, err := tx.ensureRole(ctx, models.Role{Name: defaultRole})
		if err != nil {
			return err
		}

		if err := tx.db.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return errs.ErrDuplicateUsername
			}
			return errs.Persistence("create user", err)
		}

		if err := tx.db.Create(&models.UserRole{
			UserID:    user.ID,
			RoleID:    role.ID,
			CreatedAt: time.Now(),
		}).Error; err != nil {
			return errs.Persistence("bind default role", err)
		}

		user.Roles = []models.Role{*role}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// SetUserRoles 整体替换用户的角色集合，删除旧关联与插入新关联在同一事务中提交
func (s *Store) SetUserRoles(ctx context.Context, user *models.User, roles []models.Role) error {
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Where("user_id = ?", user.ID).Delete(&models.UserRole{}).Error; err != nil {
			return errs.Persistence("clear user roles", err)
		}

		if len(roles) == 0 {
			return nil
		}

		now := time.Now()
		links := make([]models.UserRole, 0, len(roles))
		for _, role := range roles {
			links = append(links, models.UserRole{
				UserID:    user.ID,
				RoleID:    role.ID,
				CreatedAt: now,
			})
		}
		if err := tx.db.Create(&links).Error; err != nil {
			return errs.Persistence("bind user roles", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	user.Roles = roles
	return nil
}

func (s *Store) SetActive(ctx context.Context, user *models.User, active bool) error {
	if err := s.updateColumn(ctx, user.ID, "is_active", active); err != nil {
		return err
	}
	user.IsActive = active
	return nil
}

func (s *Store) SetSuperuser(ctx context.Context, user *models.User, superuser bool) error {
	if err := s.updateColumn(ctx, user.ID, "is_superuser", superuser); err != nil {
		return err
	}
	user.IsSuperuser = superuser
	return nil
}

func (s *Store) SetPasswordHash(ctx context.Context, user *models.User, passwordHash string) error {
	if err := s.updateColumn(ctx, user.ID, "hashed_password", passwordHash); err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

// UpdateProfile 只更新 update 中明确给出的字段
func (s *Store) UpdateProfile(ctx context.Context, user *models.User, update *models.ProfileUpdate) error {
	cols := update.Columns()
	if len(cols) == 0 {
		return nil
	}

	res := s.session(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(cols)
	if res.Error != nil {
		return errs.Persistence("update profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}

	update.Apply(user)
	return nil
}

func (s *Store) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := s.session(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return errs.Persistence(fmt.Sprintf("update %s", column), res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func lookupError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}
	return errs.Persistence(op, err)
}

// ensureRole 按名称查找角色，不存在则插入；并发插入同名角色时以唯一索引为准
func (s *Store) ensureRole(ctx context.Context, role models.Role) (*models.Role, error) {
	if err := s.session(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&role).Error; err != nil {
		return nil, errs.Persistence("ensure role", err)
	}
	return s.FindRoleByName(ctx, role.Name)
}
