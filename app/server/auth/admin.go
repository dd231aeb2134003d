package auth

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"line-auth/app/server/constants"
	"line-auth/app/server/errs"
	"line-auth/app/server/models"
	"line-auth/app/server/store"
	"line-auth/app/server/types"
)

// 以下操作都要求 actor 为超级管理员

func (s *Service) ListUsers(ctx context.Context, actor *models.User, page int, limit int, showAll bool) ([]models.User, int64, error) {
	if err := s.RequireSuperuser(actor); err != nil {
		return nil, 0, err
	}
	return s.store.ListUsers(ctx, page, limit, showAll)
}

func (s *Service) GetUser(ctx context.Context, actor *models.User, id uint) (*models.User, error) {
	if err := s.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	return s.store.FindUserByID(ctx, id)
}

func (s *Service) ListRoles(ctx context.Context, actor *models.User) ([]models.Role, error) {
	if err := s.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	return s.store.ListRoles(ctx)
}

// SetStatus 启用或禁用账号
func (s *Service) SetStatus(ctx context.Context, actor *models.User, targetID uint, active bool) (*models.User, error) {
	if err := s.RequireSuperuser(actor); err != nil {
		return nil, err
	}

	target, err := s.store.FindUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetActive(ctx, target, active); err != nil {
		return nil, err
	}

	s.l.Info("user status changed",
		zap.Uint("actor", actor.ID),
		zap.Uint("target", target.ID),
		zap.Bool("active", active),
	)
	return target, nil
}

// ChangeRole 用新角色替换用户的全部角色，并按角色的管理员标记同步超级管理员标记
func (s *Service) ChangeRole(ctx context.Context, actor *models.User, targetID uint, roleID uint) (*types.RoleChangeResult, error) {
	if err := s.RequireSuperuser(actor); err != nil {
		return nil, err
	}

	target, err := s.store.FindUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	role, err := s.store.FindRoleByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrRoleNotFound
		}
		return nil, err
	}

	oldRoleName := constants.NoRoleName
	if len(target.Roles) > 0 {
		oldRoleName = target.Roles[0].Name
	}

	updated := *target
	if err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.SetUserRoles(ctx, &updated, []models.Role{*role}); err != nil {
			return err
		}
		return tx.SetSuperuser(ctx, &updated, role.IsAdmin)
	}); err != nil {
		return nil, err
	}

	s.l.Info("user role changed",
		zap.Uint("actor", actor.ID),
		zap.Uint("target", updated.ID),
		zap.String("from", oldRoleName),
		zap.String("to", role.Name),
		zap.Bool("superuser", updated.IsSuperuser),
	)

	return &types.RoleChangeResult{
		UserID:      updated.ID,
		NewRoleName: role.Name,
		OldRoleName: oldRoleName,
		IsSuperuser: updated.IsSuperuser,
	}, nil
}

// ResetPassword 将目标用户的密码重置为统一的默认密码。
// 默认密码对所有人都是已知的，用户应当在重置后立即修改。
func (s *Service) ResetPassword(ctx context.Context, actor *models.User, targetID uint) (*models.User, error) {
	if err := s.RequireSuperuser(actor); err != nil {
		return nil, err
	}

	target, err := s.store.FindUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(s.opts.ResetPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.SetPasswordHash(ctx, target, hash); err != nil {
		return nil, err
	}

	s.l.Warn("user password reset to default",
		zap.Uint("actor", actor.ID),
		zap.Uint("target", target.ID),
	)
	return target, nil
}

// EnsureSuperuser 没有任何超级管理员时，创建一个绑定管理员角色的超级管理员
func (s *Service) EnsureSuperuser(ctx context.Context, username string, plain string, adminRole string) (bool, error) {
	count, err := s.store.CountSuperusers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if username == "" || plain == "" {
		return false, fmt.Errorf("no superuser exists and no bootstrap credentials given")
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.Transaction(ctx, func(tx *store.Store) error {
		user, err := tx.CreateUser(ctx, username, hash, adminRole)
		if err != nil {
			return err
		}
		return tx.SetSuperuser(ctx, user, true)
	}); err != nil {
		return false, err
	}

	s.l.Info("superuser created", zap.String("username", username), zap.String("role", adminRole))
	return true, nil
}
