// Package auth 用户认证与授权：注册、登录、令牌校验、改密、角色变更
package auth

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"line-auth/app/server/constants"
	"line-auth/app/server/errs"
	"line-auth/app/server/jwt"
	"line-auth/app/server/models"
	"line-auth/app/server/password"
	"line-auth/app/server/store"
	"line-auth/app/server/throttle"
	"line-auth/app/server/types"
)

// LoginGuard 登录失败次数限制
type LoginGuard interface {
	Check(ctx context.Context, username string) error
	Failed(ctx context.Context, username string)
	Succeeded(ctx context.Context, username string)
}

type Options struct {
	DefaultRole   string // 注册时分配的角色
	ResetPassword string // 管理员重置密码时使用的默认密码
}

type Service struct {
	l      *zap.Logger
	store  *store.Store
	tokens *jwt.JWT
	hasher *password.Hasher
	guard  LoginGuard
	opts   Options

	// 用户不存在时也做一次 hash 校验，避免通过响应时间判断用户名是否存在
	dummyHash string
}

func New(l *zap.Logger, s *store.Store, tokens *jwt.JWT, hasher *password.Hasher, guard LoginGuard, opts Options) (*Service, error) {
	if opts.DefaultRole == "" {
		opts.DefaultRole = constants.RoleNameVisitor
	}
	if guard == nil {
		guard = throttle.Nop{}
	}
	if opts.ResetPassword == "" {
		opts.ResetPassword = constants.DefaultResetPassword
	}

	dummyHash, err := hasher.Hash("line-auth-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &Service{
		l:         l,
		store:     s,
		tokens:    tokens,
		hasher:    hasher,
		guard:     guard,
		opts:      opts,
		dummyHash: dummyHash,
	}, nil
}

// Register 创建用户并签出令牌。用户名是否重复由存储层的唯一约束判断。
func (s *Service) Register(ctx context.Context, username string, plain string) (*types.Token, error) {
	if username == "" || plain == "" {
		return nil, fmt.Errorf("%w: empty username or password", errs.ErrInvalidCredentials)
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, hash, s.opts.DefaultRole)
	if err != nil {
		return nil, err
	}

	s.l.Info("user registered", zap.Uint("id", user.ID), zap.String("username", user.Username))

	return s.issue(user)
}

// Authenticate 用户不存在与密码错误返回同一个错误
func (s *Service) Authenticate(ctx context.Context, username string, plain string) (*models.User, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			_, _ = s.hasher.Verify(plain, s.dummyHash)
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}

	match, err := s.hasher.Verify(plain, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password of user %d: %w", user.ID, err)
	}
	if !match {
		return nil, errs.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, errs.ErrAccountDisabled
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, username string, plain string) (*types.Token, error) {
	if err := s.guard.Check(ctx, username); err != nil {
		return nil, err
	}

	user, err := s.Authenticate(ctx, username, plain)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			s.guard.Failed(ctx, username)
		}
		return nil, err
	}

	s.guard.Succeeded(ctx, username)

	return s.issue(user)
}

// VerifyToken 只校验签名与过期时间，用户是否存在、是否启用需要调用方通过 CurrentUser 确认
func (s *Service) VerifyToken(token string) (uint, error) {
	user, err := s.tokens.ParseUser(token)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// CurrentUser 每次请求都重新读取用户，确认仍然存在且处于启用状态
func (s *Service) CurrentUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errs.ErrAccountDisabled
	}
	return user, nil
}

func (s *Service) RequireSuperuser(user *models.User) error {
	if user == nil || !user.IsSuperuser {
		return errs.ErrForbidden
	}
	return nil
}

// ChangePassword 修改自己的密码。已签出的令牌在过期前依然有效。
func (s *Service) ChangePassword(ctx context.Context, user *models.User, oldPlain string, newPlain string) error {
	if err := password.CheckPolicy(newPlain); err != nil {
		return err
	}

	match, err := s.hasher.Verify(oldPlain, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password of user %d: %w", user.ID, err)
	}
	if !match {
		return errs.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPlain)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.store.SetPasswordHash(ctx, user, hash)
}

// UpdateProfile 修改自己的资料
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, update *models.ProfileUpdate) (*models.User, error) {
	if err := s.store.UpdateProfile(ctx, user, update); err != nil {
		return nil, err
	}
	return user, nil
}

// DefaultRole 新注册用户绑定的角色名
func (s *Service) DefaultRole() string {
	return s.opts.DefaultRole
}

// Health 检查依赖的存储是否可用
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) issue(user *models.User) (*types.Token, error) {
	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &types.Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expires.Unix(),
		Username:    user.Username,
	}, nil
}
