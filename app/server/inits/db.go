package inits

import (
	"context"
	"fmt"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"line-auth/app/server/config"
	"line-auth/app/server/models"
	"line-auth/app/server/store"
	"log"
	"os"
	"slices"
	"time"
)

func DB(cfg *config.Database, debugMode bool) (db *gorm.DB, err error) {
	dialector, err := dialect(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if debugMode {
		logLevel = logger.Info
	}

	// 打开连接
	if db, err = gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  debugMode,
		}),
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 迁移
	if err = models.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 返回
	return db, nil
}

func dialect(cfg *config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		dsn := cfg.ConnectionString
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.ConnectionString), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// SeedRoles 初始化角色，已存在的角色保持不变。名为 adminRole 的角色带有管理员标记。
func SeedRoles(ctx context.Context, s *store.Store, names []string, adminRole string, l *zap.Logger) error {
	if adminRole != "" && !slices.Contains(names, adminRole) {
		names = append([]string{adminRole}, names...)
	}

	roles := make([]models.Role, 0, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		roles = append(roles, models.Role{
			Name:    name,
			Order:   i,
			IsAdmin: name == adminRole,
		})
	}

	created, err := s.SeedDefaultRoles(ctx, roles)
	if err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	if adminRole != "" {
		if err := s.MarkAdminRole(ctx, adminRole); err != nil {
			return fmt.Errorf("failed to mark admin role %q: %w", adminRole, err)
		}
	}

	l.Info("roles seeded", zap.Int("created", created), zap.Int("total", len(roles)))
	return nil
}
