package inits

import (
	"errors"
	"fmt"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"io/fs"
	"line-auth/app/server/config"
	"os"
	"strings"
)

// Config 从环境变量读取配置。 .env 文件只补充没有设置的变量，不会覆盖真实环境。
func Config() (*config.Config, error) {
	mode, _ := os.LookupEnv("MODE")
	isProd := strings.HasPrefix(strings.ToLower(mode), "p")

	files := []string{".env.development", ".env"}
	if isProd {
		files[0] = ".env.production"
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg config.Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.System.IsProd = strings.HasPrefix(strings.ToLower(cfg.System.Mode), "p")

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *config.Config) error {
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.ConnectionString == "" {
		return fmt.Errorf("DB_CONN is required for sqlite")
	}
	if cfg.Security.TokenExpireMinutes <= 0 {
		return fmt.Errorf("TOKEN_EXPIRE_MINUTES must be positive")
	}
	if cfg.Login.MaxFailures <= 0 {
		return fmt.Errorf("LOGIN_MAX_FAILURES must be positive")
	}
	if cfg.Security.DefaultResetPassword == "" {
		return fmt.Errorf("DEFAULT_RESET_PASSWORD must not be empty")
	}
	return nil
}
