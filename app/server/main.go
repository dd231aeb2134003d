package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"line-auth/app/server/apidocs"
	"line-auth/app/server/auth"
	"line-auth/app/server/handlers"
	"line-auth/app/server/inits"
	"line-auth/app/server/jwt"
	"line-auth/app/server/metrics"
	"line-auth/app/server/password"
	"line-auth/app/server/store"
	"line-auth/app/server/throttle"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// 初始化配置
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.System.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() { _ = l.Sync() }()

	l.Debug("logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库连接
	db, err := inits.DB(&cfg.Database, !cfg.System.IsProd)
	if err != nil {
		l.Fatal("error initializing DB connection", zap.Error(err))
	}
	s := store.New(db)

	if err := inits.SeedRoles(ctx, s, cfg.Roles.Seed, cfg.Roles.AdminRoleName, l); err != nil {
		l.Fatal("error seeding roles", zap.Error(err))
	}

	// 初始化 redis 连接，未配置时不限制登录失败次数
	var guard auth.LoginGuard = throttle.Nop{}
	rdb, err := inits.Redis(cfg.System.RedisConnectionString)
	if err != nil {
		l.Fatal("error initializing Redis connection", zap.Error(err))
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		guard = throttle.NewRedis(rdb, l, cfg.Login.MaxFailures, cfg.Login.Lockout)
	} else {
		l.Warn("REDIS_CONN not set, login throttling disabled")
	}

	// 初始化 JWT
	j, err := jwt.New(cfg.Security.SignatureSecretKey, cfg.TokenTTL())
	if err != nil {
		l.Fatal("error initializing JWT", zap.Error(err))
	}

	// 初始化密码 hash
	hasher, err := password.New(password.Options{
		Algorithm:  password.Algorithm(cfg.Security.PasswordHash),
		BcryptCost: cfg.Security.BcryptCost,
	})
	if err != nil {
		l.Fatal("error initializing password hasher", zap.Error(err))
	}

	svc, err := auth.New(l, s, j, hasher, guard, auth.Options{
		DefaultRole:   cfg.Roles.DefaultRoleName,
		ResetPassword: cfg.Security.DefaultResetPassword,
	})
	if err != nil {
		l.Fatal("error initializing auth service", zap.Error(err))
	}

	// 没有超级管理员时创建初始账号
	if created, err := svc.EnsureSuperuser(ctx, cfg.Roles.AdminUsername, cfg.Roles.AdminPassword, cfg.Roles.AdminRoleName); err != nil {
		l.Warn("no superuser available", zap.Error(err))
	} else if created {
		l.Info("initial superuser created", zap.String("username", cfg.Roles.AdminUsername))
	}

	m := metrics.New()

	// 准备 handler app
	handlerApp := handlers.NewApp(l, svc, m, cfg.Security.VerboseLoginErrors)

	// 准备 echo 服务
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("method", v.Method),
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("requestID", v.RequestID),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())
	if len(cfg.CORS.AllowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowCredentials: cfg.CORS.AllowCredentials,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
	e.Use(m.Middleware())

	// 绑定 echo 服务
	handlers.RegisterHandlers(e, handlerApp)

	// 添加 API 文档
	if !cfg.System.IsProd {
		if apiJSON, err := apidocs.Load(ctx); err != nil {
			l.Error("error loading api document", zap.Error(err))
		} else if doc, err := apidocs.Doc("/api", apiJSON); err != nil {
			l.Error("error initializing api document", zap.Error(err))
		} else {
			e.Pre(doc)
		}
	}

	// 启动 echo 服务
	go func() {
		if err := e.Start(cfg.System.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		l.Error("error shutting down the server", zap.Error(err))
	}
}
