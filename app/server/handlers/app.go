package handlers

import (
	"go.uber.org/zap"
	"line-auth/app/server/auth"
	"line-auth/app/server/metrics"
)

type App struct {
	l       *zap.Logger      // 日志
	auth    *auth.Service    // 认证与授权
	metrics *metrics.Metrics // 指标

	verboseLoginErrors bool // 登录时是否区分账号被禁用与密码错误
}

func NewApp(l *zap.Logger, svc *auth.Service, m *metrics.Metrics, verboseLoginErrors bool) *App {
	return &App{
		l:                  l,
		auth:               svc,
		metrics:            m,
		verboseLoginErrors: verboseLoginErrors,
	}
}
