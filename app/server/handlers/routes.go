package handlers

import (
	"github.com/labstack/echo/v4"
	"line-auth/app/server/middlewares"
)

func RegisterHandlers(e *echo.Echo, a *App) {
	e.GET("/health", a.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(a.metrics.Handler()))

	e.POST("/register", a.Register)
	e.POST("/login", a.Login)

	// 以下接口需要登录，且每次请求都会重新确认用户状态
	authed := []echo.MiddlewareFunc{
		middlewares.Bearer(a.auth.VerifyToken, a.l),
		middlewares.CurrentUser(a.auth.CurrentUser, a.l),
	}

	e.GET("/me", a.UserInfoGetSelf, authed...)
	e.PATCH("/me", a.UserInfoUpdateSelf, authed...)
	e.PUT("/change-password", a.ChangePassword, authed...)

	e.GET("/users", a.UserList, authed...)
	e.GET("/users/:id", a.UserInfoGet, authed...)
	e.POST("/users/:id/status", a.UserStatusUpdate, authed...)
	e.POST("/users/:id/change-role", a.UserRoleChange, authed...)
	e.POST("/users/:id/reset-password", a.UserPasswordReset, authed...)

	e.GET("/roles", a.RoleList, authed...)
}
