package handlers

import (
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"line-auth/app/server/errs"
	"line-auth/app/server/metrics"
	"line-auth/app/server/types"
	"net/http"
)

func (a *App) Register(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.RegisterRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind register body", zap.Error(err))
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	// 没有写用户名或密码
	if req.Username == "" || req.Password == "" {
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	token, err := a.auth.Register(rctx, req.Username, req.Password)
	a.metrics.Auth(metrics.EventRegister, err)
	if err != nil {
		return a.fail(c, err)
	}

	return c.JSON(http.StatusOK, types.OK(fmt.Sprintf("注册成功并分配角色: %s", a.auth.DefaultRole()), token))
}

// Login 同时接受 JSON 与表单格式的请求体
func (a *App) Login(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.LoginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind login body", zap.Error(err))
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	// 没有写用户名或密码
	if req.Username == "" || req.Password == "" {
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	token, err := a.auth.Login(rctx, req.Username, req.Password)
	a.metrics.Auth(metrics.EventLogin, err)
	if err != nil {
		if errors.Is(err, errs.ErrAccountDisabled) && !a.verboseLoginErrors {
			// 不区分禁用与密码错误，避免暴露账号状态
			err = errs.ErrInvalidCredentials
		}
		if errors.Is(err, errs.ErrInvalidCredentials) {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return a.er(c, http.StatusUnauthorized, msgInvalidCredentials)
		}
		return a.fail(c, err)
	}

	return c.JSON(http.StatusOK, types.OK("登录成功", token))
}
