package handlers

import (
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"line-auth/app/server/errs"
	"line-auth/app/server/middlewares"
	"line-auth/app/server/types"
	"net/http"
)

const (
	msgBadRequest         = "请求参数错误!"
	msgDuplicateUsername  = "用户名已被注册!"
	msgInvalidCredentials = "用户名或密码错误!"
	msgWrongOldPassword   = "旧密码不正确"
	msgWeakPassword       = "新密码不符合安全要求"
	msgForbidden          = "您没有权限执行此操作!"
	msgRoleNotFound       = "角色不存在!"
	msgTooManyAttempts    = "登录失败次数过多，请稍后再试!"
)

// errorStatus 把错误映射为状态码与提示信息，未知错误一律视为服务器内部错误
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrDuplicateUsername):
		return http.StatusBadRequest, msgDuplicateUsername
	case errors.Is(err, errs.ErrWeakPassword):
		return http.StatusBadRequest, msgWeakPassword
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusBadRequest, msgInvalidCredentials
	case errors.Is(err, errs.ErrAccountDisabled):
		return http.StatusBadRequest, middlewares.MsgAccountDisabled
	case errors.Is(err, errs.ErrInvalidToken):
		return http.StatusUnauthorized, middlewares.MsgInvalidToken
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, errs.ErrRoleNotFound):
		return http.StatusNotFound, msgRoleNotFound
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, middlewares.MsgUserNotFound
	case errors.Is(err, errs.ErrTooManyAttempts):
		return http.StatusTooManyRequests, msgTooManyAttempts
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

func (a *App) er(c echo.Context, statusCode int, msg string) error {
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return c.JSON(statusCode, types.Fail(statusCode, msg))
}

// fail 返回 err 对应的错误响应，只有内部错误会记录完整的错误链
func (a *App) fail(c echo.Context, err error) error {
	statusCode, msg := errorStatus(err)
	if statusCode == http.StatusInternalServerError {
		a.l.Error("request failed",
			zap.String("URI", c.Request().RequestURI),
			zap.String("requestID", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err),
		)
	} else {
		a.l.Debug("request rejected", zap.String("URI", c.Request().RequestURI), zap.Error(err))
	}
	return a.er(c, statusCode, msg)
}
