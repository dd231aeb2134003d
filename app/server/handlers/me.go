package handlers

import (
	"errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"line-auth/app/server/errs"
	"line-auth/app/server/metrics"
	"line-auth/app/server/middlewares"
	"line-auth/app/server/models"
	"line-auth/app/server/types"
	"net/http"
)

func (a *App) UserInfoGetSelf(c echo.Context) error {
	user := middlewares.User(c)

	return c.JSON(http.StatusOK, types.OK("ok", types.NewUserInfo(user)))
}

func (a *App) UserInfoUpdateSelf(c echo.Context) error {
	user := middlewares.User(c)
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind profile body", zap.Error(err))
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	updated, err := a.auth.UpdateProfile(rctx, user, &models.ProfileUpdate{
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		return a.fail(c, err)
	}

	return c.JSON(http.StatusOK, types.OK("资料已更新!", types.NewUserInfo(updated)))
}

func (a *App) ChangePassword(c echo.Context) error {
	user := middlewares.User(c)
	rctx := c.Request().Context()

	// 绑定请求体
	var req types.PasswordChangeRequest
	if err := c.Bind(&req); err != nil {
		a.l.Debug("failed to bind password body", zap.Error(err))
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	err := a.auth.ChangePassword(rctx, user, req.OldPassword, req.NewPassword)
	a.metrics.Auth(metrics.EventChangePassword, err)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			return a.er(c, http.StatusBadRequest, msgWrongOldPassword)
		}
		return a.fail(c, err)
	}

	a.l.Info("password changed", zap.Uint("id", user.ID))

	return c.JSON(http.StatusOK, types.OK("密码已成功更新!", nil))
}
