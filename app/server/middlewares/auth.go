package middlewares

import (
	"context"
	"errors"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"line-auth/app/server/errs"
	"line-auth/app/server/models"
	"line-auth/app/server/types"
	"net/http"
)

const (
	ContextKeyUserID = "uid"
	ContextKeyUser   = "user"
)

const (
	MsgInvalidToken    = "无效凭证!"
	MsgUserNotFound    = "用户不存在!"
	MsgAccountDisabled = "不活跃用户!"
)

// Bearer 从 Authorization: Bearer <token> 中提取并校验令牌，通过后把用户 ID 写入 context
func Bearer(verify func(token string) (uint, error), l *zap.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ContextKeyUserID,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return verify(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l.Debug("bearer token rejected", zap.String("URI", c.Request().RequestURI), zap.Error(err))
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return c.JSON(http.StatusUnauthorized, types.Fail(http.StatusUnauthorized, MsgInvalidToken))
		},
	})
}

// CurrentUser 每次请求都重新加载用户，删除或禁用立即生效
func CurrentUser(load func(ctx context.Context, id uint) (*models.User, error), l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := c.Get(ContextKeyUserID).(uint)
			if !ok {
				return c.JSON(http.StatusUnauthorized, types.Fail(http.StatusUnauthorized, MsgInvalidToken))
			}

			user, err := load(c.Request().Context(), id)
			if err != nil {
				switch {
				case errors.Is(err, errs.ErrNotFound):
					return c.JSON(http.StatusNotFound, types.Fail(http.StatusNotFound, MsgUserNotFound))
				case errors.Is(err, errs.ErrAccountDisabled):
					return c.JSON(http.StatusBadRequest, types.Fail(http.StatusBadRequest, MsgAccountDisabled))
				default:
					l.Error("failed to load current user", zap.Uint("id", id), zap.Error(err))
					return c.JSON(http.StatusInternalServerError, types.Fail(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)))
				}
			}

			c.Set(ContextKeyUser, user)

			return next(c)
		}
	}
}

// User 取出 CurrentUser 写入的用户，没有经过该中间件时返回 nil
func User(c echo.Context) *models.User {
	user, _ := c.Get(ContextKeyUser).(*models.User)
	return user
}
