package handlers

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"line-auth/app/server/metrics"
	"line-auth/app/server/middlewares"
	"line-auth/app/server/types"
	"line-auth/app/server/utils"
	"net/http"
)

func (a *App) UserList(c echo.Context) error {
	actor := middlewares.User(c)
	rctx := c.Request().Context()

	page, limit, err := a.bindPagination(c)
	if err != nil {
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	showAll, parsedPage, parsedLimit := a.parsePagination(page, limit)
	users, count, err := a.auth.ListUsers(rctx, actor, parsedPage, parsedLimit, showAll)
	if err != nil {
		return a.fail(c, err)
	}

	list := make([]types.UserInfo, 0, len(users))
	for i := range users {
		list = append(list, types.NewUserInfo(&users[i]))
	}

	return c.JSON(http.StatusOK, types.OK("ok", &types.UserListResponse{
		Limit:   parsedLimit,
		PageMax: a.calcMaxPage(count, showAll, parsedLimit),
		Total:   count,
		List:    list,
	}))
}

func (a *App) UserInfoGet(c echo.Context) error {
	actor := middlewares.User(c)
	rctx := c.Request().Context()

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	user, err := a.auth.GetUser(rctx, actor, id)
	if err != nil {
		return a.fail(c, err)
	}

	return c.JSON(http.StatusOK, types.OK("ok", types.NewUserInfo(user)))
}

func (a *App) UserStatusUpdate(c echo.Context) error {
	actor := middlewares.User(c)
	rctx := c.Request().Context()

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	// 绑定请求体
	var req types.UserStatusRequest
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	user, err := a.auth.SetStatus(rctx, actor, id, *req.IsActive)
	a.metrics.Auth(metrics.EventSetStatus, err)
	if err != nil {
		return a.fail(c, err)
	}

	action := "禁用"
	if user.IsActive {
		action = "启用"
	}

	return c.JSON(http.StatusOK, types.OK(fmt.Sprintf("用户已成功%s!", action), types.NewUserInfo(user)))
}

// UserRoleChange 新角色 ID 可以放在查询参数 new_role_id 中，也可以放在请求体中
func (a *App) UserRoleChange(c echo.Context) error {
	actor := middlewares.User(c)
	rctx := c.Request().Context()

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	var roleID uint
	if raw := c.QueryParam("new_role_id"); raw != "" {
		if roleID, err = utils.ParseID(raw); err != nil {
			return a.er(c, http.StatusBadRequest, msgBadRequest)
		}
	} else {
		var req types.RoleChangeRequest
		if err := c.Bind(&req); err != nil || req.NewRoleID == 0 {
			return a.er(c, http.StatusBadRequest, msgBadRequest)
		}
		roleID = req.NewRoleID
	}

	res, err := a.auth.ChangeRole(rctx, actor, id, roleID)
	a.metrics.Auth(metrics.EventChangeRole, err)
	if err != nil {
		return a.fail(c, err)
	}

	return c.JSON(http.StatusOK, types.OK(fmt.Sprintf("角色修改成功! 已修改为 %s", res.NewRoleName), res))
}

func (a *App) UserPasswordReset(c echo.Context) error {
	actor := middlewares.User(c)
	rctx := c.Request().Context()

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return a.er(c, http.StatusBadRequest, msgBadRequest)
	}

	user, err := a.auth.ResetPassword(rctx, actor, id)
	a.metrics.Auth(metrics.EventResetPassword, err)
	if err != nil {
		return a.fail(c, err)
	}

	return c.JSON(http.StatusOK, types.OK(fmt.Sprintf("用户 %s 的密码已成功重置为默认密码!", user.Username), nil))
}

func (a *App) RoleList(c echo.Context) error {
	actor := middlewares.User(c)
	rctx := c.Request().Context()

	roles, err := a.auth.ListRoles(rctx, actor)
	if err != nil {
		return a.fail(c, err)
	}

	list := make([]types.RoleInfo, 0, len(roles))
	for i := range roles {
		list = append(list, types.NewRoleInfo(&roles[i]))
	}

	return c.JSON(http.StatusOK, types.OK("ok", list))
}
