package middlewares

import (
	"context"
	"encoding/json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"line-auth/app/server/errs"
	"line-auth/app/server/models"
	"line-auth/app/server/types"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newEcho() *echo.Echo {
	verify := func(token string) (uint, error) {
		switch token {
		case "alice":
			return 1, nil
		case "ghost":
			return 2, nil
		case "disabled":
			return 3, nil
		case "broken":
			return 4, nil
		default:
			return 0, errs.ErrInvalidToken
		}
	}
	load := func(_ context.Context, id uint) (*models.User, error) {
		switch id {
		case 1:
			user := &models.User{Username: "alice", IsActive: true}
			user.ID = id
			return user, nil
		case 3:
			return nil, errs.ErrAccountDisabled
		case 4:
			return nil, errs.Persistence("find user by id", context.DeadlineExceeded)
		default:
			return nil, errs.ErrNotFound
		}
	}

	l := zap.NewNop()
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, User(c).Username)
	}, Bearer(verify, l), CurrentUser(load, l))
	return e
}

func do(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBearerAndCurrentUser(t *testing.T) {
	e := newEcho()

	cases := []struct {
		name   string
		auth   string
		status int
		msg    string
	}{
		{"missing header", "", http.StatusUnauthorized, MsgInvalidToken},
		{"wrong scheme", "Basic alice", http.StatusUnauthorized, MsgInvalidToken},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, MsgInvalidToken},
		{"deleted user", "Bearer ghost", http.StatusNotFound, MsgUserNotFound},
		{"disabled user", "Bearer disabled", http.StatusBadRequest, MsgAccountDisabled},
		{"storage failure", "Bearer broken", http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, tc.auth)
			require.Equal(t, tc.status, rec.Code)

			var res types.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tc.status, res.Code)
			assert.Equal(t, tc.msg, res.Msg)
		})
	}

	rec := do(e, "Bearer alice")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestUserWithoutMiddleware(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, User(c))
}
