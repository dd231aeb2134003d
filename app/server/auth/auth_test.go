package auth

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"line-auth/app/server/constants"
	"line-auth/app/server/errs"
	"line-auth/app/server/jwt"
	"line-auth/app/server/models"
	"line-auth/app/server/password"
	"line-auth/app/server/store"
	"line-auth/app/server/testutil"
	"sync"
	"testing"
	"time"
)

type fixture struct {
	svc    *Service
	store  *store.Store
	tokens *jwt.JWT
	admin  *models.User
}

// memoryGuard 在内存中计数的登录限制
type memoryGuard struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
}

func (g *memoryGuard) Check(_ context.Context, username string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failures[username] >= g.max {
		return errs.ErrTooManyAttempts
	}
	return nil
}

func (g *memoryGuard) Failed(_ context.Context, username string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[username]++
}

func (g *memoryGuard) Succeeded(_ context.Context, username string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failures, username)
}

func newFixture(t *testing.T, guard LoginGuard) *fixture {
	t.Helper()
	ctx := context.Background()

	s := store.New(testutil.NewDB(t))
	_, err := s.SeedDefaultRoles(ctx, []models.Role{
		{Name: constants.RoleNameSuperAdmin, IsAdmin: true},
		{Name: constants.RoleNameNormalUser},
		{Name: constants.RoleNameVisitor},
	})
	require.NoError(t, err)

	tokens, err := jwt.New("test-secret", time.Hour)
	require.NoError(t, err)
	hasher, err := password.New(password.Options{Algorithm: password.Bcrypt, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	svc, err := New(zap.NewNop(), s, tokens, hasher, guard, Options{})
	require.NoError(t, err)

	created, err := svc.EnsureSuperuser(ctx, "root", "Root1234", constants.RoleNameSuperAdmin)
	require.NoError(t, err)
	require.True(t, created)

	admin, err := s.FindUserByUsername(ctx, "root")
	require.NoError(t, err)
	require.True(t, admin.IsSuperuser)

	return &fixture{svc: svc, store: s, tokens: tokens, admin: admin}
}

func (f *fixture) register(t *testing.T, username string, plain string) *models.User {
	t.Helper()
	_, err := f.svc.Register(context.Background(), username, plain)
	require.NoError(t, err)
	user, err := f.store.FindUserByUsername(context.Background(), username)
	require.NoError(t, err)
	return user
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	token, err := f.svc.Register(ctx, "alice", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, "alice", token.Username)

	id, err := f.svc.VerifyToken(token.AccessToken)
	require.NoError(t, err)

	user, err := f.svc.CurrentUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsSuperuser)
	require.Len(t, user.Roles, 1)
	assert.Equal(t, constants.RoleNameVisitor, user.Roles[0].Name)
	assert.NotEqual(t, "Secret123", user.PasswordHash)

	login, err := f.svc.Login(ctx, "alice", "Secret123")
	require.NoError(t, err)
	loginID, err := f.svc.VerifyToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, loginID)

	_, err = f.svc.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.Register(ctx, "alice", "Secret123")
	require.NoError(t, err)
	before, err := f.store.CountUsers(ctx)
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "alice", "Another123")
	assert.ErrorIs(t, err, errs.ErrDuplicateUsername)

	after, err := f.store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	const attempts = 12

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(ctx, "racer", "Secret123")
			if err != nil {
				assert.ErrorIs(t, err, errs.ErrDuplicateUsername)
				return
			}
			mu.Lock()
			successes++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestRegisterRejectsEmptyInput(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Register(context.Background(), "", "Secret123")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestAuthenticateDoesNotRevealUnknownUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.register(t, "alice", "Secret123")

	_, errUnknown := f.svc.Authenticate(ctx, "nobody", "Secret123")
	_, errWrong := f.svc.Authenticate(ctx, "alice", "Secret124")

	assert.ErrorIs(t, errUnknown, errs.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, errs.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.register(t, "alice", "Secret123")

	_, err := f.svc.SetStatus(ctx, f.admin, user.ID, false)
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "alice", "Secret123")
	assert.ErrorIs(t, err, errs.ErrAccountDisabled)

	// 密码错误时不暴露账号被禁用
	_, err = f.svc.Authenticate(ctx, "alice", "Wrong1234")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)

	// 禁用前签出的令牌依然能通过签名校验，但无法取得当前用户
	token, _, err := f.tokens.Issue(user.ID)
	require.NoError(t, err)
	id, err := f.svc.VerifyToken(token)
	require.NoError(t, err)
	_, err = f.svc.CurrentUser(ctx, id)
	assert.ErrorIs(t, err, errs.ErrAccountDisabled)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	f := newFixture(t, nil)

	token, err := f.tokens.SignToken(&jwt.User{ID: f.admin.ID, Expires: time.Now().Add(-time.Second).Unix()})
	require.NoError(t, err)

	_, err = f.svc.VerifyToken(token)
	assert.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestChangePasswordPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.register(t, "alice", "Secret123")

	for _, weak := range []string{"short1", "nouppercase1", "NOLOWERCASE1", "NoDigitsHere"} {
		t.Run(weak, func(t *testing.T) {
			err := f.svc.ChangePassword(ctx, user, "Secret123", weak)
			assert.ErrorIs(t, err, errs.ErrWeakPassword)

			_, err = f.svc.Authenticate(ctx, "alice", "Secret123")
			assert.NoError(t, err)
		})
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.register(t, "alice", "Secret123")

	token, err := f.svc.Login(ctx, "alice", "Secret123")
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, user, "NotMine123", "Changed123")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)

	require.NoError(t, f.svc.ChangePassword(ctx, user, "Secret123", "Changed123"))

	_, err = f.svc.Authenticate(ctx, "alice", "Secret123")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, err = f.svc.Authenticate(ctx, "alice", "Changed123")
	assert.NoError(t, err)

	// 改密前签出的令牌在过期前依然有效
	_, err = f.svc.VerifyToken(token.AccessToken)
	assert.NoError(t, err)
}

func TestChangeRoleRequiresSuperuser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.register(t, "alice", "Secret123")

	admin, err := f.store.FindRoleByName(ctx, constants.RoleNameSuperAdmin)
	require.NoError(t, err)

	for _, target := range []uint{user.ID, f.admin.ID, 9999} {
		_, err := f.svc.ChangeRole(ctx, user, target, admin.ID)
		assert.ErrorIs(t, err, errs.ErrForbidden)
	}

	_, err = f.svc.ChangeRole(ctx, f.admin, 9999, admin.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.svc.ChangeRole(ctx, f.admin, user.ID, 9999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.ErrorIs(t, err, errs.ErrRoleNotFound)
}

func TestChangeRoleSyncsSuperuserFlag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.register(t, "alice", "Secret123")

	admin, err := f.store.FindRoleByName(ctx, constants.RoleNameSuperAdmin)
	require.NoError(t, err)
	normal, err := f.store.FindRoleByName(ctx, constants.RoleNameNormalUser)
	require.NoError(t, err)

	res, err := f.svc.ChangeRole(ctx, f.admin, user.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleNameVisitor, res.OldRoleName)
	assert.Equal(t, constants.RoleNameSuperAdmin, res.NewRoleName)
	assert.True(t, res.IsSuperuser)

	promoted, err := f.store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsSuperuser)
	require.Len(t, promoted.Roles, 1)
	assert.Equal(t, admin.ID, promoted.Roles[0].ID)

	res, err = f.svc.ChangeRole(ctx, f.admin, user.ID, normal.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleNameSuperAdmin, res.OldRoleName)
	assert.False(t, res.IsSuperuser)

	demoted, err := f.store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, demoted.IsSuperuser)
	require.Len(t, demoted.Roles, 1)
	assert.Equal(t, normal.ID, demoted.Roles[0].ID)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.register(t, "alice", "Secret123")

	_, err := f.svc.ResetPassword(ctx, user, user.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	_, err = f.svc.ResetPassword(ctx, f.admin, 9999)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.svc.ResetPassword(ctx, f.admin, user.ID)
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "alice", constants.DefaultResetPassword)
	assert.NoError(t, err)
}

func TestAdminQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.register(t, "alice", "Secret123")

	_, _, err := f.svc.ListUsers(ctx, user, 0, 10, false)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.GetUser(ctx, user, f.admin.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.ListRoles(ctx, user)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	users, total, err := f.svc.ListUsers(ctx, f.admin, 0, 10, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	got, err := f.svc.GetUser(ctx, f.admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = f.svc.GetUser(ctx, f.admin, 9999)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	roles, err := f.svc.ListRoles(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}

func TestEnsureSuperuserOnlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.svc.EnsureSuperuser(ctx, "root2", "Root1234", constants.RoleNameSuperAdmin)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = f.store.FindUserByUsername(ctx, "root2")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLoginGuard(t *testing.T) {
	ctx := context.Background()
	guard := &memoryGuard{max: 2, failures: map[string]int{}}
	f := newFixture(t, guard)
	f.register(t, "alice", "Secret123")

	for i := 0; i < 2; i++ {
		_, err := f.svc.Login(ctx, "alice", "Wrong1234")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	}

	_, err := f.svc.Login(ctx, "alice", "Secret123")
	assert.ErrorIs(t, err, errs.ErrTooManyAttempts)

	guard.Succeeded(ctx, "alice")
	_, err = f.svc.Login(ctx, "alice", "Secret123")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	user := f.register(t, "alice", "Secret123")

	nickname := "Alice"
	updated, err := f.svc.UpdateProfile(ctx, user, &models.ProfileUpdate{Nickname: &nickname})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Nickname)
}
