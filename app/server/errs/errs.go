// Package errs 定义认证与授权流程中对外可见的错误类型
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrPersistence        = errors.New("persistence failure")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// ErrRoleNotFound 同时满足 errors.Is(err, ErrNotFound)
var ErrRoleNotFound = fmt.Errorf("role %w", ErrNotFound)

var known = []error{
	ErrDuplicateUsername,
	ErrInvalidCredentials,
	ErrAccountDisabled,
	ErrWeakPassword,
	ErrForbidden,
	ErrNotFound,
	ErrInvalidToken,
	ErrPersistence,
	ErrTooManyAttempts,
}

// Known 判断 err 是否属于上面定义的错误之一
func Known(err error) bool {
	for _, target := range known {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Persistence 包装数据库层的错误，同时保留原始错误供日志使用
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
