// Package password 密码 hash 与密码强度策略
package password

import (
	"errors"
	"fmt"
	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
	"line-auth/app/server/errs"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Algorithm string

const (
	Argon2id Algorithm = "argon2id"
	Bcrypt   Algorithm = "bcrypt"
)

// MinLength 密码最小长度（按字符计）
const MinLength = 8

type Options struct {
	Algorithm  Algorithm
	BcryptCost int
	Argon2     *argon2id.Params
}

type Hasher struct {
	algorithm  Algorithm
	bcryptCost int
	argon2     *argon2id.Params
}

func New(opts Options) (*Hasher, error) {
	h := &Hasher{
		algorithm:  opts.Algorithm,
		bcryptCost: opts.BcryptCost,
		argon2:     opts.Argon2,
	}

	switch h.algorithm {
	case "", Argon2id:
		h.algorithm = Argon2id
		if h.argon2 == nil {
			h.argon2 = argon2id.DefaultParams
		}
	case Bcrypt:
		if h.bcryptCost == 0 {
			h.bcryptCost = bcrypt.DefaultCost
		}
		if h.bcryptCost < bcrypt.MinCost || h.bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range", h.bcryptCost)
		}
	default:
		return nil, fmt.Errorf("unknown password hash algorithm: %s", h.algorithm)
	}

	return h, nil
}

func (h *Hasher) Hash(plain string) (string, error) {
	switch h.algorithm {
	case Bcrypt:
		b, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(b), nil
	default:
		hash, err := argon2id.CreateHash(plain, h.argon2)
		if err != nil {
			return "", fmt.Errorf("argon2id hash: %w", err)
		}
		return hash, nil
	}
}

// Verify 按已存储 hash 的格式选择算法，切换配置后旧 hash 仍然有效
func (h *Hasher) Verify(plain string, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		match, _, err := argon2id.CheckHash(plain, hash)
		if err != nil {
			return false, fmt.Errorf("argon2id check: %w", err)
		}
		return match, nil
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		} else if err != nil {
			return false, fmt.Errorf("bcrypt check: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("unrecognized password hash format")
	}
}

// CheckPolicy 密码至少 8 位，且同时包含数字、大写字母和小写字母
func CheckPolicy(plain string) error {
	if utf8.RuneCountInString(plain) < MinLength {
		return fmt.Errorf("%w: shorter than %d characters", errs.ErrWeakPassword, MinLength)
	}

	var hasDigit, hasUpper, hasLower bool
	for _, r := range plain {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}

	switch {
	case !hasDigit:
		return fmt.Errorf("%w: missing digit", errs.ErrWeakPassword)
	case !hasUpper:
		return fmt.Errorf("%w: missing upper-case letter", errs.ErrWeakPassword)
	case !hasLower:
		return fmt.Errorf("%w: missing lower-case letter", errs.ErrWeakPassword)
	}

	return nil
}
