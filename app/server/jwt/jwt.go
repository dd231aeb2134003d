package jwt

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"line-auth/app/server/errs"
	"strconv"
	"time"
)

type JWT struct {
	key []byte
	ttl time.Duration
}

type User struct {
	ID      uint
	Expires int64 // Unix second
}

func New(key string, ttl time.Duration) (*JWT, error) {
	if len(key) == 0 {
		return nil, errors.New("key is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}

	return &JWT{key: []byte(key), ttl: ttl}, nil
}

// TTL 令牌有效期
func (j *JWT) TTL() time.Duration {
	return j.ttl
}

// ParseUser 校验签名与过期时间，不检查用户当前状态
func (j *JWT) ParseUser(tokenString string) (*User, error) {
	// 检查是否有效
	if len(tokenString) == 0 {
		return nil, fmt.Errorf("%w: token string is empty", errs.ErrInvalidToken)
	}

	// 映射字段
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: token not valid", errs.ErrInvalidToken)
	}

	// 匹配内容
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: bad subject %q", errs.ErrInvalidToken, claims.Subject)
	}

	return &User{
		ID:      uint(id),
		Expires: claims.ExpiresAt.Unix(),
	}, nil
}

func (j *JWT) SignToken(user *User) (string, error) {
	// 创建声明
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Unix(user.Expires, 0)),
	}

	// 创建令牌
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// 签名并返回
	return token.SignedString(j.key)
}

// Issue 为指定用户签出一个按 TTL 过期的令牌
func (j *JWT) Issue(id uint) (string, time.Time, error) {
	expires := time.Now().Add(j.ttl)
	token, err := j.SignToken(&User{
		ID:      id,
		Expires: expires.Unix(),
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}
