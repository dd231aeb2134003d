// Package throttle 登录失败次数限制
package throttle

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"line-auth/app/server/constants"
	"line-auth/app/server/errs"
	"time"
)

// Nop 不做任何限制，未配置 redis 时使用
type Nop struct{}

func (Nop) Check(context.Context, string) error { return nil }
func (Nop) Failed(context.Context, string)      {}
func (Nop) Succeeded(context.Context, string)   {}

// Redis 在 redis 中按用户名累计失败次数，达到上限后在窗口期内拒绝登录。
// redis 不可用时放行，只记录日志。
type Redis struct {
	rdb         redis.Cmdable
	l           *zap.Logger
	maxFailures int64
	window      time.Duration
}

func NewRedis(rdb redis.Cmdable, l *zap.Logger, maxFailures int, window time.Duration) *Redis {
	if window <= 0 {
		window = constants.CacheExpireLoginFailures
	}
	return &Redis{
		rdb:         rdb,
		l:           l,
		maxFailures: int64(maxFailures),
		window:      window,
	}
}

func key(username string) string {
	return fmt.Sprintf(constants.CacheKeyLoginFailures, username)
}

func (r *Redis) Check(ctx context.Context, username string) error {
	if r.maxFailures <= 0 {
		return nil
	}

	count, err := r.rdb.Get(ctx, key(username)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.l.Error("failed to read login failures", zap.String("username", username), zap.Error(err))
		}
		return nil
	}

	if count >= r.maxFailures {
		return errs.ErrTooManyAttempts
	}
	return nil
}

func (r *Redis) Failed(ctx context.Context, username string) {
	k := key(username)

	pipe := r.rdb.TxPipeline()
	pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Error("failed to record login failure", zap.String("username", username), zap.Error(err))
	}
}

func (r *Redis) Succeeded(ctx context.Context, username string) {
	if err := r.rdb.Del(ctx, key(username)).Err(); err != nil {
		r.l.Error("failed to clear login failures", zap.String("username", username), zap.Error(err))
	}
}
