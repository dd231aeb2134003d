package store

import (
	"errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"strings"
)

// postgres 唯一约束冲突
const pgUniqueViolation = "23505"

// isUniqueViolation 判断是否为唯一索引冲突。
// 开启 TranslateError 时驱动会转换为 gorm.ErrDuplicatedKey ，未开启时按驱动原始错误判断。
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	// sqlite
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
