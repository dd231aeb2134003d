package config

import "time"

type Config struct {
	System   System
	Database Database
	Security Security
	Login    Login
	Roles    Roles
	CORS     CORS
}

type System struct {
	Mode                  string `env:"MODE"`                      // 运行模式，以 p 开头视为生产环境
	IsProd                bool   // 由 Mode 推导
	Listen                string `env:"LISTEN" envDefault:":1323"` // 监听地址
	RedisConnectionString string `env:"REDIS_CONN"`                // Redis 连接字符串，留空则不限制登录失败次数
}

type Database struct {
	Driver           string `env:"DB_DRIVER" envDefault:"postgres"` // postgres 或 sqlite
	ConnectionString string `env:"DB_CONN"`                         // 完整连接字符串，设定后忽略下面的分项
	Host             string `env:"DB_HOST" envDefault:"localhost"`
	Port             int    `env:"DB_PORT" envDefault:"5432"`
	User             string `env:"DB_USER" envDefault:"postgres"`
	Password         string `env:"DB_PASSWORD"`
	Name             string `env:"DB_NAME" envDefault:"line_auth"`
	SSLMode          string `env:"DB_SSLMODE" envDefault:"disable"`
}

type Security struct {
	SignatureSecretKey   string `env:"SIGNATURE_SECRET_KEY,required,notEmpty"` // 签名密钥，用于签出 JWT ，更新会导致旧有会话失效
	TokenExpireMinutes   int    `env:"TOKEN_EXPIRE_MINUTES" envDefault:"1440"`
	PasswordHash         string `env:"PASSWORD_HASH" envDefault:"argon2id"` // argon2id 或 bcrypt ，校验时两种都支持
	BcryptCost           int    `env:"BCRYPT_COST" envDefault:"12"`
	DefaultResetPassword string `env:"DEFAULT_RESET_PASSWORD" envDefault:"123456"`
	VerboseLoginErrors   bool   `env:"VERBOSE_LOGIN_ERRORS" envDefault:"false"` // 登录时是否提示账号被禁用
}

type Login struct {
	MaxFailures int           `env:"LOGIN_MAX_FAILURES" envDefault:"5"`
	Lockout     time.Duration `env:"LOGIN_LOCKOUT" envDefault:"15m"`
}

type Roles struct {
	AdminRoleName   string   `env:"ADMIN_ROLE_NAME" envDefault:"Super Admin"`
	DefaultRoleName string   `env:"DEFAULT_ROLE_NAME" envDefault:"普通用户"`
	Seed            []string `env:"SEED_ROLES" envDefault:"Super Admin,Normal User,普通用户" envSeparator:","`
	AdminUsername   string   `env:"ADMIN_USERNAME"` // 没有任何超级管理员时用于创建初始账号
	AdminPassword   string   `env:"ADMIN_PASSWORD"`
}

type CORS struct {
	AllowOrigins     []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Security.TokenExpireMinutes) * time.Minute
}
