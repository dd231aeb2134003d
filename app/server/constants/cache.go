package constants

import "time"

const (
	CacheKeyLoginFailures = "auth:login:failures:%s" // %s -> username
)

const (
	CacheExpireLoginFailures = 15 * time.Minute
)
