package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for admin access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// FormSessionIdleTTL is how long an untouched form session is kept alive
	FormSessionIdleTTL = 30 * time.Minute
)

// Cache keys (prefixed with CacheConfig.RedisPrefix at use site)
const (
	CampaignBoardCacheKey = "campaigns:board"
	OptionsCacheKeyPrefix = "options:"
)

type contextKey string

// Request-scoped context keys set by handlers
const (
	RequestIDKey contextKey = "request_id"
	UserAgentKey contextKey = "user_agent"
	IPAddressKey contextKey = "ip_address"
	EndpointKey  contextKey = "endpoint"
	TimeoutKey   contextKey = "timeout"
)
