package shared

import "time"

// HTTP Client Configuration
const (
	DefaultHTTPTimeout     = 180 * time.Second
	DefaultRequestTimeout  = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Upstream Retry Configuration
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
)

// Upstream Request Configuration
const (
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.7
)

// Record Flush Configuration
const (
	RecordFlushInterval = 1 * time.Minute
	RecordRetryDelay    = 30 * time.Second
	MaxFlushRetries     = 3
)

// Rate Limit Configuration
const (
	RateLimitWindow     = 1 * time.Minute
	DefaultRateLimitRPM = 60
)
