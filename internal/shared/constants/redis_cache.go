package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs for hallbook.
// Pattern: hallbook:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	// Rates change a few times a year at most.
	TTL_RATES = 12 * time.Hour

	// The public calendar tolerates a few minutes of staleness; mutations
	// invalidate it anyway.
	TTL_PUBLIC_EVENTS = 5 * time.Minute

	// The ICS feed is polled by calendar apps on long intervals.
	TTL_ICS_FEED = 15 * time.Minute
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "hallbook"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_PUBLIC = CACHE_PREFIX + ":events:public" // + :from:X:to:Y
	CACHE_KEY_EVENTS_ICS    = CACHE_PREFIX + ":events:ics"
)

// ================== RATES MODULE ==================

const (
	CACHE_KEY_RATES_LIST = CACHE_PREFIX + ":rates:list"
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_EVENTS_ALL = CACHE_PREFIX + ":events:*"
	PATTERN_INVALIDATE_RATES_ALL  = CACHE_PREFIX + ":rates:*"
)

// ================== HELPER FUNCTIONS ==================

// BuildPublicEventsKey keys the public calendar cache by its window.
// Example: hallbook:events:public:from:2026-03:to:2027-09
func BuildPublicEventsKey(from, to string) string {
	return fmt.Sprintf("%s:from:%s:to:%s", CACHE_KEY_EVENTS_PUBLIC, from, to)
}
