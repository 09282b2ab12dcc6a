package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/argusone/argus-server/internal/models"
)

// Per-minute request limits by subscription tier.
var tierLimits = map[models.SubscriptionTier]int{
	models.TierBasic:      100,
	models.TierPro:        500,
	models.TierEnterprise: 2000,
}

// defaultLimit applies to unknown tiers.
const defaultLimit = 100

// LimitForTier returns the requests-per-minute limit for the tier.
func LimitForTier(tier models.SubscriptionTier) int {
	if limit, ok := tierLimits[tier]; ok {
		return limit
	}
	return defaultLimit
}

// SlidingWindow is a Redis-backed rolling-window counter used to enforce
// tier limits per tenant. Each request lands in a sorted set scored by
// its timestamp; entries older than the window are pruned on every check.
type SlidingWindow struct {
	client *redis.Client
	window time.Duration
}

// NewSlidingWindow creates a sliding-window counter over the given client.
func NewSlidingWindow(client *redis.Client, window time.Duration) *SlidingWindow {
	return &SlidingWindow{client: client, window: window}
}

// Allow records one request under key and reports whether it is within
// limit, along with the remaining budget.
func (s *SlidingWindow) Allow(ctx context.Context, key string, limit int) (bool, int, error) {
	now := time.Now()
	nowMicro := now.UnixMicro()
	windowStart := now.Add(-s.window).UnixMicro()

	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return false, 0, fmt.Errorf("rate limit check: %w", err)
	}

	count := int(countCmd.Val())
	if count >= limit {
		return false, 0, nil
	}

	// Microsecond timestamps keep members unique even for rapid requests.
	err := s.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(nowMicro),
		Member: strconv.FormatInt(nowMicro, 10),
	}).Err()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit record: %w", err)
	}

	s.client.Expire(ctx, key, s.window+time.Second)

	return true, limit - count - 1, nil
}
