package security

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var ErrLimiterUnavailable = errors.New("upload rate limiter unavailable: redis not connected")

// UploadLimiter enforces sliding-window upload limits per IP and per owner.
type UploadLimiter struct {
	client       *goredis.Client
	maxPerMinute int
	maxPerDay    int
	now          func() time.Time
}

// KEYS[1] = key, ARGV[1] = limit, ARGV[2] = window seconds, ARGV[3] = now.
// Returns 1 if allowed, 0 if limited.
var slidingWindow = goredis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. redis.call('INCR', key .. ':seq'))
redis.call('EXPIRE', key, window)
redis.call('EXPIRE', key .. ':seq', window)
return 1
`)

func NewUploadLimiter(client *goredis.Client, perMin, perDay int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 200
	}
	return &UploadLimiter{
		client:       client,
		maxPerMinute: perMin,
		maxPerDay:    perDay,
		now:          time.Now,
	}
}

// AllowUpload returns (allowed, retryAfterSeconds, error). It fails open with
// ErrLimiterUnavailable when Redis is absent and closed on Redis errors.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, ip, userID string) (bool, int, error) {
	if ul.client == nil {
		return true, 0, ErrLimiterUnavailable
	}

	now := ul.now().Unix()

	allowed, err := ul.checkLimit(ctx, "ratelimit:upload:ip:"+ip, ul.maxPerMinute, 60, now)
	if err != nil {
		return false, 60, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, 60, nil
	}

	if userID != "" {
		allowed, err = ul.checkLimit(ctx, "ratelimit:upload:user:"+userID, ul.maxPerDay, 86400, now)
		if err != nil {
			return false, 3600, fmt.Errorf("rate limit check failed: %w", err)
		}
		if !allowed {
			return false, 3600, nil
		}
	}

	return true, 0, nil
}

func (ul *UploadLimiter) checkLimit(ctx context.Context, key string, limit, window int, now int64) (bool, error) {
	allowed, err := slidingWindow.Run(ctx, ul.client, []string{key}, limit, window, now).Int()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// RemainingQuota returns the uploads left for the IP (per minute) and the owner (per day).
func (ul *UploadLimiter) RemainingQuota(ctx context.Context, ip, userID string) (int, int, error) {
	if ul.client == nil {
		return ul.maxPerMinute, ul.maxPerDay, ErrLimiterUnavailable
	}

	now := ul.now().Unix()

	ipCount, err := ul.count(ctx, "ratelimit:upload:ip:"+ip, 60, now)
	if err != nil {
		return 0, 0, err
	}
	userRemaining := ul.maxPerDay
	if userID != "" {
		userCount, err := ul.count(ctx, "ratelimit:upload:user:"+userID, 86400, now)
		if err != nil {
			return 0, 0, err
		}
		userRemaining = max(ul.maxPerDay-userCount, 0)
	}

	return max(ul.maxPerMinute-ipCount, 0), userRemaining, nil
}

func (ul *UploadLimiter) count(ctx context.Context, key string, window int, now int64) (int, error) {
	ul.client.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(now-int64(window), 10))
	count, err := ul.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
