package redis

import (
	"context"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// luaReleaseLockIfMatch 仅当锁值匹配本次 token 时才删除，避免误删后来者的锁。
const luaReleaseLockIfMatch = `
local lockKey = KEYS[1]
local token = ARGV[1]
if redis.call('GET', lockKey) == token then
  return redis.call('DEL', lockKey)
end
return 0
`

// CaptureLock 用 SETNX 串行化同一订单的并发 capture。
// TTL 兜底：持锁进程崩溃后锁自动过期。
type CaptureLock struct {
	rdb *rd.Client
	ttl time.Duration
}

func NewCaptureLock(rdb *rd.Client, ttl time.Duration) *CaptureLock {
	return &CaptureLock{rdb: rdb, ttl: ttl}
}

// Acquire 返回 false 表示该订单已有 capture 在进行中。
func (l *CaptureLock) Acquire(ctx context.Context, orderID uint, token string) (bool, error) {
	return l.rdb.SetNX(ctx, CaptureLockKey(orderID), token, l.ttl).Result()
}

// Release 安全释放锁（token 不匹配时不动）。
func (l *CaptureLock) Release(ctx context.Context, orderID uint, token string) error {
	_, err := l.rdb.Eval(ctx, luaReleaseLockIfMatch, []string{CaptureLockKey(orderID)}, token).Int()
	return err
}
