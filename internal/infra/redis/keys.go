package redis

import "fmt"

// Redis Key 定义与构造器
// 命名规范：业务:用途:标识

const (
	// 抽奖幂等：结果缓存（value 为序列化的抽奖结果，TTL 24h）
	keyDrawIdemResultPrefix = "draw:idem:result:"
	// 抽奖幂等：执行锁（value 为随机 UUID，TTL 覆盖事务超时）
	keyDrawIdemLockPrefix = "draw:idem:lock:"
	// 盲盒内容缓存（已揭晓的盲盒内容，TTL 1h）
	keyBlindBoxContentPrefix = "blindbox:content:"
	// 限流滑动窗口
	keyRateLimitPrefix = "ratelimit:"
)

// DrawIdemResultKey 抽奖幂等结果缓存 key
func DrawIdemResultKey(accountID, idemKey string) string {
	return fmt.Sprintf("%s%s:%s", keyDrawIdemResultPrefix, accountID, idemKey)
}

// DrawIdemLockKey 抽奖幂等执行锁 key
func DrawIdemLockKey(accountID, idemKey string) string {
	return fmt.Sprintf("%s%s:%s", keyDrawIdemLockPrefix, accountID, idemKey)
}

// BlindBoxContentKey 盲盒内容缓存 key
func BlindBoxContentKey(prizeNo string) string {
	return keyBlindBoxContentPrefix + prizeNo
}

// RateLimitKey 限流 key，dimension 取值 global / ip / account
func RateLimitKey(dimension, identity string) string {
	return fmt.Sprintf("%s%s:%s", keyRateLimitPrefix, dimension, identity)
}
