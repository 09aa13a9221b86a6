package redis

import "fmt"

// CaptureLockKey 标记某订单是否有 capture 正在处理。
func CaptureLockKey(orderID uint) string {
	return fmt.Sprintf("shop:order:capture:lock:%d", orderID)
}

// RateLimitUserKey 下单接口按用户限流的键名。
func RateLimitUserKey(userID string) string {
	return fmt.Sprintf("rate_limit:order_create:user:%s", userID)
}

// RateLimitIPKey 解析不到用户时按 IP 降级限流。
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("rate_limit:order_create:ip:%s", ip)
}
