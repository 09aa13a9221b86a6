package service

import (
	"context"

	"shop_backend/internal/queue"
)

// CaptureGuard 串行化同一订单的并发 capture。
// Acquire 返回 false 表示已有 capture 在进行中。
type CaptureGuard interface {
	Acquire(ctx context.Context, orderID uint, token string) (bool, error)
	Release(ctx context.Context, orderID uint, token string) error
}

// EventSink 接收 capture 成功事件（Redis Stream outbox 实现）。
// 发送失败不影响 capture 结果，只记日志。
type EventSink interface {
	Append(ctx context.Context, msg queue.PaymentMessage) error
}
