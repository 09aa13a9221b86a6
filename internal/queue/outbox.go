package queue

import (
	"context"
	"strconv"

	rd "github.com/redis/go-redis/v9"
)

// StreamOutbox 把支付事件先写进 Redis Stream，由 Relay 异步转 Kafka。
// capture 请求路径上只付一次 XADD 的代价。
type StreamOutbox struct {
	rdb    *rd.Client
	stream string
}

func NewStreamOutbox(rdb *rd.Client, stream string) *StreamOutbox {
	return &StreamOutbox{rdb: rdb, stream: stream}
}

// Append 入流一条支付事件。
func (o *StreamOutbox) Append(ctx context.Context, msg PaymentMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	return o.rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: o.stream,
		Values: map[string]interface{}{
			"event_id":     msg.EventID,
			"order_id":     strconv.FormatUint(uint64(msg.OrderID), 10),
			"user_id":      msg.UserID,
			"payment_id":   msg.PaymentID,
			"amount_minor": strconv.FormatInt(msg.AmountMinor, 10),
		},
	}).Err()
}
