package queue

import "fmt"

// PaymentMessage 是 capture 成功后写入 outbox / Kafka 的支付事件。
type PaymentMessage struct {
	EventID     string `json:"event_id"`
	OrderID     uint   `json:"order_id"`
	UserID      string `json:"user_id"`
	PaymentID   string `json:"payment_id"`
	AmountMinor int64  `json:"amount_minor"` // 最小货币单位
}

// Validate 做最小字段校验，防止消费者处理脏消息。
func (m PaymentMessage) Validate() error {
	if m.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if m.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if m.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if m.PaymentID == "" {
		return fmt.Errorf("payment_id is required")
	}
	if m.AmountMinor <= 0 {
		return fmt.Errorf("amount_minor must be > 0")
	}
	return nil
}
